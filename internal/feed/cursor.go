// Package feed implements the cursor codec for feed pagination.
package feed

import "time"

// Skew is the forward buffer applied when a request has no usable cursor.
// Without it, a post written microseconds before the first fetch (on a host
// whose clock runs slightly ahead) would be excluded from page one and never
// seen again.
const Skew = 10 * time.Second

// CursorFormat round-trips sub-second precision. Second-only precision would
// make two posts inside the same second indistinguishable across pages.
const CursorFormat = time.RFC3339Nano

// Encode renders a post timestamp as an opaque wire cursor.
func Encode(t time.Time) string {
	return t.UTC().Format(CursorFormat)
}

// Decode parses a wire cursor into the exclusive upper bound for the next
// page. Absent or malformed input degrades to "start of feed" (now plus
// Skew); it never fails the request.
func Decode(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC().Add(Skew)
	}
	t, err := time.Parse(CursorFormat, raw)
	if err != nil {
		return time.Now().UTC().Add(Skew)
	}
	return t.UTC()
}
