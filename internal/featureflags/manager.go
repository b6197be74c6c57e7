// Package featureflags evaluates simple config-driven feature flags.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Names of the flags the application currently consults.
const (
	// FeedSQLFilter switches feed audience filtering from application-side
	// evaluation to the storage-side jsonb predicate. Both strategies return
	// identical pages; the flag exists for staged rollout and comparison.
	FeedSQLFilter = "feed_sql_filter"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "feed_sql_filter=on,new_composer=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil || pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		return bucket(name, userID) < uint32(pct)
	}

	return false
}

// bucket deterministically maps (flag, user) into [0,100).
func bucket(name string, userID uint) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return h.Sum32() % 100
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
