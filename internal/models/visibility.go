// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// VisibilityKind discriminates the variants a stored visibility value can take.
type VisibilityKind int

const (
	// VisibilityPublic means the post is visible to everyone. Stored as SQL
	// NULL, the string "public", or the string "null" (all equivalent).
	VisibilityPublic VisibilityKind = iota
	// VisibilityLegacyCampus is the deprecated "campus" string. Any viewer
	// with a campus set on their profile passes, regardless of which campus.
	VisibilityLegacyCampus
	// VisibilityAudience restricts the post to viewers matching the
	// batch/campus/branch sets.
	VisibilityAudience
)

// Visibility is the parsed form of a post's visibility column. The column has
// accumulated several historical encodings (NULL, "public", "null", "campus",
// and a structured JSON object) and all of them must remain decodable, so the
// value is parsed exactly once when it crosses the storage boundary and the
// rest of the code branches on Kind.
type Visibility struct {
	Kind     VisibilityKind
	Batches  []string
	Campuses []string
	Branches []string

	// raw is the wire/storage representation, preserved verbatim so API
	// responses return exactly what was stored.
	raw json.RawMessage
}

// visibilityJSON is the structured descriptor shape.
type visibilityJSON struct {
	Batches  []string `json:"batches"`
	Campuses []string `json:"campuses"`
	Branches []string `json:"branches"`
}

// Profile holds the viewer attributes an audience descriptor is matched
// against. A missing profile is represented by the zero value (all nil),
// which only grants access to public and author-owned posts.
type Profile struct {
	Batch  *string
	Campus *string
	Branch *string
}

// ParseVisibility turns a raw stored value into a Visibility. It is total:
// malformed input degrades to public (fail-open) rather than erroring, which
// keeps forward compatibility with visibility values this version does not
// know about.
func ParseVisibility(raw []byte) Visibility {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return Visibility{Kind: VisibilityPublic, raw: nil}
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// Not JSON at all: a bare legacy string stored in a text column.
		return visibilityFromString(trimmed, raw)
	}

	switch val := v.(type) {
	case string:
		return visibilityFromString(val, raw)
	case map[string]any:
		var desc visibilityJSON
		if err := json.Unmarshal(raw, &desc); err != nil {
			// Descriptor shape this system never wrote, e.g. a scalar
			// dimension. Drop the raw so a rewrite stores NULL instead of
			// persisting a value the SQL predicate would choke on.
			return Visibility{Kind: VisibilityPublic, raw: nil}
		}
		return Visibility{
			Kind:     VisibilityAudience,
			Batches:  desc.Batches,
			Campuses: desc.Campuses,
			Branches: desc.Branches,
			raw:      cloneRaw(raw),
		}
	default:
		// Numbers, booleans, arrays: nothing this system ever wrote, so
		// treat as public rather than hiding the post.
		return Visibility{Kind: VisibilityPublic, raw: cloneRaw(raw)}
	}
}

func visibilityFromString(s string, raw []byte) Visibility {
	switch strings.TrimSpace(s) {
	case "campus":
		return Visibility{Kind: VisibilityLegacyCampus, raw: cloneRaw(raw)}
	case "", "public", "null":
		return Visibility{Kind: VisibilityPublic, raw: cloneRaw(raw)}
	default:
		// Unknown string values fail open.
		return Visibility{Kind: VisibilityPublic, raw: cloneRaw(raw)}
	}
}

func cloneRaw(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

// Matches reports whether a viewer with the given profile may see a post
// carrying this visibility. The author short-circuit lives on Post, not here;
// this is the pure audience predicate.
func (v Visibility) Matches(p Profile) bool {
	switch v.Kind {
	case VisibilityPublic:
		return true
	case VisibilityLegacyCampus:
		// Any campus affiliation passes. Coarse on purpose: the historical
		// rule never compared the viewer's campus to anything, and existing
		// posts rely on that laxity.
		return p.Campus != nil && *p.Campus != ""
	case VisibilityAudience:
		return matchDimension(v.Batches, p.Batch) &&
			matchDimension(v.Campuses, p.Campus) &&
			matchDimension(v.Branches, p.Branch)
	default:
		return true
	}
}

// matchDimension applies one axis of the audience filter: an empty set imposes
// no constraint, a non-empty set requires the attribute to be present and a
// member.
func matchDimension(allowed []string, attr *string) bool {
	if len(allowed) == 0 {
		return true
	}
	if attr == nil || *attr == "" {
		return false
	}
	for _, a := range allowed {
		if a == *attr {
			return true
		}
	}
	return false
}

// IsPublic reports whether the value behaves as public for every viewer,
// covering both the explicit public encodings and the all-empty descriptor.
func (v Visibility) IsPublic() bool {
	if v.Kind == VisibilityPublic {
		return true
	}
	return v.Kind == VisibilityAudience &&
		len(v.Batches) == 0 && len(v.Campuses) == 0 && len(v.Branches) == 0
}

// Scan implements sql.Scanner for the jsonb column.
func (v *Visibility) Scan(value any) error {
	switch src := value.(type) {
	case nil:
		*v = Visibility{Kind: VisibilityPublic}
		return nil
	case []byte:
		*v = ParseVisibility(src)
		return nil
	case string:
		*v = ParseVisibility([]byte(src))
		return nil
	default:
		return fmt.Errorf("unsupported visibility source type %T", value)
	}
}

// Value implements driver.Valuer, writing back the preserved raw form.
func (v Visibility) Value() (driver.Value, error) {
	if len(v.raw) == 0 {
		return nil, nil
	}
	return []byte(v.raw), nil
}

// MarshalJSON returns the stored representation verbatim; clients render the
// human label themselves.
func (v Visibility) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// UnmarshalJSON accepts any of the historical encodings from request bodies.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	*v = ParseVisibility(data)
	return nil
}

// AudienceVisibility builds a structured descriptor, mainly for tests and
// seeding. nil slices mean "no restriction" on that dimension.
func AudienceVisibility(batches, campuses, branches []string) Visibility {
	desc := visibilityJSON{Batches: batches, Campuses: campuses, Branches: branches}
	raw, _ := json.Marshal(desc)
	return Visibility{
		Kind:     VisibilityAudience,
		Batches:  batches,
		Campuses: campuses,
		Branches: branches,
		raw:      raw,
	}
}

// PublicVisibility returns the canonical public value (stored as NULL).
func PublicVisibility() Visibility {
	return Visibility{Kind: VisibilityPublic}
}

// LegacyCampusVisibility returns the deprecated "campus" value.
func LegacyCampusVisibility() Visibility {
	return Visibility{Kind: VisibilityLegacyCampus, raw: json.RawMessage(`"campus"`)}
}
