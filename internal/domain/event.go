package domain

import (
	"encoding/json"
)

// Event represents one recorded life occurrence: a point in time with
// provenance, a dotted category, and a free-form payload.
type Event struct {
	ID         string         `json:"id"`
	Timestamp  string         `json:"timestamp"` // ISO-8601 with offset, occurrence time
	Source     string         `json:"source"`
	Type       string         `json:"type"` // dotted taxonomy, e.g. "health.workout"
	Title      string         `json:"title"`
	Metadata   map[string]any `json:"metadata"`
	LinkedURIs []string       `json:"linked_uris"`
	Tags       []string       `json:"tags"`
	Mood       *int           `json:"mood,omitempty"` // expected range 1-10
	Location   map[string]any `json:"location,omitempty"`
	Duration   *int           `json:"duration,omitempty"` // seconds
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
}

// ToMap converts the event into the open-map form used by validation
// and merging. Compound fields keep their structured values.
func (e Event) ToMap() map[string]any {
	m := map[string]any{
		"id":          e.ID,
		"timestamp":   e.Timestamp,
		"source":      e.Source,
		"type":        e.Type,
		"title":       e.Title,
		"metadata":    e.Metadata,
		"linked_uris": e.LinkedURIs,
		"tags":        e.Tags,
		"created_at":  e.CreatedAt,
		"updated_at":  e.UpdatedAt,
	}
	if e.Mood != nil {
		m["mood"] = *e.Mood
	}
	if e.Location != nil {
		m["location"] = e.Location
	}
	if e.Duration != nil {
		m["duration"] = *e.Duration
	}
	return m
}

// EventFromMap builds an Event from a validated open map. Missing compound
// fields default to empty structured values, never nil maps serialized as null.
func EventFromMap(m map[string]any) Event {
	e := Event{
		ID:         asString(m["id"]),
		Timestamp:  asString(m["timestamp"]),
		Source:     asString(m["source"]),
		Type:       asString(m["type"]),
		Title:      asString(m["title"]),
		CreatedAt:  asString(m["created_at"]),
		UpdatedAt:  asString(m["updated_at"]),
		Metadata:   map[string]any{},
		LinkedURIs: []string{},
		Tags:       []string{},
	}
	if obj, ok := asObject(m["metadata"]); ok {
		e.Metadata = obj
	}
	if ss, ok := asStringSlice(m["linked_uris"]); ok {
		e.LinkedURIs = ss
	}
	if ss, ok := asStringSlice(m["tags"]); ok {
		e.Tags = ss
	}
	if n, ok := asInt(m["mood"]); ok {
		e.Mood = &n
	}
	if obj, ok := asObject(m["location"]); ok {
		e.Location = obj
	}
	if n, ok := asInt(m["duration"]); ok {
		e.Duration = &n
	}
	return e
}

// Coercion helpers. JSON decoding yields float64 for numbers and
// []any for arrays, so typed accessors have to accept both shapes.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func asStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
