package domain

import (
	"time"
)

// Validate checks a candidate event payload against the event schema.
// It returns every violation, not just the first, in a fixed field order
// so the aggregate message is deterministic.
func Validate(candidate map[string]any) []FieldError {
	var errs []FieldError

	ts := asString(candidate["timestamp"])
	if ts == "" {
		errs = append(errs, FieldError{Field: "timestamp", Message: "is required"})
	} else if _, err := time.Parse(time.RFC3339, ts); err != nil {
		errs = append(errs, FieldError{Field: "timestamp", Message: "must be an ISO-8601 date-time with offset"})
	}

	for _, field := range []string{"source", "type", "title"} {
		if asString(candidate[field]) == "" {
			errs = append(errs, FieldError{Field: field, Message: "is required"})
		}
	}

	if v, present := candidate["mood"]; present && v != nil {
		n, ok := asInt(v)
		if !ok {
			errs = append(errs, FieldError{Field: "mood", Message: "must be an integer"})
		} else if n < 1 || n > 10 {
			errs = append(errs, FieldError{Field: "mood", Message: "must be between 1 and 10"})
		}
	}

	if v, present := candidate["tags"]; present && v != nil {
		if _, ok := asStringSlice(v); !ok {
			errs = append(errs, FieldError{Field: "tags", Message: "must be an array of strings"})
		}
	}

	if v, present := candidate["linked_uris"]; present && v != nil {
		if _, ok := asStringSlice(v); !ok {
			errs = append(errs, FieldError{Field: "linked_uris", Message: "must be an array of strings"})
		}
	}

	if v, present := candidate["metadata"]; present && v != nil {
		if _, ok := asObject(v); !ok {
			errs = append(errs, FieldError{Field: "metadata", Message: "must be an object"})
		}
	}

	if v, present := candidate["location"]; present && v != nil {
		if _, ok := asObject(v); !ok {
			errs = append(errs, FieldError{Field: "location", Message: "must be an object"})
		}
	}

	if v, present := candidate["duration"]; present && v != nil {
		if _, ok := asInt(v); !ok {
			errs = append(errs, FieldError{Field: "duration", Message: "must be an integer number of seconds"})
		}
	}

	return errs
}

// MergeAndValidate shallow-merges patch over existing and validates the
// merged result. Pure: neither input is mutated, and nothing is written
// anywhere. created_at in the patch is ignored so the original creation
// time survives every update.
func MergeAndValidate(existing Event, patch map[string]any) (Event, []FieldError) {
	merged := existing.ToMap()
	for k, v := range patch {
		if k == "created_at" || k == "id" {
			continue
		}
		merged[k] = v
	}

	if errs := Validate(merged); len(errs) > 0 {
		return Event{}, errs
	}

	out := EventFromMap(merged)
	out.ID = existing.ID
	out.CreatedAt = existing.CreatedAt
	return out, nil
}
