package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"timestamp": "2024-01-01T00:00:00Z",
		"source":    "manual",
		"type":      "health.workout",
		"title":     "Morning run",
	}
}

func TestValidateOK(t *testing.T) {
	assert.Empty(t, Validate(validPayload()))
}

func TestValidateAggregatesAllViolations(t *testing.T) {
	errs := Validate(map[string]any{
		"timestamp": "not-a-date",
		"mood":      "happy",
		"tags":      []any{"ok", 42},
	})

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
	}

	// Every violated field is reported, in fixed order.
	assert.Equal(t, []string{"timestamp", "source", "type", "title", "mood", "tags"}, fields)
}

func TestValidateMoodRange(t *testing.T) {
	p := validPayload()
	p["mood"] = float64(11) // json numbers decode as float64
	errs := Validate(p)
	require.Len(t, errs, 1)
	assert.Equal(t, "mood", errs[0].Field)

	p["mood"] = float64(7)
	assert.Empty(t, Validate(p))
}

func TestValidateOptionalTypes(t *testing.T) {
	p := validPayload()
	p["metadata"] = "not an object"
	p["linked_uris"] = map[string]any{}
	p["duration"] = 1.5

	errs := Validate(p)
	require.Len(t, errs, 3)
	assert.Equal(t, "linked_uris", errs[0].Field)
	assert.Equal(t, "metadata", errs[1].Field)
	assert.Equal(t, "duration", errs[2].Field)
}

func TestMergeAndValidate(t *testing.T) {
	existing := Event{
		ID:         "evt-1",
		Timestamp:  "2024-01-01T00:00:00Z",
		Source:     "manual",
		Type:       "health.workout",
		Title:      "Morning run",
		Metadata:   map[string]any{"distance": 5.2},
		Tags:       []string{"running"},
		LinkedURIs: []string{},
		CreatedAt:  "2024-01-01T01:00:00Z",
		UpdatedAt:  "2024-01-01T01:00:00Z",
	}

	merged, errs := MergeAndValidate(existing, map[string]any{
		"title":      "Evening run",
		"created_at": "2030-01-01T00:00:00Z", // must be ignored
	})
	require.Empty(t, errs)

	assert.Equal(t, "Evening run", merged.Title)
	assert.Equal(t, "evt-1", merged.ID)
	assert.Equal(t, "2024-01-01T01:00:00Z", merged.CreatedAt)
	assert.Equal(t, map[string]any{"distance": 5.2}, merged.Metadata)
	assert.Equal(t, []string{"running"}, merged.Tags)
}

func TestMergeAndValidateRejectsInvalidMerge(t *testing.T) {
	existing := Event{
		ID:        "evt-1",
		Timestamp: "2024-01-01T00:00:00Z",
		Source:    "manual",
		Type:      "health.workout",
		Title:     "Morning run",
	}

	// The patch alone looks harmless; the merged record is what fails.
	_, errs := MergeAndValidate(existing, map[string]any{"title": ""})
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)

	// Pure: existing is untouched.
	assert.Equal(t, "Morning run", existing.Title)
}
