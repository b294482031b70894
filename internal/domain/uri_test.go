package domain

import (
	"testing"
)

func TestParseLifeURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		want    LifeURI
		wantErr bool
	}{
		{
			name: "full uri",
			uri:  "life://strava/health.workout/evt-42",
			want: LifeURI{Source: "strava", Type: "health.workout", ID: "evt-42"},
		},
		{
			name: "source and type only",
			uri:  "life://strava/health.workout",
			want: LifeURI{Source: "strava", Type: "health.workout"},
		},
		{
			name: "source only",
			uri:  "life://manual",
			want: LifeURI{Source: "manual"},
		},
		{
			name:    "wrong scheme",
			uri:     "https://example.com/x",
			wantErr: true,
		},
		{
			name:    "missing source",
			uri:     "life://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLifeURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLifeURI(%q) expected error, got %+v", tt.uri, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLifeURI(%q) error: %v", tt.uri, err)
			}
			if got != tt.want {
				t.Errorf("ParseLifeURI(%q) = %+v, want %+v", tt.uri, got, tt.want)
			}
		})
	}
}
