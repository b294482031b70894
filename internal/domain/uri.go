package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// LifeURI is a parsed life://source/type/id identifier. Type and ID may
// be empty; Source is always present in a well-formed URI.
type LifeURI struct {
	Source string
	Type   string
	ID     string
}

// ParseLifeURI splits a life:// identifier into its source, type and id
// segments. Used as the local-lookup hint when the external resolver is
// unavailable.
func ParseLifeURI(raw string) (LifeURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return LifeURI{}, fmt.Errorf("invalid uri %q: %w", raw, err)
	}
	if u.Scheme != "life" {
		return LifeURI{}, fmt.Errorf("invalid uri %q: scheme must be life://", raw)
	}
	if u.Host == "" {
		return LifeURI{}, fmt.Errorf("invalid uri %q: missing source segment", raw)
	}

	out := LifeURI{Source: u.Host}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		out.Type = segments[0]
	}
	if len(segments) > 1 && segments[1] != "" {
		out.ID = segments[1]
	}
	return out, nil
}
