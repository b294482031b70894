// Package plugins manages on-disk plugin descriptors and runs plugin
// executables as isolated subprocesses.
package plugins

import (
	"gopkg.in/yaml.v3"
)

const (
	// DescriptorFile is the per-plugin configuration file name.
	DescriptorFile = "plugin.yaml"
	// RunFile is the executable unit invoked on every run.
	RunFile = "run"
	// LogFile is the per-plugin append-only log.
	LogFile = "plugin.log"
)

// Descriptor is the persisted configuration of one plugin. The on-disk
// yaml file is the source of truth; the id always mirrors the directory
// name.
type Descriptor struct {
	ID          string         `yaml:"-" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Version     string         `yaml:"version" json:"version"`
	Author      string         `yaml:"author" json:"author"`
	Source      string         `yaml:"source" json:"source"`
	Type        string         `yaml:"type" json:"type"`
	Schedule    string         `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	Enabled     bool           `yaml:"enabled" json:"enabled"`
	LastRun     string         `yaml:"lastRun,omitempty" json:"lastRun,omitempty"`
	Config      map[string]any `yaml:"config" json:"config"`

	// Error is set on degraded listing entries whose descriptor could
	// not be read; it is never persisted.
	Error string `yaml:"-" json:"error,omitempty"`
}

// Schedulable reports whether this descriptor should have an active
// trigger: enabled with a non-empty cron schedule.
func (d *Descriptor) Schedulable() bool {
	return d != nil && d.Enabled && d.Schedule != ""
}

func (d *Descriptor) applyDefaults(id string) {
	d.ID = id
	if d.Name == "" {
		d.Name = id
	}
	if d.Version == "" {
		d.Version = "0.1.0"
	}
	if d.Author == "" {
		d.Author = "unknown"
	}
	if d.Source == "" {
		d.Source = "local"
	}
	if d.Type == "" {
		d.Type = "manual"
	}
	if d.Config == nil {
		d.Config = map[string]any{}
	}
}

func parseDescriptor(id string, data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	d.applyDefaults(id)
	return &d, nil
}

// degradedDescriptor stands in for a plugin whose descriptor failed to
// parse so one corrupt plugin never hides the others.
func degradedDescriptor(id string, err error) *Descriptor {
	return &Descriptor{
		ID:      id,
		Name:    id,
		Type:    "manual",
		Enabled: false,
		Config:  map[string]any{},
		Error:   err.Error(),
	}
}
