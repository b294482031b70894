package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lifelogd/lifelogd/internal/domain"
	"github.com/lifelogd/lifelogd/internal/logger"
)

// LogTailLines bounds the window returned by Logs.
const LogTailLines = 100

var idPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// Registry discovers plugin directories under a root path and owns
// descriptor persistence. Descriptor writes are serialized so concurrent
// mutations (API call vs. lastRun update from a firing trigger) never
// interleave on the same file.
type Registry struct {
	root   string
	logger logger.Logger
	mu     sync.Mutex
}

func NewRegistry(root string, log logger.Logger) *Registry {
	return &Registry{
		root:   root,
		logger: log,
	}
}

// Dir returns the directory holding the plugin's files.
func (r *Registry) Dir(id string) string {
	return filepath.Join(r.root, id)
}

// List scans the plugin root. A plugin whose descriptor fails to parse is
// returned as a degraded, disabled entry instead of being omitted.
func (r *Registry) List() []*Descriptor {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("failed to scan plugin root",
				logger.String("root", r.root),
				logger.Error(err))
		}
		return []*Descriptor{}
	}

	descriptors := make([]*Descriptor, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		d, err := r.load(id)
		if err != nil {
			r.logger.Warn("degrading corrupt plugin descriptor",
				logger.String("plugin", id),
				logger.Error(err))
			d = degradedDescriptor(id, err)
		}
		descriptors = append(descriptors, d)
	}

	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].ID < descriptors[j].ID })
	return descriptors
}

// Get reads one plugin's descriptor.
func (r *Registry) Get(id string) (*Descriptor, error) {
	d, err := r.load(id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.NotFoundError{Kind: "plugin", ID: id}
		}
		return nil, fmt.Errorf("read plugin %s: %w", id, err)
	}
	return d, nil
}

// SetEnabled persists the enabled flag and returns the updated descriptor.
func (r *Registry) SetEnabled(id string, enabled bool) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	d.Enabled = enabled
	if err := r.save(d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateConfig shallow-merges patch over the descriptor and persists it.
// The id is never patchable; created descriptors keep their directory name.
func (r *Registry) UpdateConfig(id string, patch map[string]any) (*Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	for key, value := range patch {
		switch key {
		case "name":
			d.Name = asString(value)
		case "description":
			d.Description = asString(value)
		case "version":
			d.Version = asString(value)
		case "author":
			d.Author = asString(value)
		case "source":
			d.Source = asString(value)
		case "type":
			d.Type = asString(value)
		case "schedule":
			d.Schedule = asString(value)
		case "enabled":
			if b, ok := value.(bool); ok {
				d.Enabled = b
			}
		case "config":
			if cfg, ok := value.(map[string]any); ok {
				d.Config = cfg
			}
		}
	}

	if err := r.save(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Install creates a new plugin directory with a disabled descriptor and a
// stub executable. Activation stays a separate, explicit step.
func (r *Registry) Install(source, name string) (*Descriptor, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("plugin source and name are required")
	}

	id := idPattern.ReplaceAllString(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-")), "")
	if id == "" {
		return nil, fmt.Errorf("plugin name %q yields an empty id", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := r.Dir(id)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("plugin %s already exists", id)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plugin dir: %w", err)
	}

	d := &Descriptor{
		Name:    name,
		Source:  source,
		Enabled: false,
	}
	d.applyDefaults(id)
	if err := r.save(d); err != nil {
		return nil, err
	}

	stub := "#!/bin/sh\n# " + name + " plugin. Reads {config, args} as JSON on stdin.\nexit 0\n"
	if err := os.WriteFile(filepath.Join(dir, RunFile), []byte(stub), 0o755); err != nil {
		return nil, fmt.Errorf("write plugin stub: %w", err)
	}

	return d, nil
}

// Logs returns the last LogTailLines lines of the plugin's log file. A
// missing log file yields an empty slice, never an error.
func (r *Registry) Logs(id string) ([]string, error) {
	if _, err := r.Get(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(r.Dir(id), LogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read plugin log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}, nil
	}
	if len(lines) > LogTailLines {
		lines = lines[len(lines)-LogTailLines:]
	}
	return lines, nil
}

// AppendLog appends one timestamped line to the plugin's log file.
func (r *Registry) AppendLog(id, line string) error {
	f, err := os.OpenFile(filepath.Join(r.Dir(id), LogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintf(f, "[%s] %s\n", time.Now().Format(time.RFC3339), line)
	return err
}

// TouchLastRun stamps the descriptor's lastRun with the current time.
// Called after every invocation regardless of its outcome.
func (r *Registry) TouchLastRun(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.Get(id)
	if err != nil {
		return err
	}
	d.LastRun = time.Now().Format(time.RFC3339)
	return r.save(d)
}

func (r *Registry) load(id string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(r.Dir(id), DescriptorFile))
	if err != nil {
		return nil, err
	}
	return parseDescriptor(id, data)
}

func (r *Registry) save(d *Descriptor) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.Dir(d.ID), DescriptorFile), data, 0o644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
