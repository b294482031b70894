// Package scheduler keeps cron triggers for enabled, schedule-bearing
// plugins in sync with their on-disk descriptors.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/lifelogd/lifelogd/internal/logger"
	"github.com/lifelogd/lifelogd/internal/plugins"
)

// Scheduler owns the map from plugin id to its single active trigger.
// All mutations go through Start/Stop under one mutex so no two
// concurrent Starts can leave two live triggers for the same id.
type Scheduler struct {
	cron     *cron.Cron
	registry *plugins.Registry
	runner   *plugins.Runner
	logger   logger.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func New(registry *plugins.Registry, runner *plugins.Runner, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		registry: registry,
		runner:   runner,
		logger:   log,
		entries:  map[string]cron.EntryID{},
	}
}

// Run starts the cron engine. Triggers registered before or after are
// both honored.
func (s *Scheduler) Run() {
	s.cron.Start()
}

// Shutdown stops the cron engine and waits for in-flight jobs; pending
// future firings are cancelled, running ones complete.
func (s *Scheduler) Shutdown() {
	<-s.cron.Stop().Done()
}

// Start installs the trigger for id, replacing any existing one first so
// re-registration is idempotent and schedule changes take effect. A
// descriptor that is disabled or has no schedule ends with no trigger.
func (s *Scheduler) Start(id string, d *plugins.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)

	if !d.Schedulable() {
		return nil
	}

	entryID, err := s.cron.AddFunc(d.Schedule, func() { s.fire(id) })
	if err != nil {
		return err
	}
	s.entries[id] = entryID

	s.logger.Info("plugin trigger registered",
		logger.String("plugin", id),
		logger.String("schedule", d.Schedule))
	return nil
}

// Stop removes the trigger for id. No-op when absent. An in-flight run
// is never interrupted, only future firings are cancelled.
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeLocked(id) {
		s.logger.Info("plugin trigger removed",
			logger.String("plugin", id))
	}
}

// Active reports whether id currently holds a trigger.
func (s *Scheduler) Active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// ActiveCount returns the number of registered triggers.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ReconcileOnStartup scans every descriptor once and installs triggers
// for the enabled, scheduled ones. Individual failures are logged and
// skipped; the scan never aborts.
func (s *Scheduler) ReconcileOnStartup() {
	for _, d := range s.registry.List() {
		if d.Error != "" {
			s.logger.Warn("skipping corrupt plugin during reconcile",
				logger.String("plugin", d.ID))
			continue
		}
		if !d.Schedulable() {
			continue
		}
		if err := s.Start(d.ID, d); err != nil {
			s.logger.Error("failed to schedule plugin",
				logger.String("plugin", d.ID),
				logger.String("schedule", d.Schedule),
				logger.Error(err))
		}
	}

	s.logger.Info("plugin triggers reconciled",
		logger.Int("active", s.ActiveCount()))
}

// fire runs one scheduled invocation. The descriptor is re-read so config
// edits apply to the next firing, and every failure is contained here:
// one plugin's crash never reaches the cron engine or other plugins.
func (s *Scheduler) fire(id string) {
	d, err := s.registry.Get(id)
	if err != nil {
		s.logger.Error("scheduled plugin descriptor unreadable",
			logger.String("plugin", id),
			logger.Error(err))
		return
	}

	s.logger.Info("plugin trigger fired",
		logger.String("plugin", id))

	if _, err := s.runner.Run(context.Background(), d, nil); err != nil {
		s.logger.Error("scheduled plugin run failed",
			logger.String("plugin", id),
			logger.Error(err))
	}
}

func (s *Scheduler) removeLocked(id string) bool {
	entryID, ok := s.entries[id]
	if !ok {
		return false
	}
	s.cron.Remove(entryID)
	delete(s.entries, id)
	return true
}
