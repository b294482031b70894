package deps

import (
	"time"

	"github.com/lifelogd/lifelogd/internal/logger"
	"github.com/lifelogd/lifelogd/internal/plugins"
	"github.com/lifelogd/lifelogd/internal/resolver"
	"github.com/lifelogd/lifelogd/internal/scheduler"
	"github.com/lifelogd/lifelogd/internal/store/sqlite"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Store     *sqlite.Store        // Event store (single events table)
	Resolver  *resolver.Facade     // life:// URI resolution with local fallback
	Registry  *plugins.Registry    // On-disk plugin descriptors
	Runner    *plugins.Runner      // Subprocess plugin invocation
	Scheduler *scheduler.Scheduler // Active cron triggers
}
