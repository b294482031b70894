package plugins

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/lifelogd/lifelogd/internal/domain"
	"github.com/lifelogd/lifelogd/internal/logger"
)

// runInput is what a plugin executable reads on stdin.
type runInput struct {
	Config map[string]any `json:"config"`
	Args   []string       `json:"args"`
}

// RunResult is the captured outcome of a successful plugin invocation.
type RunResult struct {
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

// Runner invokes plugin executables as isolated subprocesses. A crashing
// or hung plugin only ever affects its own invocation.
type Runner struct {
	registry *Registry
	logger   logger.Logger
}

func NewRunner(registry *Registry, log logger.Logger) *Runner {
	return &Runner{
		registry: registry,
		logger:   log,
	}
}

// Run executes the plugin's `run` file with the descriptor config and the
// supplied args marshaled to JSON on stdin, and captures combined output.
// A non-zero exit yields a PluginExecutionError carrying the exit code and
// error output. lastRun is stamped on completion either way; a failure to
// stamp it is logged, never propagated.
func (r *Runner) Run(ctx context.Context, d *Descriptor, args []string) (*RunResult, error) {
	input, err := json.Marshal(runInput{Config: d.Config, Args: args})
	if err != nil {
		return nil, fmt.Errorf("marshal plugin input: %w", err)
	}

	dir := r.registry.Dir(d.ID)
	cmd := exec.CommandContext(ctx, filepath.Join(dir, RunFile))
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(input)

	var combined, stderr bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = io.MultiWriter(&combined, &stderr)

	runErr := cmd.Run()

	defer func() {
		if err := r.registry.TouchLastRun(d.ID); err != nil {
			r.logger.Warn("failed to record plugin lastRun",
				logger.String("plugin", d.ID),
				logger.Error(err))
		}
	}()

	if runErr != nil {
		exitCode := -1
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		r.appendLog(d.ID, fmt.Sprintf("run failed (exit %d): %s", exitCode, strings.TrimSpace(stderr.String())))
		return nil, &domain.PluginExecutionError{
			PluginID: d.ID,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
		}
	}

	r.appendLog(d.ID, "run succeeded")
	return &RunResult{
		Output:   combined.String(),
		ExitCode: 0,
	}, nil
}

func (r *Runner) appendLog(id, line string) {
	if err := r.registry.AppendLog(id, line); err != nil {
		r.logger.Warn("failed to append plugin log",
			logger.String("plugin", id),
			logger.Error(err))
	}
}
