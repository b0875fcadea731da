package schemafs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher reloads schema definitions on a cron schedule. It covers
// deployments where the schema directory is a mount refreshed out of
// band (no inotify events reach the process), so watching alone would
// miss updates.
type Refresher struct {
	schedule string
	reload   func() error
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRefresher creates a refresher that invokes reload on the given
// standard cron schedule. An empty schedule produces a refresher whose
// Start is a no-op.
func NewRefresher(schedule string, reload func() error, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Refresher{
		schedule: schedule,
		reload:   reload,
		cron:     cron.New(),
		logger:   logger.With("component", "schemafs.refresher"),
	}
}

// Start begins scheduled reloading. If the schedule is empty, nothing
// is scheduled and Start returns nil.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedule == "" {
		r.logger.Info("refresh schedule not configured, skipping refresher")
		return nil
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, r.runReload); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("schema refresher started", "schedule", r.schedule)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

func (r *Refresher) runReload() {
	r.logger.Debug("starting scheduled schema reload")

	if err := r.reload(); err != nil {
		r.logger.Error("scheduled schema reload failed", "error", err)
		return
	}
	r.logger.Info("scheduled schema reload completed")
}

// Stop stops the refresher and waits for any in-flight reload to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil && r.running {
		ctx := r.cron.Stop()
		<-ctx.Done()
		r.running = false
		r.logger.Info("schema refresher stopped")
	}
}

// IsRunning reports whether the refresher is scheduled and running.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// NextRun returns the next scheduled reload time, or nil when nothing
// is scheduled.
func (r *Refresher) NextRun() *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
