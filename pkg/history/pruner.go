package history

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner enforces the retention policy on a history store. Prune runs
// on demand or on a cron schedule via Start.
type Pruner struct {
	store         Store
	retentionDays int
	schedule      string
	cron          *cron.Cron
	logger        *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewPruner creates a pruner that deletes records older than
// retentionDays. A retention of zero keeps records forever. An empty
// schedule produces a pruner whose Start is a no-op.
func NewPruner(store Store, retentionDays int, schedule string, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pruner{
		store:         store,
		retentionDays: retentionDays,
		schedule:      schedule,
		cron:          cron.New(),
		logger:        logger.With("component", "history.pruner"),
	}
}

// Prune deletes records older than the retention period and returns the
// number of records removed. With retention disabled it does nothing.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.retentionDays)

	deleted, err := p.store.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune by age failed: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("pruned run records",
			"deleted_count", deleted,
			"retention_days", p.retentionDays,
		)
	} else {
		p.logger.Debug("no records pruned",
			"retention_days", p.retentionDays,
		)
	}

	return deleted, nil
}

// Start begins scheduled pruning. If the schedule is empty or retention
// is disabled, nothing is scheduled and Start returns nil.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" || p.retentionDays <= 0 {
		p.logger.Info("retention not configured, skipping pruner")
		return nil
	}

	if _, err := cron.ParseStandard(p.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.schedule, err)
	}

	if _, err := p.cron.AddFunc(p.schedule, p.runPrune); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("history pruner started",
		"schedule", p.schedule,
		"retention_days", p.retentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

func (p *Pruner) runPrune() {
	p.logger.Debug("starting scheduled history pruning")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := p.Prune(ctx); err != nil {
		p.logger.Error("scheduled history pruning failed", "error", err)
	}
}

// Stop stops the pruner and waits for any in-flight pruning to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil && p.running {
		ctx := p.cron.Stop()
		<-ctx.Done()
		p.running = false
		p.logger.Info("history pruner stopped")
	}
}

// IsRunning reports whether the pruner is scheduled and running.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// NextRun returns the next scheduled pruning time, or nil when nothing
// is scheduled.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
