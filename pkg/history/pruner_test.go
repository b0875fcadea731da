package history

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestPruner_PruneDeletesOldRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for _, rec := range []*Record{
		testRecord("ancient", KindValidate, now.Add(-200*24*time.Hour)),
		testRecord("expired", KindDiff, now.Add(-91*24*time.Hour)),
		testRecord("fresh", KindValidate, now.Add(-time.Hour)),
	} {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	pruner := NewPruner(store, 90, "", nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted %d records, want 2", deleted)
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("after prune got %d records, want just fresh", len(got))
	}
}

func TestPruner_ZeroRetentionKeepsEverything(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := testRecord("ancient", KindValidate, time.Now().Add(-1000*24*time.Hour))
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	pruner := NewPruner(store, 0, "", nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() deleted %d records, want 0", deleted)
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("store has %d records, want 1", len(got))
	}
}

func TestPruner_StartStop(t *testing.T) {
	pruner := NewPruner(NewMemoryStore(), 90, "0 3 * * *", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !pruner.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if pruner.NextRun() == nil {
		t.Error("NextRun() = nil for a scheduled pruner")
	}

	pruner.Stop()
	if pruner.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestPruner_EmptyScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(NewMemoryStore(), 90, "", nil)

	if err := pruner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if pruner.IsRunning() {
		t.Error("IsRunning() = true for an unscheduled pruner")
	}
}

func TestPruner_ZeroRetentionScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(NewMemoryStore(), 0, "0 3 * * *", nil)

	if err := pruner.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if pruner.IsRunning() {
		t.Error("IsRunning() = true with retention disabled")
	}
}

func TestPruner_InvalidSchedule(t *testing.T) {
	pruner := NewPruner(NewMemoryStore(), 90, "not a schedule", nil)

	err := pruner.Start(context.Background())
	if err == nil {
		t.Fatal("Start() with invalid schedule returned nil error")
	}
	if !strings.Contains(err.Error(), "invalid cron schedule") {
		t.Errorf("error = %q, want mention of invalid cron schedule", err)
	}
}
