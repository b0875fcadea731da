package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func testRecord(id string, kind Kind, createdAt time.Time) *Record {
	return &Record{
		ID:           id,
		Kind:         kind,
		SpecName:     "my-app",
		SpecKind:     "ApiService",
		Valid:        true,
		ErrorCount:   0,
		WarningCount: 1,
		InfoCount:    2,
		Summary:      "0 error(s), 1 warning(s), 3 change(s)",
		CreatedAt:    createdAt,
	}
}

func TestSQLiteStore_SaveAndRecent(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Now()

	records := []*Record{
		testRecord("rec-1", KindValidate, base.Add(-2*time.Hour)),
		testRecord("rec-2", KindDiff, base.Add(-1*time.Hour)),
		testRecord("rec-3", KindValidate, base),
	}
	for _, rec := range records {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save(%s) error = %v", rec.ID, err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d records, want 3", len(got))
	}

	wantOrder := []string{"rec-3", "rec-2", "rec-1"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("Recent()[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}

	newest := got[0]
	if newest.Kind != KindValidate {
		t.Errorf("Kind = %q, want %q", newest.Kind, KindValidate)
	}
	if newest.SpecName != "my-app" || newest.SpecKind != "ApiService" {
		t.Errorf("spec identity = %q/%q, want my-app/ApiService", newest.SpecName, newest.SpecKind)
	}
	if !newest.Valid {
		t.Error("Valid = false, want true")
	}
	if newest.WarningCount != 1 || newest.InfoCount != 2 {
		t.Errorf("counts = %d/%d, want 1/2", newest.WarningCount, newest.InfoCount)
	}
	if newest.Summary != "0 error(s), 1 warning(s), 3 change(s)" {
		t.Errorf("Summary = %q", newest.Summary)
	}
	if !newest.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", newest.CreatedAt, base)
	}
}

func TestSQLiteStore_RecentLimit(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		rec := testRecord(string(rune('a'+i)), KindValidate, base.Add(time.Duration(i)*time.Minute))
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d records, want 2", len(got))
	}
	if got[0].ID != "e" || got[1].ID != "d" {
		t.Errorf("Recent(2) IDs = %q, %q, want e, d", got[0].ID, got[1].ID)
	}
}

func TestSQLiteStore_Prune(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	now := time.Now()

	old1 := testRecord("old-1", KindValidate, now.Add(-100*24*time.Hour))
	old2 := testRecord("old-2", KindDiff, now.Add(-95*24*time.Hour))
	fresh := testRecord("fresh", KindValidate, now)
	for _, rec := range []*Record{old1, old2, fresh} {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	deleted, err := store.Prune(ctx, now.Add(-90*24*time.Hour))
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

func TestSQLiteStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "history.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	if err := store.Save(context.Background(), testRecord("rec", KindValidate, time.Now())); err != nil {
		t.Errorf("Save() error = %v", err)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := store.Save(ctx, testRecord("persisted", KindDiff, time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "persisted" {
		t.Errorf("reopened store returned %d records, want the persisted one", len(got))
	}
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
