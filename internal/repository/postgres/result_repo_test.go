package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/freeeve/entangled/internal/model"
)

func TestResultRepo_BufferBoundedWhenWritesFail(t *testing.T) {
	// A closed pool fails every write without a server.
	db, err := sql.Open("postgres", "postgres://localhost/entangled?sslmode=disable")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Close()

	repo := NewResultRepo(db)
	repo.SetBatchSize(2)
	repo.SetMaxPending(5)

	ctx := context.Background()
	failures := 0
	for i := range 12 {
		if err := repo.RecordGameResult(ctx, model.GameRecord{ID: fmt.Sprint(i)}); err != nil {
			failures++
		}
	}
	if failures != 11 {
		t.Errorf("expected every full buffer to fail writing, got %d failures", failures)
	}
	if got := repo.Pending(); got != 5 {
		t.Errorf("pending = %d, want 5", got)
	}
	if got := repo.Dropped(); got != 7 {
		t.Errorf("dropped = %d, want 7", got)
	}

	// The newest results are the ones kept.
	repo.mu.Lock()
	first, last := repo.pending[0].ID, repo.pending[len(repo.pending)-1].ID
	repo.mu.Unlock()
	if first != "7" || last != "11" {
		t.Errorf("kept %s..%s, want 7..11", first, last)
	}

	if err := repo.Flush(ctx); err == nil {
		t.Error("expected flush on a closed pool to fail")
	}
	if got := repo.Pending(); got != 5 {
		t.Errorf("pending after failed flush = %d, want 5", got)
	}
}
