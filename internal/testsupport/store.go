package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"redub/internal/config"
	"redub/internal/runstore"
)

// MustOpenStore opens a runstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstore.Store {
	t.Helper()

	dbPath := filepath.Join(BaseDir(cfg), "run.db")
	store, err := runstore.Open(dbPath)
	if err != nil {
		t.Fatalf("runstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun creates a new run for tests using the provided store.
func NewRun(t testing.TB, store *runstore.Store, projectPath, mode string) *runstore.Run {
	t.Helper()

	run, err := store.CreateRun(context.Background(), projectPath, mode)
	if err != nil {
		t.Fatalf("store.CreateRun: %v", err)
	}
	return run
}
