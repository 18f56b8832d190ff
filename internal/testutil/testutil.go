// Package testutil provides shared test helpers for setting up search indexes,
// scratch directories and seeded note stores.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/tonote/internal/index"
	"github.com/starford/tonote/internal/models"
	"github.com/starford/tonote/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates an isolated in-memory search index that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open("tonote-test-" + uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeededStore returns the demo store, indexed into db.
func SeededStore(t *testing.T, db index.NoteIndex) *models.DataStore {
	t.Helper()
	store := models.NewSeededDataStore()
	if _, err := index.Sync(db, store, Logger()); err != nil {
		t.Fatal(err)
	}
	return store
}

// TestScratch creates a temporary scratch directory with a storage.Provider.
func TestScratch(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}
