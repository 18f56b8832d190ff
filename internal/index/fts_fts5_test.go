//go:build sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes_fts`).Scan(&count); err != nil {
		t.Fatalf("notes_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := NoteRow{ID: "fts", ListID: "l", Title: "FTS Note", UpdatedAt: time.Now(),
		Body: "Voice notes sit next to powerful full-text search."}
	if err := db.UpsertNote(row); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "fts" || results[0].ListID != "l" {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_QuerySyntaxIsEscaped(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{ID: "q", ListID: "l", Title: "quotes", Body: `say "hello" AND bye`, UpdatedAt: time.Now()})
	if _, err := db.Search(`"hello AND (`, 10); err != nil {
		t.Errorf("Search with syntax characters: %v", err)
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{ID: "gone", ListID: "l", Body: "vanishing content", UpdatedAt: time.Now()})
	_ = db.DeleteNote("gone")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.ID == "gone" {
			t.Error("deleted note still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertNote(NoteRow{ID: "evo", ListID: "l", Title: "Old", Body: "original text", UpdatedAt: now})
	_ = db.UpsertNote(NoteRow{ID: "evo", ListID: "l", Title: "New", Body: "replacement text", UpdatedAt: now})

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "New" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
