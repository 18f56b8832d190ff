package index

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/tonote/internal/checksum"
	"github.com/starford/tonote/internal/models"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	ID        string
	ListID    string
	Title     string
	Body      string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	ListID  string `json:"list_id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RowFromNote builds the index row for n. The body is the note's text items
// joined by newlines; image and voice items are not searchable.
func RowFromNote(listID string, n *models.Note) NoteRow {
	var parts []string
	for _, item := range n.Items() {
		if text, ok := item.Text(); ok && strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	body := strings.Join(parts, "\n")
	return NoteRow{
		ID:        n.ID().String(),
		ListID:    listID,
		Title:     n.Title(),
		Body:      body,
		Checksum:  checksum.Fields(listID, n.Title(), body),
		UpdatedAt: n.LastModifiedAt(),
	}
}

// UpsertNote inserts or replaces a note and its FTS entry within a transaction.
func (db *DB) UpsertNote(n NoteRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (id, list_id, title, body, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			list_id    = excluded.list_id,
			title      = excluded.title,
			body       = excluded.body,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, n.ID, n.ListID, n.Title, n.Body, n.Checksum, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, n.ID, n.Title, n.Body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteNote removes a note and its FTS entry.
func (db *DB) DeleteNote(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return tx.Commit()
}

// DeleteList removes every note indexed under listID.
func (db *DB) DeleteList(listID string) error {
	rows, err := db.conn.Query(`SELECT id FROM notes WHERE list_id = ?`, listID)
	if err != nil {
		return fmt.Errorf("index: list notes: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		if err := db.DeleteNote(id); err != nil {
			return err
		}
	}
	return nil
}

// AllChecksums returns id -> checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
