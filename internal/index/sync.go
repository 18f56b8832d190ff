package index

import (
	"log/slog"

	"github.com/starford/tonote/internal/models"
)

// Sync brings the index up to date with store:
//   - new/changed notes are upserted
//   - notes no longer in the store are deleted from the index
//
// It returns the number of notes written.
func Sync(db NoteIndex, store *models.DataStore, logger *slog.Logger) (int, error) {
	checksums, err := db.AllChecksums()
	if err != nil {
		return 0, err
	}

	written := 0
	live := make(map[string]struct{})
	for _, l := range store.NoteLists() {
		listID := l.ID().String()
		for _, n := range l.Notes() {
			row := RowFromNote(listID, n)
			live[row.ID] = struct{}{}
			if checksums[row.ID] == row.Checksum {
				continue
			}
			if err := db.UpsertNote(row); err != nil {
				logger.Warn("sync: index failed", slog.String("note_id", row.ID), slog.String("error", err.Error()))
				continue
			}
			written++
			logger.Debug("sync: indexed", slog.String("note_id", row.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := live[id]; !ok {
			if err := db.DeleteNote(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("note_id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("note_id", id))
			}
		}
	}

	return written, nil
}
