package model

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSnapshotNotFound is returned when no snapshot has been saved for a screen yet.
var ErrSnapshotNotFound = errors.New("view snapshot not found")

// ViewSnapshot is the last successfully loaded payload of a screen, kept so the
// screen can show something on startup before its first fetch completes.
type ViewSnapshot struct {
	Screen  string
	UserID  int64
	Payload []byte // JSON encoded view data
	SavedAt time.Time
}

// SaveSnapshot inserts or replaces the snapshot of (screen, user).
func SaveSnapshot(db *sql.DB, s ViewSnapshot) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}
	query := `
	INSERT INTO view_snapshots (screen, user_id, payload, saved_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(screen, user_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`
	if _, err := db.Exec(query, s.Screen, s.UserID, s.Payload, s.SavedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("saving snapshot for screen %s: %w", s.Screen, err)
	}
	return nil
}

// GetSnapshot returns the saved snapshot of (screen, user) or ErrSnapshotNotFound.
func GetSnapshot(db *sql.DB, screen string, userID int64) (*ViewSnapshot, error) {
	var (
		s       ViewSnapshot
		savedAt string
	)
	err := db.QueryRow(`SELECT screen, user_id, payload, saved_at FROM view_snapshots WHERE screen = ? AND user_id = ?`, screen, userID).
		Scan(&s.Screen, &s.UserID, &s.Payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot for screen %s: %w", screen, err)
	}
	if s.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return nil, fmt.Errorf("snapshot for screen %s has invalid saved_at %q: %w", screen, savedAt, err)
	}
	return &s, nil
}

// DeleteSnapshots removes every snapshot of a user and returns how many were removed.
func DeleteSnapshots(db *sql.DB, userID int64) (int64, error) {
	res, err := db.Exec(`DELETE FROM view_snapshots WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
