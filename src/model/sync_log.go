package model

import (
	"database/sql"
	"fmt"
	"time"
)

// SyncLogEntry records one health-check sync attempt (poll tick or manual trigger).
type SyncLogEntry struct {
	ID       int64     `json:"id"`
	Source   string    `json:"source"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	SyncedAt time.Time `json:"synced_at"`
}

// InsertSyncLog appends an entry and sets its ID.
func InsertSyncLog(db *sql.DB, e *SyncLogEntry) error {
	if e.SyncedAt.IsZero() {
		e.SyncedAt = time.Now()
	}
	res, err := db.Exec(`INSERT INTO sync_log (source, success, error, synced_at) VALUES (?, ?, ?, ?)`,
		e.Source, e.Success, e.Error, e.SyncedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting sync log entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	return err
}

// ListRecentSyncLogs returns up to limit entries, newest first.
func ListRecentSyncLogs(db *sql.DB, limit int) ([]SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`SELECT id, source, success, error, synced_at FROM sync_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []SyncLogEntry{}
	for rows.Next() {
		var (
			e        SyncLogEntry
			syncedAt string
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Success, &e.Error, &syncedAt); err != nil {
			return nil, err
		}
		if e.SyncedAt, err = time.Parse(time.RFC3339Nano, syncedAt); err != nil {
			return nil, fmt.Errorf("sync log entry %d has invalid synced_at %q: %w", e.ID, syncedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneSyncLog keeps only the newest keep entries.
func PruneSyncLog(db *sql.DB, keep int) (int64, error) {
	res, err := db.Exec(`DELETE FROM sync_log WHERE id NOT IN (SELECT id FROM sync_log ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
