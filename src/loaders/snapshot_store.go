package loaders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/username/finapp/finsync/src/model"
)

// ErrNoSnapshot is returned by SnapshotStore.Load when nothing was saved yet.
var ErrNoSnapshot = errors.New("no snapshot saved")

// SnapshotStore keeps the last successfully loaded payload of each screen.
type SnapshotStore interface {
	Load(ctx context.Context, screen string) ([]byte, time.Time, error)
	Save(ctx context.Context, screen string, payload []byte) error
}

type dbSnapshotStore struct {
	db     *sql.DB
	userID int64
}

// NewDBSnapshotStore stores snapshots of userID's screens in the view_snapshots table.
func NewDBSnapshotStore(db *sql.DB, userID int64) SnapshotStore {
	return &dbSnapshotStore{db: db, userID: userID}
}

func (s *dbSnapshotStore) Load(ctx context.Context, screen string) ([]byte, time.Time, error) {
	snap, err := model.GetSnapshot(s.db, screen, s.userID)
	if errors.Is(err, model.ErrSnapshotNotFound) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	return snap.Payload, snap.SavedAt, nil
}

func (s *dbSnapshotStore) Save(ctx context.Context, screen string, payload []byte) error {
	return model.SaveSnapshot(s.db, model.ViewSnapshot{
		Screen:  screen,
		UserID:  s.userID,
		Payload: payload,
		SavedAt: time.Now(),
	})
}
