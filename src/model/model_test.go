package model

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/username/finapp/finsync/src/database"
)

type StoreSuite struct {
	suite.Suite
	db *sql.DB
}

func (s *StoreSuite) SetupTest() {
	db, err := database.Open(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(db))
	s.db = db
}

func (s *StoreSuite) TearDownTest() {
	s.db.Close()
}

func (s *StoreSuite) TestSnapshotUpsert() {
	_, err := GetSnapshot(s.db, "accounts", 1)
	s.ErrorIs(err, ErrSnapshotNotFound)

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(SaveSnapshot(s.db, ViewSnapshot{Screen: "accounts", UserID: 1, Payload: []byte(`[1]`), SavedAt: first}))
	s.Require().NoError(SaveSnapshot(s.db, ViewSnapshot{Screen: "accounts", UserID: 1, Payload: []byte(`[1,2]`), SavedAt: first.Add(time.Minute)}))

	got, err := GetSnapshot(s.db, "accounts", 1)
	s.Require().NoError(err)
	s.Equal(`[1,2]`, string(got.Payload))
	s.True(got.SavedAt.Equal(first.Add(time.Minute)))

	_, err = GetSnapshot(s.db, "accounts", 2)
	s.ErrorIs(err, ErrSnapshotNotFound, "snapshots are per user")
}

func (s *StoreSuite) TestDeleteSnapshots() {
	s.Require().NoError(SaveSnapshot(s.db, ViewSnapshot{Screen: "accounts", UserID: 1, Payload: []byte(`[]`)}))
	s.Require().NoError(SaveSnapshot(s.db, ViewSnapshot{Screen: "taxes", UserID: 1, Payload: []byte(`[]`)}))
	s.Require().NoError(SaveSnapshot(s.db, ViewSnapshot{Screen: "taxes", UserID: 2, Payload: []byte(`[]`)}))

	n, err := DeleteSnapshots(s.db, 1)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = GetSnapshot(s.db, "taxes", 2)
	s.NoError(err)
}

func (s *StoreSuite) TestSyncLogNewestFirst() {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, src := range []string{"poll", "manual", "poll"} {
		e := SyncLogEntry{Source: src, Success: i != 1, SyncedAt: base.Add(time.Duration(i) * time.Second)}
		if i == 1 {
			e.Error = "GET /health: unexpected status 503"
		}
		s.Require().NoError(InsertSyncLog(s.db, &e))
		s.Positive(e.ID)
	}

	entries, err := ListRecentSyncLogs(s.db, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("poll", entries[0].Source)
	s.True(entries[0].Success)
	s.Equal("manual", entries[1].Source)
	s.False(entries[1].Success)
	s.Contains(entries[1].Error, "503")
	s.True(entries[1].SyncedAt.Equal(base.Add(time.Second)))
}

func (s *StoreSuite) TestPruneSyncLog() {
	for i := 0; i < 5; i++ {
		s.Require().NoError(InsertSyncLog(s.db, &SyncLogEntry{Source: "poll", Success: true}))
	}
	n, err := PruneSyncLog(s.db, 3)
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	entries, err := ListRecentSyncLogs(s.db, 0)
	s.Require().NoError(err)
	s.Len(entries, 3)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
