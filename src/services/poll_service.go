package services

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/model"
)

// DefaultPollInterval is how often the poll loop checks the backend.
const DefaultPollInterval = 30 * time.Second

// PollService is the timer-driven fallback channel. Every successful health check
// is treated as "possibly changed"; it does not try to detect actual changes.
type PollService struct {
	checker  HealthChecker
	bus      Publisher
	recorder SyncRecorder
	interval time.Duration
	now      func() time.Time
	log      *slog.Logger

	mu         sync.RWMutex
	lastSynced time.Time
	lastError  string
}

// NewPollService creates the poll loop. recorder may be nil.
func NewPollService(checker HealthChecker, bus Publisher, interval time.Duration, recorder SyncRecorder) *PollService {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollService{
		checker:  checker,
		bus:      bus,
		recorder: recorder,
		interval: interval,
		now:      time.Now,
		log:      logger.WithComponent("poll_service"),
	}
}

// Run ticks until ctx is cancelled. The first check happens one interval after start.
func (p *PollService) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("Poll loop started", "interval", p.interval.String())
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Poll loop stopped")
			return
		case <-ticker.C:
			_ = p.PollOnce(ctx, SourcePoll)
		}
	}
}

// PollOnce runs one health check. On success it records the sync time, clears the
// error and publishes exactly one event; on failure it records the error and publishes nothing.
func (p *PollService) PollOnce(ctx context.Context, source ChangeSource) error {
	err := p.checker.CheckHealth(ctx)
	at := p.now()

	p.mu.Lock()
	if err != nil {
		p.lastError = err.Error()
	} else {
		p.lastSynced = at
		p.lastError = ""
	}
	p.mu.Unlock()

	if p.recorder != nil {
		if recErr := p.recorder.RecordSync(ctx, source, err, at); recErr != nil {
			p.log.Warn("Failed to record sync attempt", "source", source, "error", recErr)
		}
	}

	if err != nil {
		p.log.Warn("Health check failed", "source", source, "error", err)
		return err
	}
	p.bus.Publish(ChangeEvent{Source: source, At: at})
	return nil
}

// LastSynced returns the time of the last successful check, zero if none.
func (p *PollService) LastSynced() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSynced
}

// LastError returns the error of the last check, empty after a success.
func (p *PollService) LastError() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastError
}

// Interval returns the configured tick interval.
func (p *PollService) Interval() time.Duration {
	return p.interval
}

// dbSyncRecorder writes sync attempts to the sync_log table.
type dbSyncRecorder struct {
	db   *sql.DB
	keep int
}

// NewDBSyncRecorder returns a SyncRecorder that keeps the newest keep entries in db.
func NewDBSyncRecorder(db *sql.DB, keep int) SyncRecorder {
	return &dbSyncRecorder{db: db, keep: keep}
}

func (r *dbSyncRecorder) RecordSync(ctx context.Context, source ChangeSource, syncErr error, at time.Time) error {
	entry := model.SyncLogEntry{Source: string(source), Success: syncErr == nil, SyncedAt: at}
	if syncErr != nil {
		entry.Error = syncErr.Error()
	}
	if err := model.InsertSyncLog(r.db, &entry); err != nil {
		return err
	}
	if r.keep > 0 && entry.ID%int64(r.keep) == 0 {
		if n, err := model.PruneSyncLog(r.db, r.keep); err != nil {
			logger.FromContext(ctx).Warn("Failed to prune sync log", "error", err)
		} else if n > 0 {
			logger.FromContext(ctx).Debug("Pruned sync log", "removed", n)
		}
	}
	return nil
}
