package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/username/finapp/finsync/src/logger"
)

// SyncStatus is the connectivity summary shown to the user.
type SyncStatus struct {
	Connected    bool       `json:"connected"`
	PushEnabled  bool       `json:"push_enabled"`
	PushState    string     `json:"push_state"`
	PushError    string     `json:"push_error,omitempty"`
	LastSynced   *time.Time `json:"last_synced"`
	SyncError    string     `json:"sync_error,omitempty"`
	Published    uint64     `json:"published"`
	PollInterval string     `json:"poll_interval"`
}

// SyncService coordinates the two change channels. It owns the bus both of them
// publish into; push is optional and may be nil.
type SyncService struct {
	bus  *NotificationBus
	poll *PollService
	push *PushService
	log  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSyncService(bus *NotificationBus, poll *PollService, push *PushService) *SyncService {
	return &SyncService{
		bus:  bus,
		poll: poll,
		push: push,
		log:  logger.WithComponent("sync_service"),
	}
}

// Bus is the bus loaders subscribe to.
func (s *SyncService) Bus() *NotificationBus { return s.bus }

// Start launches the poll loop and, when configured, the push channel.
func (s *SyncService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.poll.Run(runCtx)
	}()

	if s.push != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = s.push.Run(runCtx)
		}()
	} else {
		s.log.Info("Push channel disabled, relying on polling only")
	}

	s.log.Info("Sync service started", "pollInterval", s.poll.Interval().String(), "pushEnabled", s.push != nil)
	return nil
}

// Stop cancels both channels and waits for them to exit.
func (s *SyncService) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return ErrNotStarted
	}

	cancel()
	s.wg.Wait()
	s.log.Info("Sync service stopped")
	return nil
}

// TriggerManualSync runs the same check-then-publish path as a poll tick, synchronously.
func (s *SyncService) TriggerManualSync(ctx context.Context) error {
	logger.FromContext(ctx).Info("Manual sync triggered")
	return s.poll.PollOnce(ctx, SourceManual)
}

// Status returns a snapshot of the connectivity state.
func (s *SyncService) Status() SyncStatus {
	st := SyncStatus{
		PushState:    PushDisconnected.String(),
		SyncError:    s.poll.LastError(),
		Published:    s.bus.Published(),
		PollInterval: s.poll.Interval().String(),
	}
	if last := s.poll.LastSynced(); !last.IsZero() {
		st.LastSynced = &last
	}
	if s.push != nil {
		st.PushEnabled = true
		st.PushState = s.push.State().String()
		st.PushError = s.push.LastError()
		st.Connected = s.push.Connected()
	}
	return st
}
