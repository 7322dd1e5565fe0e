package services

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/username/finapp/finsync/src/logger"
)

// ChangeSource says which channel noticed a possible change.
type ChangeSource string

const (
	SourcePush   ChangeSource = "push"
	SourcePoll   ChangeSource = "poll"
	SourceManual ChangeSource = "manual"
)

// ChangeEvent signals "data may have changed". It carries no resource information;
// subscribers decide what to refetch.
type ChangeEvent struct {
	Source ChangeSource `json:"source"`
	At     time.Time    `json:"at"`
}

// NotificationBus fans change events out to every subscriber. It is owned by the
// SyncService and passed to whoever needs to publish or subscribe.
type NotificationBus struct {
	mu        sync.RWMutex
	subs      map[uuid.UUID]*Subscription
	published atomic.Uint64
	log       *slog.Logger
}

// Subscription is one subscriber's view of the bus.
type Subscription struct {
	id   uuid.UUID
	ch   chan ChangeEvent
	bus  *NotificationBus
	once sync.Once
}

func NewNotificationBus() *NotificationBus {
	return &NotificationBus{
		subs: make(map[uuid.UUID]*Subscription),
		log:  logger.WithComponent("notification_bus"),
	}
}

// Subscribe registers a new subscriber. Call Unsubscribe when done with it.
func (b *NotificationBus) Subscribe() *Subscription {
	s := &Subscription{
		id:  uuid.New(),
		ch:  make(chan ChangeEvent, 1),
		bus: b,
	}
	b.mu.Lock()
	b.subs[s.id] = s
	n := len(b.subs)
	b.mu.Unlock()

	b.log.Debug("Subscriber added", "subscriptionID", s.id, "subscribers", n)
	return s
}

// Publish never blocks. Each subscriber holds at most one pending event, so an
// event published while another is still pending is merged into it.
func (b *NotificationBus) Publish(ev ChangeEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.published.Add(1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for _, s := range b.subs {
		select {
		case s.ch <- ev:
			delivered++
		default:
		}
	}
	b.log.Debug("Change published", "source", ev.Source, "subscribers", len(b.subs), "delivered", delivered)
}

// Published returns how many times Publish has been called.
func (b *NotificationBus) Published() uint64 {
	return b.published.Load()
}

// Subscribers returns the current number of subscribers.
func (b *NotificationBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (s *Subscription) ID() uuid.UUID { return s.id }

// C delivers change events. It is closed by Unsubscribe.
func (s *Subscription) C() <-chan ChangeEvent { return s.ch }

// Unsubscribe removes the subscription and closes its channel. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		close(s.ch)
		n := len(s.bus.subs)
		s.bus.mu.Unlock()
		s.bus.log.Debug("Subscriber removed", "subscriptionID", s.id, "subscribers", n)
	})
}
