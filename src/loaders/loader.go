// Package loaders keeps one piece of view state per screen fresh: fetch when the
// screen becomes active, refetch on every change event while it stays active.
package loaders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/services"
)

// DefaultFetchTimeout bounds a single fetch.
const DefaultFetchTimeout = 30 * time.Second

var (
	ErrInactive  = errors.New("loader is not active")
	ErrDiscarded = errors.New("fetch result discarded")
)

// Fetcher loads the data of one screen.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Subscriber is the subscribing half of the notification bus.
type Subscriber interface {
	Subscribe() *services.Subscription
}

// State is what a screen renders. Data stays visible while a refetch runs and
// after a failed one.
type State[T any] struct {
	Loading   bool       `json:"loading"`
	Data      T          `json:"data"`
	HasData   bool       `json:"has_data"`
	LoadedAt  *time.Time `json:"loaded_at"`
	Stale     bool       `json:"stale"`
	LastError string     `json:"last_error,omitempty"`
}

// View is the type-erased surface of a Loader used by the registry and handlers.
type View interface {
	Name() string
	Activate(ctx context.Context) error
	Deactivate()
	Active() bool
	Refresh(ctx context.Context) error
	Snapshot() any
}

type options struct {
	store        SnapshotStore
	fetchTimeout time.Duration
}

// Option configures a Loader.
type Option func(*options)

// WithSnapshotStore persists successful payloads and restores them on activation.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(o *options) { o.store = store }
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

// Loader owns the state of one screen.
//
// Fetches may overlap (a change event arriving during a slow fetch starts another
// one). Every fetch takes a sequence number when it starts and its result is applied
// only if no later-started fetch has been applied, so the screen never goes back to
// older data. Deactivate bumps the generation, which discards every result still in flight.
type Loader[T any] struct {
	name  string
	fetch Fetcher[T]
	bus   Subscriber
	opts  options
	log   *slog.Logger

	mu        sync.Mutex
	state     State[T]
	active    bool
	gen       uint64
	seq       uint64
	applied   uint64
	inflight  int
	cancel    context.CancelFunc
	sub       *services.Subscription
	listeners []func(State[T])

	// saveMu orders snapshot writes; savedSeq is the seq of the newest payload written.
	saveMu   sync.Mutex
	savedSeq uint64
}

func New[T any](name string, fetch Fetcher[T], bus Subscriber, opts ...Option) *Loader[T] {
	o := options{fetchTimeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[T]{
		name:  name,
		fetch: fetch,
		bus:   bus,
		opts:  o,
		log:   logger.WithComponent("loader").With("screen", name),
	}
}

func (l *Loader[T]) Name() string { return l.name }

// State returns a copy of the current state.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Snapshot is State as an untyped value.
func (l *Loader[T]) Snapshot() any { return l.State() }

func (l *Loader[T]) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// OnUpdate registers fn to be called after every state change. fn must not block.
func (l *Loader[T]) OnUpdate(fn func(State[T])) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *Loader[T]) notify(st State[T], listeners []func(State[T])) {
	for _, fn := range listeners {
		fn(st)
	}
}

// Activate subscribes to change events and runs the initial fetch, waiting for it
// until ctx is done. The loader keeps running after ctx is cancelled; only Deactivate stops it.
// Activating an active loader is a no-op.
func (l *Loader[T]) Activate(ctx context.Context) error {
	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return nil
	}
	l.active = true
	l.gen++
	gen := l.gen
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l.cancel = cancel
	l.sub = l.bus.Subscribe()
	sub := l.sub
	needSnapshot := !l.state.HasData && l.opts.store != nil
	l.mu.Unlock()

	l.log.Debug("Screen activated")
	if needSnapshot {
		l.restoreSnapshot(runCtx, gen)
	}

	go l.listen(runCtx, gen, sub)

	done := make(chan error, 1)
	go func() { done <- l.run(runCtx, gen) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deactivate unsubscribes and cancels in-flight fetches; their results are dropped.
// The last data is kept so a later Activate shows it while refetching.
func (l *Loader[T]) Deactivate() {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return
	}
	l.active = false
	l.gen++
	l.inflight = 0
	l.state.Loading = false
	cancel, sub := l.cancel, l.sub
	l.cancel, l.sub = nil, nil
	st, listeners := l.state, l.listeners
	l.mu.Unlock()

	cancel()
	sub.Unsubscribe()
	l.log.Debug("Screen deactivated")
	l.notify(st, listeners)
}

// Refresh runs one fetch synchronously.
func (l *Loader[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if !l.active {
		l.mu.Unlock()
		return ErrInactive
	}
	gen := l.gen
	l.mu.Unlock()
	return l.run(ctx, gen)
}

func (l *Loader[T]) listen(ctx context.Context, gen uint64, sub *services.Subscription) {
	for ev := range sub.C() {
		l.log.Debug("Change received, refetching", "source", ev.Source)
		go func() {
			if err := l.run(ctx, gen); err != nil && !errors.Is(err, ErrDiscarded) {
				l.log.Debug("Refetch did not update the screen", "error", err)
			}
		}()
	}
}

// run performs one fetch of generation gen and applies its result.
func (l *Loader[T]) run(ctx context.Context, gen uint64) error {
	l.mu.Lock()
	if !l.active || l.gen != gen {
		l.mu.Unlock()
		return ErrDiscarded
	}
	l.seq++
	seq := l.seq
	l.inflight++
	l.state.Loading = true
	st, listeners := l.state, l.listeners
	l.mu.Unlock()
	l.notify(st, listeners)

	fctx, cancel := context.WithTimeout(ctx, l.opts.fetchTimeout)
	start := time.Now()
	data, err := l.fetch(fctx)
	cancel()

	l.mu.Lock()
	if !l.active || l.gen != gen {
		l.mu.Unlock()
		l.log.Debug("Dropping result of a deactivated screen", "seq", seq)
		return ErrDiscarded
	}
	l.inflight--
	l.state.Loading = l.inflight > 0

	var (
		result  error
		persist bool
	)
	switch {
	case seq < l.applied:
		result = ErrDiscarded
		l.log.Debug("Dropping result older than the one shown", "seq", seq, "applied", l.applied)
	case err != nil:
		result = err
		l.state.LastError = err.Error()
		l.log.Warn("Fetch failed, keeping previous data", "error", err, "hasData", l.state.HasData)
	default:
		l.applied = seq
		now := time.Now()
		l.state.Data = data
		l.state.HasData = true
		l.state.LoadedAt = &now
		l.state.Stale = false
		l.state.LastError = ""
		persist = l.opts.store != nil
		l.log.Debug("Fetch applied", "seq", seq, "duration", time.Since(start).String())
	}
	st, listeners = l.state, l.listeners
	l.mu.Unlock()
	l.notify(st, listeners)

	if persist {
		l.saveSnapshot(ctx, seq, data)
	}
	return result
}

func (l *Loader[T]) restoreSnapshot(ctx context.Context, gen uint64) {
	payload, savedAt, err := l.opts.store.Load(ctx, l.name)
	if err != nil {
		if !errors.Is(err, ErrNoSnapshot) {
			l.log.Warn("Failed to load snapshot", "error", err)
		}
		return
	}
	var data T
	if err := json.Unmarshal(payload, &data); err != nil {
		l.log.Warn("Ignoring unreadable snapshot", "error", err)
		return
	}

	l.mu.Lock()
	if l.gen != gen || l.state.HasData {
		l.mu.Unlock()
		return
	}
	l.state.Data = data
	l.state.HasData = true
	l.state.LoadedAt = &savedAt
	l.state.Stale = true
	st, listeners := l.state, l.listeners
	l.mu.Unlock()

	l.log.Debug("Showing last known snapshot", "savedAt", savedAt)
	l.notify(st, listeners)
}

// saveSnapshot writes the payload of fetch seq unless a later-started fetch was already written.
func (l *Loader[T]) saveSnapshot(ctx context.Context, seq uint64, data T) {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()
	if seq <= l.savedSeq {
		l.log.Debug("Skipping snapshot older than the saved one", "seq", seq, "saved", l.savedSeq)
		return
	}
	l.savedSeq = seq

	payload, err := json.Marshal(data)
	if err != nil {
		l.log.Warn("Failed to encode snapshot", "error", err)
		return
	}
	if err := l.opts.store.Save(ctx, l.name, payload); err != nil {
		l.log.Warn("Failed to save snapshot", "error", err)
	}
}
