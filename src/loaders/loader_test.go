package loaders

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finapp/finsync/src/database"
	"github.com/username/finapp/finsync/src/model"
	"github.com/username/finapp/finsync/src/services"
)

// gatedFetcher returns "v<n>" for the n-th call. Calls listed in gates block until
// their gate is closed.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	gates   map[int]chan struct{}
	errs    map[int]error
	started chan int
	ctxErrs chan error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates:   map[int]chan struct{}{},
		errs:    map[int]error{},
		started: make(chan int, 16),
		ctxErrs: make(chan error, 16),
	}
}

func (f *gatedFetcher) gate(n int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[n] = ch
	return ch
}

func (f *gatedFetcher) fail(n int, err error) {
	f.mu.Lock()
	f.errs[n] = err
	f.mu.Unlock()
}

func (f *gatedFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *gatedFetcher) fetch(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	gate := f.gates[n]
	err := f.errs[n]
	f.mu.Unlock()

	f.started <- n
	if gate != nil {
		<-gate
		f.ctxErrs <- ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return "v" + string(rune('0'+n)), nil
}

func TestActivateFetchesOnce(t *testing.T) {
	bus := services.NewNotificationBus()
	f := newGatedFetcher()
	l := New("accounts", f.fetch, bus)

	require.NoError(t, l.Activate(context.Background()))
	defer l.Deactivate()

	st := l.State()
	assert.True(t, st.HasData)
	assert.Equal(t, "v1", st.Data)
	assert.False(t, st.Loading)
	assert.False(t, st.Stale)
	assert.NotNil(t, st.LoadedAt)
	assert.Equal(t, 1, f.count())
	assert.Equal(t, 1, bus.Subscribers())

	require.NoError(t, l.Activate(context.Background()), "activating twice is a no-op")
	assert.Equal(t, 1, f.count())
}

func TestChangeEventRefetches(t *testing.T) {
	bus := services.NewNotificationBus()
	f := newGatedFetcher()
	l := New("accounts", f.fetch, bus)
	require.NoError(t, l.Activate(context.Background()))
	defer l.Deactivate()

	bus.Publish(services.ChangeEvent{Source: services.SourcePush})
	require.Eventually(t, func() bool { return l.State().Data == "v2" }, time.Second, time.Millisecond)
}

func TestNewerStartedFetchWins(t *testing.T) {
	bus := services.NewNotificationBus()
	f := newGatedFetcher()
	l := New("accounts", f.fetch, bus)
	require.NoError(t, l.Activate(context.Background()))
	defer l.Deactivate()

	slow := f.gate(2)
	slowDone := make(chan error, 1)
	go func() { slowDone <- l.Refresh(context.Background()) }()
	require.Equal(t, 1, <-f.started)
	require.Equal(t, 2, <-f.started)
	assert.True(t, l.State().Loading, "refetch in flight")
	assert.Equal(t, "v1", l.State().Data, "previous data stays visible during refetch")

	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, "v3", l.State().Data)
	assert.True(t, l.State().Loading, "slow fetch is still running")

	close(slow)
	assert.ErrorIs(t, <-slowDone, ErrDiscarded)
	st := l.State()
	assert.Equal(t, "v3", st.Data, "an older fetch finishing late does not overwrite newer data")
	assert.False(t, st.Loading)
}

func TestFailureKeepsPreviousData(t *testing.T) {
	bus := services.NewNotificationBus()
	f := newGatedFetcher()
	l := New("accounts", f.fetch, bus)
	require.NoError(t, l.Activate(context.Background()))
	defer l.Deactivate()

	f.fail(2, errors.New("GET /api/v1/accounts: unexpected status 500"))
	err := l.Refresh(context.Background())
	require.Error(t, err)

	st := l.State()
	assert.Equal(t, "v1", st.Data)
	assert.True(t, st.HasData)
	assert.Contains(t, st.LastError, "500")

	require.NoError(t, l.Refresh(context.Background()))
	assert.Empty(t, l.State().LastError)
	assert.Equal(t, "v3", l.State().Data)
}

func TestInitialFailureLeavesNoData(t *testing.T) {
	f := newGatedFetcher()
	f.fail(1, errors.New("connection refused"))
	l := New("taxes", f.fetch, services.NewNotificationBus())

	assert.Error(t, l.Activate(context.Background()))
	defer l.Deactivate()
	st := l.State()
	assert.False(t, st.HasData)
	assert.False(t, st.Loading)
	assert.Equal(t, "connection refused", st.LastError)
	assert.True(t, l.Active(), "a failed first fetch keeps the screen subscribed")
}

func TestDeactivateCancelsAndDiscards(t *testing.T) {
	bus := services.NewNotificationBus()
	f := newGatedFetcher()
	l := New("accounts", f.fetch, bus)
	require.NoError(t, l.Activate(context.Background()))
	<-f.started

	gate := f.gate(2)
	bus.Publish(services.ChangeEvent{Source: services.SourcePoll})
	require.Equal(t, 2, <-f.started)

	l.Deactivate()
	assert.False(t, l.Active())
	assert.Equal(t, 0, bus.Subscribers())

	close(gate)
	assert.ErrorIs(t, <-f.ctxErrs, context.Canceled, "in-flight fetch is cancelled")

	time.Sleep(20 * time.Millisecond)
	st := l.State()
	assert.Equal(t, "v1", st.Data, "late result is dropped")
	assert.False(t, st.Loading)

	bus.Publish(services.ChangeEvent{Source: services.SourcePoll})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, f.count(), "no refetch while inactive")
	assert.ErrorIs(t, l.Refresh(context.Background()), ErrInactive)
}

func TestOnUpdateSeesEveryChange(t *testing.T) {
	f := newGatedFetcher()
	l := New("accounts", f.fetch, services.NewNotificationBus())

	var (
		mu     sync.Mutex
		states []State[string]
	)
	l.OnUpdate(func(st State[string]) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	require.NoError(t, l.Activate(context.Background()))
	l.Deactivate()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 3)
	assert.True(t, states[0].Loading)
	assert.Equal(t, "v1", states[1].Data)
	assert.False(t, states[2].Loading)
}

func TestSnapshotShownUntilFirstFetch(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.RunMigrations(db))
	store := NewDBSnapshotStore(db, 1)

	saved := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, model.SaveSnapshot(db, model.ViewSnapshot{Screen: "accounts", UserID: 1, Payload: []byte(`"from disk"`), SavedAt: saved}))

	f := newGatedFetcher()
	f.fail(1, errors.New("offline"))
	l := New("accounts", f.fetch, services.NewNotificationBus(), WithSnapshotStore(store))

	assert.Error(t, l.Activate(context.Background()))
	st := l.State()
	assert.Equal(t, "from disk", st.Data)
	assert.True(t, st.Stale)
	require.NotNil(t, st.LoadedAt)
	assert.True(t, saved.Equal(*st.LoadedAt))

	require.NoError(t, l.Refresh(context.Background()))
	assert.False(t, l.State().Stale)
	l.Deactivate()

	payload, _, err := store.Load(context.Background(), "accounts")
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, string(payload), "successful fetches are persisted")

	_, _, err = store.Load(context.Background(), "taxes")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

// recordingStore keeps every saved payload in order. The first Save blocks until release is closed.
type recordingStore struct {
	mu      sync.Mutex
	saved   []string
	entered chan struct{}
	release chan struct{}
}

func (s *recordingStore) Load(ctx context.Context, screen string) ([]byte, time.Time, error) {
	return nil, time.Time{}, ErrNoSnapshot
}

func (s *recordingStore) Save(ctx context.Context, screen string, payload []byte) error {
	s.mu.Lock()
	first := len(s.saved) == 0 && s.entered != nil
	s.mu.Unlock()
	if first {
		close(s.entered)
		<-s.release
	}
	s.mu.Lock()
	s.saved = append(s.saved, string(payload))
	s.mu.Unlock()
	return nil
}

func (s *recordingStore) payloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved...)
}

func TestSlowSnapshotSaveIsNotOverwrittenByOlderData(t *testing.T) {
	store := &recordingStore{entered: make(chan struct{}), release: make(chan struct{})}
	f := newGatedFetcher()
	l := New("accounts", f.fetch, services.NewNotificationBus(), WithSnapshotStore(store))
	defer l.Deactivate()

	activated := make(chan error, 1)
	go func() { activated <- l.Activate(context.Background()) }()
	<-store.entered

	refreshed := make(chan error, 1)
	go func() { refreshed <- l.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return l.State().Data == "v2" }, time.Second, time.Millisecond)

	close(store.release)
	require.NoError(t, <-activated)
	require.NoError(t, <-refreshed)

	saved := store.payloads()
	require.NotEmpty(t, saved)
	assert.Equal(t, `"v2"`, saved[len(saved)-1], "the newest data is the one left on disk")
	assert.Equal(t, []string{`"v1"`, `"v2"`}, saved)
	assert.Equal(t, "v2", l.State().Data)
}

func TestActivateReturnsWhenCallerGivesUp(t *testing.T) {
	f := newGatedFetcher()
	gate := f.gate(1)
	l := New("accounts", f.fetch, services.NewNotificationBus())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Activate(ctx), context.DeadlineExceeded)
	assert.True(t, l.Active())

	close(gate)
	assert.NoError(t, <-f.ctxErrs, "the fetch outlives the caller's context")
	require.Eventually(t, func() bool { return l.State().HasData }, time.Second, time.Millisecond)
	l.Deactivate()
}

func TestFetchTimeout(t *testing.T) {
	var sawDeadline atomic.Bool
	l := New("accounts", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		sawDeadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return 0, ctx.Err()
	}, services.NewNotificationBus(), WithFetchTimeout(10*time.Millisecond))

	assert.ErrorIs(t, l.Activate(context.Background()), context.DeadlineExceeded)
	assert.True(t, sawDeadline.Load())
	l.Deactivate()
}
