package loaders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/finapp/finsync/src/logger"
)

// ErrUnknownScreen is returned for a screen name the registry does not have.
var ErrUnknownScreen = errors.New("unknown screen")

// ScreenTracker scopes each loader's subscription to the time its screen is being viewed.
// Viewing a screen activates its loader and refreshes an idle TTL; when the TTL
// expires the loader is deactivated.
type ScreenTracker struct {
	registry *Registry
	active   *cache.Cache
	mu       sync.Mutex
}

// NewScreenTracker deactivates screens idle for longer than idle, checking every idle/2.
func NewScreenTracker(registry *Registry, idle time.Duration) *ScreenTracker {
	if idle <= 0 {
		idle = 5 * time.Minute
	}
	t := &ScreenTracker{
		registry: registry,
		active:   cache.New(idle, idle/2),
	}
	t.active.OnEvicted(func(screen string, _ interface{}) {
		if v, ok := registry.Get(screen); ok {
			logger.L.Info("Screen idle, deactivating loader", "screen", screen)
			v.Deactivate()
		}
	})
	return t
}

// Touch marks screen as viewed, activating its loader on first view. The returned
// bool reports whether this call activated it.
func (t *ScreenTracker) Touch(ctx context.Context, screen string) (View, bool, error) {
	v, ok := t.registry.Get(screen)
	if !ok {
		return nil, false, ErrUnknownScreen
	}

	t.mu.Lock()
	_, tracked := t.active.Get(screen)
	t.active.SetDefault(screen, time.Now())
	t.mu.Unlock()

	if tracked && v.Active() {
		return v, false, nil
	}
	err := v.Activate(ctx)
	return v, true, err
}

// Release deactivates a screen right away.
func (t *ScreenTracker) Release(screen string) {
	t.active.Delete(screen)
}

// ActiveScreens lists the screens currently tracked as viewed.
func (t *ScreenTracker) ActiveScreens() []string {
	items := t.active.Items()
	out := make([]string, 0, len(items))
	for _, name := range t.registry.Names() {
		if _, ok := items[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// ReleaseAll deactivates every tracked screen.
func (t *ScreenTracker) ReleaseAll() {
	for screen := range t.active.Items() {
		t.active.Delete(screen)
	}
}
