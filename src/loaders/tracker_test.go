package loaders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finapp/finsync/src/services"
)

func TestTrackerActivatesOnFirstView(t *testing.T) {
	reg := NewRegistry(&fakeBackend{}, services.NewNotificationBus(), 1)
	tr := NewScreenTracker(reg, time.Minute)
	defer tr.ReleaseAll()

	v, activated, err := tr.Touch(context.Background(), ScreenTaxes)
	require.NoError(t, err)
	assert.True(t, activated)
	assert.True(t, v.Active())

	_, activated, err = tr.Touch(context.Background(), ScreenTaxes)
	require.NoError(t, err)
	assert.False(t, activated)
	assert.Equal(t, []string{ScreenTaxes}, tr.ActiveScreens())

	_, _, err = tr.Touch(context.Background(), "settings")
	assert.ErrorIs(t, err, ErrUnknownScreen)
}

func TestTrackerReleaseDeactivates(t *testing.T) {
	reg := NewRegistry(&fakeBackend{}, services.NewNotificationBus(), 1)
	tr := NewScreenTracker(reg, time.Minute)

	_, _, err := tr.Touch(context.Background(), ScreenPayroll)
	require.NoError(t, err)
	tr.Release(ScreenPayroll)

	assert.False(t, reg.Payroll.Active())
	assert.Empty(t, tr.ActiveScreens())
}

func TestTrackerIdleScreensExpire(t *testing.T) {
	bus := services.NewNotificationBus()
	reg := NewRegistry(&fakeBackend{}, bus, 1)
	tr := NewScreenTracker(reg, 20*time.Millisecond)

	_, _, err := tr.Touch(context.Background(), ScreenRetirement)
	require.NoError(t, err)
	require.True(t, reg.Retirement.Active())

	require.Eventually(t, func() bool { return !reg.Retirement.Active() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, bus.Subscribers())
}
