package loaders

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finapp/finsync/src/apiclient"
	"github.com/username/finapp/finsync/src/models"
	"github.com/username/finapp/finsync/src/services"
)

type fakeBackend struct {
	statsErr error
	txs      []models.Transaction
	userIDs  chan int64
	accounts atomic.Int32
}

func (b *fakeBackend) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	b.accounts.Add(1)
	return []models.Account{{ID: 1, UserID: userID, Name: "Checking"}}, nil
}

func (b *fakeBackend) ListTransactions(ctx context.Context, filter apiclient.TransactionFilter) ([]models.Transaction, error) {
	if b.userIDs != nil {
		b.userIDs <- filter.UserID
	}
	return b.txs, nil
}

func (b *fakeBackend) ListInvestments(ctx context.Context, userID int64) ([]models.Investment, error) {
	return []models.Investment{}, nil
}

func (b *fakeBackend) ListPayroll(ctx context.Context, userID int64) ([]models.PayrollRecord, error) {
	return []models.PayrollRecord{}, nil
}

func (b *fakeBackend) ListRetirementAccounts(ctx context.Context, userID int64) ([]models.RetirementAccount, error) {
	return []models.RetirementAccount{}, nil
}

func (b *fakeBackend) ListTaxRecords(ctx context.Context, userID int64) ([]models.TaxRecord, error) {
	return []models.TaxRecord{}, nil
}

func (b *fakeBackend) GetDashboardStats(ctx context.Context, userID int64) (*models.DashboardStats, error) {
	if b.statsErr != nil {
		return nil, b.statsErr
	}
	return &models.DashboardStats{TotalBalance: decimal.RequireFromString("1234.56")}, nil
}

func txOn(id int64, day int) models.Transaction {
	return models.Transaction{ID: id, TransactionDate: models.NewTimestamp(time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC))}
}

func TestRecentTransactions(t *testing.T) {
	txs := []models.Transaction{txOn(1, 1), txOn(2, 9), txOn(3, 4), txOn(4, 7), txOn(5, 2), txOn(6, 8), txOn(7, 3)}

	recent := RecentTransactions(txs, RecentTransactionsLimit)
	ids := []int64{}
	for _, tx := range recent {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []int64{2, 6, 4, 3, 7}, ids)
	assert.Equal(t, int64(1), txs[0].ID, "input is not reordered")

	assert.Empty(t, RecentTransactions(nil, 5))
}

func TestFetchDashboard(t *testing.T) {
	api := &fakeBackend{txs: []models.Transaction{txOn(1, 1), txOn(2, 2)}, userIDs: make(chan int64, 1)}

	data, err := FetchDashboard(api, 7)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), <-api.userIDs)
	assert.True(t, data.Stats.TotalBalance.Equal(decimal.RequireFromString("1234.56")))
	require.Len(t, data.RecentTransactions, 2)
	assert.Equal(t, int64(2), data.RecentTransactions[0].ID)

	api.statsErr = errors.New("stats unavailable")
	_, err = FetchDashboard(api, 7)(context.Background())
	assert.EqualError(t, err, "stats unavailable")
}

func TestRegistry(t *testing.T) {
	bus := services.NewNotificationBus()
	api := &fakeBackend{}
	reg := NewRegistry(api, bus, 1)

	assert.Equal(t, []string{"dashboard", "accounts", "transactions", "investments", "payroll", "retirement", "taxes"}, reg.Names())

	_, ok := reg.Get("settings")
	assert.False(t, ok)

	v, ok := reg.Get(ScreenAccounts)
	require.True(t, ok)
	require.NoError(t, v.Activate(context.Background()))
	st, ok := v.Snapshot().(State[[]models.Account])
	require.True(t, ok)
	assert.Len(t, st.Data, 1)

	bus.Publish(services.ChangeEvent{Source: services.SourceManual})
	require.Eventually(t, func() bool { return api.accounts.Load() == 2 }, time.Second, time.Millisecond)

	v2, _ := reg.Get(ScreenInvestments)
	require.NoError(t, v2.Activate(context.Background()))
	assert.Equal(t, 2, bus.Subscribers())

	reg.DeactivateAll()
	assert.Equal(t, 0, bus.Subscribers())
	assert.False(t, reg.Accounts.Active())
}
