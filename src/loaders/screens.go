package loaders

import (
	"context"
	"sort"

	"github.com/username/finapp/finsync/src/apiclient"
	"github.com/username/finapp/finsync/src/models"
	"golang.org/x/sync/errgroup"
)

// Screen names, also used as snapshot keys and in the local API.
const (
	ScreenDashboard    = "dashboard"
	ScreenAccounts     = "accounts"
	ScreenTransactions = "transactions"
	ScreenInvestments  = "investments"
	ScreenPayroll      = "payroll"
	ScreenRetirement   = "retirement"
	ScreenTaxes        = "taxes"
)

// RecentTransactionsLimit is how many transactions the dashboard shows.
const RecentTransactionsLimit = 5

// Backend is the part of the API client the screens read from.
type Backend interface {
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	ListTransactions(ctx context.Context, filter apiclient.TransactionFilter) ([]models.Transaction, error)
	ListInvestments(ctx context.Context, userID int64) ([]models.Investment, error)
	ListPayroll(ctx context.Context, userID int64) ([]models.PayrollRecord, error)
	ListRetirementAccounts(ctx context.Context, userID int64) ([]models.RetirementAccount, error)
	ListTaxRecords(ctx context.Context, userID int64) ([]models.TaxRecord, error)
	GetDashboardStats(ctx context.Context, userID int64) (*models.DashboardStats, error)
}

// DashboardData is the dashboard screen: server aggregates plus the latest transactions.
type DashboardData struct {
	Stats              models.DashboardStats `json:"stats"`
	RecentTransactions []models.Transaction  `json:"recent_transactions"`
}

// FetchDashboard loads stats and transactions concurrently; either failing fails the fetch.
func FetchDashboard(api Backend, userID int64) Fetcher[DashboardData] {
	return func(ctx context.Context) (DashboardData, error) {
		var (
			stats *models.DashboardStats
			txs   []models.Transaction
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			stats, err = api.GetDashboardStats(gctx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			txs, err = api.ListTransactions(gctx, apiclient.TransactionFilter{UserID: userID})
			return err
		})
		if err := g.Wait(); err != nil {
			return DashboardData{}, err
		}
		return DashboardData{Stats: *stats, RecentTransactions: RecentTransactions(txs, RecentTransactionsLimit)}, nil
	}
}

// RecentTransactions returns the n most recent transactions, newest first.
func RecentTransactions(txs []models.Transaction, n int) []models.Transaction {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TransactionDate.After(sorted[j].TransactionDate.Time)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Registry holds one loader per screen. It is immutable after NewRegistry.
type Registry struct {
	Dashboard    *Loader[DashboardData]
	Accounts     *Loader[[]models.Account]
	Transactions *Loader[[]models.Transaction]
	Investments  *Loader[[]models.Investment]
	Payroll      *Loader[[]models.PayrollRecord]
	Retirement   *Loader[[]models.RetirementAccount]
	Taxes        *Loader[[]models.TaxRecord]

	views map[string]View
	order []string
}

// NewRegistry builds the loaders of every screen for userID.
func NewRegistry(api Backend, bus Subscriber, userID int64, opts ...Option) *Registry {
	r := &Registry{
		Dashboard: New(ScreenDashboard, FetchDashboard(api, userID), bus, opts...),
		Accounts: New[[]models.Account](ScreenAccounts, func(ctx context.Context) ([]models.Account, error) {
			return api.ListAccounts(ctx, userID)
		}, bus, opts...),
		Transactions: New[[]models.Transaction](ScreenTransactions, func(ctx context.Context) ([]models.Transaction, error) {
			return api.ListTransactions(ctx, apiclient.TransactionFilter{UserID: userID})
		}, bus, opts...),
		Investments: New[[]models.Investment](ScreenInvestments, func(ctx context.Context) ([]models.Investment, error) {
			return api.ListInvestments(ctx, userID)
		}, bus, opts...),
		Payroll: New[[]models.PayrollRecord](ScreenPayroll, func(ctx context.Context) ([]models.PayrollRecord, error) {
			return api.ListPayroll(ctx, userID)
		}, bus, opts...),
		Retirement: New[[]models.RetirementAccount](ScreenRetirement, func(ctx context.Context) ([]models.RetirementAccount, error) {
			return api.ListRetirementAccounts(ctx, userID)
		}, bus, opts...),
		Taxes: New[[]models.TaxRecord](ScreenTaxes, func(ctx context.Context) ([]models.TaxRecord, error) {
			return api.ListTaxRecords(ctx, userID)
		}, bus, opts...),
		views: make(map[string]View),
	}
	for _, v := range []View{r.Dashboard, r.Accounts, r.Transactions, r.Investments, r.Payroll, r.Retirement, r.Taxes} {
		r.views[v.Name()] = v
		r.order = append(r.order, v.Name())
	}
	return r
}

// Get returns the loader of a screen.
func (r *Registry) Get(screen string) (View, bool) {
	v, ok := r.views[screen]
	return v, ok
}

// Names lists the screens in display order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// DeactivateAll stops every active loader.
func (r *Registry) DeactivateAll() {
	for _, name := range r.Names() {
		if v, ok := r.Get(name); ok {
			v.Deactivate()
		}
	}
}
