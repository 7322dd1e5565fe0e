package views

import "github.com/username/finapp/finsync/src/loaders"

// EmptyState is shown instead of a table when a collection has no rows.
type EmptyState struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

var emptyStates = map[string]EmptyState{
	loaders.ScreenDashboard:    {Icon: "💳", Title: "No recent transactions", Message: "Your recent transactions will appear here"},
	loaders.ScreenAccounts:     {Icon: "🏦", Title: "No accounts yet", Message: "Add your first account to get started"},
	loaders.ScreenTransactions: {Icon: "💳", Title: "No transactions yet", Message: "Add your first transaction to start tracking"},
	loaders.ScreenInvestments:  {Icon: "📈", Title: "No investments yet", Message: "Add your first investment to start tracking your portfolio"},
	loaders.ScreenPayroll:      {Icon: "💼", Title: "No payroll records yet", Message: "Add your first payroll record to track income and deductions"},
	loaders.ScreenRetirement:   {Icon: "🏖️", Title: "No retirement accounts yet", Message: "Add your first retirement account to start planning for the future"},
	loaders.ScreenTaxes:        {Icon: "📋", Title: "No tax records yet", Message: "Add your first tax record to track filings and obligations"},
}

// InsightsPlaceholder fills the dashboard's insights card.
var InsightsPlaceholder = EmptyState{Icon: "📊", Title: "Insights coming soon", Message: "AI-powered insights about your finances will appear here"}

// EmptyStateFor returns the empty state of a screen's main collection.
func EmptyStateFor(screen string) (EmptyState, bool) {
	es, ok := emptyStates[screen]
	return es, ok
}

// Table is either a list of rows or, when there are none, an empty state. Never both.
type Table[R any] struct {
	Rows  []R         `json:"rows,omitempty"`
	Empty *EmptyState `json:"empty_state,omitempty"`
}

func newTable[E, R any](screen string, items []E, row func(E) R) Table[R] {
	if len(items) == 0 {
		es := emptyStates[screen]
		return Table[R]{Empty: &es}
	}
	rows := make([]R, 0, len(items))
	for _, it := range items {
		rows = append(rows, row(it))
	}
	return Table[R]{Rows: rows}
}

// IsEmpty reports whether the table shows its empty state.
func (t Table[R]) IsEmpty() bool { return t.Empty != nil }
