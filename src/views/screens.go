package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/finapp/finsync/src/loaders"
	"github.com/username/finapp/finsync/src/models"
)

// ScreenView is one rendered screen plus the loader flags the UI needs.
type ScreenView struct {
	Screen   string     `json:"screen"`
	Loading  bool       `json:"loading"`
	Stale    bool       `json:"stale"`
	LoadedAt *time.Time `json:"loaded_at"`
	Error    string     `json:"error,omitempty"`
	Content  any        `json:"content"`
}

type StatCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type DashboardView struct {
	Stats              []StatCard            `json:"stats"`
	RecentTransactions Table[TransactionRow] `json:"recent_transactions"`
	Insights           EmptyState            `json:"insights"`
}

type AccountRow struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
	Status  string `json:"status"`
}

type TransactionRow struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Merchant    string    `json:"merchant,omitempty"`
	Amount      string    `json:"amount"`
	Direction   Direction `json:"direction"`
	Account     string    `json:"account"`
	Recurring   bool      `json:"recurring"`
}

type InvestmentRow struct {
	ID            int64     `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Quantity      string    `json:"quantity"`
	PurchasePrice string    `json:"purchase_price"`
	CurrentPrice  string    `json:"current_price"`
	GainLoss      string    `json:"gain_loss"`
	Direction     Direction `json:"direction"`
	Indicator     string    `json:"indicator"`
}

type PayrollRow struct {
	ID         int64  `json:"id"`
	Employer   string `json:"employer"`
	JobTitle   string `json:"job_title"`
	PayDate    string `json:"pay_date"`
	GrossPay   string `json:"gross_pay"`
	NetPay     string `json:"net_pay"`
	YTDGross   string `json:"ytd_gross"`
	Deductions string `json:"deductions"`
}

type RetirementRow struct {
	ID                int64  `json:"id"`
	AccountName       string `json:"account_name"`
	Type              string `json:"type"`
	Balance           string `json:"balance"`
	ContributionLimit string `json:"contribution_limit"`
	YTDContributions  string `json:"ytd_contributions"`
	Remaining         string `json:"remaining"`
	EmployerMatch     string `json:"employer_match"`
}

type TaxRow struct {
	ID            int64     `json:"id"`
	TaxYear       string    `json:"tax_year"`
	FilingStatus  string    `json:"filing_status"`
	GrossIncome   string    `json:"gross_income"`
	TaxableIncome string    `json:"taxable_income"`
	TotalTax      string    `json:"total_tax"`
	RefundOrOwed  string    `json:"refund_or_owed"`
	Direction     Direction `json:"direction"`
	Status        string    `json:"status"`
}

func accountRow(a models.Account) AccountRow {
	status := "✗ Inactive"
	if a.IsActive {
		status = "✓ Active"
	}
	return AccountRow{
		ID:      a.ID,
		Name:    Text(a.Name),
		Type:    a.AccountType.Label(),
		Balance: FormatCurrency(a.Balance),
		Status:  status,
	}
}

func transactionRow(t models.Transaction) TransactionRow {
	return TransactionRow{
		ID:          t.ID,
		Date:        FormatDate(t.TransactionDate),
		Description: Text(t.Description),
		Category:    OptionalText(t.Category, "Uncategorized"),
		Merchant:    OptionalText(t.Merchant, ""),
		Amount:      FormatAbsCurrency(t.Amount),
		Direction:   DirectionOf(t.Amount),
		Account:     "Account #" + strconv.FormatInt(t.AccountID, 10),
		Recurring:   t.IsRecurring,
	}
}

func investmentRow(i models.Investment) InvestmentRow {
	gain := i.GainLoss()
	dir := DirectionOf(gain)
	return InvestmentRow{
		ID:            i.ID,
		Symbol:        Text(i.Symbol),
		Name:          Text(i.Name),
		Type:          Humanize(string(i.InvestmentType)),
		Quantity:      FormatQuantity(i.Quantity),
		PurchasePrice: FormatCurrency(i.PurchasePrice),
		CurrentPrice:  FormatCurrency(i.CurrentPrice),
		GainLoss:      FormatAbsCurrency(gain),
		Direction:     dir,
		Indicator:     dir.Indicator(),
	}
}

func payrollRow(p models.PayrollRecord) PayrollRow {
	return PayrollRow{
		ID:         p.ID,
		Employer:   Text(p.EmployerName),
		JobTitle:   Text(p.JobTitle),
		PayDate:    FormatDate(p.PayDate),
		GrossPay:   FormatCurrency(p.GrossPay),
		NetPay:     FormatCurrency(p.NetPay),
		YTDGross:   FormatCurrency(p.YearToDateGross),
		Deductions: FormatCurrency(p.Deductions()),
	}
}

func retirementRow(r models.RetirementAccount) RetirementRow {
	return RetirementRow{
		ID:                r.ID,
		AccountName:       Text(r.AccountName),
		Type:              strings.ToUpper(Humanize(string(r.RetirementType))),
		Balance:           FormatCurrency(r.Balance),
		ContributionLimit: FormatCurrency(r.ContributionLimit),
		YTDContributions:  FormatCurrency(r.YearToDateContribution),
		Remaining:         FormatCurrency(r.RemainingContribution()),
		EmployerMatch:     FormatPercent(r.EmployerMatchPercent),
	}
}

func taxRow(t models.TaxRecord) TaxRow {
	status := "⏳ Pending"
	if t.Filed() {
		status = "✓ Filed"
	}
	return TaxRow{
		ID:            t.ID,
		TaxYear:       strconv.Itoa(t.TaxYear),
		FilingStatus:  Humanize(t.FilingStatus),
		GrossIncome:   FormatCurrency(t.GrossIncome),
		TaxableIncome: FormatCurrency(t.TaxableIncome),
		TotalTax:      FormatCurrency(t.TotalTax),
		RefundOrOwed:  FormatAbsCurrency(t.RefundOrOwed),
		Direction:     DirectionOf(t.RefundOrOwed),
		Status:        status,
	}
}

func Dashboard(d loaders.DashboardData, hasData bool) DashboardView {
	v := DashboardView{
		RecentTransactions: newTable(loaders.ScreenDashboard, d.RecentTransactions, transactionRow),
		Insights:           InsightsPlaceholder,
	}
	if hasData {
		v.Stats = []StatCard{
			{Title: "Total Balance", Value: FormatCurrency(d.Stats.TotalBalance)},
			{Title: "Monthly Income", Value: FormatCurrency(d.Stats.MonthlyIncome)},
			{Title: "Monthly Expenses", Value: FormatCurrency(d.Stats.MonthlyExpenses)},
			{Title: "Investment Value", Value: FormatCurrency(d.Stats.InvestmentValue)},
		}
	}
	return v
}

func Accounts(items []models.Account) Table[AccountRow] {
	return newTable(loaders.ScreenAccounts, items, accountRow)
}

func Transactions(items []models.Transaction) Table[TransactionRow] {
	return newTable(loaders.ScreenTransactions, items, transactionRow)
}

func Investments(items []models.Investment) Table[InvestmentRow] {
	return newTable(loaders.ScreenInvestments, items, investmentRow)
}

func Payroll(items []models.PayrollRecord) Table[PayrollRow] {
	return newTable(loaders.ScreenPayroll, items, payrollRow)
}

func Retirement(items []models.RetirementAccount) Table[RetirementRow] {
	return newTable(loaders.ScreenRetirement, items, retirementRow)
}

func Taxes(items []models.TaxRecord) Table[TaxRow] {
	return newTable(loaders.ScreenTaxes, items, taxRow)
}

func screenView[T any](screen string, st loaders.State[T], content any) ScreenView {
	return ScreenView{
		Screen:   screen,
		Loading:  st.Loading,
		Stale:    st.Stale,
		LoadedAt: st.LoadedAt,
		Error:    st.LastError,
		Content:  content,
	}
}

// Build renders the state returned by a loader's Snapshot.
func Build(screen string, snapshot any) (ScreenView, error) {
	switch st := snapshot.(type) {
	case loaders.State[loaders.DashboardData]:
		return screenView(screen, st, Dashboard(st.Data, st.HasData)), nil
	case loaders.State[[]models.Account]:
		return screenView(screen, st, Accounts(st.Data)), nil
	case loaders.State[[]models.Transaction]:
		return screenView(screen, st, Transactions(st.Data)), nil
	case loaders.State[[]models.Investment]:
		return screenView(screen, st, Investments(st.Data)), nil
	case loaders.State[[]models.PayrollRecord]:
		return screenView(screen, st, Payroll(st.Data)), nil
	case loaders.State[[]models.RetirementAccount]:
		return screenView(screen, st, Retirement(st.Data)), nil
	case loaders.State[[]models.TaxRecord]:
		return screenView(screen, st, Taxes(st.Data)), nil
	default:
		return ScreenView{}, fmt.Errorf("no view for screen %q (%T)", screen, snapshot)
	}
}
