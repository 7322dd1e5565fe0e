package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finapp/finsync/src/security/validation"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvestmentGainLoss(t *testing.T) {
	inv := Investment{
		Quantity:      dec("10"),
		PurchasePrice: dec("100.00"),
		CurrentPrice:  dec("120.00"),
	}
	assert.True(t, inv.GainLoss().Equal(dec("200.00")), "got %s", inv.GainLoss())
	assert.True(t, inv.GainLoss().IsPositive())
	assert.True(t, inv.MarketValue().Equal(dec("1200")))

	inv.CurrentPrice = dec("95.50")
	assert.True(t, inv.GainLoss().Equal(dec("-45")), "got %s", inv.GainLoss())
}

func TestGainLossIsExactForFractionalQuantities(t *testing.T) {
	inv := Investment{
		Quantity:      dec("0.1"),
		PurchasePrice: dec("0.10"),
		CurrentPrice:  dec("0.30"),
	}
	// In binary floating point this is 0.020000000000000004.
	assert.Equal(t, "0.02", inv.GainLoss().String())
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-01T10:30:00Z":             time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		"2024-03-01T10:30:00.123456":       time.Date(2024, 3, 1, 10, 30, 0, 123456000, time.UTC),
		"2024-03-01T12:30:00+02:00":        time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		"2024-03-01":                       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"2024-03-01 10:30:00":              time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		"2024-03-01T10:30:00.000000+00:00": time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := ParseTimestamp(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got.Time), "%s: got %s", in, got.Time)
	}

	_, err := ParseTimestamp("03/01/2024")
	assert.Error(t, err)
}

func TestTimestampJSON(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T10:30:00"`), &ts))
	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T10:30:00Z"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`1709289000`), &ts))
}

const accountJSON = `{
	"id": 3,
	"user_id": 1,
	"institution_id": null,
	"name": "Everyday Checking",
	"account_type": "checking",
	"account_number": "****1234",
	"balance": "2500.75",
	"currency": "USD",
	"is_active": true,
	"created_at": "2024-01-10T08:00:00",
	"updated_at": "2024-02-11T09:15:30.5Z"
}`

func TestAccountRoundTrip(t *testing.T) {
	var a Account
	require.NoError(t, json.Unmarshal([]byte(accountJSON), &a))
	require.NoError(t, a.Validate())

	encoded, err := json.Marshal(a)
	require.NoError(t, err)

	var b Account
	require.NoError(t, json.Unmarshal(encoded, &b))

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.UserID, b.UserID)
	assert.Nil(t, b.InstitutionID)
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.AccountType, b.AccountType)
	require.NotNil(t, b.AccountNumber)
	assert.Equal(t, *a.AccountNumber, *b.AccountNumber)
	assert.True(t, a.Balance.Equal(b.Balance))
	assert.Equal(t, "2500.75", b.Balance.String())
	assert.Equal(t, a.Currency, b.Currency)
	assert.Equal(t, a.IsActive, b.IsActive)
	assert.True(t, a.CreatedAt.Equal(b.CreatedAt.Time))
	assert.True(t, a.UpdatedAt.Equal(b.UpdatedAt.Time))
	assert.Contains(t, string(encoded), `"balance":"2500.75"`, "money is encoded as a decimal string")

	// Round trips preserve the value, not the server's trailing zeros.
	var c Account
	require.NoError(t, json.Unmarshal([]byte(strings.Replace(accountJSON, `"2500.75"`, `"120.00"`, 1)), &c))
	encoded, err = json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"balance":"120"`)
	var d Account
	require.NoError(t, json.Unmarshal(encoded, &d))
	assert.True(t, c.Balance.Equal(d.Balance))
	assert.True(t, d.Balance.Equal(dec("120.00")))
}

func TestTransactionRoundTripAndSign(t *testing.T) {
	raw := `{"id":9,"user_id":1,"account_id":3,"transaction_date":"2024-02-01",
		"description":"Groceries","amount":-54.23,"category":"food","merchant":null,"notes":null,
		"is_recurring":false,"created_at":"2024-02-01T10:00:00","updated_at":"2024-02-01T10:00:00"}`
	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(raw), &tx))
	require.NoError(t, tx.Validate())
	assert.False(t, tx.IsIncome())
	assert.Equal(t, "-54.23", tx.Amount.String())

	encoded, err := json.Marshal(tx)
	require.NoError(t, err)
	var back Transaction
	require.NoError(t, json.Unmarshal(encoded, &back))
	assert.True(t, tx.Amount.Equal(back.Amount))
	assert.Equal(t, "food", *back.Category)
	assert.Nil(t, back.Merchant)
	assert.True(t, tx.TransactionDate.Equal(back.TransactionDate.Time))
}

func TestValidateRejectsIncompleteRecords(t *testing.T) {
	var a Account
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"user_id":1,"name":"x","account_type":"brokerage","currency":"USD"}`), &a))
	assert.ErrorIs(t, a.Validate(), validation.ErrValidationFailed)

	inv := Investment{ID: 1, UserID: 1, AccountID: 1, InvestmentType: InvestmentETF, Symbol: "VTI", Name: "Total Market"}
	assert.ErrorIs(t, inv.Validate(), validation.ErrValidationFailed, "purchase_date missing")

	tax := TaxRecord{ID: 1, UserID: 1, TaxYear: 2023, FilingStatus: "single"}
	assert.ErrorIs(t, tax.Validate(), validation.ErrValidationFailed, "audit timestamps missing")
}

func TestDashboardStatsRequiresAllFields(t *testing.T) {
	var s DashboardStats
	err := json.Unmarshal([]byte(`{"total_balance":"10.00","monthly_income":"1","monthly_expenses":"2"}`), &s)
	assert.ErrorIs(t, err, validation.ErrValidationFailed)

	err = json.Unmarshal([]byte(`{"total_balance":"10.00","monthly_income":"1","monthly_expenses":"2","investment_value":"3","extra":1}`), &s)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"total_balance":"10.00","monthly_income":1,"monthly_expenses":"2.5","investment_value":"3"}`), &s))
	assert.True(t, s.MonthlyExpenses.Equal(dec("2.5")))
}

func TestDerivedValues(t *testing.T) {
	p := PayrollRecord{GrossPay: dec("5000.00"), NetPay: dec("3712.40")}
	assert.True(t, p.Deductions().Equal(dec("1287.60")))

	r := RetirementAccount{ContributionLimit: dec("23000"), YearToDateContribution: dec("24000")}
	assert.True(t, r.RemainingContribution().IsZero())

	tr := TaxRecord{RefundOrOwed: dec("-120.00")}
	assert.False(t, tr.IsRefund())
	assert.False(t, tr.Filed())

	u := User{FirstName: "Ada", LastName: "Lovelace"}
	assert.Equal(t, "Ada Lovelace", u.FullName())
}
