package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/security/validation"
)

// DashboardStats is the server-side aggregate shown on the dashboard. The client treats it as opaque.
type DashboardStats struct {
	TotalBalance    decimal.Decimal `json:"total_balance"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
	InvestmentValue decimal.Decimal `json:"investment_value"`
}

// UnmarshalJSON requires all four aggregates so a partial payload is never shown as zeros.
func (s *DashboardStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		TotalBalance    *decimal.Decimal `json:"total_balance"`
		MonthlyIncome   *decimal.Decimal `json:"monthly_income"`
		MonthlyExpenses *decimal.Decimal `json:"monthly_expenses"`
		InvestmentValue *decimal.Decimal `json:"investment_value"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	fields := map[string]*decimal.Decimal{
		"total_balance":    raw.TotalBalance,
		"monthly_income":   raw.MonthlyIncome,
		"monthly_expenses": raw.MonthlyExpenses,
		"investment_value": raw.InvestmentValue,
	}
	for name, v := range fields {
		if v == nil {
			return fmt.Errorf("%w: %s is required", validation.ErrValidationFailed, name)
		}
	}
	*s = DashboardStats{
		TotalBalance:    *raw.TotalBalance,
		MonthlyIncome:   *raw.MonthlyIncome,
		MonthlyExpenses: *raw.MonthlyExpenses,
		InvestmentValue: *raw.InvestmentValue,
	}
	return nil
}

// Validate has nothing left to check once decoding succeeded.
func (DashboardStats) Validate() error {
	return nil
}
