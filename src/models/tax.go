package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/security/validation"
)

var filingStatuses = []string{"single", "married_filing_jointly", "married_filing_separately", "head_of_household"}

// TaxRecord summarizes one filed (or pending) tax year.
type TaxRecord struct {
	ID                  int64           `json:"id"`
	UserID              int64           `json:"user_id"`
	TaxYear             int             `json:"tax_year"`
	FilingStatus        string          `json:"filing_status"`
	GrossIncome         decimal.Decimal `json:"gross_income"`
	AdjustedGrossIncome decimal.Decimal `json:"adjusted_gross_income"`
	TaxableIncome       decimal.Decimal `json:"taxable_income"`
	TotalTax            decimal.Decimal `json:"total_tax"`
	FederalWithholding  decimal.Decimal `json:"federal_withholding"`
	StateWithholding    decimal.Decimal `json:"state_withholding"`
	RefundOrOwed        decimal.Decimal `json:"refund_or_owed"`
	FilingDate          *Timestamp      `json:"filing_date"`
	Notes               *string         `json:"notes"`
	CreatedAt           Timestamp       `json:"created_at"`
	UpdatedAt           Timestamp       `json:"updated_at"`
}

// Validate rejects records missing required fields.
func (t TaxRecord) Validate() error {
	if err := validation.ValidateID(t.ID, "id"); err != nil {
		return err
	}
	if err := validation.ValidateID(t.UserID, "user_id"); err != nil {
		return err
	}
	if err := validation.ValidateID(int64(t.TaxYear), "tax_year"); err != nil {
		return err
	}
	if err := validation.ValidateOneOf(t.FilingStatus, filingStatuses, "filing_status"); err != nil {
		return err
	}
	return validateAudit(t.CreatedAt, t.UpdatedAt)
}

// IsRefund reports whether refund_or_owed is in the user's favour.
func (t TaxRecord) IsRefund() bool {
	return !t.RefundOrOwed.IsNegative()
}

// Filed reports whether a filing date is recorded.
func (t TaxRecord) Filed() bool {
	return t.FilingDate != nil && !t.FilingDate.IsZero()
}
