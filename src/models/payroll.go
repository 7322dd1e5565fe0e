package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/security/validation"
)

// PayrollRecord is one pay stub for a job.
type PayrollRecord struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	EmployerName    string          `json:"employer_name"`
	JobTitle        string          `json:"job_title"`
	PayPeriodStart  Timestamp       `json:"pay_period_start"`
	PayPeriodEnd    Timestamp       `json:"pay_period_end"`
	PayDate         Timestamp       `json:"pay_date"`
	GrossPay        decimal.Decimal `json:"gross_pay"`
	NetPay          decimal.Decimal `json:"net_pay"`
	YearToDateGross decimal.Decimal `json:"year_to_date_gross"`
	YearToDateNet   decimal.Decimal `json:"year_to_date_net"`
	Notes           *string         `json:"notes"`
	CreatedAt       Timestamp       `json:"created_at"`
	UpdatedAt       Timestamp       `json:"updated_at"`
}

// Validate rejects records missing required fields.
func (p PayrollRecord) Validate() error {
	if err := validation.ValidateID(p.ID, "id"); err != nil {
		return err
	}
	if err := validation.ValidateID(p.UserID, "user_id"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(p.EmployerName, validation.DefaultMaxStringLength, "employer_name"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(p.JobTitle, validation.DefaultMaxStringLength, "job_title"); err != nil {
		return err
	}
	for name, ts := range map[string]Timestamp{
		"pay_period_start": p.PayPeriodStart,
		"pay_period_end":   p.PayPeriodEnd,
		"pay_date":         p.PayDate,
	} {
		if err := validation.ValidateTimeSet(ts.Time, name); err != nil {
			return err
		}
	}
	return validateAudit(p.CreatedAt, p.UpdatedAt)
}

// Deductions is gross minus net pay.
func (p PayrollRecord) Deductions() decimal.Decimal {
	return p.GrossPay.Sub(p.NetPay)
}
