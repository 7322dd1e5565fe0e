package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/security/validation"
)

// RetirementType is the tax wrapper of a retirement account.
type RetirementType string

const (
	RetirementIRATraditional  RetirementType = "ira_traditional"
	RetirementIRARoth         RetirementType = "ira_roth"
	Retirement401kTraditional RetirementType = "401k_traditional"
	Retirement401kRoth        RetirementType = "401k_roth"
	Retirement403b            RetirementType = "403b"
	Retirement457             RetirementType = "457"
	RetirementSEPIRA          RetirementType = "sep_ira"
	RetirementSimpleIRA       RetirementType = "simple_ira"
	RetirementPension         RetirementType = "pension"
	RetirementOther           RetirementType = "other"
)

var retirementTypes = []string{
	string(RetirementIRATraditional), string(RetirementIRARoth), string(Retirement401kTraditional),
	string(Retirement401kRoth), string(Retirement403b), string(Retirement457), string(RetirementSEPIRA),
	string(RetirementSimpleIRA), string(RetirementPension), string(RetirementOther),
}

// RetirementAccount tracks balance and contributions of a retirement plan.
type RetirementAccount struct {
	ID                     int64            `json:"id"`
	UserID                 int64            `json:"user_id"`
	AccountID              int64            `json:"account_id"`
	RetirementType         RetirementType   `json:"retirement_type"`
	AccountName            string           `json:"account_name"`
	Balance                decimal.Decimal  `json:"balance"`
	ContributionLimit      decimal.Decimal  `json:"contribution_limit"`
	YearToDateContribution decimal.Decimal  `json:"year_to_date_contribution"`
	EmployerMatchPercent   *decimal.Decimal `json:"employer_match_percent"`
	VestingPercentage      decimal.Decimal  `json:"vesting_percentage"`
	Beneficiary            *string          `json:"beneficiary"`
	Notes                  *string          `json:"notes"`
	CreatedAt              Timestamp        `json:"created_at"`
	UpdatedAt              Timestamp        `json:"updated_at"`
}

// Validate rejects records missing required fields.
func (r RetirementAccount) Validate() error {
	if err := validation.ValidateID(r.ID, "id"); err != nil {
		return err
	}
	if err := validation.ValidateID(r.UserID, "user_id"); err != nil {
		return err
	}
	if err := validation.ValidateID(r.AccountID, "account_id"); err != nil {
		return err
	}
	if err := validation.ValidateOneOf(string(r.RetirementType), retirementTypes, "retirement_type"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(r.AccountName, validation.DefaultMaxStringLength, "account_name"); err != nil {
		return err
	}
	if err := validation.ValidatePercentage(r.VestingPercentage, "vesting_percentage"); err != nil {
		return err
	}
	if r.EmployerMatchPercent != nil {
		if err := validation.ValidatePercentage(*r.EmployerMatchPercent, "employer_match_percent"); err != nil {
			return err
		}
	}
	return validateAudit(r.CreatedAt, r.UpdatedAt)
}

// RemainingContribution is the contribution room left this year, never negative.
func (r RetirementAccount) RemainingContribution() decimal.Decimal {
	left := r.ContributionLimit.Sub(r.YearToDateContribution)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}
