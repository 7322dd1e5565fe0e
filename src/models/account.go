package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/security/validation"
)

// AccountType classifies an account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountInvestment AccountType = "investment"
	AccountLoan       AccountType = "loan"
	// Ledger types, also emitted by the backend.
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

var accountTypes = []string{
	string(AccountChecking), string(AccountSavings), string(AccountCreditCard),
	string(AccountInvestment), string(AccountLoan), string(AccountAsset),
	string(AccountLiability), string(AccountEquity), string(AccountRevenue), string(AccountExpense),
}

// Label is the human readable name of the type.
func (t AccountType) Label() string {
	switch t {
	case AccountChecking:
		return "Checking"
	case AccountSavings:
		return "Savings"
	case AccountCreditCard:
		return "Credit Card"
	case AccountInvestment:
		return "Investment"
	case AccountLoan:
		return "Loan"
	case AccountAsset:
		return "Asset"
	case AccountLiability:
		return "Liability"
	case AccountEquity:
		return "Equity"
	case AccountRevenue:
		return "Revenue"
	case AccountExpense:
		return "Expense"
	}
	return string(t)
}

// Account is a bank, card, brokerage or loan account. Balance is authoritative on the server.
type Account struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	InstitutionID *int64          `json:"institution_id"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"account_type"`
	AccountNumber *string         `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     Timestamp       `json:"created_at"`
	UpdatedAt     Timestamp       `json:"updated_at"`
}

// Validate rejects records missing required fields.
func (a Account) Validate() error {
	if err := validation.ValidateID(a.ID, "id"); err != nil {
		return err
	}
	if err := validation.ValidateID(a.UserID, "user_id"); err != nil {
		return err
	}
	if err := validateAccountFields(a.Name, a.AccountType, a.Currency); err != nil {
		return err
	}
	return validateAudit(a.CreatedAt, a.UpdatedAt)
}

// AccountCreate is the body of POST /accounts.
type AccountCreate struct {
	UserID        int64           `json:"user_id"`
	InstitutionID *int64          `json:"institution_id,omitempty"`
	Name          string          `json:"name"`
	AccountType   AccountType     `json:"account_type"`
	AccountNumber *string         `json:"account_number,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	IsActive      bool            `json:"is_active"`
}

// Validate checks the payload before it is sent.
func (a AccountCreate) Validate() error {
	if err := validation.ValidateID(a.UserID, "user_id"); err != nil {
		return err
	}
	return validateAccountFields(a.Name, a.AccountType, a.Currency)
}

func validateAccountFields(name string, accountType AccountType, currency string) error {
	if err := validation.ValidateRequiredString(name, validation.DefaultMaxStringLength, "name"); err != nil {
		return err
	}
	if err := validation.ValidateOneOf(string(accountType), accountTypes, "account_type"); err != nil {
		return err
	}
	return validation.ValidateCurrencyCode(currency)
}
