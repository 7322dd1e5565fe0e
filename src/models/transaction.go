package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/security/validation"
)

// Transaction is a single posted movement. A positive amount is income, a negative one an expense.
type Transaction struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	AccountID       int64           `json:"account_id"`
	TransactionDate Timestamp       `json:"transaction_date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Category        *string         `json:"category"`
	Merchant        *string         `json:"merchant"`
	Notes           *string         `json:"notes"`
	IsRecurring     bool            `json:"is_recurring"`
	CreatedAt       Timestamp       `json:"created_at"`
	UpdatedAt       Timestamp       `json:"updated_at"`
}

// IsIncome reports whether the amount is positive.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Validate rejects records missing required fields.
func (t Transaction) Validate() error {
	if err := validation.ValidateID(t.ID, "id"); err != nil {
		return err
	}
	if err := validateTransactionFields(t.UserID, t.AccountID, t.TransactionDate, t.Description, t.Category, t.Merchant, t.Notes); err != nil {
		return err
	}
	return validateAudit(t.CreatedAt, t.UpdatedAt)
}

// TransactionCreate is the body of POST /transactions.
type TransactionCreate struct {
	UserID          int64           `json:"user_id"`
	AccountID       int64           `json:"account_id"`
	TransactionDate Timestamp       `json:"transaction_date"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Category        *string         `json:"category,omitempty"`
	Merchant        *string         `json:"merchant,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	IsRecurring     bool            `json:"is_recurring"`
}

// Validate checks the payload before it is sent.
func (t TransactionCreate) Validate() error {
	return validateTransactionFields(t.UserID, t.AccountID, t.TransactionDate, t.Description, t.Category, t.Merchant, t.Notes)
}

func validateTransactionFields(userID, accountID int64, date Timestamp, description string, category, merchant, notes *string) error {
	if err := validation.ValidateID(userID, "user_id"); err != nil {
		return err
	}
	if err := validation.ValidateID(accountID, "account_id"); err != nil {
		return err
	}
	if err := validation.ValidateTimeSet(date.Time, "transaction_date"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(description, validation.MaxDescriptionLength, "description"); err != nil {
		return err
	}
	if err := validation.ValidateOptionalString(category, validation.DefaultMaxStringLength, "category"); err != nil {
		return err
	}
	if err := validation.ValidateOptionalString(merchant, validation.DefaultMaxStringLength, "merchant"); err != nil {
		return err
	}
	return validation.ValidateOptionalString(notes, validation.MaxDescriptionLength, "notes")
}
