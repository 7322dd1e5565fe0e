package models

import (
	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/security/validation"
)

// InvestmentType classifies a holding.
type InvestmentType string

const (
	InvestmentStock      InvestmentType = "stock"
	InvestmentBond       InvestmentType = "bond"
	InvestmentMutualFund InvestmentType = "mutual_fund"
	InvestmentETF        InvestmentType = "etf"
	InvestmentCrypto     InvestmentType = "crypto"
	InvestmentRealEstate InvestmentType = "real_estate"
	InvestmentCommodity  InvestmentType = "commodity"
	InvestmentOther      InvestmentType = "other"
)

var investmentTypes = []string{
	string(InvestmentStock), string(InvestmentBond), string(InvestmentMutualFund), string(InvestmentETF),
	string(InvestmentCrypto), string(InvestmentRealEstate), string(InvestmentCommodity), string(InvestmentOther),
}

// Investment is a position held in an account.
type Investment struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	AccountID      int64           `json:"account_id"`
	InvestmentType InvestmentType  `json:"investment_type"`
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	PurchaseDate   Timestamp       `json:"purchase_date"`
	Notes          *string         `json:"notes"`
	CreatedAt      Timestamp       `json:"created_at"`
	UpdatedAt      Timestamp       `json:"updated_at"`
}

// GainLoss is (current price - purchase price) * quantity. It is derived for display only.
func (i Investment) GainLoss() decimal.Decimal {
	return i.CurrentPrice.Sub(i.PurchasePrice).Mul(i.Quantity)
}

// MarketValue is current price * quantity.
func (i Investment) MarketValue() decimal.Decimal {
	return i.CurrentPrice.Mul(i.Quantity)
}

// Validate rejects records missing required fields.
func (i Investment) Validate() error {
	if err := validation.ValidateID(i.ID, "id"); err != nil {
		return err
	}
	if err := validation.ValidateID(i.UserID, "user_id"); err != nil {
		return err
	}
	if err := validation.ValidateID(i.AccountID, "account_id"); err != nil {
		return err
	}
	if err := validation.ValidateOneOf(string(i.InvestmentType), investmentTypes, "investment_type"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(i.Symbol, validation.MaxSymbolLength, "symbol"); err != nil {
		return err
	}
	if err := validation.ValidateRequiredString(i.Name, validation.DefaultMaxStringLength, "name"); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative(i.Quantity, "quantity"); err != nil {
		return err
	}
	if err := validation.ValidateTimeSet(i.PurchaseDate.Time, "purchase_date"); err != nil {
		return err
	}
	return validateAudit(i.CreatedAt, i.UpdatedAt)
}
