// src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrValidationFailed is wrapped by every validator error.
var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxCurrencyCodeLength  = 3
	MaxSymbolLength        = 32
	MaxDescriptionLength   = 1024
)

var currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateRequiredString combines the not-empty and max-length checks.
func ValidateRequiredString(s string, maxLength int, fieldName string) error {
	if err := ValidateStringNotEmpty(s, fieldName); err != nil {
		return err
	}
	return ValidateStringMaxLength(s, maxLength, fieldName)
}

// ValidateOptionalString checks the length of a nullable string.
func ValidateOptionalString(s *string, maxLength int, fieldName string) error {
	if s == nil {
		return nil
	}
	return ValidateStringMaxLength(*s, maxLength, fieldName)
}

// ValidateID checks that a record identifier is positive.
func ValidateID(id int64, fieldName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be a positive identifier, got %d", ErrValidationFailed, fieldName, id)
	}
	return nil
}

// ValidateOneOf checks that value is one of the allowed enum members.
func ValidateOneOf(value string, allowed []string, fieldName string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s ('%s') must be one of [%s]", ErrValidationFailed, fieldName, value, strings.Join(allowed, ", "))
}

// ValidateCurrencyCode checks the currency code is 3 uppercase letters.
func ValidateCurrencyCode(s string) error {
	if err := ValidateStringNotEmpty(s, "currency"); err != nil {
		return err
	}
	if !currencyCodeRegex.MatchString(s) {
		return fmt.Errorf("%w: currency ('%s') is not in the expected format (3 uppercase letters)", ErrValidationFailed, s)
	}
	return nil
}

// ValidateTimeSet rejects zero timestamps, which only appear when a field was missing.
func ValidateTimeSet(t time.Time, fieldName string) error {
	if t.IsZero() {
		return fmt.Errorf("%w: %s is required", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateNonNegative rejects negative decimal amounts.
func ValidateNonNegative(d decimal.Decimal, fieldName string) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s cannot be negative, got %s", ErrValidationFailed, fieldName, d.String())
	}
	return nil
}

// ValidatePercentage checks 0 <= d <= 100.
func ValidatePercentage(d decimal.Decimal, fieldName string) error {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: %s must be between 0 and 100, got %s", ErrValidationFailed, fieldName, d.String())
	}
	return nil
}
