// Package views turns loader state into display-ready view models.
package views

import (
	"html"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/username/finapp/finsync/src/logger"
	"github.com/username/finapp/finsync/src/models"
	"github.com/username/finapp/finsync/src/security/validation"
)

// DateLayout is how dates are shown.
const DateLayout = "Jan 2, 2006"

// Direction of a signed amount. Zero counts as up.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Indicator is the arrow shown next to an amount.
func (d Direction) Indicator() string {
	if d == Down {
		return "↓"
	}
	return "↑"
}

// DirectionOf returns Down for negative values and Up otherwise.
func DirectionOf(d decimal.Decimal) Direction {
	if d.IsNegative() {
		return Down
	}
	return Up
}

// FormatCurrency renders a dollar amount with thousands separators and exactly two
// fraction digits: $1,234.56 or -$12.50. Rounding happens here and nowhere else.
func FormatCurrency(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + "$" + groupThousands(rounded.Abs().StringFixed(2))
}

// FormatAbsCurrency is FormatCurrency of |d|, for columns where color or an arrow carries the sign.
func FormatAbsCurrency(d decimal.Decimal) string {
	return FormatCurrency(d.Abs())
}

// FormatQuantity renders a quantity with two fraction digits.
func FormatQuantity(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatPercent renders an optional percentage, "N/A" when absent.
func FormatPercent(d *decimal.Decimal) string {
	if d == nil {
		return "N/A"
	}
	return d.String() + "%"
}

// FormatDate renders a timestamp as a calendar date in UTC, empty when unset.
func FormatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(DateLayout)
}

// FormatOptionalDate is FormatDate for nullable timestamps.
func FormatOptionalDate(ts *models.Timestamp) string {
	if ts == nil {
		return ""
	}
	return FormatDate(*ts)
}

// Text sanitizes free text coming from the backend before display. Text carrying
// a script vector, raw or entity-encoded, is logged since the backend should never send it.
func Text(s string) string {
	if validation.LooksLikeMarkupInjection(html.UnescapeString(s)) {
		logger.L.Warn("Suspicious markup in backend text, sanitized for display", "length", len(s))
	}
	return validation.DisplayText(s)
}

// OptionalText is Text for nullable fields, with a fallback for missing values.
func OptionalText(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	if t := Text(*s); t != "" {
		return t
	}
	return fallback
}

// Humanize turns an enum value like "married_filing_jointly" into "married filing jointly".
func Humanize(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}

// groupThousands inserts commas into the integer part of a non-negative fixed-point string.
func groupThousands(fixed string) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// Beyond int64; leave ungrouped rather than lose digits.
		return fixed
	}
	grouped := humanize.Comma(n)
	if frac == "" {
		return grouped
	}
	return grouped + "." + frac
}
