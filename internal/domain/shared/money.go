package shared

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MinorUnitsPerMajor is the paise-per-rupee conversion factor used at the
// payment gateway boundary.
const MinorUnitsPerMajor = 100

var minorFactor = decimal.NewFromInt(MinorUnitsPerMajor)

// MaxAmount is the largest value a NUMERIC(18,2) money column holds
var MaxAmount = decimal.RequireFromString("9999999999999999.99")

var (
	ErrFractionalMinorUnits = errors.New("amount has more precision than the minor currency unit")
	ErrAmountOutOfRange     = errors.New("amount exceeds the largest supported value")
)

// ToMinorUnits converts a major-unit amount (rupees) into integer minor units (paise).
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.Abs().GreaterThan(MaxAmount) {
		return 0, ErrAmountOutOfRange
	}
	minor := amount.Mul(minorFactor)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrFractionalMinorUnits
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts integer minor units (paise) into a major-unit amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ValidateAmount checks that amount is positive, fits the money columns and is
// representable in minor units
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError("amount", "must be greater than zero")
	}
	if amount.GreaterThan(MaxAmount) {
		return NewValidationError("amount", "must not exceed "+MaxAmount.StringFixed(2))
	}
	if _, err := ToMinorUnits(amount); err != nil {
		return NewValidationError("amount", "must have at most two decimal places")
	}
	return nil
}
