package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Storage limits for fixed-point columns: numeric(10,2) for money and
// numeric(5,2) for percentage rates.
var (
	MaxMoney = decimal.RequireFromString("99999999.99")
	MaxRate  = decimal.RequireFromString("999.99")
)

// ValidateMoney checks that amount is non-negative and fits numeric(10,2)
func ValidateMoney(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewDomainError(ErrInvalidInput.Code, fmt.Sprintf("%s cannot be negative", field))
	}
	if amount.Round(2).GreaterThan(MaxMoney) {
		return NewDomainError(ErrInvalidInput.Code, fmt.Sprintf("%s cannot exceed %s", field, MaxMoney.StringFixed(2)))
	}
	return nil
}

// ValidateSignedMoney checks that amount fits numeric(10,2) in either
// direction. Used for balances that go below zero when overpaid.
func ValidateSignedMoney(field string, amount decimal.Decimal) error {
	if amount.Abs().Round(2).GreaterThan(MaxMoney) {
		return NewDomainError(ErrInvalidInput.Code, fmt.Sprintf("%s must be within -%s and %s", field, MaxMoney.StringFixed(2), MaxMoney.StringFixed(2)))
	}
	return nil
}

// ValidateRate checks that rate is a non-negative percentage that fits numeric(5,2)
func ValidateRate(field string, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return NewDomainError(ErrInvalidInput.Code, fmt.Sprintf("%s cannot be negative", field))
	}
	if rate.Round(2).GreaterThan(MaxRate) {
		return NewDomainError(ErrInvalidInput.Code, fmt.Sprintf("%s cannot exceed %s", field, MaxRate.StringFixed(2)))
	}
	return nil
}
