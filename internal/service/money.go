package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"go-enrollment-server/internal/model"
)

const (
	maxPriceText = 32

	// Exponent bounds keep Mul/Round and error text proportional to the input.
	minPriceExponent = -18
	maxPriceExponent = 18
)

var hundred = decimal.NewFromInt(100)

// ParsePrice accepts a JSON number or a JSON string holding a number.
func ParsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return decimal.Decimal{}, fmt.Errorf("%w: price is required", model.ErrInvalidAmount)
	}
	if len(text) > maxPriceText+2 {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is too long", model.ErrInvalidAmount, truncate(text))
	}

	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", model.ErrInvalidAmount, truncate(text))
		}
		text = strings.TrimSpace(s)
	}
	if len(text) > maxPriceText {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is too long", model.ErrInvalidAmount, truncate(text))
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", model.ErrInvalidAmount, text)
	}
	if !inPriceRange(price) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is out of range", model.ErrInvalidAmount, text)
	}

	return price, nil
}

// ToMinorUnits converts a major-unit price to minor units, rounding half up.
// Prices that round to zero or below are rejected.
func ToMinorUnits(price decimal.Decimal) (int64, error) {
	if !inPriceRange(price) {
		return 0, fmt.Errorf("%w: price exponent %d is out of range", model.ErrInvalidAmount, price.Exponent())
	}

	minor := price.Mul(hundred).Round(0)
	if !minor.IsPositive() {
		return 0, fmt.Errorf("%w: %s", model.ErrInvalidAmount, price.String())
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s is too large", model.ErrInvalidAmount, price.String())
	}

	return minor.IntPart(), nil
}

func inPriceRange(price decimal.Decimal) bool {
	exp := price.Exponent()
	return exp >= minPriceExponent && exp <= maxPriceExponent
}

func truncate(s string) string {
	if len(s) <= maxPriceText {
		return s
	}
	return s[:maxPriceText] + "..."
}
