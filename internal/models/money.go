package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in cents. It travels over JSON as a decimal number with two
// fraction digits, so 14300 is written as 143.00.
type Money int64

// NewMoney converts a decimal amount to cents, rounding half away from zero.
func NewMoney(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Float returns the amount in currency units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	return strconv.FormatFloat(m.Float(), 'f', 2, 64)
}

// Percent returns p percent of m rounded to the nearest cent, halves away from zero.
func (m Money) Percent(p int64) Money {
	v := int64(m) * p
	if v >= 0 {
		return Money((v + 50) / 100)
	}
	return Money((v - 50) / 100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = NewMoney(f)
	return nil
}
