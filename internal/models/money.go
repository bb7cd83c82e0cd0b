package models

import "fmt"

// Money is an amount in minor units (sen).
type Money int64

// MoneyFromMajor converts a major-unit amount with at most two decimals.
func MoneyFromMajor(v float64) Money {
	if v < 0 {
		return -MoneyFromMajor(-v)
	}
	return Money(v*100 + 0.5)
}

func (m Money) Major() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
