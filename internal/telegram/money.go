package telegram

import "github.com/shopspring/decimal"

// Money formats an amount in minor units, e.g. 29900 with exponent 2 as "299.00₽".
type Money struct {
	Exponent int32
	Symbol   string
}

func (m Money) Format(amount int64) string {
	return decimal.New(amount, -m.Exponent).StringFixed(m.Exponent) + m.Symbol
}

// FormatSigned always prints the sign, as in "+500₽" or "-200₽".
func (m Money) FormatSigned(amount int64) string {
	if amount >= 0 {
		return "+" + m.Format(amount)
	}
	return m.Format(amount)
}
