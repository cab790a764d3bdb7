// Package billing implements settings-driven money formatting and
// invoice number allocation.
package billing

import (
	"strconv"
	"strings"
)

// Symbol position values as stored in the invoice settings group.
const (
	PositionBefore = "before"
	PositionAfter  = "after"
)

// DefaultSymbol is used when the currency setting is unset.
const DefaultSymbol = "₹"

// FormatAmount renders a monetary value with two fixed decimals and
// thousands grouping, placing the currency symbol before or after the
// number per the position setting. Unknown positions fall back to
// "before". The function is pure.
func FormatAmount(amount float64, symbol, position string) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}

	number := groupThousands(strconv.FormatFloat(amount, 'f', 2, 64))

	if position == PositionAfter {
		return number + symbol
	}

	return symbol + number
}

// groupThousands inserts comma separators into the integer part of a
// fixed-decimal number string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	if len(intPart) <= 3 {
		return sign + intPart + "." + fracPart
	}

	var b strings.Builder

	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}

	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	return sign + b.String() + "." + fracPart
}
