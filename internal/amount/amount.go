// Package amount parses localized currency strings such as "1 234,56 ₽".
package amount

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const currencySymbol = "₽"

// Parser converts amount text into decimals, logging inputs it cannot read.
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a Parser that reports malformed input to log.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log}
}

// Parse returns the numeric value of text. Malformed input yields zero and a warning.
func (p *Parser) Parse(text string) decimal.Decimal {
	cleaned := Normalize(text)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		p.log.Warn().Str("amount", text).Err(err).Msg("error parsing amount")
		return decimal.Zero
	}
	return d
}

// Normalize strips the currency symbol and whitespace and converts the
// decimal comma, leaving a string decimal.NewFromString accepts.
func Normalize(text string) string {
	s := strings.ReplaceAll(text, currencySymbol, "")
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == '−' || r == '–':
			return '-'
		case r == ',':
			return '.'
		}
		return r
	}, s)
	return strings.TrimPrefix(s, "+")
}
