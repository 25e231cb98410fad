package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is one operation row extracted from a statement export.
type Operation struct {
	Title         string
	CategoryLabel string // the bank's own category, informational only
	AmountText    string
	Amount        decimal.Decimal
	Date          time.Time
}

// Sample is an accepted transaction with its resolved category.
type Sample struct {
	Title    string
	Amount   decimal.Decimal
	Date     time.Time
	Category string
}

// ReportRow is one row of the export report.
type ReportRow struct {
	Category string
	Title    string
	Amount   decimal.Decimal
	Date     string
	Account  string
}
