// Package report accumulates accepted transactions and writes the export report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/statex-dev/statex/internal/dates"
	"github.com/statex-dev/statex/internal/model"
)

// Header is the report header row.
var Header = []string{"Категория", "Наименование", "Цена", "Дата", "Со счета"}

const (
	// DefaultAccount labels the account every report row was paid from.
	DefaultAccount = "Дебетовые карты БКС RUB"

	fileStampFormat = "2006-01-02_15-04-05"
)

// DefaultExclude lists payer patterns dropped from reports.
var DefaultExclude = []string{"тимур владимирович а"}

// Resolver maps a transaction title to a category.
type Resolver interface {
	Resolve(title, bankCategory string) (string, error)
}

// Options configures an Accumulator.
type Options struct {
	Account string
	Exclude []string // case-insensitive substrings
}

// Accumulator validates transactions, resolves their categories and keeps
// them in arrival order until the report is flushed.
type Accumulator struct {
	resolver Resolver
	account  string
	exclude  []string
	samples  []model.Sample
	dropped  int
}

// NewAccumulator creates an Accumulator.
func NewAccumulator(resolver Resolver, opts Options) *Accumulator {
	exclude := make([]string, 0, len(opts.Exclude))
	for _, e := range opts.Exclude {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			exclude = append(exclude, e)
		}
	}
	return &Accumulator{resolver: resolver, account: opts.Account, exclude: exclude}
}

// Validate reports whether title is allowed into the report.
func (a *Accumulator) Validate(title string) bool {
	lower := strings.ToLower(title)
	for _, e := range a.exclude {
		if strings.Contains(lower, e) {
			return false
		}
	}
	return true
}

// Add records a transaction. Titles failing Validate are dropped without
// resolving a category.
func (a *Accumulator) Add(title string, amount decimal.Decimal, date time.Time, bankCategory string) error {
	if !a.Validate(title) {
		a.dropped++
		return nil
	}

	category, err := a.resolver.Resolve(title, bankCategory)
	if err != nil {
		return fmt.Errorf("resolving category: %w", err)
	}

	a.samples = append(a.samples, model.Sample{
		Title:    title,
		Amount:   amount,
		Date:     date,
		Category: category,
	})
	return nil
}

// AddOperation records an extracted operation.
func (a *Accumulator) AddOperation(op model.Operation) error {
	return a.Add(op.Title, op.Amount, op.Date, op.CategoryLabel)
}

// Samples returns the accepted transactions in arrival order.
func (a *Accumulator) Samples() []model.Sample {
	return a.samples
}

// Dropped returns how many transactions failed validation.
func (a *Accumulator) Dropped() int {
	return a.dropped
}

// Rows converts the samples to report rows.
func (a *Accumulator) Rows() []model.ReportRow {
	rows := make([]model.ReportRow, 0, len(a.samples))
	for _, s := range a.samples {
		rows = append(rows, model.ReportRow{
			Category: s.Category,
			Title:    s.Title,
			Amount:   s.Amount,
			Date:     dates.Format(s.Date),
			Account:  a.account,
		})
	}
	return rows
}

// FileName returns the report file name for a run started at started.
func FileName(started time.Time, w Writer) string {
	return "export_" + started.Format(fileStampFormat) + "." + w.Ext()
}

// Flush writes all rows to a new file in dir named after started and returns
// its path. The file is written even when there are no rows. An existing
// report with the same name is never overwritten.
func (a *Accumulator) Flush(dir string, started time.Time, w Writer) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(started, w))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating report %s: %w", path, err)
	}

	if err := w.Write(f, a.Rows()); err != nil {
		f.Close()
		return "", fmt.Errorf("writing report %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report %s: %w", path, err)
	}
	return path, nil
}
