package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/statex-dev/statex/internal/model"
)

// Writer serializes report rows in one file format.
type Writer interface {
	Write(w io.Writer, rows []model.ReportRow) error
	Format() string
	Ext() string
}

// Registry holds writers by format name.
type Registry struct {
	writers map[string]Writer
}

// NewRegistry creates an empty writer registry.
func NewRegistry() *Registry {
	return &Registry{writers: make(map[string]Writer)}
}

// Register adds a writer. Panics on duplicate format.
func (r *Registry) Register(w Writer) {
	key := strings.ToLower(w.Format())
	if _, ok := r.writers[key]; ok {
		panic("duplicate report format: " + key)
	}
	r.writers[key] = w
}

// Get returns the writer for format, or nil.
func (r *Registry) Get(format string) Writer {
	return r.writers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in writers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&XLSXWriter{})
	r.Register(&CSVWriter{})
	return r
}

// XLSXWriter writes the report as a single-sheet workbook with numeric amounts.
type XLSXWriter struct{}

// Format returns the writer name.
func (x *XLSXWriter) Format() string { return "xlsx" }

// Ext returns the file extension.
func (x *XLSXWriter) Ext() string { return "xlsx" }

// Write renders rows into a workbook and writes it to w.
func (x *XLSXWriter) Write(w io.Writer, rows []model.ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		values := []any{row.Category, row.Title, row.Amount.Round(2).InexactFloat64(), row.Date, row.Account}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// CSVWriter writes the report as CSV.
type CSVWriter struct{}

// Format returns the writer name.
func (c *CSVWriter) Format() string { return "csv" }

// Ext returns the file extension.
func (c *CSVWriter) Ext() string { return "csv" }

type csvRow struct {
	Category string `csv:"Категория"`
	Title    string `csv:"Наименование"`
	Price    string `csv:"Цена"`
	Date     string `csv:"Дата"`
	Account  string `csv:"Со счета"`
}

// Write marshals rows with a header line. An empty report is header only.
func (c *CSVWriter) Write(w io.Writer, rows []model.ReportRow) error {
	out := make([]csvRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, csvRow{
			Category: r.Category,
			Title:    r.Title,
			Price:    r.Amount.StringFixed(2),
			Date:     r.Date,
			Account:  r.Account,
		})
	}
	if err := gocsv.Marshal(&out, w); err != nil {
		return fmt.Errorf("marshaling CSV: %w", err)
	}
	return nil
}
