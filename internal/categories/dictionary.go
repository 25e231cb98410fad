package categories

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/statex-dev/statex/internal/model"
)

const (
	colTitle    = 0
	colCategory = 1
)

// DictionaryHeader is the header row of a new dictionary workbook.
var DictionaryHeader = []string{"Наименование", "Категория"}

// ReadDictionary reads (title, category) rows from the active sheet of the
// workbook at path, skipping the header and incomplete rows.
func ReadDictionary(path string) ([]model.Mapping, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary %s: %w", path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var mappings []model.Mapping
	for _, row := range rows[1:] {
		if len(row) <= colCategory {
			continue
		}
		title, category := row[colTitle], row[colCategory]
		if title == "" || category == "" {
			continue
		}
		mappings = append(mappings, model.Mapping{Title: title, Category: category})
	}
	return mappings, nil
}

// AppendDictionary writes mappings after the last used row of the active
// sheet. The workbook must already exist.
func AppendDictionary(path string, mappings []model.Mapping) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()

	if len(mappings) == 0 {
		return nil
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading dictionary %s: %w", path, err)
	}

	next := len(rows) + 1
	for i, m := range mappings {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return fmt.Errorf("row %d: %w", next+i, err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{m.Title, m.Category}); err != nil {
			return fmt.Errorf("writing row %d: %w", next+i, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("saving dictionary %s: %w", path, err)
	}
	return nil
}

// CreateDictionary writes an empty dictionary workbook with a header row.
func CreateDictionary(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating dictionary dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := make([]any, len(DictionaryHeader))
	for i, h := range DictionaryHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving dictionary %s: %w", path, err)
	}
	return nil
}
