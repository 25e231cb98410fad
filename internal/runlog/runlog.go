// Package runlog keeps an append-only CSV history of extraction runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	Input     string
	Rows      int
	Dropped   int
	Skipped   int
	Learned   int
	Report    string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,input,rows,dropped,skipped,learned,report"

const (
	numFields    = 7
	logDir       = "logs"
	logFile      = "logs/run-log.csv"
	colTimestamp = 0
	colInput     = 1
	colRows      = 2
	colDropped   = 3
	colSkipped   = 4
	colLearned   = 5
	colReport    = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colInput] = e.Input
	row[colRows] = strconv.Itoa(e.Rows)
	row[colDropped] = strconv.Itoa(e.Dropped)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colLearned] = strconv.Itoa(e.Learned)
	row[colReport] = e.Report
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 0, 4)
	for _, col := range []int{colRows, colDropped, colSkipped, colLearned} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts = append(counts, n)
	}

	return Entry{
		Timestamp: ts,
		Input:     record[colInput],
		Rows:      counts[0],
		Dropped:   counts[1],
		Skipped:   counts[2],
		Learned:   counts[3],
		Report:    record[colReport],
	}, nil
}

// Append writes entries to <baseDir>/logs/run-log.csv, creating the file and header if needed.
func Append(baseDir string, entries []Entry) error {
	dir := filepath.Join(baseDir, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(baseDir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <baseDir>/logs/run-log.csv.
// Returns nil if the file does not exist.
func Read(baseDir string) ([]Entry, error) {
	path := filepath.Join(baseDir, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
