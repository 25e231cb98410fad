// Package dates turns the day labels of a statement export into calendar dates.
package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DisplayFormat is the dd.MM.yyyy layout used in reports.
const DisplayFormat = "02.01.2006"

// ErrInvalidDateLabel is returned when a day label cannot be turned into a date.
var ErrInvalidDateLabel = errors.New("invalid date label")

const (
	yesterdayToken = "вчера"
	todayToken     = "сегодня"
)

// monthNames holds genitive month names; index 0 is January.
var monthNames = [12]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// Resolve converts a label like "Вчера" or "5 марта" into a date relative to now.
// Explicit labels take the year from now.
func Resolve(label string, now time.Time) (time.Time, error) {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, yesterdayToken):
		return dayOf(now.AddDate(0, 0, -1)), nil
	case strings.Contains(lower, todayToken):
		return dayOf(now), nil
	}

	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, lower)

	digits := 0
	for digits < len(compact) && digits < 2 && compact[digits] >= '0' && compact[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return time.Time{}, fmt.Errorf("%w: %q has no day number", ErrInvalidDateLabel, label)
	}
	day, err := strconv.Atoi(compact[:digits])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrInvalidDateLabel, label, err)
	}

	month := monthIndex(compact[digits:])
	if month < 0 {
		return time.Time{}, fmt.Errorf("%w: %q has unknown month %q", ErrInvalidDateLabel, label, compact[digits:])
	}

	loc := now.Location()
	date := time.Date(now.Year(), time.Month(month+1), day, 0, 0, 0, 0, loc)
	if day < 1 || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q has day out of range", ErrInvalidDateLabel, label)
	}
	return date, nil
}

// Format renders a date in DisplayFormat.
func Format(t time.Time) string {
	return t.Format(DisplayFormat)
}

func monthIndex(name string) int {
	for i, m := range monthNames {
		if m == name {
			return i
		}
	}
	return -1
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
