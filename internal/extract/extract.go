// Package extract walks a saved statement page and yields its operations in document order.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/statex-dev/statex/internal/amount"
	"github.com/statex-dev/statex/internal/dates"
	"github.com/statex-dev/statex/internal/model"
)

// ErrNoDateContext is returned when an operation appears before any day heading.
var ErrNoDateContext = errors.New("operation has no preceding day heading")

// Handler receives each extracted operation. A non-nil error stops extraction.
type Handler func(op model.Operation) error

// Stats summarizes one extraction pass.
type Stats struct {
	ContainerFound bool
	Groups         int
	Operations     int
	Skipped        int
}

// Extractor finds day-groups and operation rows in a statement page.
type Extractor struct {
	markers Markers
	amounts *amount.Parser
	log     zerolog.Logger
}

// New creates an Extractor. Empty markers fall back to DefaultMarkers.
func New(markers Markers, amounts *amount.Parser, log zerolog.Logger) *Extractor {
	return &Extractor{markers: markers.WithDefaults(), amounts: amounts, log: log}
}

// ParseFile reads and parses the HTML document at path.
func ParseFile(path string) (*goquery.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("statement %s: %w", path, err)
	}
	return doc, nil
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// pass carries the date context from one day-group to the next.
// A group without a heading keeps the previous group's date.
type pass struct {
	now     time.Time
	date    time.Time
	hasDate bool
	stats   Stats
}

// Extract walks doc and calls fn for every operation row. A missing container
// yields no operations and no error. An unreadable day label stops the pass.
func (e *Extractor) Extract(doc *goquery.Document, now time.Time, fn Handler) (Stats, error) {
	container := doc.Find("*").FilterFunction(hasClassPrefix(e.markers.Container)).First()
	if container.Length() == 0 {
		e.log.Warn().Str("marker", e.markers.Container).Msg("container not found")
		return Stats{}, nil
	}

	p := &pass{now: now}
	p.stats.ContainerFound = true

	var err error
	container.Children().EachWithBreak(func(_ int, group *goquery.Selection) bool {
		err = e.extractGroup(p, group, fn)
		return err == nil
	})
	return p.stats, err
}

func (e *Extractor) extractGroup(p *pass, group *goquery.Selection, fn Handler) error {
	p.stats.Groups++

	if heading := group.Find(e.markers.Heading).First(); heading.Length() > 0 {
		label := strings.TrimSpace(heading.Text())
		date, err := dates.Resolve(label, p.now)
		if err != nil {
			return fmt.Errorf("day-group %d: %w", p.stats.Groups, err)
		}
		p.date, p.hasDate = date, true
		e.log.Info().Str("date", dates.Format(date)).Msg("parsing operations")
	}

	rows := group.Find("div").FilterFunction(hasClassPrefix(e.markers.Row))
	var err error
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		err = e.extractRow(p, row, fn)
		return err == nil
	})
	return err
}

func (e *Extractor) extractRow(p *pass, row *goquery.Selection, fn Handler) error {
	info := row.Find("div").FilterFunction(hasClassPrefix(e.markers.InfoWrapper))
	amountDiv := row.Find("div").FilterFunction(hasClassPrefix(e.markers.AmountWrapper))
	if info.Length() == 0 || amountDiv.Length() == 0 {
		p.stats.Skipped++
		e.log.Warn().Int("group", p.stats.Groups).Msg("required divs not found in operation row")
		return nil
	}

	spans := row.Find("span")
	categories := spans.FilterFunction(hasClassSubstring(e.markers.Category))
	category := categories.First()
	// A span carrying the category marker is never the title.
	title := spans.FilterFunction(hasClassSubstring(e.markers.Title)).NotSelection(categories).First()
	amountSpan := spans.FilterFunction(hasClassSubstring(e.markers.Amount)).First()
	if title.Length() == 0 || amountSpan.Length() == 0 {
		p.stats.Skipped++
		e.log.Warn().Int("group", p.stats.Groups).Msg("title or amount not found in operation row")
		return nil
	}

	if !p.hasDate {
		return fmt.Errorf("day-group %d: %w", p.stats.Groups, ErrNoDateContext)
	}

	op := model.Operation{
		Title:         strings.TrimSpace(title.Text()),
		CategoryLabel: strings.TrimSpace(category.Text()),
		AmountText:    strings.TrimSpace(amountSpan.Text()),
		Date:          p.date,
	}
	op.Amount = e.amounts.Parse(op.AmountText)

	e.log.Debug().
		Str("title", op.Title).
		Str("category", op.CategoryLabel).
		Str("amount", op.Amount.StringFixed(2)).
		Msg("operation")

	p.stats.Operations++
	return fn(op)
}
