package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markers name the structural class markers of a statement export.
// Prefix markers match the start of a class token; substring markers
// match anywhere inside one.
type Markers struct {
	Container     string `yaml:"container"`      // prefix
	Heading       string `yaml:"heading"`        // element name
	Row           string `yaml:"row"`            // prefix
	InfoWrapper   string `yaml:"info_wrapper"`   // prefix
	AmountWrapper string `yaml:"amount_wrapper"` // prefix
	Title         string `yaml:"title"`          // substring
	Category      string `yaml:"category"`       // substring
	Amount        string `yaml:"amount"`         // substring
}

// DefaultMarkers returns the markers of the BCS online banking operations page.
func DefaultMarkers() Markers {
	return Markers{
		Container:     "operationsstyles__Container",
		Heading:       "h3",
		Row:           "operationstyles__Row",
		InfoWrapper:   "operationstyles__InfoWrapper",
		AmountWrapper: "operationstyles__AmountWrapper",
		Title:         "Title",
		Category:      "Category",
		Amount:        "OperationAmount",
	}
}

// WithDefaults fills empty fields from DefaultMarkers.
func (m Markers) WithDefaults() Markers {
	d := DefaultMarkers()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.Container, d.Container)
	fill(&m.Heading, d.Heading)
	fill(&m.Row, d.Row)
	fill(&m.InfoWrapper, d.InfoWrapper)
	fill(&m.AmountWrapper, d.AmountWrapper)
	fill(&m.Title, d.Title)
	fill(&m.Category, d.Category)
	fill(&m.Amount, d.Amount)
	return m
}

func classTokens(s *goquery.Selection) []string {
	return strings.Fields(s.AttrOr("class", ""))
}

func hasClassPrefix(prefix string) func(int, *goquery.Selection) bool {
	return func(_ int, s *goquery.Selection) bool {
		for _, c := range classTokens(s) {
			if strings.HasPrefix(c, prefix) {
				return true
			}
		}
		return false
	}
}

func hasClassSubstring(sub string) func(int, *goquery.Selection) bool {
	return func(_ int, s *goquery.Selection) bool {
		for _, c := range classTokens(s) {
			if strings.Contains(c, sub) {
				return true
			}
		}
		return false
	}
}
