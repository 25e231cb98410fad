// Package categories keeps the title-to-category dictionary and learns
// categories for unseen titles by asking the operator.
package categories

import (
	"fmt"

	"github.com/statex-dev/statex/internal/model"
)

// Store resolves transaction titles to categories.
// Known mappings come from the dictionary and never change during a run;
// learned mappings are collected as new titles are classified.
type Store struct {
	known        map[string]string
	knownTitles  []string
	learned      map[string]string
	learnedOrder []string
	prompter     Prompter
	suggestions  int
}

// Option configures a Store.
type Option func(*Store)

// WithSuggestions sets how many similar known titles are offered when prompting. Zero disables suggestions.
func WithSuggestions(n int) Option {
	return func(s *Store) { s.suggestions = n }
}

// NewStore creates a Store from known mappings. Mappings with an empty title
// or category are ignored; a later duplicate title overrides an earlier one.
func NewStore(known []model.Mapping, p Prompter, opts ...Option) *Store {
	s := &Store{
		known:       make(map[string]string, len(known)),
		learned:     make(map[string]string),
		prompter:    p,
		suggestions: defaultSuggestions,
	}
	for _, m := range known {
		if m.Title == "" || m.Category == "" {
			continue
		}
		if _, ok := s.known[m.Title]; !ok {
			s.knownTitles = append(s.knownTitles, m.Title)
		}
		s.known[m.Title] = m.Category
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the dictionary workbook at path and returns a Store over it.
func Load(path string, p Prompter, opts ...Option) (*Store, error) {
	mappings, err := ReadDictionary(path)
	if err != nil {
		return nil, err
	}
	return NewStore(mappings, p, opts...), nil
}

// Resolve returns the category for title. Unknown titles are put to the
// prompter once per run; whatever it answers, even an empty string, is kept.
// bankCategory is shown to the operator as a hint.
func (s *Store) Resolve(title, bankCategory string) (string, error) {
	if c, ok := s.known[title]; ok {
		return c, nil
	}
	if c, ok := s.learned[title]; ok {
		return c, nil
	}

	q := Query{
		Title:        title,
		BankCategory: bankCategory,
		Suggestions:  Suggest(title, s.known, s.knownTitles, s.suggestions),
	}
	c, err := s.prompter.Prompt(q)
	if err != nil {
		return "", fmt.Errorf("prompting category for %q: %w", title, err)
	}

	s.learned[title] = c
	s.learnedOrder = append(s.learnedOrder, title)
	return c, nil
}

// Known returns the number of known mappings.
func (s *Store) Known() int {
	return len(s.known)
}

// Learned returns the mappings learned during this run, in the order they were learned.
func (s *Store) Learned() []model.Mapping {
	out := make([]model.Mapping, 0, len(s.learnedOrder))
	for _, t := range s.learnedOrder {
		out = append(out, model.Mapping{Title: t, Category: s.learned[t]})
	}
	return out
}

// Persist appends the learned mappings to the dictionary workbook at path and
// returns how many rows were written. Known rows are left untouched.
func (s *Store) Persist(path string) (int, error) {
	learned := s.Learned()
	if err := AppendDictionary(path, learned); err != nil {
		return 0, err
	}
	return len(learned), nil
}
