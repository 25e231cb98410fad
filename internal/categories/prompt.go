package categories

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Query describes an unseen title the operator is asked to classify.
type Query struct {
	Title        string
	BankCategory string
	Suggestions  []Suggestion
}

// Prompter asks for a category for an unseen title. Implementations block until an answer is available.
type Prompter interface {
	Prompt(q Query) (string, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(q Query) (string, error)

// Prompt calls f(q).
func (f PrompterFunc) Prompt(q Query) (string, error) { return f(q) }

// ConsolePrompter asks on out and reads one line per answer from in.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a ConsolePrompter.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt prints the question and waits for a line. The answer is trimmed;
// an empty answer is returned as is.
func (p *ConsolePrompter) Prompt(q Query) (string, error) {
	if q.BankCategory != "" {
		fmt.Fprintf(p.out, "Bank category for %q: %s\n", q.Title, q.BankCategory)
	}
	for i, s := range q.Suggestions {
		fmt.Fprintf(p.out, "  similar %d: %q -> %s\n", i+1, s.Title, s.Category)
	}
	fmt.Fprintf(p.out, "Category for %q does not exist. Please enter a new category name: ", q.Title)

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
