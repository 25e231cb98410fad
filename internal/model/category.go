package model

// Mapping pairs a transaction title with a category label.
// Titles match exactly and case-sensitively.
type Mapping struct {
	Title    string
	Category string
}
