package matching

import (
	"errors"
	"strings"

	"github.com/rapidautoparts/storefront/internal/domain"
)

// Mode selects how the vehicle and part conditions of a quote combine
type Mode string

const (
	// ModeAny accepts a product matching the vehicle or the part
	ModeAny Mode = "any"
	// ModeAll requires both the vehicle and the part to match
	ModeAll Mode = "all"
)

const DefaultYearTolerance = 3

var ErrIncompleteQuery = errors.New("year, make, model and part are all required")

// QuoteQuery is the structured quote finder input
type QuoteQuery struct {
	Year  int    `json:"year" mapstructure:"year"`
	Make  string `json:"make" mapstructure:"make"`
	Model string `json:"model" mapstructure:"model"`
	Part  string `json:"part" mapstructure:"part"`
}

func (q QuoteQuery) Complete() bool {
	return q.Year > 0 && strings.TrimSpace(q.Make) != "" &&
		strings.TrimSpace(q.Model) != "" && strings.TrimSpace(q.Part) != ""
}

// Matcher evaluates quote queries against a loaded catalog
type Matcher struct {
	mode      Mode
	tolerance int
}

// NewMatcher builds a matcher; an unknown mode falls back to ModeAny and a negative tolerance to the default
func NewMatcher(mode Mode, tolerance int) *Matcher {
	if mode != ModeAll {
		mode = ModeAny
	}
	if tolerance < 0 {
		tolerance = DefaultYearTolerance
	}
	return &Matcher{mode: mode, tolerance: tolerance}
}

func (m *Matcher) Mode() Mode {
	return m.mode
}

// Find returns the products that qualify for the query, preserving catalog order
func (m *Matcher) Find(products []domain.Product, q QuoteQuery) ([]domain.Product, error) {
	if !q.Complete() {
		return nil, ErrIncompleteQuery
	}
	fold := newFolder()
	qMake := fold(strings.TrimSpace(q.Make))
	qModel := fold(strings.TrimSpace(q.Model))
	qPart := fold(strings.TrimSpace(q.Part))

	result := make([]domain.Product, 0)
	for _, p := range products {
		if abs(p.Year-q.Year) > m.tolerance {
			continue
		}
		vehicle := bidir(qMake, fold(p.Make)) && bidir(qModel, fold(p.Model))
		part := bidir(qPart, fold(p.Type)) || bidir(qPart, fold(p.Details))

		var ok bool
		if m.mode == ModeAll {
			ok = vehicle && part
		} else {
			ok = vehicle || part
		}
		if ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// bidir reports containment in either direction; both inputs are already folded
func bidir(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
