package matching

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rapidautoparts/storefront/internal/domain"
)

// SearchState is the phase of a quote search
type SearchState int

const (
	StateIdle SearchState = iota
	StateSearching
	StateResolved
)

func (s SearchState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateResolved:
		return "resolved"
	}
	return "unknown"
}

// SearchSteps are the progress labels shown while searching
var SearchSteps = []string{"connecting", "checking inventory", "verifying quality"}

// Outcome of a resolved search
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
)

// SearchStatus is a snapshot of a QuoteSearch
type SearchStatus struct {
	State   string           `json:"state"`
	Step    int              `json:"step"`
	Label   string           `json:"label,omitempty"`
	Outcome Outcome          `json:"outcome,omitempty"`
	Matches []domain.Product `json:"matches,omitempty"`
}

// QuoteSearch paces a quote lookup through the search steps before
// revealing the result. It is safe for concurrent use.
type QuoteSearch struct {
	mu      sync.Mutex
	matcher *Matcher
	catalog []domain.Product
	query   QuoteQuery
	state   SearchState
	step    int
	matches []domain.Product
}

func NewQuoteSearch(m *Matcher) *QuoteSearch {
	return &QuoteSearch{matcher: m}
}

// Start moves an idle search into the first step. The query is validated before any transition.
func (s *QuoteSearch) Start(catalog []domain.Product, q QuoteQuery) error {
	if !q.Complete() {
		return ErrIncompleteQuery
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("search already %s", s.state)
	}
	s.catalog = catalog
	s.query = q
	s.state = StateSearching
	s.step = 1
	return nil
}

// Advance moves one step forward, resolving the search after the last step
func (s *QuoteSearch) Advance() (SearchStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSearching {
		return s.statusLocked(), fmt.Errorf("cannot advance a search that is %s", s.state)
	}
	if s.step < len(SearchSteps) {
		s.step++
		return s.statusLocked(), nil
	}
	matches, err := s.matcher.Find(s.catalog, s.query)
	if err != nil {
		return s.statusLocked(), err
	}
	s.matches = matches
	s.state = StateResolved
	return s.statusLocked(), nil
}

// Reset returns the search to idle from any state
func (s *QuoteSearch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.step = 0
	s.catalog = nil
	s.query = QuoteQuery{}
	s.matches = nil
}

func (s *QuoteSearch) Status() SearchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *QuoteSearch) statusLocked() SearchStatus {
	st := SearchStatus{State: s.state.String(), Step: s.step}
	if s.state == StateSearching && s.step >= 1 && s.step <= len(SearchSteps) {
		st.Label = SearchSteps[s.step-1]
	}
	if s.state == StateResolved {
		st.Matches = s.matches
		if len(s.matches) > 0 {
			st.Outcome = OutcomeFound
		} else {
			st.Outcome = OutcomeNotFound
		}
	}
	return st
}

// Run drives a started search to resolution, advancing once per delay.
// A zero delay resolves immediately.
func (s *QuoteSearch) Run(ctx context.Context, delay time.Duration) (SearchStatus, error) {
	if delay <= 0 {
		for {
			st, err := s.Advance()
			if err != nil || s.resolved() {
				return st, err
			}
		}
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return s.Status(), ctx.Err()
		case <-ticker.C:
			st, err := s.Advance()
			if err != nil || s.resolved() {
				return st, err
			}
		}
	}
}

func (s *QuoteSearch) resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateResolved
}
