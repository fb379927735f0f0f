package matching

import (
	"context"
	"testing"
	"time"

	"github.com/rapidautoparts/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inventoryFixture() []domain.Product {
	return []domain.Product{
		{ID: "1", Make: "Ford", Model: "F-150", PartID: "RAP-1001", Type: "Engine", Year: 2018,
			Details: "5.0L V8", Status: domain.StatusInStock},
		{ID: "2", Make: "Toyota", Model: "Camry", PartID: "RAP-1002", Type: "Transmission", Year: 2016,
			Details: "Automatic 6-speed", Status: domain.StatusOutOfStock},
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterInventory(t *testing.T) {
	products := inventoryFixture()

	tests := []struct {
		name   string
		filter InventoryFilter
		want   []string
	}{
		{"text matches make", InventoryFilter{Text: "ford"}, []string{"1"}},
		{"out of stock never listed", InventoryFilter{Text: "camry"}, []string{}},
		{"type filter", InventoryFilter{Type: "engine"}, []string{"1"}},
		{"part id", InventoryFilter{Text: "rap-100"}, []string{"1"}},
		{"year as text", InventoryFilter{Text: "2018"}, []string{"1"}},
		{"details", InventoryFilter{Text: "v8"}, []string{"1"}},
		{"both filters and", InventoryFilter{Text: "ford", Type: "transmission"}, []string{}},
		{"empty matches all in stock", InventoryFilter{}, []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterInventory(products, tt.filter)))
		})
	}
}

func TestMatcherRequiresAllFields(t *testing.T) {
	m := NewMatcher(ModeAny, DefaultYearTolerance)
	_, err := m.Find(inventoryFixture(), QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150"})
	assert.ErrorIs(t, err, ErrIncompleteQuery)
	_, err = m.Find(inventoryFixture(), QuoteQuery{Make: "Ford", Model: "F-150", Part: "engine"})
	assert.ErrorIs(t, err, ErrIncompleteQuery)
}

func TestMatcherVehicleMatch(t *testing.T) {
	catalog := []domain.Product{{ID: "1", Year: 2018, Make: "Ford", Model: "F-150", Type: "Engine"}}
	q := QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "engine"}

	for _, mode := range []Mode{ModeAny, ModeAll} {
		got, err := NewMatcher(mode, DefaultYearTolerance).Find(catalog, q)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got), string(mode))
	}
}

func TestMatcherUnrelatedPartDependsOnMode(t *testing.T) {
	catalog := []domain.Product{{ID: "1", Year: 2018, Make: "Ford", Model: "F-150", Type: "Engine"}}
	q := QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "axle"}

	got, err := NewMatcher(ModeAny, DefaultYearTolerance).Find(catalog, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got), "vehicle match alone qualifies in any mode")

	got, err = NewMatcher(ModeAll, DefaultYearTolerance).Find(catalog, q)
	require.NoError(t, err)
	assert.Empty(t, got, "all mode needs the part to match too")
}

func TestMatcherPartOnlyAndBidirectional(t *testing.T) {
	catalog := []domain.Product{
		{ID: "1", Year: 2017, Make: "Honda", Model: "Civic", Type: "Transmission", Details: "CVT"},
		{ID: "2", Year: 2019, Make: "Ford", Model: "F-150 Raptor", Type: "Brakes", Details: "Front pads"},
	}
	m := NewMatcher(ModeAny, DefaultYearTolerance)

	got, err := m.Find(catalog, QuoteQuery{Year: 2018, Make: "Toyota", Model: "Corolla", Part: "transmissions"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got), "query part contains product type")

	got, err = m.Find(catalog, QuoteQuery{Year: 2018, Make: "FORD", Model: "f-150", Part: "engine"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(got), "product model contains query model")

	got, err = m.Find(catalog, QuoteQuery{Year: 2018, Make: "Kia", Model: "Rio", Part: "pads"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(got), "part matched against details")
}

func TestMatcherYearTolerance(t *testing.T) {
	catalog := []domain.Product{
		{ID: "2015", Year: 2015, Make: "Ford", Model: "F-150", Type: "Engine"},
		{ID: "2014", Year: 2014, Make: "Ford", Model: "F-150", Type: "Engine"},
		{ID: "2021", Year: 2021, Make: "Ford", Model: "F-150", Type: "Engine"},
		{ID: "2022", Year: 2022, Make: "Ford", Model: "F-150", Type: "Engine"},
	}
	q := QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "engine"}

	got, err := NewMatcher(ModeAny, 3).Find(catalog, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"2015", "2021"}, ids(got))

	got, err = NewMatcher(ModeAny, 0).Find(catalog, q)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewMatcherFallsBackToAny(t *testing.T) {
	assert.Equal(t, ModeAny, NewMatcher("bogus", 3).Mode())
	assert.Equal(t, ModeAll, NewMatcher(ModeAll, 3).Mode())
}

func TestQuoteSearchTransitions(t *testing.T) {
	catalog := []domain.Product{{ID: "1", Year: 2018, Make: "Ford", Model: "F-150", Type: "Engine"}}
	s := NewQuoteSearch(NewMatcher(ModeAny, DefaultYearTolerance))
	assert.Equal(t, "idle", s.Status().State)

	_, err := s.Advance()
	assert.Error(t, err, "cannot advance while idle")

	assert.ErrorIs(t, s.Start(catalog, QuoteQuery{Year: 2018}), ErrIncompleteQuery)
	require.NoError(t, s.Start(catalog, QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "engine"}))
	assert.Error(t, s.Start(catalog, QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "engine"}))

	st := s.Status()
	assert.Equal(t, "searching", st.State)
	assert.Equal(t, 1, st.Step)
	assert.Equal(t, "connecting", st.Label)

	st, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, "checking inventory", st.Label)
	st, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, "verifying quality", st.Label)

	st, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, "resolved", st.State)
	assert.Equal(t, OutcomeFound, st.Outcome)
	assert.Len(t, st.Matches, 1)

	s.Reset()
	assert.Equal(t, "idle", s.Status().State)
	require.NoError(t, s.Start(nil, QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "engine"}))
	st, err = s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, st.Outcome)
}

func TestQuoteSearchRunPacesSteps(t *testing.T) {
	catalog := []domain.Product{{ID: "1", Year: 2018, Make: "Ford", Model: "F-150", Type: "Engine"}}
	s := NewQuoteSearch(NewMatcher(ModeAny, DefaultYearTolerance))
	require.NoError(t, s.Start(catalog, QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "engine"}))

	start := time.Now()
	st, err := s.Run(context.Background(), 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFound, st.Outcome)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestQuoteSearchRunCancelled(t *testing.T) {
	s := NewQuoteSearch(NewMatcher(ModeAny, DefaultYearTolerance))
	require.NoError(t, s.Start(nil, QuoteQuery{Year: 2018, Make: "Ford", Model: "F-150", Part: "engine"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st, err := s.Run(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "searching", st.State)
}
