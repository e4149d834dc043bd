package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// staticPortfolios is a PortfolioService stub serving a fixed set.
type staticPortfolios struct {
	set []entity.Portfolio
}

func (s *staticPortfolios) Portfolios() []entity.Portfolio { return s.set }

func (s *staticPortfolios) Summaries() []entity.PortfolioSummary {
	out := make([]entity.PortfolioSummary, 0, len(s.set))
	for _, p := range s.set {
		out = append(out, entity.PortfolioSummary{ID: p.ID, Name: p.Name, PositionCount: len(p.Positions)})
	}
	return out
}

func (s *staticPortfolios) Refresh(context.Context) error                { return nil }
func (s *staticPortfolios) DeletePosition(context.Context, string) error { return nil }
func (s *staticPortfolios) Clear()                                       { s.set = nil }

func makePositions(n int) []entity.Position {
	out := make([]entity.Position, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entity.Position{
			ID:         fmt.Sprintf("pos-%d", i),
			Token:      entity.Token{Symbol: fmt.Sprintf("TKN%d", i), Name: fmt.Sprintf("Token %d", i)},
			PnLPercent: float64(i),
		})
	}
	return out
}

func newTestDashboard(pageSize int, set []entity.Portfolio) port.DashboardService {
	return NewDashboardService(&staticPortfolios{set: set}, pageSize, time.Hour, time.Hour, zap.NewNop())
}

func TestDashboard_DefaultState(t *testing.T) {
	svc := newTestDashboard(2, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: makePositions(5)},
	})

	view := svc.Snapshot("s1")
	assert.Equal(t, entity.SortKeyPnLPercent, view.State.SortKey)
	assert.Equal(t, entity.SortDesc, view.State.SortDir)
	assert.Equal(t, entity.ViewModeList, view.State.ViewMode)
	assert.False(t, view.State.PrivacyMode)
	assert.Equal(t, 2, view.State.VisibleCount)
	assert.Len(t, view.Positions, 2)
	assert.Equal(t, 5, view.FilteredCount)

	// Default sort shows best performers first.
	assert.Equal(t, "pos-4", view.Positions[0].ID)
}

func TestDashboard_UnknownPortfolioFallsBackToFirst(t *testing.T) {
	svc := newTestDashboard(10, []entity.Portfolio{
		{ID: "alpha", Name: "Alpha", Positions: makePositions(1)},
		{ID: "beta", Name: "Beta", Positions: makePositions(2)},
	})

	svc.SelectPortfolio("s1", "gone")
	view := svc.Snapshot("s1")
	assert.Equal(t, "alpha", view.PortfolioID)
}

func TestDashboard_SelectPortfolioResetsCursor(t *testing.T) {
	svc := newTestDashboard(2, []entity.Portfolio{
		{ID: "alpha", Name: "Alpha", Positions: makePositions(6)},
		{ID: "beta", Name: "Beta", Positions: makePositions(6)},
	})

	svc.LoadMore("s1")
	require.Equal(t, 4, svc.Snapshot("s1").State.VisibleCount)

	svc.SelectPortfolio("s1", "beta")
	view := svc.Snapshot("s1")
	assert.Equal(t, "beta", view.PortfolioID)
	assert.Equal(t, 2, view.State.VisibleCount)
}

func TestDashboard_SearchResetsCursorAndFilters(t *testing.T) {
	svc := newTestDashboard(2, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: makePositions(6)},
	})

	svc.LoadMore("s1")
	svc.SetSearch("s1", "TKN3")

	view := svc.Snapshot("s1")
	assert.Equal(t, 2, view.State.VisibleCount)
	assert.Equal(t, 1, view.FilteredCount)
	require.Len(t, view.Positions, 1)
	assert.Equal(t, "pos-3", view.Positions[0].ID)
}

func TestDashboard_SortToggleAlternates(t *testing.T) {
	svc := newTestDashboard(10, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: makePositions(3)},
	})

	key, dir := svc.SortBy("s1", entity.SortKeyValue)
	assert.Equal(t, entity.SortKeyValue, key)
	assert.Equal(t, entity.SortAsc, dir)

	key, dir = svc.SortBy("s1", entity.SortKeyValue)
	assert.Equal(t, entity.SortDesc, dir)

	key, dir = svc.SortBy("s1", entity.SortKeyValue)
	assert.Equal(t, entity.SortAsc, dir)

	// Switching to another column starts ascending again.
	key, dir = svc.SortBy("s1", entity.SortKeyPrice)
	assert.Equal(t, entity.SortKeyPrice, key)
	assert.Equal(t, entity.SortAsc, dir)
}

func TestDashboard_GridForcesBestPerformersFirst(t *testing.T) {
	svc := newTestDashboard(10, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: makePositions(3)},
	})

	svc.SortBy("s1", entity.SortKeyToken)
	svc.SetViewMode("s1", entity.ViewModeGrid)

	view := svc.Snapshot("s1")
	assert.Equal(t, entity.ViewModeGrid, view.State.ViewMode)
	assert.Equal(t, entity.SortKeyPnLPercent, view.State.SortKey)
	assert.Equal(t, entity.SortDesc, view.State.SortDir)
}

func TestDashboard_TogglePrivacy(t *testing.T) {
	svc := newTestDashboard(10, nil)

	assert.True(t, svc.TogglePrivacy("s1"))
	assert.False(t, svc.TogglePrivacy("s1"))
}

func TestDashboard_LoadMoreClampsAtFilteredLength(t *testing.T) {
	svc := newTestDashboard(2, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: makePositions(5)},
	})

	assert.Equal(t, 4, svc.LoadMore("s1"))
	assert.Equal(t, 5, svc.LoadMore("s1"))
	assert.Equal(t, 5, svc.LoadMore("s1"))
}

func TestDashboard_SessionsAreIsolated(t *testing.T) {
	svc := newTestDashboard(2, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: makePositions(6)},
	})

	svc.LoadMore("s1")
	svc.TogglePrivacy("s2")

	assert.Equal(t, 4, svc.Snapshot("s1").State.VisibleCount)
	assert.False(t, svc.Snapshot("s1").State.PrivacyMode)
	assert.Equal(t, 2, svc.Snapshot("s2").State.VisibleCount)
	assert.True(t, svc.Snapshot("s2").State.PrivacyMode)
}

func TestDashboard_OpenMenu(t *testing.T) {
	svc := newTestDashboard(10, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: makePositions(3)},
	})

	svc.OpenMenu("s1", "pos-1")
	assert.Equal(t, "pos-1", svc.Snapshot("s1").State.OpenMenuID)

	// A second open replaces the first; empty closes everything.
	svc.OpenMenu("s1", "pos-2")
	assert.Equal(t, "pos-2", svc.Snapshot("s1").State.OpenMenuID)

	svc.OpenMenu("s1", "")
	assert.Empty(t, svc.Snapshot("s1").State.OpenMenuID)
}

func TestDashboard_TotalsComputedOverFilteredSet(t *testing.T) {
	positions := []entity.Position{
		{ID: "1", Token: entity.Token{Symbol: "AAA"}, Invested: 100, Value: 150},
		{ID: "2", Token: entity.Token{Symbol: "AAB"}, Invested: 200, Value: 100},
		{ID: "3", Token: entity.Token{Symbol: "ZZZ"}, Invested: 1000, Value: 5000},
	}
	svc := newTestDashboard(1, []entity.Portfolio{
		{ID: "main", Name: "Main", Positions: positions},
	})

	svc.SetSearch("s1", "AA")
	view := svc.Snapshot("s1")

	// One visible row, but totals cover both filtered rows.
	require.Len(t, view.Positions, 1)
	assert.Equal(t, 300.0, view.Totals.Invested)
	assert.Equal(t, 250.0, view.Totals.Value)
	assert.Equal(t, -50.0, view.Totals.PnL)
}
