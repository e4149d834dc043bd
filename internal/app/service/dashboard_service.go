package service

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// dashboardServiceImpl owns the per-view-session state records. All
// state is held in a TTL cache keyed by the view-session id; an expired
// session simply re-initializes with defaults on its next request.
type dashboardServiceImpl struct {
	portfolios port.PortfolioService
	logger     *zap.Logger
	pageSize   int

	mu    sync.Mutex
	views *cache.Cache
}

// NewDashboardService creates a DashboardService with the given lazy-load
// page size and view-state TTLs.
func NewDashboardService(portfolios port.PortfolioService, pageSize int, ttl, cleanup time.Duration, logger *zap.Logger) port.DashboardService {
	return &dashboardServiceImpl{
		portfolios: portfolios,
		logger:     logger.Named("DashboardService"),
		pageSize:   pageSize,
		views:      cache.New(ttl, cleanup),
	}
}

// state returns the session's view state, initializing defaults on first
// touch. Callers must hold s.mu.
func (s *dashboardServiceImpl) state(sessionID string) *entity.ViewState {
	if v, ok := s.views.Get(sessionID); ok {
		return v.(*entity.ViewState)
	}
	st := &entity.ViewState{
		SortKey:      entity.SortKeyPnLPercent,
		SortDir:      entity.SortDesc,
		VisibleCount: s.pageSize,
		ViewMode:     entity.ViewModeList,
	}
	s.views.SetDefault(sessionID, st)
	return st
}

// selectedPortfolio resolves the state's portfolio id against the current
// set, falling back to the first portfolio.
func (s *dashboardServiceImpl) selectedPortfolio(st *entity.ViewState) entity.Portfolio {
	all := s.portfolios.Portfolios()
	if len(all) == 0 {
		return entity.Portfolio{}
	}
	for _, p := range all {
		if p.ID == st.PortfolioID {
			return p
		}
	}
	return all[0]
}

// Snapshot recomputes the derived view from scratch for the session's
// current state.
func (s *dashboardServiceImpl) Snapshot(sessionID string) entity.DerivedView {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	portfolio := s.selectedPortfolio(st)

	filtered := FilterPositions(portfolio.Positions, st.Search)
	sorted := SortPositions(filtered, st.SortKey, st.SortDir)
	visible := Paginate(sorted, st.VisibleCount)

	return entity.DerivedView{
		PortfolioID:   portfolio.ID,
		PortfolioName: portfolio.Name,
		Positions:     visible,
		FilteredCount: len(filtered),
		TotalCount:    len(portfolio.Positions),
		Totals:        ComputeTotals(filtered),
		State:         *st,
	}
}

func (s *dashboardServiceImpl) SelectPortfolio(sessionID, portfolioID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	if st.PortfolioID == portfolioID {
		return
	}
	st.PortfolioID = portfolioID
	st.VisibleCount = s.pageSize
	st.OpenMenuID = ""
}

func (s *dashboardServiceImpl) SetSearch(sessionID, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	if st.Search == query {
		return
	}
	st.Search = query
	st.VisibleCount = s.pageSize
}

func (s *dashboardServiceImpl) SortBy(sessionID string, key entity.SortKey) (entity.SortKey, entity.SortDirection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	st.SortKey, st.SortDir = NextSort(st.SortKey, st.SortDir, key)
	st.VisibleCount = s.pageSize
	return st.SortKey, st.SortDir
}

func (s *dashboardServiceImpl) SetViewMode(sessionID string, mode entity.ViewMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	if st.ViewMode == mode {
		return
	}
	st.ViewMode = mode
	st.VisibleCount = s.pageSize
	if mode == entity.ViewModeGrid {
		// The card grid has no sortable columns; it always shows best
		// performers first.
		st.SortKey = entity.SortKeyPnLPercent
		st.SortDir = entity.SortDesc
	}
}

func (s *dashboardServiceImpl) TogglePrivacy(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	st.PrivacyMode = !st.PrivacyMode
	return st.PrivacyMode
}

// LoadMore grows the cursor by one page and clamps it to the filtered
// length.
func (s *dashboardServiceImpl) LoadMore(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(sessionID)
	portfolio := s.selectedPortfolio(st)
	available := len(FilterPositions(portfolio.Positions, st.Search))

	next := st.VisibleCount + s.pageSize
	if next > available {
		next = available
	}
	st.VisibleCount = next
	return st.VisibleCount
}

func (s *dashboardServiceImpl) OpenMenu(sessionID, positionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state(sessionID).OpenMenuID = positionID
}
