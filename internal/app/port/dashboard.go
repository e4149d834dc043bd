package port

import "portfolio_tracker/internal/domain/entity"

// DashboardService owns per-view-session dashboard state and produces
// derived-view snapshots. Every operation keys on the caller's view
// session id; state mutations recompute nothing — reads do.
type DashboardService interface {
	// Snapshot runs the full filter -> sort -> paginate pipeline for the
	// session's current state.
	Snapshot(sessionID string) entity.DerivedView

	SelectPortfolio(sessionID, portfolioID string)
	SetSearch(sessionID, query string)

	// SortBy applies the column-click toggle rules to the session's sort
	// spec and returns the resulting spec.
	SortBy(sessionID string, key entity.SortKey) (entity.SortKey, entity.SortDirection)

	// SetViewMode switches list/grid; grid forces pnlPercent descending.
	SetViewMode(sessionID string, mode entity.ViewMode)

	TogglePrivacy(sessionID string) bool

	// LoadMore grows the visible-count cursor by one page, saturating at
	// the filtered-sorted length, and returns the new cursor.
	LoadMore(sessionID string) int

	// OpenMenu marks one row menu open (closing any other); an empty id
	// closes all menus (the click-outside analog).
	OpenMenu(sessionID, positionID string)
}

// Notifier queues transient toasts per view session; Drain delivers and
// clears.
type Notifier interface {
	Push(sessionID string, toast entity.Toast)
	Drain(sessionID string) []entity.Toast
}
