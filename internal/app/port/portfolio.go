package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// PortfolioService owns the in-memory portfolio set mapped from the row
// store. The set is only ever replaced wholesale by a refresh, never
// patched in place.
type PortfolioService interface {
	// Portfolios returns the current portfolio set, sorted by name.
	Portfolios() []entity.Portfolio

	// Summaries returns the selector payload for the current set.
	Summaries() []entity.PortfolioSummary

	// Refresh re-queries the row store, re-runs the mapper and swaps the
	// set. Last write wins; no cancellation of superseded refreshes.
	Refresh(ctx context.Context) error

	// DeletePosition removes a row from the backing store and re-fetches.
	DeletePosition(ctx context.Context, id string) error

	// Clear drops the in-memory set (sign-out path).
	Clear()
}
