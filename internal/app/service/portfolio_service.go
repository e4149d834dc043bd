package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/pkg/metrics"
)

// portfolioServiceImpl implements port.PortfolioService. The portfolio
// set is only ever assigned wholesale under the mutex; concurrent
// refreshes are last-write-wins.
type portfolioServiceImpl struct {
	store  port.PositionStore
	market port.MarketService
	logger *zap.Logger

	mu         sync.RWMutex
	portfolios []entity.Portfolio
}

// NewPortfolioService creates a new PortfolioService. The market service
// is warmed alongside each refresh so the session widgets are populated
// by the time the dashboard renders; it may be nil.
func NewPortfolioService(store port.PositionStore, market port.MarketService, logger *zap.Logger) port.PortfolioService {
	return &portfolioServiceImpl{
		store:  store,
		market: market,
		logger: logger.Named("PortfolioService"),
	}
}

// Refresh re-queries the row store, re-runs the mapper and swaps the set.
func (s *portfolioServiceImpl) Refresh(ctx context.Context) error {
	eg, childCtx := errgroup.WithContext(ctx)

	var mapped []entity.Portfolio
	eg.Go(func() error {
		rows, err := s.store.SelectAll(childCtx)
		if err != nil {
			return fmt.Errorf("failed to select position rows: %w", err)
		}
		mapped = BuildPortfolios(rows)
		return nil
	})

	if s.market != nil {
		eg.Go(func() error {
			if _, err := s.market.Sentiment(childCtx); err != nil {
				// Widget data is non-critical; a cold widget is not a
				// failed refresh.
				s.logger.Warn("Failed to warm sentiment feed during refresh", zap.Error(err))
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		s.logger.Error("Portfolio refresh failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.portfolios = mapped
	s.mu.Unlock()

	metrics.RefreshesTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Portfolio set refreshed", zap.Int("portfolioCount", len(mapped)))
	return nil
}

// DeletePosition removes the row from the backing store, then re-fetches
// so the in-memory set reflects the mutation.
func (s *portfolioServiceImpl) DeletePosition(ctx context.Context, id string) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete position %s: %w", id, err)
	}
	return s.Refresh(ctx)
}

// Portfolios returns a snapshot of the current set.
func (s *portfolioServiceImpl) Portfolios() []entity.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Portfolio, len(s.portfolios))
	copy(out, s.portfolios)
	return out
}

// Summaries returns the selector payload for the current set.
func (s *portfolioServiceImpl) Summaries() []entity.PortfolioSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.PortfolioSummary, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		out = append(out, entity.PortfolioSummary{
			ID:            p.ID,
			Name:          p.Name,
			PositionCount: len(p.Positions),
		})
	}
	return out
}

// Clear drops the in-memory set (sign-out path).
func (s *portfolioServiceImpl) Clear() {
	s.mu.Lock()
	s.portfolios = nil
	s.mu.Unlock()
}
