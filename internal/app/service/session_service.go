package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/pkg/metrics"
)

// sessionControllerImpl implements port.SessionController. It tracks the
// last observed identity id so token-refresh notifications carrying an
// already-seen id never trigger a second re-fetch.
type sessionControllerImpl struct {
	provider   port.IdentityProvider
	portfolios port.PortfolioService
	logger     *zap.Logger

	mu         sync.Mutex
	current    *entity.Identity
	lastSeenID string
	subs       map[int]port.SessionHandler
	nextSubID  int
}

// NewSessionController creates a SessionController bound to the identity
// provider and the portfolio service it re-fetches through.
func NewSessionController(provider port.IdentityProvider, portfolios port.PortfolioService, logger *zap.Logger) port.SessionController {
	return &sessionControllerImpl{
		provider:   provider,
		portfolios: portfolios,
		logger:     logger.Named("SessionController"),
		subs:       make(map[int]port.SessionHandler),
	}
}

// Bootstrap queries the current session once and enters the matching
// state without triggering a re-fetch (the initial data load happens
// separately at startup).
func (s *sessionControllerImpl) Bootstrap(ctx context.Context, accessToken string) {
	identity, err := s.provider.CurrentSession(ctx, accessToken)
	if err != nil {
		s.logger.Warn("Failed to query current session, starting anonymous", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.current = identity
	if identity != nil {
		s.lastSeenID = identity.ID
	}
	s.mu.Unlock()

	if identity != nil {
		s.logger.Info("Bootstrapped with existing session", zap.String("identityID", identity.ID))
	} else {
		s.logger.Info("Bootstrapped anonymous")
	}
}

// Notify feeds a provider session-change event into the controller.
// Every event replaces the stored identity snapshot, so metadata edits
// (display name, avatar) are visible immediately. Only genuine id
// transitions fan out to subscribers and trigger a full re-fetch;
// events carrying the last observed identity id skip that.
func (s *sessionControllerImpl) Notify(ctx context.Context, identity *entity.Identity) {
	id := ""
	if identity != nil {
		id = identity.ID
	}

	s.mu.Lock()
	if id == s.lastSeenID {
		s.current = identity
		s.mu.Unlock()
		s.logger.Debug("Updated identity snapshot without re-fetch", zap.String("identityID", id))
		return
	}
	s.current = identity
	s.lastSeenID = id
	handlers := s.snapshotHandlers()
	s.mu.Unlock()

	if identity != nil {
		metrics.SessionTransitions.WithLabelValues("sign_in").Inc()
		s.logger.Info("Identity transition: signed in", zap.String("identityID", id))
	} else {
		metrics.SessionTransitions.WithLabelValues("sign_out").Inc()
		s.logger.Info("Identity transition: signed out")
	}

	for _, h := range handlers {
		h(identity)
	}

	if err := s.portfolios.Refresh(ctx); err != nil {
		s.logger.Error("Re-fetch after session transition failed", zap.Error(err))
	}
}

// SignOut attempts the provider sign-out and clears the local session
// unconditionally, so the UI can never be stranded in an
// authenticated-looking state. The cleared portfolio set is re-fetched
// to pick up any publicly visible data.
func (s *sessionControllerImpl) SignOut(ctx context.Context, accessToken string) {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		s.logger.Warn("Provider sign-out failed, clearing local session anyway", zap.Error(err))
	}

	s.mu.Lock()
	wasAuthenticated := s.lastSeenID != ""
	s.current = nil
	s.lastSeenID = ""
	handlers := s.snapshotHandlers()
	s.mu.Unlock()

	if wasAuthenticated {
		metrics.SessionTransitions.WithLabelValues("sign_out").Inc()
	}

	s.portfolios.Clear()
	for _, h := range handlers {
		h(nil)
	}

	if err := s.portfolios.Refresh(ctx); err != nil {
		s.logger.Error("Re-fetch after sign-out failed", zap.Error(err))
	}
}

// Current returns the current identity, nil when anonymous.
func (s *sessionControllerImpl) Current() *entity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a handler for identity transitions and returns its
// unsubscribe function.
func (s *sessionControllerImpl) Subscribe(handler port.SessionHandler) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// snapshotHandlers copies the subscriber set. Callers must hold s.mu.
func (s *sessionControllerImpl) snapshotHandlers() []port.SessionHandler {
	out := make([]port.SessionHandler, 0, len(s.subs))
	for _, h := range s.subs {
		out = append(out, h)
	}
	return out
}
