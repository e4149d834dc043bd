package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// SessionHandler receives a snapshot of the new identity (nil for
// anonymous) after the controller has already de-duplicated the event.
type SessionHandler func(identity *entity.Identity)

// SessionController maintains the current identity and reacts to
// provider-pushed session-change events. It is the single place where
// redundant notifications (token refreshes carrying an already-observed
// identity id) are filtered out.
type SessionController interface {
	// Bootstrap queries the current session once (mount time) and enters
	// the matching state.
	Bootstrap(ctx context.Context, accessToken string)

	// Notify feeds a provider session-change event into the controller.
	// Events carrying the last observed identity id are no-ops.
	Notify(ctx context.Context, identity *entity.Identity)

	// SignOut is best effort: the provider call may fail (logged), the
	// local session is cleared unconditionally, portfolios are dropped
	// and re-fetched.
	SignOut(ctx context.Context, accessToken string)

	// Current returns the current identity, nil when anonymous.
	Current() *entity.Identity

	// Subscribe registers a handler for identity transitions and returns
	// its unsubscribe function.
	Subscribe(handler SessionHandler) func()
}
