package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

// toastNotifier queues transient toasts per view session. Queues live in
// a TTL cache so abandoned sessions drop their undelivered toasts.
type toastNotifier struct {
	log    port.Logger
	mu     sync.Mutex
	queues *cache.Cache
}

// NewToastNotifier creates a Notifier with the given queue TTLs.
func NewToastNotifier(ttl, cleanup time.Duration, log port.Logger) port.Notifier {
	return &toastNotifier{
		log:    log,
		queues: cache.New(ttl, cleanup),
	}
}

// Push appends a toast to the session's queue, assigning an id when the
// caller left it empty.
func (n *toastNotifier) Push(sessionID string, toast entity.Toast) {
	if toast.ID == "" {
		toast.ID = uuid.NewString()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	var queue []entity.Toast
	if v, ok := n.queues.Get(sessionID); ok {
		queue = v.([]entity.Toast)
	}
	n.queues.SetDefault(sessionID, append(queue, toast))
	n.log.Debug("Toast queued", "sessionID", sessionID, "kind", string(toast.Kind), "title", toast.Title)
}

// Drain delivers and clears the session's queue.
func (n *toastNotifier) Drain(sessionID string) []entity.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()

	v, ok := n.queues.Get(sessionID)
	if !ok {
		return nil
	}
	n.queues.Delete(sessionID)
	return v.([]entity.Toast)
}
