package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry tracks controllers by session id for clients that address a
// conversation across several requests.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*Controller
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		active: make(map[string]*Controller),
		logger: logger,
	}
}

// Get returns the controller for sessionID, or nil.
func (r *Registry) Get(sessionID string) *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[sessionID]
}

// Register adds a started controller under its session id. An id that is
// already registered is refused with ErrDuplicateSession and the existing
// conversation is kept.
func (r *Registry) Register(c *Controller) error {
	id := c.SessionID()
	if id == "" {
		return ErrSessionNotReady
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[id]; ok {
		r.logger.Warn("Conversation id already registered", "session_id", id)
		return ErrDuplicateSession
	}
	r.active[id] = c
	r.logger.Info("Conversation registered", "session_id", id)
	return nil
}

// Unregister removes the conversation. It reports whether it existed.
func (r *Registry) Unregister(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[sessionID]; !ok {
		return false
	}
	delete(r.active, sessionID)
	r.logger.Info("Conversation unregistered", "session_id", sessionID)
	return true
}

// Len returns the number of registered conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}

// Sweep drops every idle conversation inactive since before now-ttl.
// Conversations with a request in flight are kept.
func (r *Registry) Sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, c := range r.active {
		if c.State().Loading() {
			continue
		}
		if now.Sub(c.LastActive()) > ttl {
			delete(r.active, id)
			removed++
			r.logger.Info("Conversation expired", "session_id", id)
		}
	}
	return removed
}

// StartSweeper runs a background goroutine that periodically evicts idle
// conversations until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		r.logger.Info("Conversation sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case now := <-ticker.C:
				if n := r.Sweep(now, ttl); n > 0 {
					r.logger.Info("Conversation sweeper cleanup completed", "cleaned", n, "remaining", r.Len())
				}
			case <-ctx.Done():
				r.logger.Info("Conversation sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
