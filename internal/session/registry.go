package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/binamite/internal/model"
)

// Mode selects how browser sessions map to stores.
type Mode string

const (
	// ModePerSession gives every browser session its own store, the way
	// every browser tab used to hold its own in-memory state.
	ModePerSession Mode = "per-session"
	// ModeShared serves every browser session from one process-wide store.
	ModeShared Mode = "shared"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePerSession, ModeShared:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("session: unknown store mode %q", s)
	}
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Mode    Mode
	IdleTTL time.Duration // stores untouched for longer are evicted by Sweep
	Seed    []model.User  // user list every new store starts with
}

type registryEntry struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per browser session ID.
//
// A store lives as long as its browser session keeps making requests. Sweep
// (or Run, which calls Sweep on a ticker) drops stores that have been idle
// for longer than IdleTTL. Nothing is persisted: an evicted or restarted
// store starts over from the seed list.
type Registry struct {
	cfg    RegistryConfig
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
	shared  *Store
}

// NewRegistry creates a Registry. An empty Mode means ModePerSession.
func NewRegistry(cfg RegistryConfig, logger *slog.Logger) *Registry {
	if cfg.Mode == "" {
		cfg.Mode = ModePerSession
	}

	r := &Registry{
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
	}
	if cfg.Mode == ModeShared {
		r.shared = r.newStore("shared")
	}
	return r
}

// Get returns the store for the given browser session ID, creating it on
// first use.
func (r *Registry) Get(sessionID string) *Store {
	if r.shared != nil {
		return r.shared
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		e = &registryEntry{store: r.newStore(sessionID)}
		r.entries[sessionID] = e
		r.logger.Debug("session store created", slog.String("session", sessionID))
	}
	e.lastSeen = r.now()
	return e.store
}

// newStore creates a seeded store that logs every state change at debug level.
func (r *Registry) newStore(sessionID string) *Store {
	s := NewWithUsers(r.cfg.Seed)
	logger := r.logger.With(slog.String("session", sessionID))

	s.Subscribe(func(st State) {
		ctx := context.Background()
		if !logger.Enabled(ctx, slog.LevelDebug) {
			return
		}
		current := ""
		if st.CurrentUser != nil {
			current = st.CurrentUser.Email
		}
		logger.LogAttrs(ctx, slog.LevelDebug, "session state changed",
			slog.Int("users", len(st.UserList)),
			slog.String("current_user", current),
		)
	})
	return s
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	if r.shared != nil {
		return 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts stores idle for longer than IdleTTL and returns how many it
// removed. A zero IdleTTL disables eviction.
func (r *Registry) Sweep() int {
	if r.shared != nil || r.cfg.IdleTTL <= 0 {
		return 0
	}

	cutoff := r.now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Run calls Sweep every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted idle session stores",
					slog.Int("evicted", n),
					slog.Int("remaining", r.Len()),
				)
			}
		}
	}
}
