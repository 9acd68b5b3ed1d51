package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_comics/internal/cart"
	"github.com/fjod/go_comics/internal/catalog"
	"github.com/fjod/go_comics/internal/directory"
	"github.com/fjod/go_comics/internal/store"
)

const (
	writeTimeout       = time.Second
	defaultIdleTimeout = 15 * time.Minute
)

type entry struct {
	store       *store.Store
	unsubscribe func()
	lastSeen    time.Time
}

type Option func(*Manager)

// WithIdleTimeout sets how long a session may go unused before EvictIdle
// forgets it. Its cart stays in the SnapshotCache until that expires.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns one store per session id. Cart changes are written through to
// the SnapshotCache so a session survives a restart or an eviction; cache
// failures are only logged.
type Manager struct {
	catalog     *catalog.Catalog
	cache       SnapshotCache
	log         *slog.Logger
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewManager(c *catalog.Catalog, cache SnapshotCache, log *slog.Logger, opts ...Option) *Manager {
	if cache == nil {
		cache = NopCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		catalog:     c,
		cache:       cache,
		log:         log,
		idleTimeout: defaultIdleTimeout,
		now:         time.Now,
		sessions:    map[string]*entry{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the store for sessionID, creating it on first use.
func (m *Manager) Get(ctx context.Context, sessionID string) *store.Store {
	if st, ok := m.lookup(sessionID); ok {
		return st
	}

	var opts []store.Option
	snapshot, err := m.cache.Get(ctx, sessionID)
	switch {
	case err == nil:
		opts = append(opts, store.WithCart(snapshot))
	case !errors.Is(err, ErrCacheMiss):
		m.log.Warn("cache get error", "session_id", sessionID, "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[sessionID]; ok {
		e.lastSeen = m.now()
		return e.store
	}

	st := store.New(m.catalog, opts...)
	unsubscribe := st.Subscribe(func(prev, next store.State) {
		if prev.Cart != next.Cart {
			m.persist(sessionID, next)
		}
	})
	m.sessions[sessionID] = &entry{store: st, unsubscribe: unsubscribe, lastSeen: m.now()}
	return st
}

// View returns the current state of sessionID without creating a session.
// An unknown session reads as its cached cart, or as empty.
func (m *Manager) View(ctx context.Context, sessionID string) store.State {
	if st, ok := m.lookup(sessionID); ok {
		return st.State()
	}

	snapshot, err := m.cache.Get(ctx, sessionID)
	switch {
	case err == nil:
		return store.State{Cart: snapshot, Users: directory.Empty()}
	case !errors.Is(err, ErrCacheMiss):
		m.log.Warn("cache get error", "session_id", sessionID, "error", err)
	}
	return store.State{Cart: cart.Empty(), Users: directory.Empty()}
}

// Drop forgets the session and its cached cart. A store still held by a
// caller keeps working but no longer writes to the cache.
func (m *Manager) Drop(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	e, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if ok {
		e.unsubscribe()
	}
	return m.cache.Delete(ctx, sessionID)
}

// EvictIdle forgets every session unused for the idle timeout and reports
// how many were removed. Cached carts are left in place.
func (m *Manager) EvictIdle() int {
	now := m.now()

	var evicted []*entry
	m.mu.Lock()
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) >= m.idleTimeout {
			delete(m.sessions, id)
			evicted = append(evicted, e)
		}
	}
	m.mu.Unlock()

	for _, e := range evicted {
		e.unsubscribe()
	}
	if len(evicted) > 0 {
		m.log.Debug("evicted idle sessions", "count", len(evicted))
	}
	return len(evicted)
}

// Run calls EvictIdle every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) lookup(sessionID string) (*store.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.store, true
}

func (m *Manager) persist(sessionID string, state store.State) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := m.cache.Set(ctx, sessionID, state.Cart); err != nil {
		m.log.Warn("cache set error", "session_id", sessionID, "error", err)
	}
}
