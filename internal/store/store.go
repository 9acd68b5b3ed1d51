package store

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/cart"
	"github.com/fjod/go_comics/internal/catalog"
	"github.com/fjod/go_comics/internal/directory"
)

// State is the pair of snapshots a Store publishes after each dispatch.
type State struct {
	Cart  *cart.Snapshot
	Users *directory.Snapshot
}

type Listener func(prev, next State)

type Option func(*Store)

// WithCart starts the store from an existing cart snapshot.
func WithCart(s *cart.Snapshot) Option {
	return func(st *Store) {
		if s != nil {
			st.initialCart = s
		}
	}
}

// Store applies actions one at a time and publishes each resulting State
// atomically. It is owned by a single session; there is no package-level store.
type Store struct {
	catalog *catalog.Catalog
	cart    *cart.Reducer

	mu          sync.Mutex // serializes Dispatch
	state       atomic.Pointer[State]
	listeners   map[int]Listener
	nextID      int
	initialCart *cart.Snapshot
}

func New(c *catalog.Catalog, opts ...Option) *Store {
	st := &Store{
		catalog:     c,
		cart:        cart.NewReducer(c),
		listeners:   map[int]Listener{},
		initialCart: cart.Empty(),
	}
	for _, opt := range opts {
		opt(st)
	}
	st.state.Store(&State{Cart: st.initialCart, Users: directory.Empty()})
	st.initialCart = nil
	return st
}

// State returns the latest published state. It never blocks on Dispatch.
func (st *Store) State() State {
	return *st.state.Load()
}

func (st *Store) Catalog() *catalog.Catalog {
	return st.catalog
}

// Dispatch applies each action to both reducers, in order, and returns the
// resulting state. The actions of one call are applied back to back with no
// other dispatch in between. Listeners run synchronously after every step that
// changed the state. Listeners must not call Dispatch or unsubscribe.
func (st *Store) Dispatch(actions ...action.Action) State {
	st.mu.Lock()
	defer st.mu.Unlock()

	current := *st.state.Load()
	for _, a := range actions {
		next := State{
			Cart:  st.cart.Apply(current.Cart, a),
			Users: directory.Apply(current.Users, a),
		}
		if next == current {
			continue
		}

		st.state.Store(&next)
		for _, id := range st.listenerIDs() {
			st.listeners[id](current, next)
		}
		current = next
	}
	return current
}

// Subscribe registers fn and returns a function that removes it.
func (st *Store) Subscribe(fn Listener) (unsubscribe func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.nextID
	st.nextID++
	st.listeners[id] = fn

	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.listeners, id)
	}
}

func (st *Store) listenerIDs() []int {
	ids := make([]int, 0, len(st.listeners))
	for id := range st.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
