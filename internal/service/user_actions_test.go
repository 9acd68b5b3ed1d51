package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/catalog"
	"github.com/fjod/go_comics/internal/domain"
	"github.com/fjod/go_comics/internal/gateway"
	"github.com/fjod/go_comics/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	m       sync.RWMutex
	users   map[string]domain.User
	err     error
	nextID  string
	calls   map[string]int
	started chan struct{}
	release chan struct{}
}

func newMockGateway() *mockGateway {
	return &mockGateway{users: map[string]domain.User{}, calls: map[string]int{}, nextID: "new-id"}
}

func (m *mockGateway) record(op string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls[op]++
	return m.err
}

func (m *mockGateway) callCount(op string) int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.calls[op]
}

func (m *mockGateway) GetUser(ctx context.Context, id string) (domain.User, error) {
	if err := m.record("get"); err != nil {
		return domain.User{}, err
	}
	if m.started != nil {
		m.started <- struct{}{}
		select {
		case <-m.release:
		case <-ctx.Done():
			return domain.User{}, ctx.Err()
		}
	}
	m.m.RLock()
	defer m.m.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, gateway.ErrUserNotFound
	}
	return user, nil
}

func (m *mockGateway) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	if err := m.record("create"); err != nil {
		return domain.User{}, err
	}
	m.m.Lock()
	defer m.m.Unlock()
	created := domain.User{ID: m.nextID}
	user.ID = m.nextID
	m.users[user.ID] = user
	return created, nil
}

func (m *mockGateway) UpdateUser(_ context.Context, id string, user domain.User) (domain.User, error) {
	if err := m.record("update"); err != nil {
		return domain.User{}, err
	}
	m.m.Lock()
	defer m.m.Unlock()
	existing, ok := m.users[id]
	if !ok {
		return domain.User{}, gateway.ErrUserNotFound
	}
	existing = existing.Merge(user)
	existing.GroupKey = ""
	m.users[id] = existing
	return existing, nil
}

func (m *mockGateway) DeleteUser(_ context.Context, id string) error {
	if err := m.record("delete"); err != nil {
		return err
	}
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.users[id]; !ok {
		return gateway.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func setup(t *testing.T) (*UserActions, *mockGateway, *store.Store) {
	t.Helper()
	gw := newMockGateway()
	st := store.New(catalog.Default())
	return NewUserActions(gw, nil), gw, st
}

func TestFetchUser_LoadsIntoDirectory(t *testing.T) {
	ua, gw, st := setup(t)
	gw.users["u1"] = domain.User{ID: "u1", Username: "bwayne"}

	require.NoError(t, ua.FetchUser(context.Background(), st, "u1"))

	user, ok := st.State().Users.User("u1")
	require.True(t, ok)
	assert.Equal(t, "bwayne", user.Username)
	assert.Equal(t, 1, gw.callCount("get"))
}

func TestFetchUser_SkipsKnownIDs(t *testing.T) {
	ua, gw, st := setup(t)
	st.Dispatch(action.UpsertUser{User: domain.User{ID: "u1", Username: "cached"}})
	gw.users["u1"] = domain.User{ID: "u1", Username: "fresh"}

	require.NoError(t, ua.FetchUser(context.Background(), st, "u1"))
	require.NoError(t, ua.FetchUser(context.Background(), st, "u1"))

	assert.Equal(t, 0, gw.callCount("get"))
	user, _ := st.State().Users.User("u1")
	assert.Equal(t, "cached", user.Username)
}

func TestFetchUser_FailurePropagatesWithoutDispatch(t *testing.T) {
	ua, gw, st := setup(t)
	before := st.State()

	err := ua.FetchUser(context.Background(), st, "missing")
	assert.ErrorIs(t, err, gateway.ErrUserNotFound)

	gw.err = errors.New("connection refused")
	err = ua.FetchUser(context.Background(), st, "missing")
	assert.ErrorContains(t, err, "connection refused")

	assert.Same(t, before.Users, st.State().Users)
	assert.Equal(t, 2, gw.callCount("get"), "failures are not cached or retried")
}

func TestFetchUser_EmptyID(t *testing.T) {
	ua, gw, st := setup(t)

	assert.ErrorIs(t, ua.FetchUser(context.Background(), st, ""), action.ErrInvalidAction)
	assert.Equal(t, 0, gw.callCount("get"))
}

func TestFetchUser_ConcurrentCallsShareOneRequest(t *testing.T) {
	ua, gw, st := setup(t)
	gw.users["u1"] = domain.User{ID: "u1"}
	gw.started = make(chan struct{}, 1)
	gw.release = make(chan struct{})

	var upserts int
	var mu sync.Mutex
	st.Subscribe(func(prev, next store.State) {
		mu.Lock()
		upserts++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- ua.FetchUser(context.Background(), st, "u1")
	}()
	<-gw.started

	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ua.FetchUser(context.Background(), st, "u1")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(gw.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, gw.callCount("get"))
	assert.Equal(t, 1, upserts)
	assert.True(t, st.State().Users.Has("u1"))
}

func TestSaveUser_CreateDispatchesUpsertThenAssociate(t *testing.T) {
	ua, gw, st := setup(t)

	saved, err := ua.SaveUser(context.Background(), st, domain.User{Username: "spidey", Email: "p@dailybugle.com", GroupKey: "g1"})
	require.NoError(t, err)

	assert.Equal(t, "new-id", saved.ID)
	users := st.State().Users
	user, ok := users.User("new-id")
	require.True(t, ok)
	assert.Equal(t, "spidey", user.Username)
	assert.Equal(t, "g1", user.GroupKey)
	assert.Equal(t, []string{"new-id"}, users.Group("g1"))
	assert.Equal(t, 1, gw.callCount("create"))
}

func TestSaveUser_CreateWithoutGroup(t *testing.T) {
	ua, _, st := setup(t)

	_, err := ua.SaveUser(context.Background(), st, domain.User{Username: "spidey"})
	require.NoError(t, err)

	assert.True(t, st.State().Users.Has("new-id"))
	assert.Empty(t, st.State().Users.Groups())
}

func TestSaveUser_UpdateMergesResult(t *testing.T) {
	ua, gw, st := setup(t)
	gw.users["u1"] = domain.User{ID: "u1", Firstname: "Bruce", Lastname: "Wayne"}
	st.Dispatch(
		action.UpsertUser{User: domain.User{ID: "u1", Firstname: "Bruce", Lastname: "Wayne"}},
		action.AssociateUser{ID: "u1", GroupKey: "g1"},
	)

	saved, err := ua.SaveUser(context.Background(), st, domain.User{ID: "u1", Email: "bruce@wayne.com"})
	require.NoError(t, err)

	assert.Equal(t, "Bruce", saved.Firstname)
	assert.Equal(t, "bruce@wayne.com", saved.Email)
	user, _ := st.State().Users.User("u1")
	assert.Equal(t, "bruce@wayne.com", user.Email)
	assert.Equal(t, "Wayne", user.Lastname)
	assert.Equal(t, "g1", user.GroupKey)
	assert.Equal(t, 1, gw.callCount("update"))
	assert.Equal(t, 0, gw.callCount("create"))
}

func TestSaveUser_FailureLeavesStoreUntouched(t *testing.T) {
	ua, gw, st := setup(t)
	gw.err = &gateway.StatusError{Op: "create user", StatusCode: 400, Message: "Invalid email format"}
	before := st.State()

	_, err := ua.SaveUser(context.Background(), st, domain.User{Username: "x", GroupKey: "g1"})

	var statusErr *gateway.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Same(t, before.Users, st.State().Users)

	_, err = ua.SaveUser(context.Background(), st, domain.User{ID: "u1"})
	assert.Error(t, err)
	assert.Same(t, before.Users, st.State().Users)
}

func TestDeleteUser_RemovesAfterConfirmation(t *testing.T) {
	ua, gw, st := setup(t)
	gw.users["u1"] = domain.User{ID: "u1"}
	st.Dispatch(
		action.UpsertUser{User: domain.User{ID: "u1"}},
		action.AssociateUser{ID: "u1", GroupKey: "g1"},
	)

	require.NoError(t, ua.DeleteUser(context.Background(), st, "u1"))

	assert.False(t, st.State().Users.Has("u1"))
	assert.Empty(t, st.State().Users.Group("g1"))
}

func TestDeleteUser_FailureKeepsUser(t *testing.T) {
	ua, gw, st := setup(t)
	st.Dispatch(action.UpsertUser{User: domain.User{ID: "u1"}})
	gw.err = gateway.ErrUnavailable

	err := ua.DeleteUser(context.Background(), st, "u1")

	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.True(t, st.State().Users.Has("u1"))
}

func TestDeleteUser_EmptyID(t *testing.T) {
	ua, gw, st := setup(t)

	assert.ErrorIs(t, ua.DeleteUser(context.Background(), st, ""), action.ErrInvalidAction)
	assert.Equal(t, 0, gw.callCount("delete"))
}

func TestFetchUser_StoresAreIndependent(t *testing.T) {
	ua, gw, first := setup(t)
	second := store.New(catalog.Default())
	gw.users["u1"] = domain.User{ID: "u1"}

	require.NoError(t, ua.FetchUser(context.Background(), first, "u1"))
	require.NoError(t, ua.FetchUser(context.Background(), second, "u1"))

	assert.True(t, first.State().Users.Has("u1"))
	assert.True(t, second.State().Users.Has("u1"))
	assert.Equal(t, 2, gw.callCount("get"))
}

func TestFetchUser_CancelledCallerDoesNotFailOthers(t *testing.T) {
	ua, gw, st := setup(t)
	gw.users["u1"] = domain.User{ID: "u1", Username: "bwayne"}
	gw.started = make(chan struct{}, 1)
	gw.release = make(chan struct{})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		errA <- ua.FetchUser(ctxA, st, "u1")
	}()
	<-gw.started

	errB := make(chan error, 1)
	go func() {
		errB <- ua.FetchUser(context.Background(), st, "u1")
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(gw.release)
	assert.NoError(t, <-errB)
	assert.True(t, st.State().Users.Has("u1"))
	assert.Equal(t, 1, gw.callCount("get"))
}

func TestFetchUser_SharedRequestIsBounded(t *testing.T) {
	gw := newMockGateway()
	gw.users["u1"] = domain.User{ID: "u1"}
	gw.started = make(chan struct{}, 1)
	gw.release = make(chan struct{})
	defer close(gw.release)
	ua := NewUserActions(gw, nil, WithFetchTimeout(20*time.Millisecond))
	st := store.New(catalog.Default())

	err := ua.FetchUser(context.Background(), st, "u1")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, st.State().Users.Has("u1"))
}

func TestFetchUser_MismatchedIDStoredUnderRequestedID(t *testing.T) {
	ua, gw, st := setup(t)
	gw.users["u1"] = domain.User{ID: "other", Username: "bwayne"}

	require.NoError(t, ua.FetchUser(context.Background(), st, "u1"))
	require.NoError(t, ua.FetchUser(context.Background(), st, "u1"))

	user, ok := st.State().Users.User("u1")
	require.True(t, ok)
	assert.Equal(t, "bwayne", user.Username)
	assert.False(t, st.State().Users.Has("other"))
	assert.Equal(t, 1, gw.callCount("get"))
}
