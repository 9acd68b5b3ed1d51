package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/domain"
	"github.com/fjod/go_comics/internal/gateway"
	"github.com/fjod/go_comics/internal/logger"
	"github.com/fjod/go_comics/internal/store"
	"golang.org/x/sync/singleflight"
)

// UserActions performs user I/O through the gateway and then dispatches the
// result to the given store. Nothing is dispatched when the gateway call
// fails. One UserActions serves every session.
type UserActions struct {
	gateway gateway.Gateway
	log     *slog.Logger
	sfg     singleflight.Group // collapses concurrent fetches of one id per store

	fetchTimeout time.Duration
}

const defaultFetchTimeout = 10 * time.Second

type Option func(*UserActions)

// WithFetchTimeout bounds a shared FetchUser request. Callers still stop
// waiting when their own context ends.
func WithFetchTimeout(d time.Duration) Option {
	return func(u *UserActions) {
		if d > 0 {
			u.fetchTimeout = d
		}
	}
}

func NewUserActions(gw gateway.Gateway, log *slog.Logger, opts ...Option) *UserActions {
	if log == nil {
		log = slog.Default()
	}
	u := &UserActions{
		gateway:      gw,
		log:          log,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// FetchUser loads a user into the directory unless it is already there.
// Known ids are never fetched again.
func (u *UserActions) FetchUser(ctx context.Context, st *store.Store, id string) error {
	if id == "" {
		return fmt.Errorf("fetch user: %w", action.ErrInvalidAction)
	}
	if st.State().Users.Has(id) {
		return nil
	}

	key := fmt.Sprintf("%p/%s", st, id)
	ch := u.sfg.DoChan(key, func() (interface{}, error) {
		// another flight may have finished between the check above and now
		if st.State().Users.Has(id) {
			return nil, nil
		}

		// detached from ctx: other callers may be waiting on this flight
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.fetchTimeout)
		defer cancel()

		user, err := u.gateway.GetUser(flightCtx, id)
		if err != nil {
			return nil, err
		}
		if user.ID != id {
			if user.ID != "" {
				logger.FromContext(ctx, u.log).Warn("users api returned a different id", "user_id", id, "returned_id", user.ID)
			}
			user.ID = id
		}

		upsert, err := action.NewUpsertUser(user)
		if err != nil {
			return nil, err
		}
		st.Dispatch(upsert)
		return nil, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			logger.FromContext(ctx, u.log).Warn("fetch user failed", "user_id", id, "error", res.Err)
			return fmt.Errorf("fetch user: %w", res.Err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("fetch user: %w", ctx.Err())
	}
}

// SaveUser updates a user with an id or creates one without. A created user
// is then associated with user.GroupKey when one was given.
func (u *UserActions) SaveUser(ctx context.Context, st *store.Store, user domain.User) (domain.User, error) {
	if user.ID != "" {
		return u.updateUser(ctx, st, user)
	}
	return u.createUser(ctx, st, user)
}

func (u *UserActions) updateUser(ctx context.Context, st *store.Store, user domain.User) (domain.User, error) {
	updated, err := u.gateway.UpdateUser(ctx, user.ID, user)
	if err != nil {
		logger.FromContext(ctx, u.log).Warn("update user failed", "user_id", user.ID, "error", err)
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}

	merged := user.Merge(updated)
	upsert, err := action.NewUpsertUser(merged)
	if err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	st.Dispatch(upsert)
	return merged, nil
}

func (u *UserActions) createUser(ctx context.Context, st *store.Store, user domain.User) (domain.User, error) {
	created, err := u.gateway.CreateUser(ctx, user)
	if err != nil {
		logger.FromContext(ctx, u.log).Warn("create user failed", "error", err)
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}

	merged := user.Merge(created)
	upsert, err := action.NewUpsertUser(merged)
	if err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	actions := []action.Action{upsert}
	if user.GroupKey != "" {
		associate, err := action.NewAssociateUser(merged.ID, user.GroupKey)
		if err != nil {
			return domain.User{}, fmt.Errorf("save user: %w", err)
		}
		actions = append(actions, associate)
	}
	st.Dispatch(actions...)

	logger.FromContext(ctx, u.log).Info("user created", "user_id", merged.ID, "group_key", user.GroupKey)
	return merged, nil
}

// DeleteUser removes the user upstream, then from the directory.
func (u *UserActions) DeleteUser(ctx context.Context, st *store.Store, id string) error {
	remove, err := action.NewRemoveUser(id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := u.gateway.DeleteUser(ctx, id); err != nil {
		logger.FromContext(ctx, u.log).Warn("delete user failed", "user_id", id, "error", err)
		return fmt.Errorf("delete user: %w", err)
	}

	st.Dispatch(remove)
	return nil
}
