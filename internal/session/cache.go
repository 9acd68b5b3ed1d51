package session

import (
	"context"
	"errors"

	"github.com/fjod/go_comics/internal/cart"
)

// SnapshotCache keeps the last cart snapshot of each session.
type SnapshotCache interface {
	Get(ctx context.Context, sessionID string) (*cart.Snapshot, error)
	Set(ctx context.Context, sessionID string, snapshot *cart.Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache is used when no Redis is configured; carts live only in memory.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*cart.Snapshot, error) { return nil, ErrCacheMiss }

func (NopCache) Set(context.Context, string, *cart.Snapshot) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
