package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_comics/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUnavailable  = errors.New("users api unavailable")
)

// Gateway is the remote users API the action creators talk to.
type Gateway interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, id string, user domain.User) (domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// StatusError is a non-success response other than 404.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: users api returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: users api returned %d: %s", e.Op, e.StatusCode, e.Message)
}
