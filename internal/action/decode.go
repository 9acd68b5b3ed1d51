package action

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fjod/go_comics/internal/domain"
)

// envelope is the wire shape of an action: a type tag plus the union of all
// payload fields. The id is kept raw because cart actions carry a number and
// user actions carry a string.
type envelope struct {
	Type     Kind            `json:"type"`
	ID       json.RawMessage `json:"id,omitempty"`
	Applied  *bool           `json:"applied,omitempty"`
	User     *domain.User    `json:"user,omitempty"`
	GroupKey string          `json:"groupKey,omitempty"`
}

// Decode parses a JSON action envelope and validates it with the matching
// constructor.
func Decode(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}

	switch env.Type {
	case KindAddToCart, KindRemoveFromCart, KindIncrementQuantity, KindDecrementQuantity:
		id, err := env.itemID()
		if err != nil {
			return nil, err
		}
		return cartAction(env.Type, id)
	case KindSetShipping:
		if env.Applied == nil {
			return nil, fmt.Errorf("%w: %s requires applied", ErrInvalidAction, env.Type)
		}
		return NewSetShipping(*env.Applied), nil
	case KindUpsertUser:
		if env.User == nil {
			return nil, fmt.Errorf("%w: %s requires user", ErrInvalidAction, env.Type)
		}
		return NewUpsertUser(*env.User)
	case KindAssociateUser:
		id, err := env.userID()
		if err != nil {
			return nil, err
		}
		return NewAssociateUser(id, env.GroupKey)
	case KindRemoveUser:
		id, err := env.userID()
		if err != nil {
			return nil, err
		}
		return NewRemoveUser(id)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
}

func cartAction(kind Kind, id int64) (Action, error) {
	switch kind {
	case KindAddToCart:
		return NewAddToCart(id)
	case KindRemoveFromCart:
		return NewRemoveFromCart(id)
	case KindIncrementQuantity:
		return NewIncrementQuantity(id)
	default:
		return NewDecrementQuantity(id)
	}
}

func (e envelope) itemID() (int64, error) {
	if len(e.ID) == 0 {
		return 0, fmt.Errorf("%w: %s requires id", ErrInvalidAction, e.Type)
	}
	// json.Number also accepts numeric strings such as "5".
	var n json.Number
	if err := json.Unmarshal(e.ID, &n); err != nil {
		return 0, fmt.Errorf("%w: %s id must be a number", ErrInvalidAction, e.Type)
	}
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s id must be an integer", ErrInvalidAction, e.Type)
	}
	return id, nil
}

func (e envelope) userID() (string, error) {
	if len(e.ID) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(e.ID, &s); err != nil {
		return "", fmt.Errorf("%w: %s id must be a string", ErrInvalidAction, e.Type)
	}
	return s, nil
}
