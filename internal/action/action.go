// Package action defines the closed set of transitions the storefront state
// container understands. Each kind has its own payload type, and the New*
// constructors reject payloads the reducers would otherwise ignore.
package action

import (
	"errors"
	"fmt"

	"github.com/fjod/go_comics/internal/domain"
)

var (
	ErrInvalidAction = errors.New("invalid action")
	ErrUnknownAction = errors.New("unknown action type")
)

type Kind string

const (
	KindAddToCart         Kind = "ADD_TO_CART"
	KindRemoveFromCart    Kind = "REMOVE_ITEM"
	KindIncrementQuantity Kind = "ADD_QUANTITY"
	KindDecrementQuantity Kind = "SUB_QUANTITY"
	KindSetShipping       Kind = "SET_SHIPPING"
	KindUpsertUser        Kind = "SET_USER"
	KindAssociateUser     Kind = "ADD_USER"
	KindRemoveUser        Kind = "REMOVE_USER"
)

// Action is implemented only by the types in this package.
type Action interface {
	Kind() Kind
	sealed()
}

// The payload types below are plain values. Build them with the New*
// constructors or Decode, which reject invalid payloads; a literal such as
// AddToCart{ID: -1} skips that check and the reducers treat it as a no-op.

type AddToCart struct{ ID int64 }

type RemoveFromCart struct{ ID int64 }

type IncrementQuantity struct{ ID int64 }

type DecrementQuantity struct{ ID int64 }

type SetShipping struct{ Applied bool }

type UpsertUser struct{ User domain.User }

type AssociateUser struct {
	ID       string
	GroupKey string
}

type RemoveUser struct{ ID string }

func (AddToCart) Kind() Kind         { return KindAddToCart }
func (RemoveFromCart) Kind() Kind    { return KindRemoveFromCart }
func (IncrementQuantity) Kind() Kind { return KindIncrementQuantity }
func (DecrementQuantity) Kind() Kind { return KindDecrementQuantity }
func (SetShipping) Kind() Kind       { return KindSetShipping }
func (UpsertUser) Kind() Kind        { return KindUpsertUser }
func (AssociateUser) Kind() Kind     { return KindAssociateUser }
func (RemoveUser) Kind() Kind        { return KindRemoveUser }

func (AddToCart) sealed()         {}
func (RemoveFromCart) sealed()    {}
func (IncrementQuantity) sealed() {}
func (DecrementQuantity) sealed() {}
func (SetShipping) sealed()       {}
func (UpsertUser) sealed()        {}
func (AssociateUser) sealed()     {}
func (RemoveUser) sealed()        {}

func NewAddToCart(id int64) (AddToCart, error) {
	if err := validItemID(KindAddToCart, id); err != nil {
		return AddToCart{}, err
	}
	return AddToCart{ID: id}, nil
}

func NewRemoveFromCart(id int64) (RemoveFromCart, error) {
	if err := validItemID(KindRemoveFromCart, id); err != nil {
		return RemoveFromCart{}, err
	}
	return RemoveFromCart{ID: id}, nil
}

func NewIncrementQuantity(id int64) (IncrementQuantity, error) {
	if err := validItemID(KindIncrementQuantity, id); err != nil {
		return IncrementQuantity{}, err
	}
	return IncrementQuantity{ID: id}, nil
}

func NewDecrementQuantity(id int64) (DecrementQuantity, error) {
	if err := validItemID(KindDecrementQuantity, id); err != nil {
		return DecrementQuantity{}, err
	}
	return DecrementQuantity{ID: id}, nil
}

func NewSetShipping(applied bool) SetShipping {
	return SetShipping{Applied: applied}
}

func NewUpsertUser(user domain.User) (UpsertUser, error) {
	if user.ID == "" {
		return UpsertUser{}, fmt.Errorf("%w: %s requires user.id", ErrInvalidAction, KindUpsertUser)
	}
	return UpsertUser{User: user}, nil
}

func NewAssociateUser(id, groupKey string) (AssociateUser, error) {
	if id == "" || groupKey == "" {
		return AssociateUser{}, fmt.Errorf("%w: %s requires id and groupKey", ErrInvalidAction, KindAssociateUser)
	}
	return AssociateUser{ID: id, GroupKey: groupKey}, nil
}

func NewRemoveUser(id string) (RemoveUser, error) {
	if id == "" {
		return RemoveUser{}, fmt.Errorf("%w: %s requires id", ErrInvalidAction, KindRemoveUser)
	}
	return RemoveUser{ID: id}, nil
}

func validItemID(kind Kind, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s requires a positive id, got %d", ErrInvalidAction, kind, id)
	}
	return nil
}
