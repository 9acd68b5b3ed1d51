package action

import (
	"testing"

	"github.com/fjod/go_comics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_RejectInvalidShapes(t *testing.T) {
	_, err := NewAddToCart(0)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewRemoveFromCart(-1)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewIncrementQuantity(0)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewDecrementQuantity(0)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewUpsertUser(domain.User{Firstname: "no id"})
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewAssociateUser("u1", "")
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewAssociateUser("", "g1")
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewRemoveUser("")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestConstructors_Valid(t *testing.T) {
	add, err := NewAddToCart(1)
	require.NoError(t, err)
	assert.Equal(t, AddToCart{ID: 1}, add)
	assert.Equal(t, KindAddToCart, add.Kind())

	assoc, err := NewAssociateUser("u1", "g1")
	require.NoError(t, err)
	assert.Equal(t, AssociateUser{ID: "u1", GroupKey: "g1"}, assoc)

	assert.Equal(t, SetShipping{Applied: true}, NewSetShipping(true))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Action
	}{
		{"add to cart", `{"type":"ADD_TO_CART","id":1}`, AddToCart{ID: 1}},
		{"numeric string id", `{"type":"REMOVE_ITEM","id":"4"}`, RemoveFromCart{ID: 4}},
		{"increment", `{"type":"ADD_QUANTITY","id":2}`, IncrementQuantity{ID: 2}},
		{"decrement", `{"type":"SUB_QUANTITY","id":2}`, DecrementQuantity{ID: 2}},
		{"shipping off", `{"type":"SET_SHIPPING","applied":false}`, SetShipping{Applied: false}},
		{"upsert", `{"type":"SET_USER","user":{"id":"u1","username":"bwayne"}}`, UpsertUser{User: domain.User{ID: "u1", Username: "bwayne"}}},
		{"associate", `{"type":"ADD_USER","id":"u1","groupKey":"g1"}`, AssociateUser{ID: "u1", GroupKey: "g1"}},
		{"remove user", `{"type":"REMOVE_USER","id":"u1"}`, RemoveUser{ID: "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"malformed json", `{"type":`, ErrInvalidAction},
		{"unknown type", `{"type":"ADD_SHIPPING"}`, ErrUnknownAction},
		{"missing cart id", `{"type":"ADD_TO_CART"}`, ErrInvalidAction},
		{"non numeric cart id", `{"type":"ADD_TO_CART","id":"abc"}`, ErrInvalidAction},
		{"fractional cart id", `{"type":"ADD_TO_CART","id":1.5}`, ErrInvalidAction},
		{"zero cart id", `{"type":"ADD_TO_CART","id":0}`, ErrInvalidAction},
		{"shipping without flag", `{"type":"SET_SHIPPING"}`, ErrInvalidAction},
		{"upsert without user", `{"type":"SET_USER"}`, ErrInvalidAction},
		{"upsert without id", `{"type":"SET_USER","user":{"username":"x"}}`, ErrInvalidAction},
		{"associate without group", `{"type":"ADD_USER","id":"u1"}`, ErrInvalidAction},
		{"remove with numeric id", `{"type":"REMOVE_USER","id":7}`, ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
