package http

import (
	"github.com/fjod/go_comics/internal/cart"
	"github.com/fjod/go_comics/internal/directory"
	"github.com/fjod/go_comics/internal/domain"
	"github.com/shopspring/decimal"
)

type CatalogItemDTO struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Image       string          `json:"image"`
}

type CatalogResponse struct {
	Items []CatalogItemDTO `json:"items"`
}

type CartLineDTO struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Lines           []CartLineDTO   `json:"lines"`
	ItemCount       int             `json:"itemCount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingApplied bool            `json:"shippingApplied"`
	Total           decimal.Decimal `json:"total"`
	FormattedTotal  string          `json:"formattedTotal"`
}

type AddItemRequestDTO struct {
	ID int64 `json:"id"`
}

type ShippingRequestDTO struct {
	Applied *bool `json:"applied"`
}

// UserDTO is the public view of a user. Passwords are never returned.
type UserDTO struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	GroupKey  string `json:"groupKey,omitempty"`
}

type UserRequestDTO struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	GroupKey  string `json:"groupKey"`
}

type GroupResponse struct {
	GroupKey string    `json:"groupKey"`
	UserIDs  []string  `json:"userIds"`
	Users    []UserDTO `json:"users"`
}

type StateResponse struct {
	Cart   CartResponse        `json:"cart"`
	Users  []UserDTO           `json:"users"`
	Groups map[string][]string `json:"groups"`
}

func toCatalogItemDTO(item domain.CatalogItem) CatalogItemDTO {
	return CatalogItemDTO{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		UnitPrice:   item.UnitPrice,
		Image:       item.Image,
	}
}

func toCartResponse(s *cart.Snapshot) CartResponse {
	lines := s.Lines()
	resp := CartResponse{
		Lines:           make([]CartLineDTO, 0, len(lines)),
		ItemCount:       s.ItemCount(),
		Subtotal:        s.Subtotal(),
		ShippingApplied: s.ShippingApplied(),
		Total:           s.Total(),
		FormattedTotal:  s.FormattedTotal(),
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, CartLineDTO{
			ID:        line.ID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal(),
		})
	}
	return resp
}

func toUserDTO(user domain.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Username:  user.Username,
		Email:     user.Email,
		GroupKey:  user.GroupKey,
	}
}

func (req UserRequestDTO) toUser(id string) domain.User {
	return domain.User{
		ID:        id,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		GroupKey:  req.GroupKey,
	}
}

func toStateResponse(cartSnap *cart.Snapshot, users *directory.Snapshot) StateResponse {
	resp := StateResponse{
		Cart:   toCartResponse(cartSnap),
		Users:  make([]UserDTO, 0, users.Len()),
		Groups: make(map[string][]string),
	}
	for _, user := range users.Users() {
		resp.Users = append(resp.Users, toUserDTO(user))
	}
	for _, key := range users.Groups() {
		resp.Groups[key] = users.Group(key)
	}
	return resp
}
