package domain

import "github.com/shopspring/decimal"

// ShippingFee is the flat surcharge added to a cart total when shipping is applied.
var ShippingFee = decimal.NewFromInt(6)

type CatalogItem struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Image       string          `json:"image"`
}

type CartLine struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
}

// LineFromItem copies the item attributes into a new line with quantity 1.
func LineFromItem(item CatalogItem) CartLine {
	return CartLine{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		UnitPrice:   item.UnitPrice,
		Image:       item.Image,
		Quantity:    1,
	}
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
