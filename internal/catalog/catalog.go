package catalog

import (
	"github.com/fjod/go_comics/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog is an ordered, read-only set of purchasable items. It is safe for
// concurrent readers since nothing mutates it after New returns.
type Catalog struct {
	items []domain.CatalogItem
	index map[int64]int
}

// New builds a catalog from a copy of items. When ids repeat, the first wins.
func New(items []domain.CatalogItem) *Catalog {
	c := &Catalog{
		items: make([]domain.CatalogItem, 0, len(items)),
		index: make(map[int64]int, len(items)),
	}
	for _, item := range items {
		if _, exists := c.index[item.ID]; exists {
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// Default returns the comics the storefront ships with.
func Default() *Catalog {
	return New([]domain.CatalogItem{
		{ID: 1, Title: "Batman #497", Description: "VG Condition", UnitPrice: decimal.NewFromInt(10), Image: "item1.jpg"},
		{ID: 2, Title: "Superman #75", Description: "NM Condition", UnitPrice: decimal.NewFromInt(21), Image: "item2.jpg"},
		{ID: 3, Title: "Captain America #25 Vol. 2", Description: "NM Condition", UnitPrice: decimal.NewFromInt(43), Image: "item3.jpg"},
		{ID: 4, Title: "Spider-Man #700", Description: "Mint Condition", UnitPrice: decimal.NewFromInt(16), Image: "item4.jpg"},
		{ID: 5, Title: "Spawn #1", Description: "Fine Condition", UnitPrice: decimal.NewFromInt(10), Image: "item5.jpg"},
		{ID: 6, Title: "The Maxx #2", Description: "VG Condition", UnitPrice: decimal.NewFromInt(6), Image: "item6.jpg"},
	})
}

func (c *Catalog) Item(id int64) (domain.CatalogItem, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return c.items[i], true
}

// Items returns a copy of the catalog in display order.
func (c *Catalog) Items() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}
