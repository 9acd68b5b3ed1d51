package cart

import (
	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/catalog"
	"github.com/fjod/go_comics/internal/domain"
)

// Reducer applies cart actions against a fixed catalog.
type Reducer struct {
	catalog *catalog.Catalog
}

func NewReducer(c *catalog.Catalog) *Reducer {
	return &Reducer{catalog: c}
}

// Apply returns the snapshot that results from a. It never fails: actions that
// do not apply to s, and kinds the cart does not handle, return s itself.
func (r *Reducer) Apply(s *Snapshot, a action.Action) *Snapshot {
	if s == nil {
		s = Empty()
	}

	switch a := a.(type) {
	case action.AddToCart:
		return r.addToCart(s, a.ID)
	case action.RemoveFromCart:
		if _, ok := s.lines[a.ID]; !ok {
			return s
		}
		return s.withoutLine(a.ID)
	case action.IncrementQuantity:
		line, ok := s.lines[a.ID]
		if !ok {
			return s
		}
		return s.withQuantity(a.ID, line.Quantity+1)
	case action.DecrementQuantity:
		line, ok := s.lines[a.ID]
		if !ok {
			return s
		}
		if line.Quantity <= 1 {
			return s.withoutLine(a.ID)
		}
		return s.withQuantity(a.ID, line.Quantity-1)
	case action.SetShipping:
		if s.shipping == a.Applied {
			return s
		}
		return s.withShipping(a.Applied)
	default:
		return s
	}
}

func (r *Reducer) addToCart(s *Snapshot, id int64) *Snapshot {
	if r.catalog == nil {
		return s
	}
	item, ok := r.catalog.Item(id)
	if !ok {
		return s
	}
	if line, exists := s.lines[id]; exists {
		return s.withQuantity(id, line.Quantity+1)
	}
	return s.withLine(domain.LineFromItem(item))
}
