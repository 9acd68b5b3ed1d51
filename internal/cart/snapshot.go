package cart

import (
	"github.com/fjod/go_comics/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is one immutable state of a cart. Transitions build a new Snapshot
// and never touch an existing one, so a *Snapshot may be shared freely.
type Snapshot struct {
	lines    map[int64]domain.CartLine
	order    []int64
	total    decimal.Decimal
	shipping bool
}

// Empty is the state of a cart nobody has touched yet.
func Empty() *Snapshot {
	return &Snapshot{lines: map[int64]domain.CartLine{}}
}

func newSnapshot(lines map[int64]domain.CartLine, order []int64, shipping bool) *Snapshot {
	return &Snapshot{
		lines:    lines,
		order:    order,
		total:    computeTotal(lines, shipping),
		shipping: shipping,
	}
}

// computeTotal is the only place a total is produced. Totals are never
// adjusted incrementally.
func computeTotal(lines map[int64]domain.CartLine, shipping bool) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	if shipping {
		total = total.Add(domain.ShippingFee)
	}
	return total
}

func (s *Snapshot) cloneLines() map[int64]domain.CartLine {
	lines := make(map[int64]domain.CartLine, len(s.lines)+1)
	for id, line := range s.lines {
		lines[id] = line
	}
	return lines
}

func (s *Snapshot) cloneOrder() []int64 {
	order := make([]int64, len(s.order), len(s.order)+1)
	copy(order, s.order)
	return order
}

func (s *Snapshot) withoutLine(id int64) *Snapshot {
	lines := s.cloneLines()
	delete(lines, id)

	order := make([]int64, 0, len(s.order))
	for _, existing := range s.order {
		if existing != id {
			order = append(order, existing)
		}
	}
	return newSnapshot(lines, order, s.shipping)
}

func (s *Snapshot) withQuantity(id int64, quantity int) *Snapshot {
	lines := s.cloneLines()
	line := lines[id]
	line.Quantity = quantity
	lines[id] = line
	return newSnapshot(lines, s.cloneOrder(), s.shipping)
}

func (s *Snapshot) withLine(line domain.CartLine) *Snapshot {
	lines := s.cloneLines()
	lines[line.ID] = line
	order := append(s.cloneOrder(), line.ID)
	return newSnapshot(lines, order, s.shipping)
}

func (s *Snapshot) withShipping(applied bool) *Snapshot {
	return newSnapshot(s.cloneLines(), s.cloneOrder(), applied)
}
