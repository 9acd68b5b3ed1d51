package cart

import (
	"github.com/fjod/go_comics/internal/domain"
	"github.com/shopspring/decimal"
)

// Lines returns the cart lines in the order they were first added.
func (s *Snapshot) Lines() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lines[id])
	}
	return out
}

func (s *Snapshot) Line(id int64) (domain.CartLine, bool) {
	line, ok := s.lines[id]
	return line, ok
}

// LineCount is the number of distinct items in the cart.
func (s *Snapshot) LineCount() int {
	return len(s.lines)
}

// ItemCount is the sum of all line quantities.
func (s *Snapshot) ItemCount() int {
	n := 0
	for _, line := range s.lines {
		n += line.Quantity
	}
	return n
}

// Subtotal is the total without shipping.
func (s *Snapshot) Subtotal() decimal.Decimal {
	return computeTotal(s.lines, false)
}

func (s *Snapshot) Total() decimal.Decimal {
	return s.total
}

func (s *Snapshot) ShippingApplied() bool {
	return s.shipping
}

func (s *Snapshot) FormattedTotal() string {
	return FormatPrice(s.total)
}

// FormatPrice renders an amount as dollars with two decimals, e.g. "$26.00".
func FormatPrice(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
