package cart

import (
	"encoding/json"

	"github.com/fjod/go_comics/internal/domain"
	"github.com/shopspring/decimal"
)

type snapshotJSON struct {
	Lines           []domain.CartLine `json:"lines"`
	ShippingApplied bool              `json:"shippingApplied"`
	Total           decimal.Decimal   `json:"total"`
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Lines:           s.Lines(),
		ShippingApplied: s.shipping,
		Total:           s.total,
	})
}

// ParseSnapshot restores a snapshot written by MarshalJSON. It always builds
// a new Snapshot. The encoded total is ignored and recomputed; lines with a
// quantity below one and repeated ids are dropped.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	lines := make(map[int64]domain.CartLine, len(raw.Lines))
	order := make([]int64, 0, len(raw.Lines))
	for _, line := range raw.Lines {
		if line.Quantity < 1 {
			continue
		}
		if _, dup := lines[line.ID]; dup {
			continue
		}
		lines[line.ID] = line
		order = append(order, line.ID)
	}

	return newSnapshot(lines, order, raw.ShippingApplied), nil
}
