package engine

import "github.com/shopspring/decimal"

const DefaultSnapshotDepth = 10

type Level struct {
	IntentID string          `json:"intent_id"`
	Price    int64           `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type Snapshot struct {
	Asset string  `json:"asset"`
	Bids  []Level `json:"bids"`
	Asks  []Level `json:"asks"`
	// Spread is best ask minus best bid, nil if either side is empty.
	Spread *int64 `json:"spread"`
}

// Snapshot returns the top depth entries of each side of the asset: bids by
// descending price, asks by ascending price.
func (b *Book) Snapshot(asset string, depth int) Snapshot {
	if depth <= 0 {
		depth = DefaultSnapshotDepth
	}

	s := Snapshot{
		Asset: asset,
		Bids:  []Level{},
		Asks:  []Level{},
	}
	ab, ok := b.assets[asset]
	if !ok {
		return s
	}

	s.Bids = topLevels(ab.bids, depth)
	s.Asks = topLevels(ab.asks, depth)
	if len(s.Bids) > 0 && len(s.Asks) > 0 {
		spread := s.Asks[0].Price - s.Bids[0].Price
		s.Spread = &spread
	}
	return s
}

func topLevels(c *container, depth int) []Level {
	if c.Len() < depth {
		depth = c.Len()
	}
	dst := make([]Level, 0, depth)
	if depth == 0 {
		return dst
	}
	c.Ascend(func(e Entry) bool {
		dst = append(dst, Level{IntentID: e.IntentID, Price: e.Price, Quantity: e.Quantity})
		return len(dst) < depth
	})
	return dst
}
