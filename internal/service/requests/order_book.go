package requests

import (
	"strconv"

	"github.com/arc-coordination/matching-svc/internal/engine"
)

type OrderBookAttributes struct {
	Bids   []engine.Level `json:"bids"`
	Asks   []engine.Level `json:"asks"`
	Spread *int64         `json:"spread,omitempty"`
}

type OrderBook struct {
	Key
	Attributes OrderBookAttributes `json:"attributes"`
}

type OrderBookRequest struct {
	Data OrderBook `json:"data"`
}

// NewOrderBook keys the snapshot by asset and cycle number, the collector
// keeps only the latest one per asset.
func NewOrderBook(s engine.Snapshot, cycle uint64) OrderBookRequest {
	return OrderBookRequest{
		Data: OrderBook{
			Key: Key{
				ID:   s.Asset + ":" + strconv.FormatUint(cycle, 10),
				Type: ORDER_BOOK,
			},
			Attributes: OrderBookAttributes{
				Bids:   s.Bids,
				Asks:   s.Asks,
				Spread: s.Spread,
			},
		},
	}
}
