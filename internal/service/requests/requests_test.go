package requests

import (
	"encoding/json"
	"testing"

	"github.com/arc-coordination/matching-svc/internal/engine"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddMatch(t *testing.T) {
	m := engine.Match{
		MatchID:            engine.MatchID("b1", "a1"),
		Asset:              "BTC",
		SettlementAsset:    "USDC",
		BidIntentID:        "b1",
		AskIntentID:        "a1",
		Bidder:             "0xbidder",
		Asker:              "0xasker",
		BidMandateID:       "mandate-b1",
		SettlementPrice:    10050,
		SettlementQuantity: decimal.RequireFromString("1.5"),
		CreatedAt:          1700000000,
	}

	raw, err := json.Marshal(NewAddMatch(m))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"data": {
			"id": "`+m.MatchID+`",
			"type": "match",
			"attributes": {
				"asset": "BTC",
				"settlement_asset": "USDC",
				"bid_intent_id": "b1",
				"ask_intent_id": "a1",
				"bidder": "0xbidder",
				"asker": "0xasker",
				"bid_mandate_id": "mandate-b1",
				"match_price": 10050,
				"settlement_quantity": "1.5",
				"created_at": 1700000000
			}
		}
	}`, string(raw))
}

func TestNewOrderBook(t *testing.T) {
	spread := int64(500)
	s := engine.Snapshot{
		Asset:  "BTC",
		Bids:   []engine.Level{{IntentID: "b2", Price: 9000, Quantity: decimal.NewFromInt(2)}},
		Asks:   []engine.Level{{IntentID: "a2", Price: 9500, Quantity: decimal.NewFromInt(1)}},
		Spread: &spread,
	}

	req := NewOrderBook(s, 7)
	assert.Equal(t, "BTC:7", req.Data.ID)
	assert.Equal(t, ORDER_BOOK, req.Data.Type)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": {
			"id": "BTC:7",
			"type": "order_book",
			"attributes": {
				"bids": [{"intent_id": "b2", "price": 9000, "quantity": "2"}],
				"asks": [{"intent_id": "a2", "price": 9500, "quantity": "1"}],
				"spread": 500
			}
		}
	}`, string(raw))
}

func TestNewOrderBook_emptySide(t *testing.T) {
	req := NewOrderBook(engine.Snapshot{Asset: "ETH"}, 1)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "spread")
}

func TestIsConflict(t *testing.T) {
	assert.False(t, IsConflict(nil))
	assert.False(t, IsConflict(assert.AnError))
}
