package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func bid(id string, price, createdAt int64) Entry {
	return entry(id, SideBid, price, createdAt)
}

func ask(id string, price, createdAt int64) Entry {
	return entry(id, SideAsk, price, createdAt)
}

func entry(id string, side Side, price, createdAt int64) Entry {
	return Entry{
		IntentID:        id,
		Actor:           "actor-" + id,
		Side:            side,
		Price:           price,
		Quantity:        decimal.NewFromInt(1),
		Asset:           "BTC",
		SettlementAsset: "USDC",
		MandateID:       "mandate-" + id,
		CreatedAt:       createdAt,
	}
}

func withQty(e Entry, qty int64) Entry {
	e.Quantity = decimal.NewFromInt(qty)
	return e
}

func withAsset(e Entry, asset string) Entry {
	e.Asset = asset
	return e
}

func getTestBook(t *testing.T, entries ...Entry) *Book {
	book := NewBook()
	for _, e := range entries {
		require.NoError(t, book.Insert(e))
	}
	return book
}
