package engine

import "github.com/shopspring/decimal"

// Entry is the matching-relevant copy of an intent. It is never mutated once
// placed into a book.
type Entry struct {
	IntentID        string
	Actor           string
	Side            Side
	Price           int64
	Quantity        decimal.Decimal
	Asset           string
	SettlementAsset string
	MandateID       string
	CreatedAt       int64
}

// bidLess orders bids by highest price first, then earliest creation.
func bidLess(a, b Entry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return timeLess(a, b)
}

// askLess orders asks by lowest price first, then earliest creation.
func askLess(a, b Entry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return timeLess(a, b)
}

func timeLess(a, b Entry) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.IntentID < b.IntentID
}
