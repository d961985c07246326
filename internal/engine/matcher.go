package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

var errInvariant = errors.New("order book invariant violated")

// Matcher crosses the best bid and the best ask of a book.
type Matcher struct {
	book *Book
	now  func() time.Time
}

func NewMatcher(book *Book) *Matcher {
	return &Matcher{book: book, now: time.Now}
}

// TryMatch crosses the best bid and ask of the asset if bid price >= ask price.
// Both entries are removed from the book before the match is returned.
func (m *Matcher) TryMatch(asset string) (Match, bool) {
	bid, ok := m.book.PeekBest(SideBid, asset)
	if !ok {
		return Match{}, false
	}
	ask, ok := m.book.PeekBest(SideAsk, asset)
	if !ok {
		return Match{}, false
	}
	if bid.Price < ask.Price {
		return Match{}, false
	}

	m.mustPop(SideBid, asset, bid)
	m.mustPop(SideAsk, asset, ask)

	return Match{
		MatchID:            MatchID(bid.IntentID, ask.IntentID),
		Asset:              asset,
		SettlementAsset:    bid.SettlementAsset,
		BidIntentID:        bid.IntentID,
		AskIntentID:        ask.IntentID,
		Bidder:             bid.Actor,
		Asker:              ask.Actor,
		BidMandateID:       bid.MandateID,
		AskMandateID:       ask.MandateID,
		SettlementPrice:    midpoint(bid.Price, ask.Price),
		SettlementQuantity: minQuantity(bid, ask),
		Status:             StatusPending,
		CreatedAt:          m.now().Unix(),
	}, true
}

// MatchContinuously crosses the book until the best bid and ask no longer
// cross. Every match removes two entries, so it terminates.
func (m *Matcher) MatchContinuously(asset string) []Match {
	var matches []Match
	for {
		match, ok := m.TryMatch(asset)
		if !ok {
			return matches
		}
		matches = append(matches, match)
	}
}

func (m *Matcher) mustPop(side Side, asset string, peeked Entry) {
	popped, ok := m.book.PopBest(side, asset)
	if !ok || popped.IntentID != peeked.IntentID {
		panic(errors.From(errInvariant, logan.F{
			"asset":     asset,
			"side":      side,
			"intent_id": peeked.IntentID,
		}))
	}
}

// midpoint is floor((bid + ask) / 2) for bid >= ask > 0 without overflowing.
func midpoint(bid, ask int64) int64 {
	return ask + (bid-ask)/2
}

// minQuantity is the size of a single full-consumption fill; the larger side's
// remainder is not re-queued.
func minQuantity(bid, ask Entry) decimal.Decimal {
	if bid.Quantity.LessThan(ask.Quantity) {
		return bid.Quantity
	}
	return ask.Quantity
}
