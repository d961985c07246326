package engine

import (
	"testing"
	"time"

	"github.com/arc-coordination/matching-svc/internal/data"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/distributed_lab/logan/v3"
)

const testNow = 1700000000

func getTestLoader() (*Loader, *Book) {
	book := NewBook()
	l := NewLoader(logan.New(), book)
	l.now = func() time.Time { return time.Unix(testNow, 0) }
	return l, book
}

func intent(id, side string, price int64) data.Intent {
	return data.Intent{
		IntentID:        id,
		Actor:           "0xactor",
		Side:            side,
		Price:           price,
		Quantity:        "1",
		Asset:           "BTC",
		SettlementAsset: "USDC",
		MandateID:       "mandate-" + id,
		CreatedAt:       testNow - 100,
		IsActive:        true,
	}
}

func TestLoader_loadsValidIntents(t *testing.T) {
	l, book := getTestLoader()

	stats := l.Load([]data.Intent{intent("b1", "bid", 10100), intent("a1", "ASK", 10000)}, nil)
	assert.Equal(t, LoadStats{Loaded: 2}, stats)

	best, ok := book.PeekBest(SideBid, "BTC")
	require.True(t, ok)
	assert.Equal(t, "b1", best.IntentID)
	assert.Equal(t, "USDC", best.SettlementAsset)
	assert.Equal(t, "mandate-b1", best.MandateID)
	assert.True(t, decimal.NewFromInt(1).Equal(best.Quantity))
}

func TestLoader_skipsMalformedIntents(t *testing.T) {
	l, book := getTestLoader()

	zero := intent("zero", "bid", 0)
	negative := intent("negative", "ask", -5)
	unknownSide := intent("side", "hold", 100)
	noAsset := intent("asset", "bid", 100)
	noAsset.Asset = "  "
	badQty := intent("qty", "bid", 100)
	badQty.Quantity = "lots"
	zeroQty := intent("zero-qty", "bid", 100)
	zeroQty.Quantity = "0"
	inactive := intent("inactive", "bid", 100)
	inactive.IsActive = false
	matched := intent("matched", "ask", 100)
	matched.IsMatched = true
	expired := intent("expired", "ask", 100)
	expired.ValidUntil = testNow - 1

	stats := l.Load([]data.Intent{
		zero, negative, unknownSide, noAsset, badQty, zeroQty, inactive, matched, expired,
		intent("ok", "bid", 100),
	}, nil)

	assert.Equal(t, LoadStats{Loaded: 1, Skipped: 9}, stats)
	assert.Equal(t, 1, book.Size())
	assert.True(t, book.Contains("ok"))
}

func TestLoader_skipsDuplicates(t *testing.T) {
	l, book := getTestLoader()

	stats := l.Load([]data.Intent{intent("b1", "bid", 100), intent("b1", "ask", 100)}, nil)
	assert.Equal(t, LoadStats{Loaded: 1, Skipped: 1}, stats)

	e, ok := book.PeekBest(SideBid, "BTC")
	require.True(t, ok)
	assert.Equal(t, "b1", e.IntentID)
	assert.Equal(t, 0, book.Len(SideAsk, "BTC"))
}

func TestLoader_decimalAndDefaultQuantity(t *testing.T) {
	l, book := getTestLoader()

	fractional := intent("b1", "bid", 100)
	fractional.Quantity = "0.25"
	missing := intent("a1", "ask", 200)
	missing.Quantity = ""

	l.Load([]data.Intent{fractional, missing}, nil)

	b, _ := book.PeekBest(SideBid, "BTC")
	assert.Equal(t, "0.25", b.Quantity.String())
	a, _ := book.PeekBest(SideAsk, "BTC")
	assert.Equal(t, "1", a.Quantity.String())
}

func TestLoader_notExpiredYet(t *testing.T) {
	l, book := getTestLoader()

	i := intent("b1", "bid", 100)
	i.ValidUntil = testNow + 60
	l.Load([]data.Intent{i}, nil)

	assert.True(t, book.Contains("b1"))
}

func TestLoader_replacesPreviousCycle(t *testing.T) {
	l, book := getTestLoader()

	l.Load([]data.Intent{intent("b1", "bid", 100), intent("a1", "ask", 200)}, nil)
	// b1 was cancelled since the previous read
	l.Load([]data.Intent{intent("a1", "ask", 200), intent("a2", "ask", 300)}, nil)

	assert.False(t, book.Contains("b1"))
	assert.Equal(t, 2, book.Size())
	assert.Equal(t, 0, book.Len(SideBid, "BTC"))
}

func TestLoader_skipsReserved(t *testing.T) {
	l, book := getTestLoader()

	stats := l.Load(
		[]data.Intent{intent("b1", "bid", 100), intent("a1", "ask", 90)},
		map[string]struct{}{"a1": {}},
	)

	assert.Equal(t, LoadStats{Loaded: 1, Skipped: 1}, stats)
	assert.False(t, book.Contains("a1"))
}
