package engine

import (
	"sort"

	"github.com/google/btree"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const treeDegree = 16

var (
	ErrDuplicateEntry   = errors.New("intent is already in the book")
	ErrNonPositivePrice = errors.New("price must be positive")
)

type container = btree.BTreeG[Entry]

type assetBook struct {
	bids *container
	asks *container
}

func newAssetBook() *assetBook {
	return &assetBook{
		bids: btree.NewG[Entry](treeDegree, bidLess),
		asks: btree.NewG[Entry](treeDegree, askLess),
	}
}

func (b *assetBook) side(s Side) *container {
	if s == SideBid {
		return b.bids
	}
	return b.asks
}

// Book keeps one bid and one ask container per asset. It is owned by a single
// matching loop and is not safe for concurrent use.
type Book struct {
	assets map[string]*assetBook
	placed map[string]Entry
}

func NewBook() *Book {
	return &Book{
		assets: make(map[string]*assetBook),
		placed: make(map[string]Entry),
	}
}

// Insert places the entry into the container of its side, creating the asset
// containers on first use.
func (b *Book) Insert(e Entry) error {
	if _, ok := b.placed[e.IntentID]; ok {
		return errors.From(ErrDuplicateEntry, logan.F{"intent_id": e.IntentID})
	}
	if e.Price <= 0 {
		return errors.From(ErrNonPositivePrice, logan.F{"intent_id": e.IntentID, "price": e.Price})
	}
	if e.Side != SideBid && e.Side != SideAsk {
		return errors.From(ErrUnknownSide, logan.F{"intent_id": e.IntentID, "side": e.Side})
	}

	ab, ok := b.assets[e.Asset]
	if !ok {
		ab = newAssetBook()
		b.assets[e.Asset] = ab
	}
	ab.side(e.Side).ReplaceOrInsert(e)
	b.placed[e.IntentID] = e
	return nil
}

// PeekBest returns the highest-priority entry of the side without removing it.
func (b *Book) PeekBest(side Side, asset string) (Entry, bool) {
	ab, ok := b.assets[asset]
	if !ok {
		return Entry{}, false
	}
	return ab.side(side).Min()
}

// PopBest removes and returns the highest-priority entry of the side.
func (b *Book) PopBest(side Side, asset string) (Entry, bool) {
	ab, ok := b.assets[asset]
	if !ok {
		return Entry{}, false
	}
	e, ok := ab.side(side).DeleteMin()
	if ok {
		delete(b.placed, e.IntentID)
	}
	return e, ok
}

// Remove drops a resting entry by intent id.
func (b *Book) Remove(intentID string) bool {
	e, ok := b.placed[intentID]
	if !ok {
		return false
	}
	b.assets[e.Asset].side(e.Side).Delete(e)
	delete(b.placed, intentID)
	return true
}

func (b *Book) Contains(intentID string) bool {
	_, ok := b.placed[intentID]
	return ok
}

func (b *Book) Len(side Side, asset string) int {
	ab, ok := b.assets[asset]
	if !ok {
		return 0
	}
	return ab.side(side).Len()
}

// Size is the number of entries across all assets and sides.
func (b *Book) Size() int {
	return len(b.placed)
}

// Assets lists every asset that has containers in the book, sorted.
func (b *Book) Assets() []string {
	assets := make([]string, 0, len(b.assets))
	for asset := range b.assets {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// Reset drops all containers. The book is rebuilt from scratch on every
// reconciliation.
func (b *Book) Reset() {
	b.assets = make(map[string]*assetBook)
	b.placed = make(map[string]Entry)
}
