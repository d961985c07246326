package engine

import (
	"strings"
	"time"

	"github.com/arc-coordination/matching-svc/internal/data"
	"github.com/shopspring/decimal"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

var (
	errInactive    = errors.New("intent is not active")
	errMatched     = errors.New("intent is already matched")
	errExpired     = errors.New("intent has expired")
	errNoAsset     = errors.New("intent has no asset")
	errBadQuantity = errors.New("quantity must be a positive number")
	errReserved    = errors.New("intent takes part in a match with unknown outcome")
)

type LoadStats struct {
	Loaded  int
	Skipped int
}

// Loader rebuilds a book from the intents read from the store.
type Loader struct {
	log  *logan.Entry
	book *Book
	now  func() time.Time
}

func NewLoader(log *logan.Entry, book *Book) *Loader {
	return &Loader{log: log, book: book, now: time.Now}
}

// Load replaces the whole content of the book with the given intents. Intents
// that cannot take part in matching are logged and skipped, as well as the
// reserved ones.
func (l *Loader) Load(intents []data.Intent, reserved map[string]struct{}) LoadStats {
	l.book.Reset()

	var stats LoadStats
	for _, intent := range intents {
		err := l.load(intent, reserved)
		if err != nil {
			stats.Skipped++
			l.log.WithError(err).WithField("intent_id", intent.IntentID).Warn("skipping intent")
			continue
		}
		stats.Loaded++
	}
	return stats
}

func (l *Loader) load(intent data.Intent, reserved map[string]struct{}) error {
	if _, ok := reserved[intent.IntentID]; ok {
		return errReserved
	}
	e, err := l.toEntry(intent)
	if err != nil {
		return err
	}
	return l.book.Insert(e)
}

func (l *Loader) toEntry(intent data.Intent) (Entry, error) {
	switch {
	case !intent.IsActive:
		return Entry{}, errInactive
	case intent.IsMatched:
		return Entry{}, errMatched
	case intent.ValidUntil > 0 && intent.ValidUntil < l.now().Unix():
		return Entry{}, errors.From(errExpired, logan.F{"valid_until": intent.ValidUntil})
	case intent.Price <= 0:
		return Entry{}, errors.From(ErrNonPositivePrice, logan.F{"price": intent.Price})
	}

	side, err := ParseSide(intent.Side)
	if err != nil {
		return Entry{}, errors.From(err, logan.F{"side": intent.Side})
	}
	asset := strings.TrimSpace(intent.Asset)
	if asset == "" {
		return Entry{}, errNoAsset
	}
	qty, err := parseQuantity(intent.Quantity)
	if err != nil {
		return Entry{}, errors.From(err, logan.F{"quantity": intent.Quantity})
	}

	return Entry{
		IntentID:        intent.IntentID,
		Actor:           intent.Actor,
		Side:            side,
		Price:           intent.Price,
		Quantity:        qty,
		Asset:           asset,
		SettlementAsset: intent.SettlementAsset,
		MandateID:       intent.MandateID,
		CreatedAt:       intent.CreatedAt,
	}, nil
}

// parseQuantity defaults an empty quantity to a single unit.
func parseQuantity(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NewFromInt(1), nil
	}
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errBadQuantity
	}
	if !qty.IsPositive() {
		return decimal.Decimal{}, errBadQuantity
	}
	return qty, nil
}
