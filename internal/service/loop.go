package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/arc-coordination/matching-svc/internal/data"
	"github.com/arc-coordination/matching-svc/internal/engine"
	"github.com/google/uuid"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type submitter interface {
	Submit(ctx context.Context, m *engine.Match) error
}

type loopOpts struct {
	SnapshotDepth    int
	StrictInvariants bool
}

// loop is the only owner of the book: one cycle reloads it from the store,
// crosses every asset and settles what was crossed.
type loop struct {
	log       *logan.Entry
	intents   data.Intents
	matches   data.Matches
	submitter submitter
	// publisher is nil when snapshots are only logged
	publisher publisher
	metrics   *metrics
	opts      loopOpts

	book   *engine.Book
	loader *engine.Loader
	// cross matches one asset until its book no longer crosses
	cross  func(asset string) []engine.Match

	state atomic.Int32
	cycle uint64
}

func newLoop(log *logan.Entry, intents data.Intents, matches data.Matches, sub submitter, pub publisher, m *metrics, opts loopOpts) *loop {
	book := engine.NewBook()
	matcher := engine.NewMatcher(book)
	return &loop{
		log:       log,
		intents:   intents,
		matches:   matches,
		submitter: sub,
		publisher: pub,
		metrics:   m,
		opts:      opts,
		book:      book,
		loader:    engine.NewLoader(log.WithField("component", "loader"), book),
		cross:     matcher.MatchContinuously,
	}
}

func (l *loop) State() State {
	return State(l.state.Load())
}

func (l *loop) setState(s State) {
	l.state.Store(int32(s))
}

// runCycle is a single IDLE -> LOADING -> MATCHING -> SUBMITTING -> IDLE pass.
// Cancellation before SUBMITTING drops the matches of the cycle; nothing has
// been written by then. Submissions already started are never abandoned.
func (l *loop) runCycle(ctx context.Context) error {
	l.cycle++
	log := l.log.WithFields(logan.F{"cycle": l.cycle, "cycle_id": uuid.NewString()})
	started := time.Now()
	l.metrics.cycles.Inc()
	defer func() {
		l.setState(StateIdle)
		l.metrics.cycleDuration.Observe(time.Since(started).Seconds())
	}()

	l.setState(StateLoading)
	if err := l.reload(log); err != nil {
		l.metrics.cycleErrors.Inc()
		return errors.Wrap(err, "failed to reconcile order book")
	}
	if ctx.Err() != nil {
		log.Info("cycle cancelled after loading")
		return nil
	}

	l.setState(StateMatching)
	var matches []engine.Match
	for _, asset := range l.book.Assets() {
		matches = append(matches, l.matchAsset(log, asset)...)
	}
	l.report(ctx, log)
	if ctx.Err() != nil {
		log.WithField("matches", len(matches)).Info("cycle cancelled before settlement, dropping matches")
		return nil
	}

	l.setState(StateSubmitting)
	l.submit(ctx, log, matches)
	return nil
}

func (l *loop) reload(log *logan.Entry) error {
	intents, err := l.intents.ListActiveUnmatched()
	if err != nil {
		return errors.Wrap(err, "failed to list active unmatched intents")
	}
	reserved, err := l.reservedIntents()
	if err != nil {
		return errors.Wrap(err, "failed to get reserved intents")
	}

	stats := l.loader.Load(intents, reserved)
	l.metrics.skippedIntents.Add(float64(stats.Skipped))
	l.metrics.bookSize.Set(float64(stats.Loaded))
	log.WithFields(logan.F{
		"loaded":  stats.Loaded,
		"skipped": stats.Skipped,
		"assets":  len(l.book.Assets()),
	}).Debug("order book reloaded")
	return nil
}

// reservedIntents are the intents of matches sent without a recorded outcome.
// They stay out of the book until reconciled.
func (l *loop) reservedIntents() (map[string]struct{}, error) {
	unresolved, err := l.matches.SelectByStatus(string(engine.StatusSubmitted))
	if err != nil {
		return nil, err
	}
	reserved := make(map[string]struct{}, 2*len(unresolved))
	for _, m := range unresolved {
		reserved[m.BidIntentID] = struct{}{}
		reserved[m.AskIntentID] = struct{}{}
	}
	return reserved, nil
}

// matchAsset isolates invariant violations of one asset from the others.
func (l *loop) matchAsset(log *logan.Entry, asset string) (matches []engine.Match) {
	defer func() {
		if rvr := recover(); rvr != nil {
			if l.opts.StrictInvariants {
				panic(rvr)
			}
			log.WithRecover(rvr).WithField("asset", asset).Error("matching of asset failed")
			matches = nil
		}
	}()

	matches = l.cross(asset)
	if len(matches) > 0 {
		l.metrics.matches.WithLabelValues(asset).Add(float64(len(matches)))
		log.WithFields(logan.F{"asset": asset, "matches": len(matches)}).Info("found crossing intents")
	}
	return matches
}

func (l *loop) report(ctx context.Context, log *logan.Entry) {
	for _, asset := range l.book.Assets() {
		snapshot := l.book.Snapshot(asset, l.opts.SnapshotDepth)
		fields := logan.F{
			"asset": asset,
			"bids":  len(snapshot.Bids),
			"asks":  len(snapshot.Asks),
		}
		if snapshot.Spread != nil {
			fields["spread"] = *snapshot.Spread
		}
		log.WithFields(fields).Debug("order book snapshot")

		if l.publisher == nil {
			continue
		}
		if err := l.publisher.Publish(ctx, snapshot, l.cycle); err != nil {
			log.WithError(err).WithField("asset", asset).Warn("failed to publish snapshot")
		}
	}
}

func (l *loop) submit(ctx context.Context, log *logan.Entry, matches []engine.Match) {
	for i := range matches {
		if ctx.Err() != nil {
			log.WithField("dropped", len(matches)-i).Info("stopping settlement, remaining matches are dropped")
			return
		}

		m := &matches[i]
		if err := l.submitter.Submit(ctx, m); err != nil {
			log.WithError(err).WithField("match_id", m.MatchID).Error("failed to settle match")
		}
		l.metrics.settlements.WithLabelValues(string(m.Status)).Inc()
	}
}
