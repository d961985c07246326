package settlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arc-coordination/matching-svc/internal/data"
	"github.com/arc-coordination/matching-svc/internal/engine"
	"github.com/shopspring/decimal"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type memMatches struct {
	mu      sync.Mutex
	records map[string]data.Match
	failSet bool
}

func newMemMatches() *memMatches {
	return &memMatches{records: make(map[string]data.Match)}
}

func (q *memMatches) Get(matchID string) (*data.Match, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	m, ok := q.records[matchID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (q *memMatches) Insert(m data.Match) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.records[m.MatchID]; !ok {
		q.records[m.MatchID] = m
	}
	return nil
}

func (q *memMatches) SetStatus(matchID, status, txRef string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failSet && status != string(engine.StatusPending) && status != string(engine.StatusSubmitted) {
		return errors.New("connection refused")
	}
	m := q.records[matchID]
	m.Status = status
	m.TxRef = txRef
	q.records[matchID] = m
	return nil
}

func (q *memMatches) SelectByStatus(statuses ...string) ([]data.Match, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var result []data.Match
	for _, m := range q.records {
		for _, s := range statuses {
			if m.Status == s {
				result = append(result, m)
			}
		}
	}
	return result, nil
}

func (q *memMatches) status(matchID string) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records[matchID].Status
}

type memIntents struct {
	mu      sync.Mutex
	matched map[string]int
}

func newMemIntents() *memIntents {
	return &memIntents{matched: make(map[string]int)}
}

func (q *memIntents) ListActiveUnmatched() ([]data.Intent, error) {
	return nil, nil
}

func (q *memIntents) MarkMatched(ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		q.matched[id]++
	}
	return nil
}

func (q *memIntents) isMatched(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.matched[id] > 0
}

type fakeBoundary struct {
	mu      sync.Mutex
	calls   int
	receipt Receipt
	err     error
	// block makes the commit wait for the channel or the context
	block   chan struct{}
	entered chan struct{}
}

func (b *fakeBoundary) SubmitMatch(ctx context.Context, m engine.Match) (Receipt, error) {
	b.mu.Lock()
	b.calls++
	receipt, err, block, entered := b.receipt, b.err, b.block, b.entered
	b.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	return receipt, err
}

func (b *fakeBoundary) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func confirming() *fakeBoundary {
	return &fakeBoundary{receipt: Receipt{TxRef: "0xtx", Outcome: engine.StatusConfirmed}}
}

func getTestSubmitter(t *testing.T, b Boundary, timeout time.Duration) (*Submitter, *memMatches, *memIntents) {
	matches, intents := newMemMatches(), newMemIntents()
	return NewSubmitter(logan.New(), b, matches, intents, timeout), matches, intents
}

func newTestMatch(bid, ask string) engine.Match {
	return engine.Match{
		MatchID:            engine.MatchID(bid, ask),
		Asset:              "BTC",
		SettlementAsset:    "USDC",
		BidIntentID:        bid,
		AskIntentID:        ask,
		SettlementPrice:    10050,
		SettlementQuantity: decimal.NewFromInt(1),
		Status:             engine.StatusPending,
	}
}
