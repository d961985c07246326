package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/arc-coordination/matching-svc/internal/data"
	"github.com/arc-coordination/matching-svc/internal/engine"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const DefaultSubmitTimeout = 2 * time.Minute

var (
	ErrInFlight       = errors.New("match is already being submitted")
	ErrOutcomeUnknown = errors.New("match was submitted earlier and its outcome is unknown")
)

// Submitter moves a match through PENDING -> SUBMITTED -> CONFIRMED|FAILED,
// recording every step in the match store.
type Submitter struct {
	log      *logan.Entry
	boundary Boundary
	matches  data.Matches
	intents  data.Intents
	timeout  time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSubmitter(log *logan.Entry, boundary Boundary, matches data.Matches, intents data.Intents, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Submitter{
		log:      log,
		boundary: boundary,
		matches:  matches,
		intents:  intents,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Submit commits the match. A failed commit is not an error: the match ends
// up FAILED and its intents stay eligible. Errors are returned when the store
// cannot be read or written, or when the match must be reconciled manually.
func (s *Submitter) Submit(ctx context.Context, m *engine.Match) error {
	if !s.acquire(m.MatchID) {
		return errors.From(ErrInFlight, logan.F{"match_id": m.MatchID})
	}
	defer s.release(m.MatchID)

	log := s.log.WithFields(logan.F{
		"match_id":      m.MatchID,
		"bid_intent_id": m.BidIntentID,
		"ask_intent_id": m.AskIntentID,
	})

	proceed, err := s.prepare(m, log)
	if err != nil || !proceed {
		return err
	}

	if err = s.advance(m, engine.StatusSubmitted, m.TxRef); err != nil {
		return errors.Wrap(err, "failed to mark match as submitted")
	}

	// the commit outlives the cancellation of the loop, bounded by the timeout
	child, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	receipt, err := s.boundary.SubmitMatch(child, *m)
	if receipt.TxRef == "" {
		receipt.TxRef = m.TxRef
	}
	if err != nil || receipt.Outcome != engine.StatusConfirmed {
		failLog := log.WithField("tx_ref", receipt.TxRef)
		if err != nil {
			failLog = failLog.WithError(err)
		}
		failLog.Warn("match settlement failed, releasing intents")
		if err := s.advance(m, engine.StatusFailed, receipt.TxRef); err != nil {
			log.WithError(err).WithField("outcome_unknown", true).Error("failed to record failed settlement")
			return errors.Wrap(err, "failed to mark match as failed")
		}
		return nil
	}

	if err = s.intents.MarkMatched(m.BidIntentID, m.AskIntentID); err != nil {
		log.WithError(err).WithFields(logan.F{"outcome_unknown": true, "tx_ref": receipt.TxRef}).
			Error("match confirmed but intents were not marked as matched")
		return errors.Wrap(err, "failed to mark intents as matched")
	}
	if err = s.advance(m, engine.StatusConfirmed, receipt.TxRef); err != nil {
		log.WithError(err).WithFields(logan.F{"outcome_unknown": true, "tx_ref": receipt.TxRef}).
			Error("failed to record confirmed settlement")
		return errors.Wrap(err, "failed to mark match as confirmed")
	}

	log.WithField("tx_ref", receipt.TxRef).Info("match confirmed")
	return nil
}

// prepare consults the store by match id. It reports whether the match has to
// be sent to the boundary.
func (s *Submitter) prepare(m *engine.Match, log *logan.Entry) (bool, error) {
	existing, err := s.matches.Get(m.MatchID)
	if err != nil {
		return false, errors.Wrap(err, "failed to get match")
	}

	if existing == nil {
		if m.Status != engine.StatusPending {
			return false, errors.From(engine.ErrInvalidTransition, logan.F{"from": m.Status, "to": engine.StatusPending})
		}
		err = s.matches.Insert(toRecord(*m))
		return err == nil, errors.Wrap(err, "failed to insert match")
	}

	switch engine.Status(existing.Status) {
	case engine.StatusConfirmed:
		log.Debug("match is already confirmed, skipping it")
		m.Status = engine.StatusConfirmed
		m.TxRef = existing.TxRef
		// repeat in case a previous run stopped between the two writes
		err = s.intents.MarkMatched(m.BidIntentID, m.AskIntentID)
		return false, errors.Wrap(err, "failed to mark intents as matched")
	case engine.StatusSubmitted:
		log.Warn("match was submitted before without a recorded outcome")
		m.Status = engine.StatusSubmitted
		m.TxRef = existing.TxRef
		return false, errors.From(ErrOutcomeUnknown, logan.F{"match_id": m.MatchID})
	case engine.StatusFailed:
		log.WithField("tx_ref", existing.TxRef).Debug("retrying previously failed match")
		m.Status = engine.StatusFailed
		// the boundary uses the reference of the previous attempt to avoid a second commit
		m.TxRef = existing.TxRef
		return true, s.advance(m, engine.StatusPending, m.TxRef)
	default:
		// never left PENDING, so it was never sent
		m.Status = engine.StatusPending
		m.TxRef = existing.TxRef
		return true, nil
	}
}

func (s *Submitter) advance(m *engine.Match, to engine.Status, txRef string) error {
	if err := engine.Transition(m.Status, to); err != nil {
		return err
	}
	if err := s.matches.SetStatus(m.MatchID, string(to), txRef); err != nil {
		return err
	}
	m.Status = to
	m.TxRef = txRef
	return nil
}

func (s *Submitter) acquire(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[matchID]; ok {
		return false
	}
	s.inflight[matchID] = struct{}{}
	return true
}

func (s *Submitter) release(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, matchID)
}

func toRecord(m engine.Match) data.Match {
	return data.Match{
		MatchID:            m.MatchID,
		Asset:              m.Asset,
		SettlementAsset:    m.SettlementAsset,
		BidIntentID:        m.BidIntentID,
		AskIntentID:        m.AskIntentID,
		Bidder:             m.Bidder,
		Asker:              m.Asker,
		BidMandateID:       m.BidMandateID,
		AskMandateID:       m.AskMandateID,
		MatchPrice:         m.SettlementPrice,
		SettlementQuantity: m.SettlementQuantity.String(),
		Status:             string(m.Status),
		TxRef:              m.TxRef,
		CreatedAt:          m.CreatedAt,
	}
}
