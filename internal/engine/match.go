package engine

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSubmitted Status = "SUBMITTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
)

var ErrInvalidTransition = errors.New("invalid match status transition")

var transitions = map[Status][]Status{
	StatusPending:   {StatusSubmitted},
	StatusSubmitted: {StatusConfirmed, StatusFailed},
	// a failed match may be offered again by a later cycle
	StatusFailed: {StatusPending},
}

// Transition checks that a match may move from one status to another.
func Transition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return errors.From(ErrInvalidTransition, logan.F{"from": from, "to": to})
}

func (s Status) Final() bool {
	return s == StatusConfirmed || s == StatusFailed
}

type Match struct {
	MatchID            string
	Asset              string
	SettlementAsset    string
	BidIntentID        string
	AskIntentID        string
	Bidder             string
	Asker              string
	BidMandateID       string
	AskMandateID       string
	SettlementPrice    int64
	SettlementQuantity decimal.Decimal
	Status             Status
	TxRef              string
	CreatedAt          int64
}

// MatchID derives the idempotency key of the crossing of two intents.
func MatchID(bidIntentID, askIntentID string) string {
	return crypto.Keccak256Hash([]byte(bidIntentID + ":" + askIntentID)).Hex()
}
