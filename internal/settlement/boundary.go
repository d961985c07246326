package settlement

import (
	"context"

	"github.com/arc-coordination/matching-svc/internal/engine"
)

// Receipt is the answer of the settlement boundary to a commit request.
// Outcome is either engine.StatusConfirmed or engine.StatusFailed.
type Receipt struct {
	TxRef   string
	Outcome engine.Status
}

// Boundary commits a match to the external ledger and waits for the outcome.
// Implementations must be idempotent by match id. When a previous attempt
// failed, m.TxRef holds the reference it returned. Only an explicit
// acknowledgment of the commit may be reported as confirmed.
type Boundary interface {
	SubmitMatch(ctx context.Context, m engine.Match) (Receipt, error)
}
