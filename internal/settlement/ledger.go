package settlement

import (
	"context"
	"net/url"

	"github.com/arc-coordination/matching-svc/internal/engine"
	"github.com/arc-coordination/matching-svc/internal/service/requests"
	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

var errNotAcknowledged = errors.New("ledger did not acknowledge the match")

// Ledger settles matches through an external ledger service. The ledger keys
// matches by id and answers 409 to a repeated commit, the stored record is
// read back in that case.
type Ledger struct {
	connector *jsonapi.Connector
	endpoint  *url.URL
}

func NewLedger(connector *jsonapi.Connector) *Ledger {
	u, _ := url.Parse("/matches")
	return &Ledger{connector: connector, endpoint: u}
}

func (l *Ledger) SubmitMatch(ctx context.Context, m engine.Match) (Receipt, error) {
	var resp requests.MatchResponse
	err := l.connector.PostJSON(l.endpoint, requests.NewAddMatch(m), ctx, &resp)
	if requests.IsConflict(err) {
		resp, err = l.get(m.MatchID)
	}
	if err != nil {
		return Receipt{}, errors.Wrap(err, "failed to add match into ledger")
	}

	return outcomeOf(m, resp)
}

func (l *Ledger) get(matchID string) (requests.MatchResponse, error) {
	var resp requests.MatchResponse
	u, err := url.Parse("/matches/" + url.PathEscape(matchID))
	if err != nil {
		return resp, errors.Wrap(err, "failed to build match url")
	}
	err = l.connector.Get(u, &resp)
	return resp, errors.Wrap(err, "failed to get existing match")
}

// outcomeOf maps the ledger status of the match. Anything but an explicit
// CONFIRMED or FAILED leaves the commit unacknowledged.
func outcomeOf(m engine.Match, resp requests.MatchResponse) (Receipt, error) {
	txRef := resp.Data.Attributes.TxRef
	if txRef == "" {
		txRef = m.MatchID
	}

	status := engine.Status(resp.Data.Attributes.Status)
	switch status {
	case engine.StatusConfirmed, engine.StatusFailed:
		return Receipt{TxRef: txRef, Outcome: status}, nil
	default:
		return Receipt{TxRef: txRef}, errors.From(errNotAcknowledged, logan.F{
			"match_id": m.MatchID,
			"status":   status,
		})
	}
}
