package requests

import "github.com/arc-coordination/matching-svc/internal/engine"

type AddMatchAttributes struct {
	Asset              string `json:"asset"`
	SettlementAsset    string `json:"settlement_asset"`
	BidIntentId        string `json:"bid_intent_id"`
	AskIntentId        string `json:"ask_intent_id"`
	Bidder             string `json:"bidder"`
	Asker              string `json:"asker"`
	BidMandateId       string `json:"bid_mandate_id,omitempty"`
	AskMandateId       string `json:"ask_mandate_id,omitempty"`
	MatchPrice         int64  `json:"match_price"`
	SettlementQuantity string `json:"settlement_quantity"`
	CreatedAt          int64  `json:"created_at"`
}

type AddMatch struct {
	Key
	Attributes AddMatchAttributes `json:"attributes"`
}

type AddMatchRequest struct {
	Data AddMatch `json:"data"`
}

type MatchAttributes struct {
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

type MatchResponse struct {
	Data struct {
		Key
		Attributes MatchAttributes `json:"attributes"`
	} `json:"data"`
}

// NewAddMatch uses the match id as the resource id, so that the ledger can
// reject a repeated commit of the same match.
func NewAddMatch(m engine.Match) AddMatchRequest {
	return AddMatchRequest{
		Data: AddMatch{
			Key: Key{
				ID:   m.MatchID,
				Type: MATCH,
			},
			Attributes: AddMatchAttributes{
				Asset:              m.Asset,
				SettlementAsset:    m.SettlementAsset,
				BidIntentId:        m.BidIntentID,
				AskIntentId:        m.AskIntentID,
				Bidder:             m.Bidder,
				Asker:              m.Asker,
				BidMandateId:       m.BidMandateID,
				AskMandateId:       m.AskMandateID,
				MatchPrice:         m.SettlementPrice,
				SettlementQuantity: m.SettlementQuantity.String(),
				CreatedAt:          m.CreatedAt,
			},
		},
	}
}
