package data

type Matches interface {
	// Get returns nil if there is no match with such id
	Get(matchID string) (*Match, error)
	// Insert keeps the existing record if the match is already stored
	Insert(Match) error
	SetStatus(matchID, status, txRef string) error
	SelectByStatus(statuses ...string) ([]Match, error)
}

type Match struct {
	MatchID            string `db:"match_id" structs:"match_id"`
	Asset              string `db:"asset" structs:"asset"`
	SettlementAsset    string `db:"settlement_asset" structs:"settlement_asset"`
	BidIntentID        string `db:"bid_intent_id" structs:"bid_intent_id"`
	AskIntentID        string `db:"ask_intent_id" structs:"ask_intent_id"`
	Bidder             string `db:"bidder" structs:"bidder"`
	Asker              string `db:"asker" structs:"asker"`
	BidMandateID       string `db:"bid_mandate_id" structs:"bid_mandate_id"`
	AskMandateID       string `db:"ask_mandate_id" structs:"ask_mandate_id"`
	MatchPrice         int64  `db:"match_price" structs:"match_price"`
	SettlementQuantity string `db:"settlement_quantity" structs:"settlement_quantity"`
	Status             string `db:"status" structs:"status"`
	TxRef              string `db:"tx_ref" structs:"tx_ref"`
	CreatedAt          int64  `db:"created_at" structs:"created_at"`
}
