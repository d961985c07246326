package data

type Intents interface {
	ListActiveUnmatched() ([]Intent, error)
	MarkMatched(intentIDs ...string) error
}

type Intent struct {
	IntentID   string `db:"intent_id" structs:"intent_id"`
	IntentHash string `db:"intent_hash" structs:"intent_hash"`
	Actor      string `db:"actor" structs:"actor"`
	// Side, Price and Quantity come from the off-chain intent payload
	Side            string `db:"side" structs:"side"`
	Price           int64  `db:"price" structs:"price"`
	Quantity        string `db:"quantity" structs:"quantity"`
	Asset           string `db:"asset" structs:"asset"`
	SettlementAsset string `db:"settlement_asset" structs:"settlement_asset"`
	MandateID       string `db:"ap2_mandate_id" structs:"ap2_mandate_id"`
	CreatedAt       int64  `db:"created_at" structs:"created_at"`
	// ValidUntil is a unix timestamp, 0 means the intent never expires
	ValidUntil int64 `db:"valid_until" structs:"valid_until"`
	IsActive   bool  `db:"is_active" structs:"is_active"`
	IsMatched  bool  `db:"is_matched" structs:"is_matched"`
}
