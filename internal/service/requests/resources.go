package requests

const (
	MATCH      = "match"
	ORDER_BOOK = "order_book"
)

type Key struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}
