package ledger

import "github.com/example/stock-ledger/internal/infrastructure/store"

const (
	EventItemAdded         = "ItemAdded"
	EventRequestsSubmitted = "RequestsSubmitted"
	EventRequestApproved   = "RequestApproved"
	EventRequestDiscarded  = "RequestDiscarded"
)

type ItemAdded struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Actor     string `json:"actor"`
	Timestamp string `json:"timestamp"`
}

type RequestsSubmitted struct {
	User     string            `json:"user"`
	Type     store.RequestType `json:"type"`
	Requests []store.Request   `json:"requests"`
}

type RequestApproved struct {
	RequestID string            `json:"request_id"`
	ItemCode  string            `json:"item_code"`
	Item      string            `json:"item"`
	Type      store.RequestType `json:"type"`
	Quantity  int               `json:"quantity"`
	Stock     int               `json:"stock"`
	User      string            `json:"user"`
	Event     string            `json:"event"`
	Timestamp string            `json:"timestamp"`
}

// RequestDiscarded is emitted when approval removed a request whose item name
// matched nothing in inventory.
type RequestDiscarded struct {
	RequestID string            `json:"request_id"`
	Item      string            `json:"item"`
	Type      store.RequestType `json:"type"`
	Quantity  int               `json:"quantity"`
	User      string            `json:"user"`
}
