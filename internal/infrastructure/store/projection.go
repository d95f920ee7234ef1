package store

import (
	"context"
	"time"
)

// StockLevel is the projected current quantity of one item.
type StockLevel struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Qty       int       `json:"qty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is one projected ledger event. ID is unique per event line so replays are
// idempotent.
type Activity struct {
	ID        string      `json:"id"`
	EventType string      `json:"event_type"`
	ItemCode  string      `json:"item_code,omitempty"`
	Item      string      `json:"item"`
	Type      RequestType `json:"type,omitempty"`
	Qty       int         `json:"qty"`
	User      string      `json:"user"`
	Event     string      `json:"event,omitempty"`
	At        time.Time   `json:"at"`
}

// ProjectionStore holds the read side built from ledger events. The tables are
// read by reporting tools outside this module.
type ProjectionStore interface {
	UpsertStockLevel(ctx context.Context, level StockLevel) error
	AppendActivity(ctx context.Context, activity Activity) error
}
