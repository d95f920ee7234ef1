package readmodel

import "github.com/example/stock-ledger/internal/infrastructure/store"

// StockReadModel is one row of the stock table and of the exported report
type StockReadModel struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// PendingRequestReadModel is a pending request with its position in the approval list
type PendingRequestReadModel struct {
	Index     int               `json:"index"`
	ID        string            `json:"id"`
	User      string            `json:"user"`
	Item      string            `json:"item"`
	Qty       int               `json:"qty"`
	Type      store.RequestType `json:"type"`
	Timestamp string            `json:"timestamp"`
	Event     string            `json:"event"`
}

// HistoryReadModel is one line of the stock card
type HistoryReadModel = store.HistoryEntry

// DraftLineReadModel is a cart line with its 1-based position
type DraftLineReadModel struct {
	Line  int    `json:"line"`
	Item  string `json:"item"`
	Qty   int    `json:"qty"`
	Event string `json:"event"`
}

// DraftCartReadModel is one of a session's draft carts
type DraftCartReadModel struct {
	Type  store.RequestType    `json:"type"`
	Lines []DraftLineReadModel `json:"lines"`
}

// StockRows flattens the inventory into report rows, in inventory order
func StockRows(inv store.Inventory) []StockReadModel {
	rows := make([]StockReadModel, 0, len(inv))
	for _, item := range inv {
		rows = append(rows, StockReadModel{Code: item.Code, Name: item.Name, Qty: item.Qty})
	}
	return rows
}
