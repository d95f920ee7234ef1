package command

import "github.com/example/stock-ledger/internal/infrastructure/store"

// Item Commands
type AddItem struct {
	Actor    string `json:"-"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Draft Commands
type AddDraftLine struct {
	SessionID string            `json:"-"`
	Type      store.RequestType `json:"-"`
	Item      string            `json:"item"`
	Quantity  int               `json:"quantity"`
	Event     string            `json:"event"`
}

type RemoveDraftLine struct {
	SessionID string            `json:"-"`
	Type      store.RequestType `json:"-"`
	Line      int               `json:"line"`
}

type SubmitDrafts struct {
	SessionID string            `json:"-"`
	Type      store.RequestType `json:"-"`
}

// Approval Commands
type ApproveRequests struct {
	Indices []int    `json:"indices"`
	IDs     []string `json:"ids"`
}
