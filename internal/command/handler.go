package command

import (
	"context"
	"errors"

	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/session"
)

var (
	ErrUnknownItem    = errors.New("item not in inventory")
	ErrMixedSelection = errors.New("select requests by indices or by ids, not both")
)

type Handler struct {
	ledgerSvc *ledger.Service
	sessions  *session.Registry
}

func NewHandler(ledgerSvc *ledger.Service, sessions *session.Registry) *Handler {
	return &Handler{
		ledgerSvc: ledgerSvc,
		sessions:  sessions,
	}
}

// AddItem registers a master item and returns its code
func (h *Handler) AddItem(ctx context.Context, cmd AddItem) (string, error) {
	return h.ledgerSvc.AddItem(ctx, cmd.Actor, cmd.Name, cmd.Quantity)
}

// AddDraftLine puts a line in the session's cart. Only names currently in inventory
// can be picked.
func (h *Handler) AddDraftLine(ctx context.Context, cmd AddDraftLine) (ledger.RequestLine, error) {
	s, err := h.sessions.Get(cmd.SessionID)
	if err != nil {
		return ledger.RequestLine{}, err
	}

	inv, err := h.ledgerSvc.Inventory(ctx)
	if err != nil {
		return ledger.RequestLine{}, err
	}
	if inv.FindByName(cmd.Item) < 0 {
		return ledger.RequestLine{}, ErrUnknownItem
	}

	return s.AddLine(cmd.Type, cmd.Item, cmd.Quantity, cmd.Event)
}

// RemoveDraftLine drops a cart line by its 1-based position
func (h *Handler) RemoveDraftLine(ctx context.Context, cmd RemoveDraftLine) error {
	s, err := h.sessions.Get(cmd.SessionID)
	if err != nil {
		return err
	}
	return s.RemoveLine(cmd.Type, cmd.Line)
}

// SubmitDrafts turns the cart into pending requests. The cart is cleared only when
// the requests were saved.
func (h *Handler) SubmitDrafts(ctx context.Context, cmd SubmitDrafts) ([]store.Request, error) {
	s, err := h.sessions.Get(cmd.SessionID)
	if err != nil {
		return nil, err
	}

	lines := s.Lines(cmd.Type)
	created, err := h.ledgerSvc.SubmitRequests(ctx, s.Username, cmd.Type, lines)
	if err != nil {
		return nil, err
	}

	s.Clear(cmd.Type)
	return created, nil
}

// ApproveRequests applies pending requests selected either by position or by id.
func (h *Handler) ApproveRequests(ctx context.Context, cmd ApproveRequests) (*ledger.ApprovalReport, error) {
	switch {
	case len(cmd.Indices) > 0 && len(cmd.IDs) > 0:
		return nil, ErrMixedSelection
	case len(cmd.IDs) > 0:
		return h.ledgerSvc.ApproveIDs(ctx, cmd.IDs)
	default:
		return h.ledgerSvc.Approve(ctx, cmd.Indices)
	}
}
