package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/readmodel"
	"github.com/example/stock-ledger/internal/session"
)

type Handler struct {
	ledgerSvc *ledger.Service
	sessions  *session.Registry
	logger    *zap.Logger
}

func NewHandler(ledgerSvc *ledger.Service, sessions *session.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{ledgerSvc: ledgerSvc, sessions: sessions, logger: logger}
}

// Stock
func (h *Handler) ListStock(ctx context.Context) ([]*StockReadModel, error) {
	inv, err := h.ledgerSvc.Inventory(ctx)
	if err != nil {
		h.logger.Error("list stock", zap.Error(err))
		return nil, err
	}
	rows := readmodel.StockRows(inv)
	out := make([]*StockReadModel, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, nil
}

// Pending requests
func (h *Handler) ListPendingRequests(ctx context.Context) ([]*PendingRequestReadModel, error) {
	pending, err := h.ledgerSvc.PendingRequests(ctx)
	if err != nil {
		h.logger.Error("list pending requests", zap.Error(err))
		return nil, err
	}
	out := make([]*PendingRequestReadModel, 0, len(pending))
	for i, req := range pending {
		out = append(out, &PendingRequestReadModel{
			Index:     i,
			ID:        req.ID,
			User:      req.User,
			Item:      req.Item,
			Qty:       req.Qty,
			Type:      req.Type,
			Timestamp: req.Timestamp,
			Event:     req.Event,
		})
	}
	return out, nil
}

// History, oldest first
func (h *Handler) ListHistory(ctx context.Context) ([]HistoryReadModel, error) {
	history, err := h.ledgerSvc.History(ctx)
	if err != nil {
		h.logger.Error("list history", zap.Error(err))
		return nil, err
	}
	return history, nil
}

// Event tags
func (h *Handler) ListEventTags(ctx context.Context) ([]string, error) {
	tags, err := h.ledgerSvc.EventTags(ctx)
	if err != nil {
		h.logger.Error("list event tags", zap.Error(err))
		return nil, err
	}
	return tags, nil
}

// Drafts
func (h *Handler) GetDraftCart(sessionID string, reqType store.RequestType) (*DraftCartReadModel, error) {
	s, err := h.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	lines := s.Lines(reqType)
	cart := &DraftCartReadModel{Type: reqType, Lines: make([]DraftLineReadModel, 0, len(lines))}
	for i, line := range lines {
		cart.Lines = append(cart.Lines, DraftLineReadModel{
			Line:  i + 1,
			Item:  line.Item,
			Qty:   line.Qty,
			Event: line.Event,
		})
	}
	return cart, nil
}
