package notification

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/email"
	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// Mailer sends the admin notifications
type Mailer interface {
	SendPendingRequests(to, user, reqType string, lines []email.RequestLine) error
	SendNegativeStockAlert(to string, alert email.StockAlert) error
}

// Handler processes ledger events for sending notifications
type Handler struct {
	mailer     Mailer
	adminEmail string
	logger     *zap.Logger
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, adminEmail string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("failed to unmarshal event", zap.Error(err))
		return err
	}

	switch event.EventType {
	case ledger.EventRequestsSubmitted:
		return h.handleRequestsSubmitted(event)
	case ledger.EventRequestApproved:
		return h.handleRequestApproved(event)
	}
	return nil
}

func (h *Handler) handleRequestsSubmitted(event store.Event) error {
	var e ledger.RequestsSubmitted
	if err := json.Unmarshal(event.Data, &e); err != nil {
		h.logger.Error("failed to unmarshal RequestsSubmitted event", zap.Error(err))
		return err
	}
	if len(e.Requests) == 0 {
		return nil
	}

	lines := make([]email.RequestLine, len(e.Requests))
	for i, req := range e.Requests {
		lines[i] = email.RequestLine{Item: req.Item, Qty: req.Qty, Event: req.Event}
	}

	if err := h.mailer.SendPendingRequests(h.adminEmail, e.User, string(e.Type), lines); err != nil {
		h.logger.Error("failed to send pending requests email", zap.String("to", h.adminEmail), zap.Error(err))
		return err
	}

	h.logger.Info("pending requests email sent",
		zap.String("to", h.adminEmail),
		zap.String("user", e.User),
		zap.Int("count", len(lines)))
	return nil
}

func (h *Handler) handleRequestApproved(event store.Event) error {
	var e ledger.RequestApproved
	if err := json.Unmarshal(event.Data, &e); err != nil {
		h.logger.Error("failed to unmarshal RequestApproved event", zap.Error(err))
		return err
	}
	if e.Stock >= 0 {
		return nil
	}

	alert := email.StockAlert{
		ItemCode:  e.ItemCode,
		Item:      e.Item,
		Qty:       e.Quantity,
		Stock:     e.Stock,
		User:      e.User,
		Event:     e.Event,
		Timestamp: e.Timestamp,
	}
	if err := h.mailer.SendNegativeStockAlert(h.adminEmail, alert); err != nil {
		h.logger.Error("failed to send negative stock alert", zap.String("item_code", e.ItemCode), zap.Error(err))
		return err
	}

	h.logger.Warn("negative stock alert sent", zap.String("item_code", e.ItemCode), zap.Int("stock", e.Stock))
	return nil
}
