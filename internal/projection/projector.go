package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// Activity event types that are not ledger event names.
const (
	ActivitySubmitted = "RequestSubmitted"
)

// Projector folds ledger events into the read side.
type Projector struct {
	readStore store.ProjectionStore
	logger    *zap.Logger
}

func NewProjector(readStore store.ProjectionStore, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{readStore: readStore, logger: logger}
}

// HandleEvent applies one Kafka message. Unknown aggregates and event types are
// skipped.
func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	p.logger.Debug("received event",
		zap.String("event_type", event.EventType),
		zap.String("aggregate_type", event.AggregateType),
		zap.String("aggregate_id", event.AggregateID))

	switch event.AggregateType {
	case ledger.AggregateItem:
		return p.handleItemEvent(ctx, event)
	case ledger.AggregateRequest:
		return p.handleRequestEvent(ctx, event)
	}
	return nil
}

func (p *Projector) handleItemEvent(ctx context.Context, event store.Event) error {
	if event.EventType != ledger.EventItemAdded {
		return nil
	}

	var e ledger.ItemAdded
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return err
	}

	if err := p.readStore.UpsertStockLevel(ctx, store.StockLevel{
		Code:      e.Code,
		Name:      e.Name,
		Qty:       e.Quantity,
		UpdatedAt: event.Timestamp,
	}); err != nil {
		return err
	}

	return p.readStore.AppendActivity(ctx, store.Activity{
		ID:        event.ID,
		EventType: event.EventType,
		ItemCode:  e.Code,
		Item:      e.Name,
		Qty:       e.Quantity,
		User:      e.Actor,
		At:        event.Timestamp,
	})
}

func (p *Projector) handleRequestEvent(ctx context.Context, event store.Event) error {
	switch event.EventType {
	case ledger.EventRequestsSubmitted:
		var e ledger.RequestsSubmitted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		for i, req := range e.Requests {
			if err := p.readStore.AppendActivity(ctx, store.Activity{
				ID:        fmt.Sprintf("%s:%d", event.ID, i),
				EventType: ActivitySubmitted,
				Item:      req.Item,
				Type:      req.Type,
				Qty:       req.Qty,
				User:      req.User,
				Event:     req.Event,
				At:        event.Timestamp,
			}); err != nil {
				return err
			}
		}

	case ledger.EventRequestApproved:
		var e ledger.RequestApproved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		// Stock carries the absolute resulting quantity, so replays converge.
		if err := p.readStore.UpsertStockLevel(ctx, store.StockLevel{
			Code:      e.ItemCode,
			Name:      e.Item,
			Qty:       e.Stock,
			UpdatedAt: event.Timestamp,
		}); err != nil {
			return err
		}
		if e.Stock < 0 {
			p.logger.Warn("projected negative stock",
				zap.String("item_code", e.ItemCode),
				zap.Int("stock", e.Stock))
		}
		return p.readStore.AppendActivity(ctx, store.Activity{
			ID:        event.ID,
			EventType: event.EventType,
			ItemCode:  e.ItemCode,
			Item:      e.Item,
			Type:      e.Type,
			Qty:       e.Quantity,
			User:      e.User,
			Event:     e.Event,
			At:        event.Timestamp,
		})

	case ledger.EventRequestDiscarded:
		var e ledger.RequestDiscarded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.AppendActivity(ctx, store.Activity{
			ID:        event.ID,
			EventType: event.EventType,
			Item:      e.Item,
			Type:      e.Type,
			Qty:       e.Quantity,
			User:      e.User,
			At:        event.Timestamp,
		})
	}

	return nil
}
