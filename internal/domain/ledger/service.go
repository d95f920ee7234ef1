package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/stock-ledger/internal/infrastructure/store"
)

const (
	AggregateItem    = "Item"
	AggregateRequest = "Request"
)

var (
	ErrInvalidName        = errors.New("item name must not be empty")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidRequestType = errors.New("request type must be IN or OUT")
	ErrEmptyBatch         = errors.New("no request lines to submit")
	ErrPersistence        = errors.New("ledger persistence failure")
)

// RequestLine is one line of a submitted cart.
type RequestLine struct {
	Item  string `json:"item"`
	Qty   int    `json:"qty"`
	Event string `json:"event"`
}

// Service is the ledger engine. Every operation loads the whole document, mutates it
// and saves it back before returning; nothing is cached between calls.
type Service struct {
	store     store.StateStore
	publisher store.Publisher
	logger    *zap.Logger
	now       func() time.Time

	// serializes load-mutate-save cycles within this process only
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher streams ledger events after each successful save.
func WithPublisher(p store.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.StateStore, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormatItemCode renders a counter value as an item code. Widths past four digits
// simply grow.
func FormatItemCode(n int) string {
	return fmt.Sprintf("ITM-%04d", n)
}

func (s *Service) load(ctx context.Context) (*store.Document, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", ErrPersistence, err)
	}
	return doc, nil
}

func (s *Service) save(ctx context.Context, doc *store.Document) error {
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("%w: save: %w", ErrPersistence, err)
	}
	return nil
}

// errNoChange lets a mutate callback skip the save.
var errNoChange = errors.New("no change")

// mutate runs one load-mutate-save cycle under the service lock and returns the
// time the mutation was stamped with. Events are published after it returns so the
// lock is never held across a broker round trip.
func (s *Service) mutate(ctx context.Context, fn func(doc *store.Document, at time.Time) error) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return time.Time{}, err
	}

	at := s.now()
	if err := fn(doc, at); err != nil {
		return at, err
	}
	return at, s.save(ctx, doc)
}

// AddItem registers a new master item with its opening stock and returns its code.
// Names are not checked for duplicates.
func (s *Service) AddItem(ctx context.Context, actor, name string, initialQty int) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if initialQty < 0 {
		return "", ErrInvalidQuantity
	}

	var code, ts string
	at, err := s.mutate(ctx, func(doc *store.Document, at time.Time) error {
		ts = at.Format(store.TimestampLayout)
		doc.ItemCounter++
		code = FormatItemCode(doc.ItemCounter)
		doc.Inventory = append(doc.Inventory, store.Item{Code: code, Name: name, Qty: initialQty})
		doc.History = append(doc.History, store.HistoryEntry{
			Action:    store.ActionAddItem,
			Item:      name,
			Qty:       initialQty,
			Stock:     initialQty,
			User:      actor,
			Event:     store.NoEvent,
			Timestamp: ts,
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("item added",
		zap.String("code", code),
		zap.String("name", name),
		zap.Int("qty", initialQty),
		zap.String("actor", actor))

	s.publish(ctx, code, AggregateItem, EventItemAdded, at, ItemAdded{
		Code:      code,
		Name:      name,
		Quantity:  initialQty,
		Actor:     actor,
		Timestamp: ts,
	})

	return code, nil
}

// SubmitRequests appends one pending request per line, all of the given type, on
// behalf of user. Item names are not checked against inventory. IN lines always
// carry the "-" event tag; OUT lines keep theirs, or "-" when blank.
func (s *Service) SubmitRequests(ctx context.Context, user string, reqType store.RequestType, lines []RequestLine) ([]store.Request, error) {
	if !reqType.Valid() {
		return nil, ErrInvalidRequestType
	}
	if len(lines) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, line := range lines {
		if strings.TrimSpace(line.Item) == "" {
			return nil, ErrInvalidName
		}
		if line.Qty < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var created []store.Request
	at, err := s.mutate(ctx, func(doc *store.Document, at time.Time) error {
		ts := at.Format(store.TimestampLayout)
		created = make([]store.Request, 0, len(lines))
		for _, line := range lines {
			event := store.NoEvent
			if reqType == store.RequestOut && strings.TrimSpace(line.Event) != "" {
				event = line.Event
			}
			created = append(created, store.Request{
				ID:        uuid.New().String(),
				User:      user,
				Item:      line.Item,
				Qty:       line.Qty,
				Type:      reqType,
				Timestamp: ts,
				Event:     event,
			})
		}
		doc.PendingRequests = append(doc.PendingRequests, created...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("requests submitted",
		zap.String("user", user),
		zap.String("type", string(reqType)),
		zap.Int("count", len(created)))

	s.publish(ctx, user, AggregateRequest, EventRequestsSubmitted, at, RequestsSubmitted{
		User:     user,
		Type:     reqType,
		Requests: created,
	})

	return created, nil
}

// Approve applies the pending requests at the given positions. Positions refer to
// the pending list as loaded; duplicates and positions out of range are ignored, so
// repeating a batch after it was applied is harmless as long as the list has not
// grown in between.
func (s *Service) Approve(ctx context.Context, indices []int) (*ApprovalReport, error) {
	return s.approve(ctx, func(doc *store.Document) []int {
		seen := make(map[int]bool, len(indices))
		selected := make([]int, 0, len(indices))
		for _, idx := range indices {
			if idx < 0 || idx >= len(doc.PendingRequests) || seen[idx] {
				continue
			}
			seen[idx] = true
			selected = append(selected, idx)
		}
		return selected
	})
}

// ApproveIDs applies the pending requests with the given ids. Unknown ids, including
// ids of requests already applied, are ignored.
func (s *Service) ApproveIDs(ctx context.Context, ids []string) (*ApprovalReport, error) {
	return s.approve(ctx, func(doc *store.Document) []int {
		wanted := make(map[string]bool, len(ids))
		for _, id := range ids {
			wanted[id] = true
		}
		selected := make([]int, 0, len(ids))
		for i, req := range doc.PendingRequests {
			if wanted[req.ID] {
				selected = append(selected, i)
			}
		}
		return selected
	})
}

// approve processes the selected requests in descending position order. The batch is
// captured by request id before anything is removed and removal matches on id; ids
// are unique within a decoded document. A request whose item name matches no
// inventory item is removed without a history entry; an OUT approval may leave stock
// negative. Both are reported, not prevented.
func (s *Service) approve(ctx context.Context, selectFn func(*store.Document) []int) (*ApprovalReport, error) {
	report := &ApprovalReport{Outcomes: []ApprovalOutcome{}}

	at, err := s.mutate(ctx, func(doc *store.Document, at time.Time) error {
		selected := selectFn(doc)
		if len(selected) == 0 {
			return errNoChange
		}
		sort.Sort(sort.Reverse(sort.IntSlice(selected)))

		batch := make([]store.Request, 0, len(selected))
		for _, idx := range selected {
			batch = append(batch, doc.PendingRequests[idx])
		}

		ts := at.Format(store.TimestampLayout)
		remove := make(map[string]bool, len(batch))
		for _, req := range batch {
			remove[req.ID] = true
			outcome := ApprovalOutcome{Request: req}

			idx := doc.Inventory.FindByName(req.Item)
			if idx >= 0 {
				item := &doc.Inventory[idx]
				if req.Type == store.RequestIn {
					item.Qty += req.Qty
				} else {
					item.Qty -= req.Qty
				}

				doc.History = append(doc.History, store.HistoryEntry{
					Action:    approveAction(req.Type),
					Item:      req.Item,
					Qty:       req.Qty,
					Stock:     item.Qty,
					User:      req.User,
					Event:     outcome.eventTag(),
					Timestamp: ts,
				})

				outcome.Applied = true
				outcome.ItemCode = item.Code
				outcome.Stock = item.Qty
			}
			report.Outcomes = append(report.Outcomes, outcome)
		}

		kept := make([]store.Request, 0, len(doc.PendingRequests)-len(batch))
		for _, req := range doc.PendingRequests {
			if !remove[req.ID] {
				kept = append(kept, req)
			}
		}
		doc.PendingRequests = kept
		return nil
	})
	if errors.Is(err, errNoChange) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	ts := at.Format(store.TimestampLayout)
	for _, o := range report.Outcomes {
		s.logOutcome(o)
		s.publishOutcome(ctx, o, at, ts)
	}

	return report, nil
}

// approveAction maps IN to APPROVE_IN and anything else to APPROVE_OUT.
func approveAction(t store.RequestType) store.Action {
	if t == store.RequestIn {
		return store.ActionApproveIn
	}
	return store.ActionApproveOut
}

func (s *Service) logOutcome(o ApprovalOutcome) {
	fields := []zap.Field{
		zap.String("request_id", o.Request.ID),
		zap.String("item", o.Request.Item),
		zap.String("type", string(o.Request.Type)),
		zap.Int("qty", o.Request.Qty),
		zap.String("user", o.Request.User),
	}
	switch {
	case !o.Applied:
		s.logger.Warn("approved request matched no inventory item; discarded without history", fields...)
	case o.Stock < 0:
		s.logger.Warn("approval left stock negative",
			append(fields, zap.String("code", o.ItemCode), zap.Int("stock", o.Stock))...)
	default:
		s.logger.Info("request approved",
			append(fields, zap.String("code", o.ItemCode), zap.Int("stock", o.Stock))...)
	}
}

func (s *Service) publishOutcome(ctx context.Context, o ApprovalOutcome, at time.Time, ts string) {
	req := o.Request
	if !o.Applied {
		s.publish(ctx, req.User, AggregateRequest, EventRequestDiscarded, at, RequestDiscarded{
			RequestID: req.ID,
			Item:      req.Item,
			Type:      req.Type,
			Quantity:  req.Qty,
			User:      req.User,
		})
		return
	}
	s.publish(ctx, o.ItemCode, AggregateRequest, EventRequestApproved, at, RequestApproved{
		RequestID: req.ID,
		ItemCode:  o.ItemCode,
		Item:      req.Item,
		Type:      req.Type,
		Quantity:  req.Qty,
		Stock:     o.Stock,
		User:      req.User,
		Event:     o.eventTag(),
		Timestamp: ts,
	})
}

// publish is best-effort: the mutation is already saved, so a failure is only logged.
// The envelope carries the mutation time, not the publish time, so consumers can
// order events from concurrent operations.
func (s *Service) publish(ctx context.Context, key, aggregateType, eventType string, at time.Time, data any) {
	if s.publisher == nil {
		return
	}
	event, err := store.NewEvent(key, aggregateType, eventType, data)
	if err != nil {
		s.logger.Error("failed to build ledger event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	event.Timestamp = at
	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.Error("failed to publish ledger event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err))
	}
}

// Document returns the full persisted state.
func (s *Service) Document(ctx context.Context) (*store.Document, error) {
	return s.load(ctx)
}

// Inventory returns the items in insertion order.
func (s *Service) Inventory(ctx context.Context) (store.Inventory, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Inventory, nil
}

// PendingRequests returns the pending requests in submission order.
func (s *Service) PendingRequests(ctx context.Context) ([]store.Request, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.PendingRequests, nil
}

// History returns the stock card, oldest first.
func (s *Service) History(ctx context.Context) ([]store.HistoryEntry, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.History, nil
}

// EventTags returns the distinct event tags used in history and pending requests,
// sorted, without "-" and blanks.
func (s *Service) EventTags(ctx context.Context) ([]string, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, h := range doc.History {
		seen[h.Event] = true
	}
	for _, r := range doc.PendingRequests {
		seen[r.Event] = true
	}
	delete(seen, "")
	delete(seen, store.NoEvent)

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}
