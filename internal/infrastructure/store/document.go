package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Role is the access level attached to a user record.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// RequestType is the direction of a stock movement.
type RequestType string

const (
	RequestIn  RequestType = "IN"
	RequestOut RequestType = "OUT"
)

// Valid reports whether t is IN or OUT.
func (t RequestType) Valid() bool {
	return t == RequestIn || t == RequestOut
}

// Action labels a history entry.
type Action string

const (
	ActionAddItem    Action = "ADD_ITEM"
	ActionApproveIn  Action = "APPROVE_IN"
	ActionApproveOut Action = "APPROVE_OUT"
)

// NoEvent is the event tag stored when a movement has none.
const NoEvent = "-"

// TimestampLayout is the local-clock format used for every stored timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// User is a credential record keyed by username in Document.Users.
type User struct {
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Item is one inventory line. Code is the key of the on-disk object, not a field.
type Item struct {
	Code string `json:"-"`
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// Inventory is the ordered set of items. It encodes as a JSON object keyed by item
// code and keeps the insertion order of that object in both directions.
type Inventory []Item

type itemRecord struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

func (inv Inventory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range inv {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Code)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(itemRecord{Name: item.Name, Qty: item.Qty})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (inv *Inventory) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*inv = Inventory{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("inventory: expected object, got %v", tok)
	}

	items := Inventory{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("inventory: expected item code, got %v", tok)
		}
		var rec itemRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("inventory item %s: %w", code, err)
		}
		items = append(items, Item{Code: code, Name: rec.Name, Qty: rec.Qty})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*inv = items
	return nil
}

// FindByCode returns the index of the item with the given code, or -1.
func (inv Inventory) FindByCode(code string) int {
	for i, item := range inv {
		if item.Code == code {
			return i
		}
	}
	return -1
}

// FindByName returns the index of the first item whose name equals name, or -1.
// Names are not unique; callers get the earliest inserted match.
func (inv Inventory) FindByName(name string) int {
	for i, item := range inv {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// Request is a submitted, not yet approved stock movement.
type Request struct {
	ID        string      `json:"id,omitempty"`
	User      string      `json:"user"`
	Item      string      `json:"item"`
	Qty       int         `json:"qty"`
	Type      RequestType `json:"type"`
	Timestamp string      `json:"timestamp"`
	Event     string      `json:"event"`
}

// HistoryEntry is one immutable line of the stock card.
type HistoryEntry struct {
	Action    Action `json:"action"`
	Item      string `json:"item"`
	Qty       int    `json:"qty"`
	Stock     int    `json:"stock"`
	User      string `json:"user"`
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
}

// Document is the whole persisted ledger state.
type Document struct {
	Users           map[string]User `json:"users"`
	Inventory       Inventory       `json:"inventory"`
	ItemCounter     int             `json:"item_counter"`
	PendingRequests []Request       `json:"pending_requests"`
	History         []HistoryEntry  `json:"history"`
}

// Bootstrap returns the state used when no document has been saved yet.
func Bootstrap() *Document {
	return &Document{
		Users: map[string]User{
			"admin": {Password: "admin123", Role: RoleAdmin},
			"user":  {Password: "user123", Role: RoleUser},
		},
		Inventory:       Inventory{},
		ItemCounter:     0,
		PendingRequests: []Request{},
		History:         []HistoryEntry{},
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Users:           make(map[string]User, len(d.Users)),
		Inventory:       append(Inventory{}, d.Inventory...),
		ItemCounter:     d.ItemCounter,
		PendingRequests: append([]Request{}, d.PendingRequests...),
		History:         append([]HistoryEntry{}, d.History...),
	}
	for name, u := range d.Users {
		out.Users[name] = u
	}
	return out
}

// legacyRequestNamespace seeds ids derived for pending requests saved without one.
var legacyRequestNamespace = uuid.MustParse("6f1c2a8e-3d4b-5e9f-8a7c-1b2d3e4f5a6b")

// derivedRequestID is a name-based uuid over the request's position and content, so
// the same unsaved document yields the same ids on every load.
func derivedRequestID(pos int, r Request) string {
	name := fmt.Sprintf("%d|%s|%s|%s|%d|%s|%s|%s", pos, r.ID, r.User, r.Item, r.Qty, r.Type, r.Timestamp, r.Event)
	return uuid.NewSHA1(legacyRequestNamespace, []byte(name)).String()
}

// normalize fills collections left out of older documents. Pending requests without
// an id, and every repeat of an id already seen, get a derived id; the first holder of
// an id keeps it.
func (d *Document) normalize() {
	if d.Users == nil {
		d.Users = map[string]User{}
	}
	if d.Inventory == nil {
		d.Inventory = Inventory{}
	}
	if d.PendingRequests == nil {
		d.PendingRequests = []Request{}
	}
	if d.History == nil {
		d.History = []HistoryEntry{}
	}
	seen := make(map[string]bool, len(d.PendingRequests))
	for i := range d.PendingRequests {
		req := &d.PendingRequests[i]
		if req.ID == "" || seen[req.ID] {
			req.ID = derivedRequestID(i, *req)
		}
		seen[req.ID] = true
	}
}

// ErrEmptyDocument is returned by Decode for zero-length input.
var ErrEmptyDocument = errors.New("empty ledger document")

// Encode serializes the document with four-space indentation.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("nil ledger document")
	}
	return json.MarshalIndent(doc, "", "    ")
}

// Decode parses a document and normalizes it.
func Decode(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode ledger document: %w", err)
	}
	doc.normalize()
	return &doc, nil
}
