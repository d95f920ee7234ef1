package ledger

import "github.com/example/stock-ledger/internal/infrastructure/store"

// ApprovalOutcome describes what approving one request did.
type ApprovalOutcome struct {
	Request  store.Request `json:"request"`
	Applied  bool          `json:"applied"`
	ItemCode string        `json:"item_code,omitempty"`
	Stock    int           `json:"stock"`
}

func (o ApprovalOutcome) eventTag() string {
	if o.Request.Event == "" {
		return store.NoEvent
	}
	return o.Request.Event
}

// ApprovalReport lists outcomes in processing order (descending pending position).
type ApprovalReport struct {
	Outcomes []ApprovalOutcome `json:"outcomes"`
}

// Applied returns how many requests changed stock.
func (r *ApprovalReport) Applied() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Applied {
			n++
		}
	}
	return n
}

// Unmatched returns requests that were removed without touching inventory.
func (r *ApprovalReport) Unmatched() []store.Request {
	var out []store.Request
	for _, o := range r.Outcomes {
		if !o.Applied {
			out = append(out, o.Request)
		}
	}
	return out
}

// NegativeStock returns applied outcomes whose resulting stock is below zero.
func (r *ApprovalReport) NegativeStock() []ApprovalOutcome {
	var out []ApprovalOutcome
	for _, o := range r.Outcomes {
		if o.Applied && o.Stock < 0 {
			out = append(out, o)
		}
	}
	return out
}
