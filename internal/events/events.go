package events

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-retail-store/internal/store"
)

const (
	EventOrderRequested = "OrderRequested"
	EventOrderPlaced    = "OrderPlaced"
	EventOrderRejected  = "OrderRejected"
)

const Version = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // external_id or receipt id
	Payload       json.RawMessage `json:"payload"`
}

// New wraps payload in an envelope stamped with a fresh event id.
func New(eventType, producer, correlationID, traceID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

type ItemQty struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty"`
}

type OrderRequestedPayload struct {
	ExternalID string       `json:"external_id"`
	Policy     store.Policy `json:"policy,omitempty"`
	Items      []ItemQty    `json:"items" validate:"min=1,dive"`
}

type OrderPlacedPayload struct {
	ReceiptID  string              `json:"receipt_id"`
	ExternalID string              `json:"external_id,omitempty"`
	Policy     store.Policy        `json:"policy"`
	Lines      []store.ReceiptLine `json:"lines"`
	Total      decimal.Decimal     `json:"total"`
}

type RejectedLine struct {
	Line      int    `json:"line"`
	ProductID string `json:"product_id,omitempty"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

type OrderRejectedPayload struct {
	ExternalID string         `json:"external_id,omitempty"`
	Policy     store.Policy   `json:"policy"`
	Reason     string         `json:"reason"`
	Lines      []RejectedLine `json:"lines,omitempty"`
	// Committed lists lines already bought under the partial policy.
	Committed []store.ReceiptLine `json:"committed,omitempty"`
}

func Placed(r *store.Receipt, externalID string) OrderPlacedPayload {
	return OrderPlacedPayload{
		ReceiptID:  r.ID,
		ExternalID: externalID,
		Policy:     r.Policy,
		Lines:      r.Lines,
		Total:      r.Total,
	}
}

// Rejected describes a failed order. committed is the partial receipt, if any.
func Rejected(err error, policy store.Policy, externalID string, committed *store.Receipt) OrderRejectedPayload {
	p := OrderRejectedPayload{
		ExternalID: externalID,
		Policy:     policy,
		Reason:     store.Kind(err),
	}
	if p.Reason == "" {
		p.Reason = "INTERNAL"
	}
	var (
		lerr *store.LineError
		rerr *store.RejectedError
	)
	switch {
	case errors.As(err, &rerr):
		for _, l := range rerr.Lines {
			p.Lines = append(p.Lines, rejectedLine(l))
		}
	case errors.As(err, &lerr):
		p.Lines = append(p.Lines, rejectedLine(lerr))
	}
	if committed != nil && len(committed.Lines) > 0 {
		p.Committed = committed.Lines
	}
	return p
}

func rejectedLine(l *store.LineError) RejectedLine {
	return RejectedLine{
		Line:      l.Index + 1,
		ProductID: l.ProductID,
		Reason:    store.Kind(l.Err),
		Message:   l.Err.Error(),
	}
}
