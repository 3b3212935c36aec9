package pos

import (
	"github.com/shopspring/decimal"
)

// Item is a sellable item as last fetched from the inventory service.
// The POS holds a read-only, possibly stale copy; the service owns the data.
type Item struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	QuantityOnHand int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"price"`
}

// CartLine is one pending stock-removal entry. Code, Name and UnitPrice are
// snapshots captured when the line was added, so the displayed line and the
// cart total stay stable even if the catalog changes mid-session.
type CartLine struct {
	ItemID    string
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns the line total (unit price at add time times quantity).
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CommitLine is one line of a batch commit request.
type CommitLine struct {
	ItemID    string          `json:"itemId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CommitRequest is the immutable batch sent to the inventory service.
// RequestID is a client-generated identifier reused across retries of the
// same cart so the service can recognize a duplicate after a lost ack.
type CommitRequest struct {
	RequestID string       `json:"requestId"`
	Lines     []CommitLine `json:"items"`
}

// CommitAck is the opaque success acknowledgment of a batch commit.
type CommitAck struct {
	RequestID string `json:"requestId"`
	Applied   int    `json:"applied"`
}
