// Package payment is the boundary to the hosted checkout processor.
package payment

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Event types the order pipeline reacts to.
const (
	EventSessionCompleted      = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

const PaymentStatusUnpaid = "unpaid"

// ErrSignature marks webhook payloads whose signature does not verify.
var ErrSignature = errors.New("invalid webhook signature")

type LineItem struct {
	Name       string
	UnitAmount int64 // minor units
	Quantity   int64
}

type SessionRequest struct {
	Currency    string
	SuccessURL  string
	CancelURL   string
	CustomerRef string
	Items       []LineItem
	Metadata    map[string]string
}

type Session struct {
	ID  string
	URL string
}

// Event is the subset of a verified webhook delivery the committer needs.
// Session fields are empty for events that do not carry a checkout session.
type Event struct {
	ID            string
	Type          string
	SessionID     string
	PaymentStatus string
	Metadata      map[string]string
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	// ParseEvent verifies the signature header before decoding anything.
	ParseEvent(payload []byte, signature string) (*Event, error)
}

// Cents converts a two-decimal amount to minor units.
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
