package order

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/checkout"
	"github.com/MikeMC777/tiendas-ecom/internal/logging"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/payment"
)

type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeDeferred  Outcome = "deferred"
	OutcomeIgnored   Outcome = "ignored"
)

// Committer turns verified payment webhooks into orders. Deliveries for the
// same payment reference converge on a single order.
type Committer struct {
	gateway payment.Gateway
	orders  Repository
	metrics *metrics.ServerMetrics
}

func NewCommitter(gateway payment.Gateway, orders Repository, m *metrics.ServerMetrics) *Committer {
	return &Committer{gateway: gateway, orders: orders, metrics: m}
}

// Handle verifies and applies one webhook delivery. A nil error means the
// delivery can be acknowledged; any error makes the processor retry, except
// a signature failure which it never will.
func (c *Committer) Handle(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	ev, err := c.gateway.ParseEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrSignature) {
			c.metrics.WebhookOutcome("signature_invalid")
			return "", apperr.Wrap(apperr.KindSignature, "signature_invalid", err, "webhook signature verification failed")
		}
		c.metrics.WebhookOutcome("error")
		return "", apperr.Internal(err, "decode webhook event")
	}
	ctx = logging.WithTag(ctx, "event", ev.ID)

	out, err := c.apply(ctx, ev)
	if err != nil {
		c.metrics.WebhookOutcome("error")
		logging.Printf(ctx, "webhook", "type=%s failed: %v", ev.Type, err)
		return "", err
	}
	c.metrics.WebhookOutcome(string(out))
	logging.Printf(ctx, "webhook", "type=%s outcome=%s", ev.Type, out)
	return out, nil
}

func (c *Committer) apply(ctx context.Context, ev *payment.Event) (Outcome, error) {
	switch ev.Type {
	case payment.EventSessionCompleted:
		// delayed payment methods complete the session before the money arrives
		if ev.PaymentStatus == payment.PaymentStatusUnpaid {
			return OutcomeDeferred, nil
		}
	case payment.EventAsyncPaymentSucceeded:
	default:
		return OutcomeIgnored, nil
	}

	if ev.SessionID == "" {
		return "", apperr.Wrap(apperr.KindInternal, "malformed_metadata", errors.New("session id missing"), "malformed event")
	}
	ctx = logging.WithTag(ctx, "payment_ref", ev.SessionID)

	md, err := checkout.DecodeMetadata(ev.Metadata)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "malformed_metadata", err, "malformed session metadata")
	}

	o := &Order{
		ID:               uuid.NewString(),
		CustomerID:       md.CustomerID,
		TotalPrice:       md.Total,
		Status:           StatusProcessing,
		PaymentReference: ev.SessionID,
	}
	for _, it := range md.Items {
		o.Items = append(o.Items, Item{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	created, err := c.orders.Commit(ctx, o)
	if err != nil {
		return "", apperr.Internal(err, "commit order")
	}
	if !created {
		return OutcomeDuplicate, nil
	}
	logging.Printf(ctx, "webhook", "order=%s customer=%s total=%s items=%d",
		o.ID, o.CustomerID, o.TotalPrice.StringFixed(2), len(o.Items))
	return OutcomeCommitted, nil
}
