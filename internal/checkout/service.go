// Package checkout turns a customer's cart into a hosted payment session.
package checkout

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/cart"
	"github.com/MikeMC777/tiendas-ecom/internal/logging"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/payment"
	"github.com/MikeMC777/tiendas-ecom/internal/product"
)

type CartLister interface {
	ListByCustomer(ctx context.Context, customerID string) ([]cart.Item, error)
}

type Options struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

type Service struct {
	carts    CartLister
	products product.Getter
	gateway  payment.Gateway
	opts     Options
	metrics  *metrics.ServerMetrics
}

func NewService(carts CartLister, products product.Getter, gateway payment.Gateway, opts Options, m *metrics.ServerMetrics) *Service {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &Service{carts: carts, products: products, gateway: gateway, opts: opts, metrics: m}
}

// CreateSession snapshots the cart into session metadata. The cart itself is
// left alone; it is cleared when the payment is confirmed.
func (s *Service) CreateSession(ctx context.Context, customerID string) (*payment.Session, error) {
	ctx = logging.WithTag(ctx, "customer", customerID)

	items, err := s.carts.ListByCustomer(ctx, customerID)
	if err != nil {
		s.metrics.CheckoutResult("error")
		return nil, apperr.Internal(err, "load cart")
	}
	if len(items) == 0 {
		s.metrics.CheckoutResult("empty")
		return nil, apperr.Validation("empty_cart", "cart is empty")
	}

	md := Metadata{CustomerID: customerID, Total: decimal.Zero}
	req := payment.SessionRequest{
		Currency:    s.opts.Currency,
		SuccessURL:  s.opts.SuccessURL,
		CancelURL:   s.opts.CancelURL,
		CustomerRef: customerID,
	}
	for _, it := range items {
		name, err := s.productName(ctx, it.ProductID)
		if err != nil {
			s.metrics.CheckoutResult("error")
			return nil, err
		}
		md.Items = append(md.Items, ItemSnapshot{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.UnitPrice})
		md.Total = md.Total.Add(it.FinalPrice)
		req.Items = append(req.Items, payment.LineItem{
			Name:       name,
			UnitAmount: payment.Cents(it.UnitPrice),
			Quantity:   int64(it.Quantity),
		})
	}

	req.Metadata, err = EncodeMetadata(md)
	if err != nil {
		s.metrics.CheckoutResult("error")
		return nil, apperr.Wrap(apperr.KindValidation, "cart_too_large", err, "cart has too many lines for one checkout")
	}

	sess, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		s.metrics.CheckoutResult("error")
		logging.Printf(ctx, "checkout", "create session failed: %v", err)
		return nil, apperr.External(err, "payment provider unavailable")
	}
	s.metrics.CheckoutResult("ok")
	logging.Printf(ctx, "checkout", "session=%s lines=%d total=%s", sess.ID, len(items), md.Total.StringFixed(2))
	return sess, nil
}

func (s *Service) productName(ctx context.Context, id string) (string, error) {
	if s.products == nil {
		return id, nil
	}
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, product.ErrNotFound) {
		return id, nil
	}
	if err != nil {
		return "", apperr.Internal(err, "load product")
	}
	if p.Title == "" {
		return id, nil
	}
	return p.Title, nil
}
