package order

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/logging"
)

// Service is the seller side of orders: listing and moving status forward.
type Service struct {
	orders Repository
}

func NewService(orders Repository) *Service { return &Service{orders: orders} }

// List returns the seller's orders, optionally filtered by status. An empty
// status means all.
func (s *Service) List(ctx context.Context, sellerID, status string, limit, offset int) ([]Order, error) {
	var st Status
	if status != "" {
		var ok bool
		if st, ok = ParseStatus(status); !ok {
			return nil, apperr.Validation("invalid_status", "unknown order status")
		}
	}
	out, err := s.orders.ListBySeller(ctx, sellerID, st, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err, "list orders")
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, sellerID, orderID, status string) (*Order, error) {
	to, ok := ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("invalid_status", "unknown order status")
	}

	// a foreign order answers like a missing one so its existence does not leak
	owns, err := s.orders.SellerOwns(ctx, sellerID, orderID)
	if err != nil {
		return nil, apperr.Internal(err, "check order ownership")
	}
	if !owns {
		return nil, apperr.NotFound("order_not_found", "order not found")
	}
	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("order_not_found", "order not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load order")
	}

	if o.Status == to {
		return o, nil
	}
	if !o.Status.CanMoveTo(to) {
		return nil, apperr.Conflict("invalid_transition", "cannot move order from "+string(o.Status)+" to "+string(to))
	}
	err = s.orders.UpdateStatus(ctx, o.ID, o.Status, to)
	if errors.Is(err, ErrStale) {
		return nil, apperr.Conflict("status_changed", "order status changed, reload and retry")
	}
	if err != nil {
		return nil, apperr.Internal(err, "update order status")
	}
	logging.Printf(ctx, "orders", "order=%s %s->%s seller=%s", o.ID, o.Status, to, sellerID)
	o.Status = to
	return o, nil
}
