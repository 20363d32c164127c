// Package payout implements the seller payout workflow. Sellers request,
// admins settle; a payout never claims more than the seller's balance minus
// the payouts still pending.
package payout

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/db"
	"github.com/MikeMC777/tiendas-ecom/internal/earnings"
	"github.com/MikeMC777/tiendas-ecom/internal/logging"
)

type Service struct {
	payouts  Repository
	earnings earnings.Store
}

func NewService(payouts Repository, earnings earnings.Store) *Service {
	return &Service{payouts: payouts, earnings: earnings}
}

func (s *Service) Create(ctx context.Context, sellerID string, req CreateRequest) (*Payout, error) {
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("invalid_amount", "amount must be greater than zero")
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, apperr.Validation("invalid_amount", "amount has more than two decimals")
	}
	method := strings.TrimSpace(req.PayoutMethod)
	if method == "" {
		return nil, apperr.Validation("payout_method_required", "payout_method is required")
	}

	p := &Payout{
		ID:           uuid.NewString(),
		SellerID:     sellerID,
		Amount:       req.Amount,
		PayoutMethod: method,
		Status:       StatusPending,
	}
	err := s.payouts.Create(ctx, p, func(ctx context.Context, q db.Querier) (decimal.Decimal, error) {
		t, err := s.earnings.Totals(ctx, q, sellerID)
		if err != nil {
			return decimal.Zero, err
		}
		return earnings.Compute(t).Available(), nil
	})
	if errors.Is(err, ErrInsufficientBalance) {
		return nil, apperr.Conflict("insufficient_balance", "amount exceeds available balance")
	}
	if err != nil {
		return nil, apperr.Internal(err, "create payout")
	}
	logging.Printf(ctx, "payouts", "requested id=%s seller=%s amount=%s", p.ID, sellerID, p.Amount.StringFixed(2))
	return p, nil
}

// UpdateStatus settles a pending payout as paid or rejected. Settled payouts
// are final.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Payout, error) {
	to, ok := ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("invalid_status", "unknown payout status")
	}
	if to == StatusPending {
		return nil, apperr.Conflict("invalid_transition", "a payout cannot move back to pending")
	}

	err := s.payouts.Settle(ctx, id, to)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, apperr.NotFound("payout_not_found", "payout not found")
	case errors.Is(err, ErrNotPending):
		return nil, apperr.Conflict("invalid_transition", "payout is already settled")
	case err != nil:
		return nil, apperr.Internal(err, "update payout")
	}
	logging.Printf(ctx, "payouts", "settled id=%s status=%s", id, to)

	p, err := s.payouts.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "reload payout")
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.payouts.DeletePending(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("payout_not_found", "payout not found")
	case errors.Is(err, ErrNotPending):
		return apperr.Conflict("payout_not_pending", "only pending payouts can be deleted")
	case err != nil:
		return apperr.Internal(err, "delete payout")
	}
	logging.Printf(ctx, "payouts", "deleted id=%s", id)
	return nil
}

func (s *Service) List(ctx context.Context, status string) ([]Payout, error) {
	var st Status
	if status != "" {
		var ok bool
		if st, ok = ParseStatus(status); !ok {
			return nil, apperr.Validation("invalid_status", "unknown payout status")
		}
	}
	out, err := s.payouts.List(ctx, st)
	if err != nil {
		return nil, apperr.Internal(err, "list payouts")
	}
	return out, nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string) ([]Payout, error) {
	out, err := s.payouts.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperr.Internal(err, "list seller payouts")
	}
	return out, nil
}
