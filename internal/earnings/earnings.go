// Package earnings computes a seller's balance from completed orders and
// payouts. Nothing is stored; every figure is derived on read.
package earnings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/db"
)

// FeeRate is the platform's cut of every paid-out amount.
var FeeRate = decimal.RequireFromString("0.10")

// Totals are the raw sums a ledger is derived from.
type Totals struct {
	Earned  decimal.Decimal
	PaidOut decimal.Decimal
	Pending decimal.Decimal
}

type Ledger struct {
	TotalEarnedFromOrders decimal.Decimal
	TotalPaidOut          decimal.Decimal
	PlatformFee           decimal.Decimal
	PendingPayouts        decimal.Decimal
	RemainingBalance      decimal.Decimal
}

func Compute(t Totals) Ledger {
	fee := t.PaidOut.Mul(FeeRate).Round(2)
	return Ledger{
		TotalEarnedFromOrders: t.Earned,
		TotalPaidOut:          t.PaidOut,
		PlatformFee:           fee,
		PendingPayouts:        t.Pending,
		RemainingBalance:      t.Earned.Sub(t.PaidOut).Sub(fee),
	}
}

// Available is what a new payout request may still claim.
func (l Ledger) Available() decimal.Decimal {
	return l.RemainingBalance.Sub(l.PendingPayouts)
}

func (l Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"total_earned_from_orders": l.TotalEarnedFromOrders.StringFixed(2),
		"total_paid_out":           l.TotalPaidOut.StringFixed(2),
		"platform_fee":             l.PlatformFee.StringFixed(2),
		"pending_payouts":          l.PendingPayouts.StringFixed(2),
		"remaining_balance":        l.RemainingBalance.StringFixed(2),
	})
}

type Store interface {
	// Totals reads through q when it is not nil, so callers can take the
	// figures inside their own transaction.
	Totals(ctx context.Context, q db.Querier, sellerID string) (Totals, error)
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Totals(ctx context.Context, q db.Querier, sellerID string) (Totals, error) {
	if q == nil {
		q = s.db
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var earned, paid, pending string
	err := q.QueryRow(ctx, `
		SELECT
			COALESCE((
				SELECT SUM(oi.price * oi.quantity)
				FROM order_items oi
				JOIN orders o   ON o.id = oi.order_id
				JOIN products p ON p.id = oi.product_id
				WHERE p.seller_id = $1 AND o.order_status = 'completed'
			), 0)::text,
			COALESCE((SELECT SUM(amount) FROM payouts WHERE seller_id = $1 AND status = 'paid'), 0)::text,
			COALESCE((SELECT SUM(amount) FROM payouts WHERE seller_id = $1 AND status = 'pending'), 0)::text
	`, sellerID).Scan(&earned, &paid, &pending)
	if err != nil {
		return Totals{}, errors.Wrap(err, "earnings totals")
	}

	var t Totals
	if t.Earned, err = decimal.NewFromString(earned); err != nil {
		return Totals{}, errors.Wrap(err, "earned")
	}
	if t.PaidOut, err = decimal.NewFromString(paid); err != nil {
		return Totals{}, errors.Wrap(err, "paid out")
	}
	if t.Pending, err = decimal.NewFromString(pending); err != nil {
		return Totals{}, errors.Wrap(err, "pending")
	}
	return t, nil
}

type Service struct{ store Store }

func NewService(store Store) *Service { return &Service{store: store} }

func (s *Service) Get(ctx context.Context, sellerID string) (Ledger, error) {
	t, err := s.store.Totals(ctx, nil, sellerID)
	if err != nil {
		return Ledger{}, apperr.Internal(err, "load earnings")
	}
	return Compute(t), nil
}
