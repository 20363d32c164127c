// Package coupon looks up seller coupons by code. Coupons are created and
// edited by sellers elsewhere; customers only ever read them.
package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("coupon not found")

type Coupon struct {
	ID             string          `json:"id"`
	SellerID       string          `json:"seller_id"`
	Code           string          `json:"code"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	ExpirationDate time.Time       `json:"expiration_date"`
}

// Usable is false once the expiration date has passed.
func (c *Coupon) Usable(now time.Time) bool {
	return c != nil && now.Before(c.ExpirationDate)
}

type Repository interface {
	FindByCode(ctx context.Context, sellerID, code string) (*Coupon, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) FindByCode(ctx context.Context, sellerID, code string) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if sellerID == "" || code == "" {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		c        Coupon
		discount string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, seller_id, code, discount_value::text, expiration_date
		FROM coupons WHERE seller_id=$1 AND code=$2
	`, sellerID, code).Scan(&c.ID, &c.SellerID, &c.Code, &discount, &c.ExpirationDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find coupon")
	}
	if c.DiscountValue, err = decimal.NewFromString(discount); err != nil {
		return nil, errors.Wrapf(err, "coupon %s discount", c.ID)
	}
	return &c, nil
}
