// Package pricing turns a product's list price, its own discount and an
// optional coupon discount into the unit and line price stored on a cart line.
//
// The product and coupon discounts do not stack: when a usable coupon is
// present the smaller of the two discounts is applied.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
)

var one = decimal.NewFromInt(1)

type Quote struct {
	UnitPrice       decimal.Decimal
	FinalPrice      decimal.Decimal
	AppliedDiscount decimal.Decimal
	CouponApplied   bool
}

// Line prices quantity units. couponDiscount is nil when the caller has no
// usable coupon; coupon validation happens before this call.
func Line(price, productDiscount decimal.Decimal, couponDiscount *decimal.Decimal, quantity int) (Quote, error) {
	if quantity < 1 {
		return Quote{}, apperr.Validation("invalid_quantity", "quantity must be >= 1")
	}
	if price.IsNegative() {
		return Quote{}, apperr.Validation("invalid_price", "price must be >= 0")
	}
	if !validFraction(productDiscount) {
		return Quote{}, apperr.Validation("invalid_discount", "product discount must be between 0 and 1")
	}

	applied := productDiscount
	couponApplied := false
	if couponDiscount != nil {
		if !validFraction(*couponDiscount) {
			return Quote{}, apperr.Validation("invalid_discount", "coupon discount must be between 0 and 1")
		}
		applied = decimal.Min(productDiscount, *couponDiscount)
		couponApplied = true
	}

	unit := price.Mul(one.Sub(applied)).Round(2)
	return Quote{
		UnitPrice:       unit,
		FinalPrice:      Extend(unit, quantity),
		AppliedDiscount: applied,
		CouponApplied:   couponApplied,
	}, nil
}

// Extend is the line total for a stored unit price.
func Extend(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

func validFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(one)
}
