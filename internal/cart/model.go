package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one priced cart line. UnitPrice is the price agreed when the line
// was added; later changes to the product never touch it.
type Item struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	CouponCode string          `json:"coupon_code,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// AddItemRequest payload for adding a product to the cart.
// swagger:model AddItemRequest
type AddItemRequest struct {
	ProductID  string `json:"product_id"  example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity   int    `json:"quantity"    example:"2"`
	CouponCode string `json:"coupon_code" example:"SUMMER10"`
	// storefront used to resolve the coupon; falls back to X-Shop-Subdomain
	Subdomain string `json:"subdomain" example:"acme"`
}

// UpdateQuantityRequest payload for setting a line's quantity.
// swagger:model UpdateQuantityRequest
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" example:"3"`
}

// Summary is the cart badge: number of lines and total units.
type Summary struct {
	Lines    int `json:"count"`
	Quantity int `json:"quantity"`
}
