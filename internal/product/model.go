package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// NUMERIC in Postgres; decimal avoids float rounding on money
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ListResponse represents the paginated response of a storefront listing.
// swagger:model
type ListResponse struct {
	// storefront the listing is scoped to
	Subdomain string `json:"subdomain"`
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int       `json:"offset"`
	Items  []Product `json:"items"`
}
