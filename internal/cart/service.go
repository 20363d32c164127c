package cart

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/coupon"
	"github.com/MikeMC777/tiendas-ecom/internal/logging"
	"github.com/MikeMC777/tiendas-ecom/internal/pricing"
	"github.com/MikeMC777/tiendas-ecom/internal/product"
	"github.com/MikeMC777/tiendas-ecom/internal/seller"
)

type Service struct {
	carts    Repository
	products product.Getter
	sellers  seller.Repository
	coupons  coupon.Repository
	now      func() time.Time
}

func NewService(carts Repository, products product.Getter, sellers seller.Repository, coupons coupon.Repository) *Service {
	return &Service{carts: carts, products: products, sellers: sellers, coupons: coupons, now: time.Now}
}

type AddInput struct {
	CustomerID string
	ProductID  string
	Quantity   int
	CouponCode string
	Subdomain  string
}

// Add prices a new line and stores it. A product already in the cart is a
// conflict; callers change quantities through UpdateQuantity.
func (s *Service) Add(ctx context.Context, in AddInput) (*Item, error) {
	if in.Quantity < 1 {
		return nil, apperr.Validation("invalid_quantity", "quantity must be >= 1")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, apperr.Validation("product_id_required", "product_id is required")
	}

	p, err := s.products.GetByID(ctx, in.ProductID)
	if errors.Is(err, product.ErrNotFound) {
		return nil, apperr.NotFound("product_not_found", "product not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load product")
	}
	if in.Quantity > p.Stock {
		return nil, apperr.Conflict("insufficient_stock", "not enough stock for requested quantity")
	}

	couponDiscount, code, err := s.resolveCoupon(ctx, p, in)
	if err != nil {
		return nil, err
	}

	q, err := pricing.Line(p.Price, p.Discount, couponDiscount, in.Quantity)
	if err != nil {
		return nil, err
	}

	it := &Item{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		ProductID:  p.ID,
		Quantity:   in.Quantity,
		UnitPrice:  q.UnitPrice,
		FinalPrice: q.FinalPrice,
		CouponCode: code,
	}
	if err := s.carts.Insert(ctx, it); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Conflict("duplicate_cart_item", "product already in cart; update its quantity instead")
		}
		return nil, apperr.Internal(err, "insert cart item")
	}
	logging.Printf(ctx, "cart", "added item=%s product=%s qty=%d unit=%s coupon_applied=%v",
		it.ID, it.ProductID, it.Quantity, it.UnitPrice.StringFixed(2), q.CouponApplied)
	return it, nil
}

// resolveCoupon returns the coupon discount to price with, or nil when the
// coupon is unknown, expired or belongs to another shop. Only an unresolvable
// storefront is an error.
func (s *Service) resolveCoupon(ctx context.Context, p *product.Product, in AddInput) (*decimal.Decimal, string, error) {
	code := strings.TrimSpace(in.CouponCode)
	if code == "" {
		return nil, "", nil
	}
	sl, err := s.sellers.BySubdomain(ctx, in.Subdomain)
	if errors.Is(err, seller.ErrNotFound) {
		return nil, "", apperr.NotFound("seller_not_found", "storefront not found")
	}
	if err != nil {
		return nil, "", apperr.Internal(err, "resolve storefront")
	}
	if sl.ID != p.SellerID {
		return nil, "", nil
	}

	c, err := s.coupons.FindByCode(ctx, sl.ID, code)
	if errors.Is(err, coupon.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", apperr.Internal(err, "find coupon")
	}
	if !c.Usable(s.now()) {
		return nil, "", nil
	}
	d := c.DiscountValue
	return &d, c.Code, nil
}

// UpdateQuantity reprices the line from its stored unit price.
func (s *Service) UpdateQuantity(ctx context.Context, customerID, itemID string, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, apperr.Validation("invalid_quantity", "quantity must be >= 1")
	}
	it, err := s.owned(ctx, customerID, itemID)
	if err != nil {
		return nil, err
	}
	updated, err := s.carts.UpdateQuantity(ctx, customerID, it.ID, quantity, pricing.Extend(it.UnitPrice, quantity))
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("cart_item_not_found", "cart item not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "update cart item")
	}
	return updated, nil
}

func (s *Service) Remove(ctx context.Context, customerID, itemID string) error {
	it, err := s.owned(ctx, customerID, itemID)
	if err != nil {
		return err
	}
	err = s.carts.Delete(ctx, customerID, it.ID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("cart_item_not_found", "cart item not found")
	}
	if err != nil {
		return apperr.Internal(err, "delete cart item")
	}
	return nil
}

func (s *Service) owned(ctx context.Context, customerID, itemID string) (*Item, error) {
	it, err := s.carts.GetByID(ctx, itemID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("cart_item_not_found", "cart item not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load cart item")
	}
	if it.CustomerID != customerID {
		return nil, apperr.Forbidden("cart item belongs to another customer")
	}
	return it, nil
}

func (s *Service) List(ctx context.Context, customerID string) ([]Item, error) {
	items, err := s.carts.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Internal(err, "list cart")
	}
	return items, nil
}

func (s *Service) Count(ctx context.Context, customerID string) (Summary, error) {
	sum, err := s.carts.Summary(ctx, customerID)
	if err != nil {
		return Summary{}, apperr.Internal(err, "count cart")
	}
	return sum, nil
}

func (s *Service) Contains(ctx context.Context, customerID, productID string) (bool, error) {
	ok, err := s.carts.Contains(ctx, customerID, productID)
	if err != nil {
		return false, apperr.Internal(err, "cart contains")
	}
	return ok, nil
}
