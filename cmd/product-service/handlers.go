package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/coupon"
	"github.com/MikeMC777/tiendas-ecom/internal/httpx"
	"github.com/MikeMC777/tiendas-ecom/internal/product"
	"github.com/MikeMC777/tiendas-ecom/internal/seller"
)

const minSearchLen = 2

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// storefront resolves the :subdomain path param or aborts with 404.
func storefront(c *gin.Context, sellers seller.Repository) (*seller.Seller, bool) {
	sl, err := sellers.BySubdomain(c.Request.Context(), seller.Normalize(c.Param("subdomain")))
	if errors.Is(err, seller.ErrNotFound) {
		httpx.Abort(c, apperr.NotFound("seller_not_found", "storefront not found"))
		return nil, false
	}
	if err != nil {
		httpx.Abort(c, apperr.Internal(err, "resolve storefront"))
		return nil, false
	}
	return sl, true
}

// listStorefrontProductsHandler godoc
// @Summary  Storefront catalogue
// @Tags     products
// @Produce  json
// @Param    subdomain path  string true  "storefront"
// @Param    q         query string false "title search, at least 2 characters"
// @Param    limit     query int    false "limit"  default(20)
// @Param    offset    query int    false "offset" default(0)
// @Success  200 {object} product.ListResponse
// @Failure  400 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /storefront/{subdomain}/products [get]
func listStorefrontProductsHandler(sellers seller.Repository, repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if _, present := c.GetQuery("q"); present && len([]rune(q)) < minSearchLen {
			httpx.BadRequest(c, "q must have at least 2 characters")
			return
		}
		sl, ok := storefront(c, sellers)
		if !ok {
			return
		}
		limit := queryInt(c, "limit", 20)
		offset := queryInt(c, "offset", 0)

		items, err := repo.List(c.Request.Context(), product.Query{SellerID: sl.ID, Q: q, Limit: limit, Offset: offset})
		if err != nil {
			httpx.Abort(c, apperr.Internal(err, "list products"))
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{
			Subdomain: sl.Subdomain,
			Q:         q,
			Limit:     limit,
			Offset:    offset,
			Items:     items,
		})
	}
}

// getProductHandler godoc
// @Summary  Get product by ID
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} product.Product
// @Failure  404 {object} map[string]string
// @Router   /products/{id} [get]
func getProductHandler(repo product.Getter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.ParseID(c.Param("id"))
		if !ok {
			httpx.Abort(c, apperr.NotFound("product_not_found", "product not found"))
			return
		}
		p, err := repo.GetByID(c.Request.Context(), id)
		if errors.Is(err, product.ErrNotFound) {
			httpx.Abort(c, apperr.NotFound("product_not_found", "product not found"))
			return
		}
		if err != nil {
			httpx.Abort(c, apperr.Internal(err, "get product"))
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type couponView struct {
	Code           string    `json:"code"`
	DiscountValue  string    `json:"discount_value"`
	ExpirationDate time.Time `json:"expiration_date"`
	Valid          bool      `json:"valid"`
}

// checkCouponHandler godoc
// @Summary  Check a coupon
// @Tags     products
// @Produce  json
// @Param    subdomain path string true "storefront"
// @Param    code      path string true "coupon code"
// @Success  200 {object} couponView
// @Failure  404 {object} map[string]string
// @Router   /storefront/{subdomain}/coupons/{code} [get]
func checkCouponHandler(sellers seller.Repository, coupons coupon.Repository, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		sl, ok := storefront(c, sellers)
		if !ok {
			return
		}
		cp, err := coupons.FindByCode(c.Request.Context(), sl.ID, c.Param("code"))
		if errors.Is(err, coupon.ErrNotFound) {
			httpx.Abort(c, apperr.NotFound("coupon_not_found", "coupon not found"))
			return
		}
		if err != nil {
			httpx.Abort(c, apperr.Internal(err, "find coupon"))
			return
		}
		c.JSON(http.StatusOK, couponView{
			Code:           cp.Code,
			DiscountValue:  cp.DiscountValue.String(),
			ExpirationDate: cp.ExpirationDate,
			Valid:          cp.Usable(now()),
		})
	}
}
