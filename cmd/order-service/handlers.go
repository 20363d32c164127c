package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/cart"
	"github.com/MikeMC777/tiendas-ecom/internal/checkout"
	"github.com/MikeMC777/tiendas-ecom/internal/earnings"
	"github.com/MikeMC777/tiendas-ecom/internal/httpx"
	"github.com/MikeMC777/tiendas-ecom/internal/order"
	"github.com/MikeMC777/tiendas-ecom/internal/payout"
	"github.com/MikeMC777/tiendas-ecom/internal/seller"
)

const maxWebhookBody = 64 << 10

func callerID(c *gin.Context) string {
	p, _ := httpx.Principal(c)
	return p.ID
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}

// ---------- cart ----------

// listCartHandler godoc
// @Summary  List the caller's cart
// @Tags     cart
// @Produce  json
// @Success  200 {array} cart.Item
// @Router   /cart [get]
func listCartHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context(), callerID(c))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// addCartItemHandler godoc
// @Summary  Add a product to the cart
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    X-Shop-Subdomain header string false "storefront for coupon lookup"
// @Param    body body cart.AddItemRequest true "line"
// @Success  201 {object} cart.Item
// @Failure  404 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Router   /cart [post]
func addCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cart.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		productID := strings.TrimSpace(req.ProductID)
		if productID != "" {
			id, ok := httpx.ParseID(productID)
			if !ok {
				httpx.Abort(c, apperr.NotFound("product_not_found", "product not found"))
				return
			}
			productID = id
		}
		sub := seller.Normalize(req.Subdomain)
		if sub == "" {
			sub = seller.Normalize(c.GetHeader("X-Shop-Subdomain"))
		}
		if sub == "" {
			sub = seller.FromHost(c.Request.Host)
		}
		it, err := svc.Add(c.Request.Context(), cart.AddInput{
			CustomerID: callerID(c),
			ProductID:  productID,
			Quantity:   req.Quantity,
			CouponCode: req.CouponCode,
			Subdomain:  sub,
		})
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

// updateCartItemHandler godoc
// @Summary  Change a cart line's quantity
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    itemId path string true "cart item id"
// @Param    body body cart.UpdateQuantityRequest true "quantity"
// @Success  200 {object} cart.Item
// @Failure  400 {object} map[string]string
// @Router   /cart/{itemId} [put]
func updateCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.IDParam(c, "itemId")
		if !ok {
			return
		}
		var req cart.UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		it, err := svc.UpdateQuantity(c.Request.Context(), callerID(c), id, req.Quantity)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// removeCartItemHandler godoc
// @Summary  Remove a cart line
// @Tags     cart
// @Param    itemId path string true "cart item id"
// @Success  204
// @Router   /cart/{itemId} [delete]
func removeCartItemHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.IDParam(c, "itemId")
		if !ok {
			return
		}
		if err := svc.Remove(c.Request.Context(), callerID(c), id); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// countCartHandler godoc
// @Summary  Number of lines and units in the cart
// @Tags     cart
// @Produce  json
// @Success  200 {object} cart.Summary
// @Router   /cart/count [get]
func countCartHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := svc.Count(c.Request.Context(), callerID(c))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// cartContainsHandler godoc
// @Summary  Whether a product is already in the cart
// @Tags     cart
// @Produce  json
// @Param    productId path string true "product id"
// @Success  200 {object} map[string]bool
// @Router   /cart/contains/{productId} [get]
func cartContainsHandler(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := httpx.IDParam(c, "productId")
		if !ok {
			return
		}
		in, err := svc.Contains(c.Request.Context(), callerID(c), productID)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"in_cart": in})
	}
}

// ---------- checkout & webhook ----------

// createCheckoutSessionHandler godoc
// @Summary  Start a hosted checkout for the caller's cart
// @Tags     checkout
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  400 {object} map[string]string
// @Failure  502 {object} map[string]string
// @Router   /checkout/session [post]
func createCheckoutSessionHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svc.CreateSession(c.Request.Context(), callerID(c))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": sess.URL, "session_id": sess.ID})
	}
}

// stripeWebhookHandler godoc
// @Summary  Payment processor webhook
// @Tags     webhooks
// @Accept   json
// @Produce  json
// @Param    Stripe-Signature header string true "signature"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Router   /webhooks/stripe [post]
func stripeWebhookHandler(committer *order.Committer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
		payload, err := c.GetRawData()
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload_too_large", "message": "webhook body too large"})
				return
			}
			httpx.BadRequest(c, "unreadable body")
			return
		}
		out, err := committer.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true, "outcome": out})
	}
}

// ---------- seller orders ----------

// listOrdersHandler godoc
// @Summary  Orders containing the seller's products
// @Tags     orders
// @Produce  json
// @Param    status query string false "pending|processing|completed|cancelled"
// @Param    limit  query int false "limit"  default(20)
// @Param    offset query int false "offset" default(0)
// @Success  200 {object} order.ListResponse
// @Router   /orders [get]
func listOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		listOrders(c, svc, c.Query("status"))
	}
}

// listOrdersByStatusHandler godoc
// @Summary  Seller orders in one status
// @Tags     orders
// @Produce  json
// @Param    status path string true "status"
// @Success  200 {object} order.ListResponse
// @Router   /orders/status/{status} [get]
func listOrdersByStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		listOrders(c, svc, c.Param("status"))
	}
}

func listOrders(c *gin.Context, svc *order.Service, status string) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	out, err := svc.List(c.Request.Context(), callerID(c), status, limit, offset)
	if err != nil {
		httpx.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, order.ListResponse{Status: status, Limit: limit, Offset: offset, Items: out})
}

// updateOrderStatusHandler godoc
// @Summary  Move an order forward
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    id   path string true "order id"
// @Param    body body order.UpdateStatusRequest true "new status"
// @Success  200 {object} order.Order
// @Failure  409 {object} map[string]string
// @Router   /orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.IDParam(c, "id")
		if !ok {
			return
		}
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), callerID(c), id, strings.TrimSpace(req.Status))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// ---------- payouts & earnings ----------

// listPayoutsHandler godoc
// @Summary  All payouts (admin)
// @Tags     payouts
// @Produce  json
// @Param    status query string false "pending|paid|rejected"
// @Success  200 {array} payout.Payout
// @Router   /payouts [get]
func listPayoutsHandler(svc *payout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.List(c.Request.Context(), c.Query("status"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

// listSellerPayoutsHandler godoc
// @Summary  A seller's own payouts, newest first
// @Tags     payouts
// @Produce  json
// @Param    sellerId path string true "seller id"
// @Success  200 {array} payout.Payout
// @Router   /payouts/seller/{sellerId} [get]
func listSellerPayoutsHandler(svc *payout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListBySeller(c.Request.Context(), c.Param("sellerId"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

// createPayoutHandler godoc
// @Summary  Request a payout
// @Tags     payouts
// @Accept   json
// @Produce  json
// @Param    body body payout.CreateRequest true "payout"
// @Success  201 {object} payout.Payout
// @Failure  409 {object} map[string]string
// @Router   /payouts [post]
func createPayoutHandler(svc *payout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payout.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		p, err := svc.Create(c.Request.Context(), callerID(c), req)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updatePayoutStatusHandler godoc
// @Summary  Settle a payout (admin)
// @Tags     payouts
// @Accept   json
// @Produce  json
// @Param    id   path string true "payout id"
// @Param    body body payout.UpdateStatusRequest true "paid|rejected"
// @Success  200 {object} payout.Payout
// @Router   /payouts/{id}/status [put]
func updatePayoutStatusHandler(svc *payout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.IDParam(c, "id")
		if !ok {
			return
		}
		var req payout.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.BadRequest(c, "invalid json")
			return
		}
		p, err := svc.UpdateStatus(c.Request.Context(), id, strings.TrimSpace(req.Status))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deletePayoutHandler godoc
// @Summary  Delete a pending payout (admin)
// @Tags     payouts
// @Param    id path string true "payout id"
// @Success  204
// @Router   /payouts/{id} [delete]
func deletePayoutHandler(svc *payout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := httpx.IDParam(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// earningsHandler godoc
// @Summary  The caller's earnings ledger
// @Tags     earnings
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /earnings [get]
func earningsHandler(svc *earnings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := svc.Get(c.Request.Context(), callerID(c))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, l)
	}
}
