package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/tiendas-ecom/internal/auth"
	"github.com/MikeMC777/tiendas-ecom/internal/cart"
	"github.com/MikeMC777/tiendas-ecom/internal/checkout"
	_ "github.com/MikeMC777/tiendas-ecom/internal/docs"
	"github.com/MikeMC777/tiendas-ecom/internal/earnings"
	"github.com/MikeMC777/tiendas-ecom/internal/httpx"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/order"
	"github.com/MikeMC777/tiendas-ecom/internal/payout"
)

type deps struct {
	verifier  httpx.Verifier
	carts     *cart.Service
	checkout  *checkout.Service
	committer *order.Committer
	orders    *order.Service
	payouts   *payout.Service
	earnings  *earnings.Service
	metrics   *metrics.ServerMetrics
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.Metrics(d.metrics))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// authenticated by signature, not bearer token
	r.POST("/webhooks/stripe", stripeWebhookHandler(d.committer))

	api := r.Group("/", httpx.Authenticate(d.verifier))

	customer := api.Group("/", httpx.RequireRole(auth.RoleCustomer))
	customer.GET("/cart", listCartHandler(d.carts))
	customer.POST("/cart", addCartItemHandler(d.carts))
	customer.GET("/cart/count", countCartHandler(d.carts))
	customer.GET("/cart/contains/:productId", cartContainsHandler(d.carts))
	customer.PUT("/cart/:itemId", updateCartItemHandler(d.carts))
	customer.DELETE("/cart/:itemId", removeCartItemHandler(d.carts))
	customer.POST("/checkout/session", createCheckoutSessionHandler(d.checkout))

	seller := api.Group("/", httpx.RequireRole(auth.RoleSeller))
	seller.GET("/orders", listOrdersHandler(d.orders))
	seller.GET("/orders/status/:status", listOrdersByStatusHandler(d.orders))
	seller.PUT("/orders/:id/status", updateOrderStatusHandler(d.orders))
	seller.POST("/payouts", createPayoutHandler(d.payouts))
	seller.GET("/payouts/seller/:sellerId", httpx.RequireSelf("sellerId"), listSellerPayoutsHandler(d.payouts))
	seller.GET("/earnings", earningsHandler(d.earnings))

	admin := api.Group("/", httpx.RequireRole(auth.RoleAdmin))
	admin.GET("/payouts", listPayoutsHandler(d.payouts))
	admin.PUT("/payouts/:id/status", updatePayoutStatusHandler(d.payouts))
	admin.DELETE("/payouts/:id", deletePayoutHandler(d.payouts))

	return r
}
