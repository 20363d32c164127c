package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/tiendas-ecom/internal/coupon"
	_ "github.com/MikeMC777/tiendas-ecom/internal/docs"
	"github.com/MikeMC777/tiendas-ecom/internal/httpx"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/product"
	"github.com/MikeMC777/tiendas-ecom/internal/seller"
)

type deps struct {
	products product.Repository
	sellers  seller.Repository
	coupons  coupon.Repository
	metrics  *metrics.ServerMetrics
	now      func() time.Time
}

func newRouter(d deps) *gin.Engine {
	if d.now == nil {
		d.now = time.Now
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.Metrics(d.metrics))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/products/:id", getProductHandler(d.products))
	r.GET("/storefront/:subdomain/products", listStorefrontProductsHandler(d.sellers, d.products))
	r.GET("/storefront/:subdomain/coupons/:code", checkCouponHandler(d.sellers, d.coupons, d.now))
	return r
}
