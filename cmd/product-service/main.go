package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeMC777/tiendas-ecom/internal/config"
	"github.com/MikeMC777/tiendas-ecom/internal/coupon"
	"github.com/MikeMC777/tiendas-ecom/internal/db"
	"github.com/MikeMC777/tiendas-ecom/internal/health"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/product"
	"github.com/MikeMC777/tiendas-ecom/internal/seller"
)

// @title       tiendas product-service
// @version     1.0
// @description Public storefront catalogue and coupon lookup.
// @BasePath    /
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[product-service] %v", err)
	}
	defer pool.Close()

	r := newRouter(deps{
		products: product.NewPGRepo(pool),
		sellers:  seller.NewPGRepo(pool),
		coupons:  coupon.NewPGRepo(pool),
		metrics:  metrics.NewServerMetrics(prometheus.DefaultRegisterer, "product_service"),
	})

	hs, err := health.Listen(cfg.ProductGRPCHealthAddr)
	if err != nil {
		log.Fatalf("[product-service] %v", err)
	}
	go hs.Watch(ctx, "product-service", pool.Ping, 10*time.Second)
	go func() {
		log.Printf("[product-service] grpc health on %s", hs.Addr())
		if err := hs.Serve(); err != nil {
			log.Printf("[product-service] grpc health stopped: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.ProductSvcAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("[product-service] listening on %s", cfg.ProductSvcAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[product-service] %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[product-service] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	hs.Stop()
}
