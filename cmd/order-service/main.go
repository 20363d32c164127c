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

	"github.com/MikeMC777/tiendas-ecom/internal/auth"
	"github.com/MikeMC777/tiendas-ecom/internal/cart"
	"github.com/MikeMC777/tiendas-ecom/internal/checkout"
	"github.com/MikeMC777/tiendas-ecom/internal/config"
	"github.com/MikeMC777/tiendas-ecom/internal/coupon"
	"github.com/MikeMC777/tiendas-ecom/internal/db"
	"github.com/MikeMC777/tiendas-ecom/internal/earnings"
	"github.com/MikeMC777/tiendas-ecom/internal/health"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/order"
	"github.com/MikeMC777/tiendas-ecom/internal/payment"
	"github.com/MikeMC777/tiendas-ecom/internal/payout"
	"github.com/MikeMC777/tiendas-ecom/internal/product"
	"github.com/MikeMC777/tiendas-ecom/internal/seller"
)

// @title                      tiendas order-service
// @version                    1.0
// @description                Cart, checkout, payment webhook, seller orders, payouts and earnings.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg := config.Load()
	if err := cfg.RequireOrderService(); err != nil {
		log.Fatalf("[order-service] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[order-service] %v", err)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("[order-service] migrate: %v", err)
		}
		log.Printf("[order-service] migrations applied")
	}

	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer, "order_service")

	var products product.Getter = product.NewPGRepo(pool)
	if cfg.ProductServiceURL != "" {
		products = product.NewClient(cfg.ProductServiceURL)
	}
	cartRepo := cart.NewPGRepo(pool)
	orderRepo := order.NewPGRepo(pool)
	ledger := earnings.NewPGStore(pool)
	gateway := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	r := newRouter(deps{
		verifier: auth.NewVerifier(cfg.JWTSecret),
		carts:    cart.NewService(cartRepo, products, seller.NewPGRepo(pool), coupon.NewPGRepo(pool)),
		checkout: checkout.NewService(cartRepo, products, gateway, checkout.Options{
			Currency:   cfg.CheckoutCurrency,
			SuccessURL: cfg.CheckoutSuccessURL,
			CancelURL:  cfg.CheckoutCancelURL,
		}, m),
		committer: order.NewCommitter(gateway, orderRepo, m),
		orders:    order.NewService(orderRepo),
		payouts:   payout.NewService(payout.NewPGRepo(pool), ledger),
		earnings:  earnings.NewService(ledger),
		metrics:   m,
	})

	hs, err := health.Listen(cfg.GRPCHealthAddr)
	if err != nil {
		log.Fatalf("[order-service] %v", err)
	}
	go hs.Watch(ctx, "order-service", pool.Ping, 10*time.Second)
	go func() {
		log.Printf("[order-service] grpc health on %s", hs.Addr())
		if err := hs.Serve(); err != nil {
			log.Printf("[order-service] grpc health stopped: %v", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.OrderSvcAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("[order-service] listening on %s", cfg.OrderSvcAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[order-service] %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[order-service] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	hs.Stop()
}
