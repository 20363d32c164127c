// Command outbox-relay publishes committed order events from the outbox table
// to Kafka.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeMC777/tiendas-ecom/internal/config"
	"github.com/MikeMC777/tiendas-ecom/internal/db"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/outbox"
)

func main() {
	cfg := config.Load()
	brokers := outbox.ParseBrokers(cfg.KafkaBrokers)
	if len(brokers) == 0 {
		log.Printf("[outbox-relay] KAFKA_BROKERS empty, nothing to do")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[outbox-relay] %v", err)
	}
	defer pool.Close()

	w := outbox.NewKafkaWriter(brokers, cfg.OutboxTopic)
	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("[outbox-relay] close writer: %v", err)
		}
	}()

	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer, "outbox_relay")
	go func() {
		if err := http.ListenAndServe(cfg.RelayMetricsAddr, metrics.Handler()); err != nil {
			log.Printf("[outbox-relay] metrics server: %v", err)
		}
	}()

	relay := outbox.NewRelay(outbox.NewPGStore(pool), w, 100, m)
	log.Printf("[outbox-relay] publishing to %v topic=%s every %s", brokers, cfg.OutboxTopic, cfg.OutboxInterval)
	if err := relay.Run(ctx, cfg.OutboxInterval); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[outbox-relay] %v", err)
	}
	log.Printf("[outbox-relay] stopped")
}
