package outbox

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"

	"github.com/MikeMC777/tiendas-ecom/internal/logging"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
)

// Writer is the part of *kafka.Writer the relay uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	brokers := []string{}
	for _, b := range strings.Split(csv, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

type Relay struct {
	store   Store
	w       Writer
	batch   int
	metrics *metrics.ServerMetrics
}

func NewRelay(store Store, w Writer, batch int, m *metrics.ServerMetrics) *Relay {
	if batch <= 0 {
		batch = 100
	}
	return &Relay{store: store, w: w, batch: batch, metrics: m}
}

// RunOnce publishes one batch of pending records. Records are marked sent only
// after the broker acknowledged them, so a crash in between republishes them;
// consumers dedupe on the event_id header.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	recs, err := r.store.Pending(ctx, r.batch)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(recs))
	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(rec.Key),
			Value: rec.Payload,
			Time:  rec.CreatedAt.UTC(),
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(rec.EventID)},
				{Key: "event_type", Value: []byte(rec.Topic)},
			},
		})
		ids = append(ids, rec.ID)
	}
	if err := r.w.WriteMessages(ctx, msgs...); err != nil {
		return 0, errors.Wrap(err, "outbox: publish")
	}
	if err := r.store.MarkSent(ctx, ids); err != nil {
		return 0, err
	}
	r.metrics.Published(len(ids))
	return len(ids), nil
}

// Run drains the outbox every interval until ctx is done.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		n, err := r.RunOnce(ctx)
		if err != nil {
			logging.Printf(ctx, "outbox", "relay error: %v", err)
		} else if n > 0 {
			logging.Printf(ctx, "outbox", "published=%d", n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}
