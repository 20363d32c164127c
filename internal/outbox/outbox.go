// Package outbox stores domain events in the same transaction as the state
// change that produced them, and relays them to Kafka afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/tiendas-ecom/internal/db"
)

const TopicOrderCreated = "order.created"

type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// NewRecord marshals payload and assigns a fresh event id.
func NewRecord(topic, key string, payload any) (Record, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Record{}, errors.Wrapf(err, "outbox: marshal %s", topic)
	}
	return Record{EventID: uuid.NewString(), Topic: topic, Key: key, Payload: data}, nil
}

// InsertTx writes rec through q, normally the transaction that made the change.
func InsertTx(ctx context.Context, q db.Querier, rec Record) error {
	_, err := q.Exec(ctx, `INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		rec.EventID, rec.Topic, rec.Key, []byte(rec.Payload))
	return errors.Wrap(err, "outbox: insert")
}

type Store interface {
	Pending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, ids []int64) error
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Pending(ctx context.Context, limit int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT id, event_id, topic, key, payload, created_at, sent_at
		FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "outbox: fetch pending")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, errors.Wrap(err, "outbox: scan")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PGStore) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE outbox SET sent_at=now() WHERE id = ANY($1)`, ids)
	return errors.Wrap(err, "outbox: mark sent")
}
