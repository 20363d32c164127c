package order

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/cart"
	"github.com/MikeMC777/tiendas-ecom/internal/db"
	"github.com/MikeMC777/tiendas-ecom/internal/outbox"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStale means the order left the expected status before the update.
	ErrStale = errors.New("order status changed concurrently")
)

type Repository interface {
	// Commit stores o and its items unless an order with the same payment
	// reference exists, in which case created is false and nothing changes.
	Commit(ctx context.Context, o *Order) (created bool, err error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListBySeller(ctx context.Context, sellerID string, status Status, limit, offset int) ([]Order, error)
	SellerOwns(ctx context.Context, sellerID, orderID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}

type PGRepo struct{ db db.Conn }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Commit runs as one serializable transaction: order, items, stock, cart and
// the order.created outbox record land together or not at all.
func (r *PGRepo) Commit(ctx context.Context, o *Order) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var created bool
	err := db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		created = false
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (id, customer_id, total_price, order_status, payment_reference, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
			ON CONFLICT (payment_reference) DO NOTHING
			RETURNING created_at, updated_at
		`, o.ID, o.CustomerID, o.TotalPrice, string(o.Status), o.PaymentReference).Scan(&o.CreatedAt, &o.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		for _, it := range o.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, product_id, quantity, price)
				VALUES ($1,$2,$3,$4,$5)
			`, it.ID, o.ID, it.ProductID, it.Quantity, it.Price); err != nil {
				return errors.Wrapf(err, "insert order item %s", it.ProductID)
			}
			if _, err := tx.Exec(ctx, `
				UPDATE products SET stock = GREATEST(stock - $2, 0), updated_at = NOW() WHERE id = $1
			`, it.ProductID, it.Quantity); err != nil {
				return errors.Wrapf(err, "decrement stock %s", it.ProductID)
			}
		}

		if _, err := cart.ClearInTx(ctx, tx, o.CustomerID); err != nil {
			return err
		}

		rec, err := outbox.NewRecord(outbox.TopicOrderCreated, o.ID, Created{
			OrderID:          o.ID,
			CustomerID:       o.CustomerID,
			PaymentReference: o.PaymentReference,
			TotalPrice:       o.TotalPrice,
			Items:            o.Items,
			CreatedAt:        o.CreatedAt,
		})
		if err != nil {
			return err
		}
		if err := outbox.InsertTx(ctx, tx, rec); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

const selectOrder = `
	SELECT o.id, o.customer_id, o.total_price::text, o.order_status, o.payment_reference, o.created_at, o.updated_at
	FROM orders o`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		total  string
		status string
	)
	if err := row.Scan(&o.ID, &o.CustomerID, &total, &status, &o.PaymentReference, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, errors.Wrapf(err, "order %s total", o.ID)
	}
	o.Status = Status(status)
	return &o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, selectOrder+` WHERE o.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if o.Items, err = getItems(ctx, r.db, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) ListBySeller(ctx context.Context, sellerID string, status Status, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, selectOrder+`
		WHERE EXISTS (
			SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = o.id AND p.seller_id = $1
		)
		AND ($2 = '' OR o.order_status = $2)
		ORDER BY o.created_at DESC, o.id
		LIMIT $3 OFFSET $4
	`, sellerID, string(status), limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list seller orders")
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = getItems(ctx, r.db, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PGRepo) SellerOwns(ctx context.Context, sellerID, orderID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = $1 AND p.seller_id = $2
		)
	`, orderID, sellerID).Scan(&ok)
	if err != nil {
		return false, errors.Wrap(err, "seller owns order")
	}
	return ok, nil
}

// UpdateStatus only succeeds while the order is still in from. Cancelling
// returns the order's quantities to stock in the same transaction.
func (r *PGRepo) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET order_status = $3, updated_at = NOW()
			WHERE id = $1 AND order_status = $2
		`, id, string(from), string(to))
		if err != nil {
			return errors.Wrap(err, "update order status")
		}
		if tag.RowsAffected() == 0 {
			return ErrStale
		}
		if to != StatusCancelled {
			return nil
		}
		_, err = tx.Exec(ctx, `
			UPDATE products p
			SET stock = p.stock + r.qty, updated_at = NOW()
			FROM (
				SELECT product_id, SUM(quantity) AS qty
				FROM order_items
				WHERE order_id = $1
				GROUP BY product_id
			) r
			WHERE p.id = r.product_id
		`, id)
		return errors.Wrap(err, "restock cancelled order")
	})
}

func getItems(ctx context.Context, q db.Querier, orderID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price::text
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order items")
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var (
			it    Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, errors.Wrapf(err, "order item %s price", it.ID)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
