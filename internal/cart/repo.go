package cart

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/db"
)

var (
	ErrNotFound  = errors.New("cart item not found")
	ErrDuplicate = errors.New("product already in cart")
)

type Repository interface {
	Insert(ctx context.Context, it *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Item, error)
	Summary(ctx context.Context, customerID string) (Summary, error)
	Contains(ctx context.Context, customerID, productID string) (bool, error)
	// UpdateQuantity and Delete only touch the row when it belongs to customerID.
	UpdateQuantity(ctx context.Context, customerID, id string, quantity int, finalPrice decimal.Decimal) (*Item, error)
	Delete(ctx context.Context, customerID, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectItem = `
		SELECT id, customer_id, product_id, quantity, unit_price::text, final_price::text, coupon_code, created_at, updated_at
		FROM cart_items`

func scanItem(row pgx.Row) (*Item, error) {
	var (
		it          Item
		unit, final string
	)
	if err := row.Scan(&it.ID, &it.CustomerID, &it.ProductID, &it.Quantity, &unit, &final, &it.CouponCode, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if it.UnitPrice, err = decimal.NewFromString(unit); err != nil {
		return nil, errors.Wrapf(err, "cart item %s unit price", it.ID)
	}
	if it.FinalPrice, err = decimal.NewFromString(final); err != nil {
		return nil, errors.Wrapf(err, "cart item %s final price", it.ID)
	}
	return &it, nil
}

func (r *PGRepo) Insert(ctx context.Context, it *Item) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_items (id, customer_id, product_id, quantity, unit_price, final_price, coupon_code, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, it.ID, it.CustomerID, it.ProductID, it.Quantity, it.UnitPrice, it.FinalPrice, it.CouponCode).Scan(&it.CreatedAt, &it.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return errors.Wrap(err, "insert cart item")
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRow(ctx, selectItem+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get cart item")
	}
	return it, nil
}

func (r *PGRepo) ListByCustomer(ctx context.Context, customerID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return listByCustomer(ctx, r.db, customerID)
}

func listByCustomer(ctx context.Context, q db.Querier, customerID string) ([]Item, error) {
	rows, err := q.Query(ctx, selectItem+` WHERE customer_id=$1 ORDER BY created_at, id`, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *PGRepo) Summary(ctx context.Context, customerID string) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s Summary
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity), 0)
		FROM cart_items WHERE customer_id=$1
	`, customerID).Scan(&s.Lines, &s.Quantity)
	if err != nil {
		return Summary{}, errors.Wrap(err, "count cart items")
	}
	return s, nil
}

func (r *PGRepo) Contains(ctx context.Context, customerID, productID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM cart_items WHERE customer_id=$1 AND product_id=$2)
	`, customerID, productID).Scan(&ok)
	if err != nil {
		return false, errors.Wrap(err, "cart contains")
	}
	return ok, nil
}

func (r *PGRepo) UpdateQuantity(ctx context.Context, customerID, id string, quantity int, finalPrice decimal.Decimal) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	it, err := scanItem(r.db.QueryRow(ctx, `
		UPDATE cart_items
		SET quantity = $3, final_price = $4, updated_at = NOW()
		WHERE id = $1 AND customer_id = $2
		RETURNING id, customer_id, product_id, quantity, unit_price::text, final_price::text, coupon_code, created_at, updated_at
	`, id, customerID, quantity, finalPrice))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "update cart quantity")
	}
	return it, nil
}

func (r *PGRepo) Delete(ctx context.Context, customerID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND customer_id=$2`, id, customerID)
	if err != nil {
		return errors.Wrap(err, "delete cart item")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearInTx empties a customer's cart as part of a larger transaction.
func ClearInTx(ctx context.Context, q db.Querier, customerID string) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM cart_items WHERE customer_id=$1`, customerID)
	if err != nil {
		return 0, errors.Wrap(err, "clear cart")
	}
	return tag.RowsAffected(), nil
}
