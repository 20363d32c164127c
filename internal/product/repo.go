// Package product provides read access to the seller catalog. Product writes
// belong to the catalog service and are not exposed here.
package product

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Query struct {
	SellerID string
	Q        string
	Limit    int
	Offset   int
}

// Getter is all the order pipeline needs from the catalog.
type Getter interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}

type Repository interface {
	Getter
	List(ctx context.Context, q Query) ([]Product, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectProduct = `
		SELECT id, seller_id, title, description, price::text, discount::text, stock, created_at, updated_at
		FROM products`

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p               Product
		price, discount string
	)
	if err := row.Scan(&p.ID, &p.SellerID, &p.Title, &p.Description, &price, &discount, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, errors.Wrapf(err, "product %s price", p.ID)
	}
	if p.Discount, err = decimal.NewFromString(discount); err != nil {
		return nil, errors.Wrapf(err, "product %s discount", p.ID)
	}
	return &p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, selectProduct+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, selectProduct+`
		WHERE seller_id = $1
		  AND ($2 = '' OR title ILIKE '%'||$2||'%' OR description ILIKE '%'||$2||'%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, q.SellerID, search, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
