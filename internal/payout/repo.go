package payout

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
	ErrNotFound            = errors.New("payout not found")
	ErrInsufficientBalance = errors.New("payout exceeds available balance")
	ErrNotPending          = errors.New("payout is not pending")
)

// Ceiling returns the most a new payout may claim, read through q.
type Ceiling func(ctx context.Context, q db.Querier) (decimal.Decimal, error)

type Repository interface {
	// Create checks ceiling and inserts p in one transaction.
	Create(ctx context.Context, p *Payout, ceiling Ceiling) error
	GetByID(ctx context.Context, id string) (*Payout, error)
	List(ctx context.Context, status Status) ([]Payout, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Payout, error)
	// Settle moves a pending payout to to; ErrNotPending if it already left pending.
	Settle(ctx context.Context, id string, to Status) error
	// DeletePending removes id only while it is pending.
	DeletePending(ctx context.Context, id string) error
}

type PGRepo struct{ db db.Conn }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Payout, ceiling Ceiling) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return db.InTx(ctx, r.db, func(tx pgx.Tx) error {
		avail, err := ceiling(ctx, tx)
		if err != nil {
			return err
		}
		if p.Amount.GreaterThan(avail) {
			return ErrInsufficientBalance
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO payouts (id, seller_id, amount, payout_method, status, date)
			VALUES ($1,$2,$3,$4,$5,NOW())
			RETURNING date
		`, p.ID, p.SellerID, p.Amount, p.PayoutMethod, string(p.Status)).Scan(&p.Date)
		return errors.Wrap(err, "insert payout")
	})
}

const selectPayout = `
	SELECT id, seller_id, amount::text, payout_method, status, date
	FROM payouts`

func scanPayout(row pgx.Row) (*Payout, error) {
	var (
		p              Payout
		amount, status string
	)
	if err := row.Scan(&p.ID, &p.SellerID, &amount, &p.PayoutMethod, &status, &p.Date); err != nil {
		return nil, err
	}
	var err error
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, errors.Wrapf(err, "payout %s amount", p.ID)
	}
	p.Status = Status(status)
	return &p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanPayout(r.db.QueryRow(ctx, selectPayout+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get payout")
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, status Status) ([]Payout, error) {
	return r.list(ctx, selectPayout+` WHERE ($1 = '' OR status = $1) ORDER BY date DESC, id`, string(status))
}

func (r *PGRepo) ListBySeller(ctx context.Context, sellerID string) ([]Payout, error) {
	return r.list(ctx, selectPayout+` WHERE seller_id = $1 ORDER BY date DESC, id`, sellerID)
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list payouts")
	}
	defer rows.Close()

	out := []Payout{}
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan payout")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Settle(ctx context.Context, id string, to Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE payouts SET status = $2 WHERE id = $1 AND status = 'pending'`, id, string(to))
	if err != nil {
		return errors.Wrap(err, "settle payout")
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrNotPending(ctx, id)
	}
	return nil
}

func (r *PGRepo) DeletePending(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM payouts WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return errors.Wrap(err, "delete payout")
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrNotPending(ctx, id)
	}
	return nil
}

func (r *PGRepo) missingOrNotPending(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payouts WHERE id=$1)`, id).Scan(&exists); err != nil {
		return errors.Wrap(err, "payout exists")
	}
	if !exists {
		return ErrNotFound
	}
	return ErrNotPending
}
