// Package seller resolves storefront subdomains to their owning seller.
package seller

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("seller not found")

type Seller struct {
	ID           string    `json:"id"`
	Subdomain    string    `json:"subdomain"`
	StoreName    string    `json:"store_name"`
	PayoutMethod string    `json:"payout_method"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repository interface {
	BySubdomain(ctx context.Context, subdomain string) (*Seller, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) BySubdomain(ctx context.Context, subdomain string) (*Seller, error) {
	subdomain = Normalize(subdomain)
	if subdomain == "" {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s Seller
	err := r.db.QueryRow(ctx, `
		SELECT id, subdomain, store_name, payout_method, created_at
		FROM sellers WHERE subdomain=$1
	`, subdomain).Scan(&s.ID, &s.Subdomain, &s.StoreName, &s.PayoutMethod, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get seller by subdomain")
	}
	return &s, nil
}

// Normalize lower-cases and trims a subdomain as typed or taken from a host.
func Normalize(subdomain string) string {
	return strings.ToLower(strings.TrimSpace(subdomain))
}

// FromHost extracts the left-most label of shop.example.com. Hosts with
// fewer than three labels carry no storefront.
func FromHost(host string) string {
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	return Normalize(labels[0])
}
