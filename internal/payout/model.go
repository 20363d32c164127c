package payout

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusPaid, StatusRejected:
		return st, true
	}
	return "", false
}

type Payout struct {
	ID           string          `json:"id"`
	SellerID     string          `json:"seller_id"`
	Amount       decimal.Decimal `json:"amount"`
	PayoutMethod string          `json:"payout_method"`
	Status       Status          `json:"status"`
	Date         time.Time       `json:"date"`
}

// CreateRequest payload for a seller requesting a payout.
// swagger:model CreatePayoutRequest
type CreateRequest struct {
	Amount       decimal.Decimal `json:"amount"        swaggertype:"string" example:"150.00"`
	PayoutMethod string          `json:"payout_method" example:"bank_transfer"`
}

// UpdateStatusRequest payload for an admin settling a payout.
// swagger:model UpdatePayoutStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"paid"`
}
