package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// forward lists the statuses each status may move to. Completed and
// cancelled orders are final.
var forward = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

func (s Status) CanMoveTo(to Status) bool {
	for _, next := range forward[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID               string          `json:"id"`
	CustomerID       string          `json:"customer_id"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Status           Status          `json:"order_status"`
	PaymentReference string          `json:"payment_reference"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Items            []Item          `json:"items"`
}

// Item snapshots a cart line. Price is per unit.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Created is the payload of the order.created outbox event.
type Created struct {
	OrderID          string          `json:"order_id"`
	CustomerID       string          `json:"customer_id"`
	PaymentReference string          `json:"payment_reference"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Items            []Item          `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
}
