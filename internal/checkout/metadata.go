package checkout

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Processor limits on session metadata.
const (
	maxValueLen = 500
	maxKeys     = 50
)

const (
	keyItems      = "items"
	keyItemsParts = "items_parts"
	keyCustomerID = "customer_id"
	keyTotal      = "total_price"
)

// ErrMalformed marks metadata that cannot be turned into an order.
var ErrMalformed = errors.New("malformed checkout metadata")

// ItemSnapshot is one cart line as it was when the session was created.
// Price is per unit.
type ItemSnapshot struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (i ItemSnapshot) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Metadata struct {
	CustomerID string
	Total      decimal.Decimal
	Items      []ItemSnapshot
}

// EncodeMetadata flattens m into string pairs. Item JSON longer than a single
// value allows is split across items_0..items_n with items_parts holding n+1.
func EncodeMetadata(m Metadata) (map[string]string, error) {
	raw, err := json.Marshal(m.Items)
	if err != nil {
		return nil, errors.Wrap(err, "encode checkout items")
	}
	out := map[string]string{
		keyCustomerID: m.CustomerID,
		keyTotal:      m.Total.StringFixed(2),
	}
	if s := string(raw); len(s) <= maxValueLen {
		out[keyItems] = s
	} else {
		splitItems(out, s)
	}
	if len(out) > maxKeys {
		return nil, errors.Newf("checkout metadata needs %d keys, limit is %d", len(out), maxKeys)
	}
	return out, nil
}

func splitItems(out map[string]string, s string) {
	parts := 0
	for len(s) > 0 {
		n := maxValueLen
		if len(s) < n {
			n = len(s)
		}
		out[keyItems+"_"+strconv.Itoa(parts)] = s[:n]
		s = s[n:]
		parts++
	}
	out[keyItemsParts] = strconv.Itoa(parts)
}

// DecodeMetadata reverses EncodeMetadata and checks that the declared total
// equals the sum of the line totals.
func DecodeMetadata(raw map[string]string) (Metadata, error) {
	var m Metadata
	m.CustomerID = strings.TrimSpace(raw[keyCustomerID])
	if m.CustomerID == "" {
		return Metadata{}, errors.Mark(errors.New("customer_id missing"), ErrMalformed)
	}

	total, err := decimal.NewFromString(raw[keyTotal])
	if err != nil {
		return Metadata{}, errors.Mark(errors.Wrap(err, "total_price"), ErrMalformed)
	}
	m.Total = total

	itemsJSON, err := joinItems(raw)
	if err != nil {
		return Metadata{}, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &m.Items); err != nil {
		return Metadata{}, errors.Mark(errors.Wrap(err, "items"), ErrMalformed)
	}
	if len(m.Items) == 0 {
		return Metadata{}, errors.Mark(errors.New("no items"), ErrMalformed)
	}

	sum := decimal.Zero
	for i, it := range m.Items {
		if it.ProductID == "" || it.Quantity < 1 || it.Price.IsNegative() {
			return Metadata{}, errors.Mark(errors.Newf("item %d is invalid", i), ErrMalformed)
		}
		sum = sum.Add(it.LineTotal())
	}
	if !sum.Equal(m.Total) {
		return Metadata{}, errors.Mark(
			errors.Newf("total_price %s does not match line totals %s", m.Total.StringFixed(2), sum.StringFixed(2)),
			ErrMalformed)
	}
	return m, nil
}

func joinItems(raw map[string]string) (string, error) {
	if s, ok := raw[keyItems]; ok {
		return s, nil
	}
	n, err := strconv.Atoi(raw[keyItemsParts])
	if err != nil || n < 1 || n > maxKeys {
		return "", errors.Mark(errors.New("items missing"), ErrMalformed)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		part, ok := raw[keyItems+"_"+strconv.Itoa(i)]
		if !ok {
			return "", errors.Mark(errors.Newf("items part %d missing", i), ErrMalformed)
		}
		b.WriteString(part)
	}
	return b.String(), nil
}
