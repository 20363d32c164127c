package order

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/tiendas-ecom/internal/apperr"
	"github.com/MikeMC777/tiendas-ecom/internal/checkout"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/payment"
)

const whsec = "whsec_test"

// memRepo mimics the unique payment_reference constraint and the cart clear
// and stock moves that share Commit's and UpdateStatus's transactions.
type memRepo struct {
	mu       sync.Mutex
	byRef    map[string]*Order
	byID     map[string]*Order
	carts    map[string]int
	owners   map[string]string // product -> seller
	stock    map[string]int
	failNext error
}

func newMemRepo() *memRepo {
	return &memRepo{
		byRef:  map[string]*Order{},
		byID:   map[string]*Order{},
		carts:  map[string]int{},
		owners: map[string]string{},
		stock:  map[string]int{},
	}
}

func (m *memRepo) Commit(_ context.Context, o *Order) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return false, err
	}
	if _, ok := m.byRef[o.PaymentReference]; ok {
		return false, nil
	}
	cp := *o
	m.byRef[o.PaymentReference] = &cp
	m.byID[o.ID] = &cp
	for _, it := range o.Items {
		m.stock[it.ProductID] = max(m.stock[it.ProductID]-it.Quantity, 0)
	}
	delete(m.carts, o.CustomerID)
	return true, nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) ListBySeller(_ context.Context, sellerID string, status Status, _, _ int) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Order{}
	for _, o := range m.byID {
		if status != "" && o.Status != status {
			continue
		}
		for _, it := range o.Items {
			if m.owners[it.ProductID] == sellerID {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (m *memRepo) SellerOwns(_ context.Context, sellerID, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[orderID]
	if !ok {
		return false, nil
	}
	for _, it := range o.Items {
		if m.owners[it.ProductID] == sellerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok || o.Status != from {
		return ErrStale
	}
	o.Status = to
	if to == StatusCancelled {
		for _, it := range o.Items {
			m.stock[it.ProductID] += it.Quantity
		}
	}
	return nil
}

func sign(payload []byte) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(whsec))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func sessionEvent(t *testing.T, typ, sessionID, paymentStatus string, md map[string]string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":     "evt_" + sessionID,
		"object": "event",
		"type":   typ,
		"data": map[string]any{"object": map[string]any{
			"id":             sessionID,
			"object":         "checkout.session",
			"payment_status": paymentStatus,
			"metadata":       md,
		}},
	})
	require.NoError(t, err)
	return body
}

func scenarioMetadata(t *testing.T) map[string]string {
	t.Helper()
	md, err := checkout.EncodeMetadata(checkout.Metadata{
		CustomerID: "u1",
		Total:      decimal.RequireFromString("230"),
		Items: []checkout.ItemSnapshot{
			{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("90")},
			{ProductID: "p2", Quantity: 1, Price: decimal.RequireFromString("50")},
		},
	})
	require.NoError(t, err)
	return md
}

func newCommitter(repo *memRepo) (*Committer, *metrics.ServerMetrics) {
	m := metrics.NewServerMetrics(prometheus.NewRegistry(), "test")
	return NewCommitter(payment.NewStripe("sk_test", whsec), repo, m), m
}

func TestHandle_CommitsOrderAndClearsCart(t *testing.T) {
	repo := newMemRepo()
	repo.carts["u1"] = 2
	c, m := newCommitter(repo)
	payload := sessionEvent(t, payment.EventSessionCompleted, "cs_1", "paid", scenarioMetadata(t))

	out, err := c.Handle(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	require.Equal(t, OutcomeCommitted, out)

	o := repo.byRef["cs_1"]
	require.NotNil(t, o)
	require.Equal(t, StatusProcessing, o.Status)
	require.Equal(t, "u1", o.CustomerID)
	require.Len(t, o.Items, 2)

	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	require.True(t, sum.Equal(o.TotalPrice), "sum=%s total=%s", sum, o.TotalPrice)
	require.NotContains(t, repo.carts, "u1")
	require.Equal(t, 1.0, testutil.ToFloat64(m.WebhookEvents.WithLabelValues("committed")))
}

func TestHandle_RedeliveryIsNoop(t *testing.T) {
	repo := newMemRepo()
	c, _ := newCommitter(repo)
	payload := sessionEvent(t, payment.EventSessionCompleted, "cs_1", "paid", scenarioMetadata(t))

	out, err := c.Handle(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	require.Equal(t, OutcomeCommitted, out)

	// the customer filled a new cart in the meantime
	repo.carts["u1"] = 1
	out, err = c.Handle(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, out)
	require.Len(t, repo.byRef, 1)
	require.Equal(t, 1, repo.carts["u1"])
}

func TestHandle_ConcurrentDeliveriesCreateOneOrder(t *testing.T) {
	repo := newMemRepo()
	c, _ := newCommitter(repo)
	payload := sessionEvent(t, payment.EventSessionCompleted, "cs_race", "paid", scenarioMetadata(t))
	sig := sign(payload)

	const n = 10
	outcomes := make(chan Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := c.Handle(context.Background(), payload, sig)
			if err == nil {
				outcomes <- out
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	counts := map[Outcome]int{}
	for o := range outcomes {
		counts[o]++
	}
	require.Equal(t, 1, counts[OutcomeCommitted])
	require.Equal(t, n-1, counts[OutcomeDuplicate])
	require.Len(t, repo.byRef, 1)
}

func TestHandle_BadSignatureChangesNothing(t *testing.T) {
	repo := newMemRepo()
	repo.carts["u1"] = 2
	c, _ := newCommitter(repo)
	payload := sessionEvent(t, payment.EventSessionCompleted, "cs_1", "paid", scenarioMetadata(t))

	_, err := c.Handle(context.Background(), payload, "t=1,v1=deadbeef")
	require.Equal(t, apperr.KindSignature, apperr.KindOf(err))
	require.Equal(t, "signature_invalid", apperr.ReasonOf(err))
	require.Empty(t, repo.byRef)
	require.Equal(t, 2, repo.carts["u1"])
}

func TestHandle_EventKinds(t *testing.T) {
	cases := []struct {
		name   string
		typ    string
		status string
		want   Outcome
	}{
		{"async success commits", payment.EventAsyncPaymentSucceeded, "paid", OutcomeCommitted},
		{"unpaid completion waits", payment.EventSessionCompleted, "unpaid", OutcomeDeferred},
		{"expired session ignored", "checkout.session.expired", "unpaid", OutcomeIgnored},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepo()
			c, _ := newCommitter(repo)
			payload := sessionEvent(t, tc.typ, "cs_k", tc.status, scenarioMetadata(t))
			out, err := c.Handle(context.Background(), payload, sign(payload))
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
			require.Equal(t, tc.want == OutcomeCommitted, len(repo.byRef) == 1)
		})
	}
}

func TestHandle_MalformedMetadataIsRetryable(t *testing.T) {
	repo := newMemRepo()
	c, _ := newCommitter(repo)
	md := scenarioMetadata(t)
	md["total_price"] = "999.00"
	payload := sessionEvent(t, payment.EventSessionCompleted, "cs_bad", "paid", md)

	_, err := c.Handle(context.Background(), payload, sign(payload))
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	require.Equal(t, "malformed_metadata", apperr.ReasonOf(err))
	require.Empty(t, repo.byRef)
}

func TestHandle_StoreFailureIsRetryable(t *testing.T) {
	repo := newMemRepo()
	repo.failNext = errors.New("connection refused")
	c, _ := newCommitter(repo)
	payload := sessionEvent(t, payment.EventSessionCompleted, "cs_1", "paid", scenarioMetadata(t))

	_, err := c.Handle(context.Background(), payload, sign(payload))
	require.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	out, err := c.Handle(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	require.Equal(t, OutcomeCommitted, out)
}
