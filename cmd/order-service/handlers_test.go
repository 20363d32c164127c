package main

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tiendas-ecom/internal/auth"
	"github.com/MikeMC777/tiendas-ecom/internal/cart"
	"github.com/MikeMC777/tiendas-ecom/internal/checkout"
	"github.com/MikeMC777/tiendas-ecom/internal/coupon"
	"github.com/MikeMC777/tiendas-ecom/internal/db"
	"github.com/MikeMC777/tiendas-ecom/internal/earnings"
	"github.com/MikeMC777/tiendas-ecom/internal/metrics"
	"github.com/MikeMC777/tiendas-ecom/internal/order"
	"github.com/MikeMC777/tiendas-ecom/internal/payment"
	"github.com/MikeMC777/tiendas-ecom/internal/payout"
	"github.com/MikeMC777/tiendas-ecom/internal/product"
	"github.com/MikeMC777/tiendas-ecom/internal/seller"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

//
// ---------- STUBS & FAKES ----------
//

const (
	jwtSecret = "test-secret"
	whsec     = "whsec_test"
	mugID     = "6f0c1d4e-8a7b-4c1e-9d2f-3b5a7c9e1f20"
)

// world is the in-memory state shared by every stub below.
type world struct {
	mu       sync.Mutex
	products map[string]product.Product
	sellers  map[string]seller.Seller
	cart     map[string]cart.Item
	orders   map[string]*order.Order // by payment reference
	payouts  map[string]*payout.Payout
	earned   map[string]decimal.Decimal
	sessions int
}

func newWorld() *world {
	return &world{
		products: map[string]product.Product{
			mugID: {ID: mugID, SellerID: "s1", Title: "Mug", Price: decimal.RequireFromString("100"), Discount: decimal.RequireFromString("0.1"), Stock: 10},
		},
		sellers: map[string]seller.Seller{"acme": {ID: "s1", Subdomain: "acme"}},
		cart:    map[string]cart.Item{},
		orders:  map[string]*order.Order{},
		payouts: map[string]*payout.Payout{},
		earned:  map[string]decimal.Decimal{},
	}
}

type stubProducts struct{ w *world }

func (s stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	p, ok := s.w.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

type stubSellers struct{ w *world }

func (s stubSellers) BySubdomain(_ context.Context, sub string) (*seller.Seller, error) {
	sl, ok := s.w.sellers[sub]
	if !ok {
		return nil, seller.ErrNotFound
	}
	return &sl, nil
}

type stubCoupons struct{}

func (stubCoupons) FindByCode(context.Context, string, string) (*coupon.Coupon, error) {
	return nil, coupon.ErrNotFound
}

type stubCart struct{ w *world }

func (s stubCart) Insert(_ context.Context, it *cart.Item) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, x := range s.w.cart {
		if x.CustomerID == it.CustomerID && x.ProductID == it.ProductID {
			return cart.ErrDuplicate
		}
	}
	s.w.cart[it.ID] = *it
	return nil
}

func (s stubCart) GetByID(_ context.Context, id string) (*cart.Item, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	it, ok := s.w.cart[id]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return &it, nil
}

func (s stubCart) ListByCustomer(_ context.Context, customerID string) ([]cart.Item, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	out := []cart.Item{}
	for _, it := range s.w.cart {
		if it.CustomerID == customerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s stubCart) Summary(ctx context.Context, customerID string) (cart.Summary, error) {
	items, _ := s.ListByCustomer(ctx, customerID)
	sum := cart.Summary{Lines: len(items)}
	for _, it := range items {
		sum.Quantity += it.Quantity
	}
	return sum, nil
}

func (s stubCart) Contains(ctx context.Context, customerID, productID string) (bool, error) {
	items, _ := s.ListByCustomer(ctx, customerID)
	for _, it := range items {
		if it.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s stubCart) UpdateQuantity(_ context.Context, customerID, id string, q int, final decimal.Decimal) (*cart.Item, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	it, ok := s.w.cart[id]
	if !ok || it.CustomerID != customerID {
		return nil, cart.ErrNotFound
	}
	it.Quantity, it.FinalPrice = q, final
	s.w.cart[id] = it
	return &it, nil
}

func (s stubCart) Delete(_ context.Context, customerID, id string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	it, ok := s.w.cart[id]
	if !ok || it.CustomerID != customerID {
		return cart.ErrNotFound
	}
	delete(s.w.cart, id)
	return nil
}

// stubOrders commits like the PG repo: dedupe on payment reference, take
// stock, clear cart. Cancelling puts the stock back.
type stubOrders struct{ w *world }

func (s stubOrders) moveStock(o *order.Order, sign int) {
	for _, it := range o.Items {
		p := s.w.products[it.ProductID]
		p.Stock += sign * it.Quantity
		s.w.products[it.ProductID] = p
	}
}

func (s stubOrders) Commit(_ context.Context, o *order.Order) (bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if _, ok := s.w.orders[o.PaymentReference]; ok {
		return false, nil
	}
	cp := *o
	s.w.orders[o.PaymentReference] = &cp
	s.moveStock(o, -1)
	for id, it := range s.w.cart {
		if it.CustomerID == o.CustomerID {
			delete(s.w.cart, id)
		}
	}
	return true, nil
}

func (s stubOrders) find(id string) *order.Order {
	for _, o := range s.w.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (s stubOrders) GetByID(_ context.Context, id string) (*order.Order, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	o := s.find(id)
	if o == nil {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s stubOrders) ListBySeller(_ context.Context, sellerID string, st order.Status, _, _ int) ([]order.Order, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	out := []order.Order{}
	for _, o := range s.w.orders {
		if st != "" && o.Status != st {
			continue
		}
		for _, it := range o.Items {
			if s.w.products[it.ProductID].SellerID == sellerID {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (s stubOrders) SellerOwns(_ context.Context, sellerID, orderID string) (bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if o := s.find(orderID); o != nil {
		for _, it := range o.Items {
			if s.w.products[it.ProductID].SellerID == sellerID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s stubOrders) UpdateStatus(_ context.Context, id string, from, to order.Status) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	o := s.find(id)
	if o == nil || o.Status != from {
		return order.ErrStale
	}
	o.Status = to
	if to == order.StatusCancelled {
		s.moveStock(o, 1)
	}
	return nil
}

type stubPayouts struct{ w *world }

func (s stubPayouts) Create(ctx context.Context, p *payout.Payout, ceiling payout.Ceiling) error {
	avail, err := ceiling(ctx, nil)
	if err != nil {
		return err
	}
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if p.Amount.GreaterThan(avail) {
		return payout.ErrInsufficientBalance
	}
	p.Date = time.Now()
	cp := *p
	s.w.payouts[p.ID] = &cp
	return nil
}

func (s stubPayouts) GetByID(_ context.Context, id string) (*payout.Payout, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	p, ok := s.w.payouts[id]
	if !ok {
		return nil, payout.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s stubPayouts) List(_ context.Context, st payout.Status) ([]payout.Payout, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	out := []payout.Payout{}
	for _, p := range s.w.payouts {
		if st == "" || p.Status == st {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s stubPayouts) ListBySeller(_ context.Context, sellerID string) ([]payout.Payout, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	out := []payout.Payout{}
	for _, p := range s.w.payouts {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s stubPayouts) Settle(_ context.Context, id string, to payout.Status) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	p, ok := s.w.payouts[id]
	if !ok {
		return payout.ErrNotFound
	}
	if p.Status != payout.StatusPending {
		return payout.ErrNotPending
	}
	p.Status = to
	return nil
}

func (s stubPayouts) DeletePending(_ context.Context, id string) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	p, ok := s.w.payouts[id]
	if !ok {
		return payout.ErrNotFound
	}
	if p.Status != payout.StatusPending {
		return payout.ErrNotPending
	}
	delete(s.w.payouts, id)
	return nil
}

type stubLedger struct{ w *world }

func (s stubLedger) Totals(_ context.Context, _ db.Querier, sellerID string) (earnings.Totals, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	t := earnings.Totals{Earned: s.w.earned[sellerID]}
	for _, p := range s.w.payouts {
		if p.SellerID != sellerID {
			continue
		}
		switch p.Status {
		case payout.StatusPaid:
			t.PaidOut = t.PaidOut.Add(p.Amount)
		case payout.StatusPending:
			t.Pending = t.Pending.Add(p.Amount)
		}
	}
	return t, nil
}

// fakeGateway creates sessions in memory but verifies webhooks with the real
// Stripe verifier.
type fakeGateway struct {
	*payment.Stripe
	w    *world
	last payment.SessionRequest
}

func (g *fakeGateway) CreateSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.w.mu.Lock()
	defer g.w.mu.Unlock()
	g.w.sessions++
	g.last = req
	id := fmt.Sprintf("cs_test_%d", g.w.sessions)
	return &payment.Session{ID: id, URL: "https://checkout.example/" + id}, nil
}

type harness struct {
	w  *world
	gw *fakeGateway
	r  *gin.Engine
	v  *auth.Verifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	w := newWorld()
	gw := &fakeGateway{Stripe: payment.NewStripe("sk_test", whsec), w: w}
	m := metrics.NewServerMetrics(prometheus.NewRegistry(), "test")
	carts := stubCart{w}
	ledger := stubLedger{w}
	orders := stubOrders{w}
	v := auth.NewVerifier(jwtSecret)
	r := newRouter(deps{
		verifier:  v,
		carts:     cart.NewService(carts, stubProducts{w}, stubSellers{w}, stubCoupons{}),
		checkout:  checkout.NewService(carts, stubProducts{w}, gw, checkout.Options{}, m),
		committer: order.NewCommitter(gw, orders, m),
		orders:    order.NewService(orders),
		payouts:   payout.NewService(stubPayouts{w}, ledger),
		earnings:  earnings.NewService(ledger),
		metrics:   m,
	})
	return &harness{w: w, gw: gw, r: r, v: v}
}

func (h *harness) do(t *testing.T, method, path, body string, who auth.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if who.ID != "" {
		tok, err := h.v.Sign(who, time.Minute)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func (h *harness) webhook(t *testing.T, payload []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func signPayload(payload []byte) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(whsec))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func completedEvent(t *testing.T, sessionID string, md map[string]string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id": "evt_" + uuid.NewString(), "object": "event", "type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{
			"id": sessionID, "object": "checkout.session", "payment_status": "paid", "metadata": md,
		}},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

var (
	customer = auth.Principal{ID: "u1", Role: auth.RoleCustomer}
	sellerP  = auth.Principal{ID: "s1", Role: auth.RoleSeller}
	admin    = auth.Principal{ID: "a1", Role: auth.RoleAdmin}
)

//
// ---------- TESTS ----------
//

func TestCartRoutes_RoleGuard(t *testing.T) {
	h := newHarness(t)

	if w := h.do(t, http.MethodGet, "/cart", "", auth.Principal{}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status=%d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/cart", "", sellerP); w.Code != http.StatusForbidden {
		t.Fatalf("seller status=%d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/cart", "", customer); w.Code != http.StatusOK {
		t.Fatalf("customer status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAddToCart_AndDuplicate(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/cart", `{"product_id":"`+mugID+`","quantity":2}`, customer)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var it cart.Item
	if err := json.Unmarshal(w.Body.Bytes(), &it); err != nil {
		t.Fatalf("json: %v", err)
	}
	if it.FinalPrice.StringFixed(2) != "180.00" {
		t.Fatalf("final_price=%s", it.FinalPrice)
	}

	w = h.do(t, http.MethodPost, "/cart", `{"product_id":"`+mugID+`","quantity":1}`, customer)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status=%d body=%s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodPut, "/cart/"+it.ID, `{"quantity":5}`, customer)
	if w.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &it); err != nil {
		t.Fatalf("json: %v", err)
	}
	if it.FinalPrice.StringFixed(2) != "450.00" {
		t.Fatalf("after update final_price=%s", it.FinalPrice)
	}

	w = h.do(t, http.MethodGet, "/cart/count", "", customer)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"quantity":5`)) {
		t.Fatalf("count status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestAddToCart_UnknownStorefrontWithCoupon(t *testing.T) {
	h := newHarness(t)

	req := `{"product_id":"` + mugID + `","quantity":1,"coupon_code":"SAVE"}`
	httpReq := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBufferString(req))
	tok, _ := h.v.Sign(customer, time.Minute)
	httpReq.Header.Set("Authorization", "Bearer "+tok)
	httpReq.Header.Set("X-Shop-Subdomain", "ghost")
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, httpReq)

	if w.Code != http.StatusNotFound || !bytes.Contains(w.Body.Bytes(), []byte("seller_not_found")) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodPost, "/checkout/session", "", customer)
	if w.Code != http.StatusBadRequest || !bytes.Contains(w.Body.Bytes(), []byte("empty_cart")) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCheckoutThenWebhook_CommitsOnce(t *testing.T) {
	h := newHarness(t)

	if w := h.do(t, http.MethodPost, "/cart", `{"product_id":"`+mugID+`","quantity":2}`, customer); w.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", w.Code, w.Body.String())
	}
	w := h.do(t, http.MethodPost, "/checkout/session", "", customer)
	if w.Code != http.StatusOK {
		t.Fatalf("checkout status=%d body=%s", w.Code, w.Body.String())
	}
	var sess struct {
		URL       string `json:"url"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil || sess.URL == "" {
		t.Fatalf("session body=%s err=%v", w.Body.String(), err)
	}
	if len(h.w.cart) != 1 {
		t.Fatalf("cart must survive checkout, len=%d", len(h.w.cart))
	}

	payload := completedEvent(t, sess.SessionID, h.gw.last.Metadata)

	// tampered signature: nothing happens
	if w := h.webhook(t, payload, "t=1,v1=00"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad signature status=%d", w.Code)
	}
	if len(h.w.orders) != 0 || len(h.w.cart) != 1 {
		t.Fatalf("state changed on bad signature")
	}

	for i := 0; i < 2; i++ {
		if w := h.webhook(t, payload, signPayload(payload)); w.Code != http.StatusOK {
			t.Fatalf("delivery %d status=%d body=%s", i, w.Code, w.Body.String())
		}
	}
	if len(h.w.orders) != 1 {
		t.Fatalf("orders=%d, want 1", len(h.w.orders))
	}
	o := h.w.orders[sess.SessionID]
	if o.TotalPrice.StringFixed(2) != "180.00" || o.Status != order.StatusProcessing {
		t.Fatalf("order=%+v", o)
	}
	if len(h.w.cart) != 0 {
		t.Fatalf("cart not cleared")
	}

	// the seller sees it and can complete it
	w = h.do(t, http.MethodGet, "/orders/status/processing", "", sellerP)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(o.ID)) {
		t.Fatalf("list status=%d body=%s", w.Code, w.Body.String())
	}
	w = h.do(t, http.MethodPut, "/orders/"+o.ID+"/status", `{"status":"completed"}`, sellerP)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status=%d body=%s", w.Code, w.Body.String())
	}
	w = h.do(t, http.MethodPut, "/orders/"+o.ID+"/status", `{"status":"pending"}`, sellerP)
	if w.Code != http.StatusConflict {
		t.Fatalf("backwards status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestWebhook_MalformedMetadataAsksForRetry(t *testing.T) {
	h := newHarness(t)
	payload := completedEvent(t, "cs_x", map[string]string{"customer_id": "u1", "total_price": "abc"})
	if w := h.webhook(t, payload, signPayload(payload)); w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestEarningsAndPayouts(t *testing.T) {
	h := newHarness(t)
	h.w.earned["s1"] = decimal.RequireFromString("1000")

	w := h.do(t, http.MethodPost, "/payouts", `{"amount":"200","payout_method":"bank"}`, sellerP)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	var p payout.Payout
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("json: %v", err)
	}

	if w := h.do(t, http.MethodPut, "/payouts/"+p.ID+"/status", `{"status":"paid"}`, sellerP); w.Code != http.StatusForbidden {
		t.Fatalf("seller settling status=%d", w.Code)
	}
	if w := h.do(t, http.MethodPut, "/payouts/"+p.ID+"/status", `{"status":"paid"}`, admin); w.Code != http.StatusOK {
		t.Fatalf("settle status=%d body=%s", w.Code, w.Body.String())
	}
	if w := h.do(t, http.MethodDelete, "/payouts/"+p.ID, "", admin); w.Code != http.StatusConflict {
		t.Fatalf("delete paid status=%d", w.Code)
	}

	w = h.do(t, http.MethodGet, "/earnings", "", sellerP)
	if w.Code != http.StatusOK {
		t.Fatalf("earnings status=%d body=%s", w.Code, w.Body.String())
	}
	var ledger map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &ledger); err != nil {
		t.Fatalf("json: %v", err)
	}
	if ledger["platform_fee"] != "20.00" || ledger["remaining_balance"] != "780.00" {
		t.Fatalf("ledger=%v", ledger)
	}

	if w := h.do(t, http.MethodPost, "/payouts", `{"amount":"781","payout_method":"bank"}`, sellerP); w.Code != http.StatusConflict {
		t.Fatalf("overdraw status=%d body=%s", w.Code, w.Body.String())
	}

	if w := h.do(t, http.MethodGet, "/payouts/seller/s2", "", sellerP); w.Code != http.StatusForbidden {
		t.Fatalf("foreign seller payouts status=%d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/payouts/seller/s1", "", sellerP); w.Code != http.StatusOK {
		t.Fatalf("own payouts status=%d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/payouts?status=paid", "", admin); w.Code != http.StatusOK {
		t.Fatalf("admin list status=%d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

// placeOrder runs a customer's cart through checkout and a paid webhook.
func placeOrder(t *testing.T, h *harness, qty int) *order.Order {
	t.Helper()
	body := fmt.Sprintf(`{"product_id":"%s","quantity":%d}`, mugID, qty)
	if w := h.do(t, http.MethodPost, "/cart", body, customer); w.Code != http.StatusCreated {
		t.Fatalf("add status=%d body=%s", w.Code, w.Body.String())
	}
	w := h.do(t, http.MethodPost, "/checkout/session", "", customer)
	if w.Code != http.StatusOK {
		t.Fatalf("checkout status=%d body=%s", w.Code, w.Body.String())
	}
	var sess struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("json: %v", err)
	}
	payload := completedEvent(t, sess.SessionID, h.gw.last.Metadata)
	if w := h.webhook(t, payload, signPayload(payload)); w.Code != http.StatusOK {
		t.Fatalf("webhook status=%d body=%s", w.Code, w.Body.String())
	}
	o := h.w.orders[sess.SessionID]
	if o == nil {
		t.Fatalf("no order for %s", sess.SessionID)
	}
	return o
}

func TestUpdateOrderStatus_ProcessingToCancelled_Restocks(t *testing.T) {
	h := newHarness(t)
	o := placeOrder(t, h, 3)
	if got := h.w.products[mugID].Stock; got != 7 {
		t.Fatalf("stock after order=%d, want 7", got)
	}

	w := h.do(t, http.MethodPut, "/orders/"+o.ID+"/status", `{"status":"cancelled"}`, sellerP)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel status=%d body=%s", w.Code, w.Body.String())
	}
	if got := h.w.products[mugID].Stock; got != 10 {
		t.Fatalf("stock after cancel=%d, want 10", got)
	}

	// cancelling again changes nothing
	if w := h.do(t, http.MethodPut, "/orders/"+o.ID+"/status", `{"status":"cancelled"}`, sellerP); w.Code != http.StatusOK {
		t.Fatalf("repeat cancel status=%d", w.Code)
	}
	if got := h.w.products[mugID].Stock; got != 10 {
		t.Fatalf("stock after repeat cancel=%d, want 10", got)
	}
}

func TestUpdateOrderStatus_ForeignOrderLooksMissing(t *testing.T) {
	h := newHarness(t)
	o := placeOrder(t, h, 1)
	other := auth.Principal{ID: "s2", Role: auth.RoleSeller}

	foreign := h.do(t, http.MethodPut, "/orders/"+o.ID+"/status", `{"status":"completed"}`, other)
	missing := h.do(t, http.MethodPut, "/orders/"+uuid.NewString()+"/status", `{"status":"completed"}`, other)
	if foreign.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("foreign=%d missing=%d", foreign.Code, missing.Code)
	}
	if foreign.Body.String() != missing.Body.String() {
		t.Fatalf("bodies differ: %s vs %s", foreign.Body.String(), missing.Body.String())
	}
	if o.Status != order.StatusProcessing {
		t.Fatalf("status=%s", o.Status)
	}
}

func TestMalformedIDs_AreRejectedBeforeTheStore(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		method, path, body string
		who                auth.Principal
		status             int
		reason             string
	}{
		{http.MethodPut, "/cart/not-a-uuid", `{"quantity":2}`, customer, http.StatusBadRequest, "invalid_id"},
		{http.MethodDelete, "/cart/not-a-uuid", "", customer, http.StatusBadRequest, "invalid_id"},
		{http.MethodGet, "/cart/contains/p1", "", customer, http.StatusBadRequest, "invalid_id"},
		{http.MethodPost, "/cart", `{"product_id":"p1","quantity":1}`, customer, http.StatusNotFound, "product_not_found"},
		{http.MethodPut, "/orders/42/status", `{"status":"completed"}`, sellerP, http.StatusBadRequest, "invalid_id"},
		{http.MethodPut, "/payouts/x/status", `{"status":"paid"}`, admin, http.StatusBadRequest, "invalid_id"},
		{http.MethodDelete, "/payouts/x", "", admin, http.StatusBadRequest, "invalid_id"},
	}
	for _, tc := range cases {
		w := h.do(t, tc.method, tc.path, tc.body, tc.who)
		if w.Code != tc.status || !bytes.Contains(w.Body.Bytes(), []byte(`"`+tc.reason+`"`)) {
			t.Fatalf("%s %s: status=%d body=%s", tc.method, tc.path, w.Code, w.Body.String())
		}
	}
	if len(h.w.cart) != 0 {
		t.Fatalf("cart changed: %v", h.w.cart)
	}
}
