package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btechtrader/checkout-service/internal/purchase/application"
	"github.com/btechtrader/checkout-service/internal/purchase/domain"
	"github.com/go-chi/chi/v5"
)

type memStore struct {
	rows map[string]domain.Purchase
}

func (m *memStore) InsertWithOutbox(_ context.Context, p domain.Purchase, _ string, _ []byte, _ string) (domain.Purchase, bool, error) {
	key := p.UserID + "/" + p.OrderID
	if existing, ok := m.rows[key]; ok {
		return existing, false, nil
	}
	m.rows[key] = p
	return p, true, nil
}

func (m *memStore) Get(_ context.Context, userID, orderID string) (domain.Purchase, error) {
	p, ok := m.rows[userID+"/"+orderID]
	if !ok {
		return domain.Purchase{}, domain.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListByUser(_ context.Context, userID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	for _, p := range m.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func newRouter(store *memStore) *chi.Mux {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(log, application.NewRecorder(log, store)).Register(r)
	return r
}

func TestGetPurchase(t *testing.T) {
	store := &memStore{rows: map[string]domain.Purchase{
		"user-1/order_abc123": {
			UserID:      "user-1",
			OrderID:     "order_abc123",
			CourseTitle: "Advanced Trading",
			PricePaise:  5400,
			Token:       "A1B2C3D4E",
			PurchasedAt: time.UnixMilli(1724917800000).UTC(),
		},
	}}
	r := newRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchases/user-1/order_abc123", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp purchaseResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "A1B2C3D4E" || resp.PricePaise != 5400 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.PurchasedAt != 1724917800000 {
		t.Errorf("purchasedAt = %d", resp.PurchasedAt)
	}
}

func TestGetPurchaseNotFound(t *testing.T) {
	r := newRouter(&memStore{rows: map[string]domain.Purchase{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchases/user-1/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListPurchases(t *testing.T) {
	store := &memStore{rows: map[string]domain.Purchase{
		"user-1/order_1": {UserID: "user-1", OrderID: "order_1", Token: "AAAAAAAAA"},
		"user-1/order_2": {UserID: "user-1", OrderID: "order_2", Token: "BBBBBBBBB"},
		"user-2/order_3": {UserID: "user-2", OrderID: "order_3", Token: "CCCCCCCCC"},
	}}
	r := newRouter(store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchases/user-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp []purchaseResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("len = %d, want 2", len(resp))
	}
}

func TestListPurchasesEmpty(t *testing.T) {
	r := newRouter(&memStore{rows: map[string]domain.Purchase{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/purchases/nobody", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty array", body)
	}
}
