package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/fulfillment/internal/events"
	"github.com/louisbranch/fulfillment/internal/platform/resilience"
	"github.com/louisbranch/fulfillment/internal/services/payment"
	"github.com/louisbranch/fulfillment/internal/services/payment/service"
	"github.com/louisbranch/fulfillment/internal/services/payment/storage"
)

// memStore is a minimal in-memory storage.Store for handler tests.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]payment.Payment
}

func (s *memStore) CreatePayment(_ context.Context, record payment.Payment) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	record.ID = s.nextID
	s.records[record.ID] = record
	return record, nil
}

func (s *memStore) GetPayment(_ context.Context, id int64) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return payment.Payment{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *memStore) ListPaymentsByOrder(_ context.Context, orderID int64) ([]payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []payment.Payment
	for id := int64(1); id <= s.nextID; id++ {
		if record, ok := s.records[id]; ok && record.OrderID == orderID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *memStore) SavePayment(_ context.Context, record payment.Payment) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return record, nil
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	cfg := resilience.DefaultConfig()
	cfg.RetryAttempts = 1
	cfg.Timeout = 500 * time.Millisecond
	svc := service.New(
		&memStore{records: map[int64]payment.Payment{}},
		&events.Recorder{},
		resilience.NewGroup("payment", cfg),
		service.WithGateway(func(context.Context) error { return nil }),
	)
	mux := http.NewServeMux()
	New(svc).Register(mux)
	return mux
}

func TestProcessPaymentEndpoint(t *testing.T) {
	mux := newTestMux(t)
	body := strings.NewReader(`{"orderId": 7, "amount": "19.99", "paymentMethod": "CREDIT_CARD"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payments", body)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var result service.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != payment.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s (message %q)", result.Status, result.Message)
	}
	if result.TransactionID == "" {
		t.Fatalf("expected a transaction id")
	}
}

func TestProcessPaymentRejectsMalformedBody(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetPaymentEndpointNotFoundShape(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/payments/42", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	// Missing records are a recoverable case: HTTP success, message-only body.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result service.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Message != "Payment not found with ID: 42" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestGetPaymentEndpointRejectsBadID(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/api/payments/abc", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRefundEndpointFlow(t *testing.T) {
	mux := newTestMux(t)

	body := strings.NewReader(`{"orderId": 7, "amount": "10.00", "paymentMethod": "PAYPAL"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payments", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var created service.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created payment: %v", err)
	}

	refundReq := httptest.NewRequest(http.MethodPost, "/api/payments/1/refund", nil)
	refundRec := httptest.NewRecorder()
	mux.ServeHTTP(refundRec, refundReq)

	if refundRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", refundRec.Code)
	}
	var refunded service.Result
	if err := json.Unmarshal(refundRec.Body.Bytes(), &refunded); err != nil {
		t.Fatalf("decode refund response: %v", err)
	}
	if refunded.Status != payment.StatusRefunded {
		t.Fatalf("expected REFUNDED, got %s (message %q)", refunded.Status, refunded.Message)
	}
}

func TestGetPaymentsByOrderEndpoint(t *testing.T) {
	mux := newTestMux(t)

	for i := 0; i < 2; i++ {
		body := strings.NewReader(`{"orderId": 9, "amount": "3.50", "paymentMethod": "CREDIT_CARD"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/payments", body)
		mux.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments/order/9", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var results []service.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(results))
	}
}
