// Package httpapi exposes the payment service over a JSON HTTP surface.
// Handlers are thin: they map request shapes onto service operations and
// always answer with the operation's result structure, degraded or not.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/louisbranch/fulfillment/internal/services/payment/service"
	"github.com/shopspring/decimal"
)

// Handler routes payment API requests to the payment service.
type Handler struct {
	service *service.Service
}

// New creates a payment API handler.
func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// Register mounts the payment routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/payments", h.handleProcessPayment)
	mux.HandleFunc("GET /api/payments/{id}", h.handleGetPayment)
	mux.HandleFunc("GET /api/payments/order/{orderId}", h.handleGetPaymentsByOrder)
	mux.HandleFunc("POST /api/payments/{id}/refund", h.handleRefundPayment)
}

type processPaymentRequest struct {
	OrderID int64           `json:"orderId"`
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"paymentMethod"`
}

func (h *Handler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result := h.service.ProcessPayment(r.Context(), req.OrderID, req.Amount, req.Method)
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetPaymentByID(r.Context(), id))
}

func (h *Handler) handleGetPaymentsByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.PathValue("orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetPaymentsByOrderID(r.Context(), orderID))
}

func (h *Handler) handleRefundPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.RefundPayment(r.Context(), id))
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("encode payment response: %v", err)
	}
}
