// Package httpapi exposes the shipping service over a JSON HTTP surface.
// Handlers are thin: they map request shapes onto service operations and
// always answer with the operation's result structure, degraded or not.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
	"github.com/louisbranch/fulfillment/internal/services/shipping"
	"github.com/louisbranch/fulfillment/internal/services/shipping/service"
)

// Handler routes shipping API requests to the shipping service.
type Handler struct {
	service *service.Service
}

// New creates a shipping API handler.
func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// Register mounts the shipping routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/shipments", h.handleCreateShipment)
	mux.HandleFunc("GET /api/shipments/{id}", h.handleGetShipment)
	mux.HandleFunc("GET /api/shipments/order/{orderId}", h.handleGetShipmentsByOrder)
	mux.HandleFunc("GET /api/shipments/status/{status}", h.handleGetShipmentsByStatus)
	mux.HandleFunc("PUT /api/shipments/{id}/status", h.handleUpdateStatus)
	mux.HandleFunc("PUT /api/shipments/{id}/cancel", h.handleCancelShipment)
}

type createShipmentRequest struct {
	OrderID         int64  `json:"orderId"`
	CarrierName     string `json:"carrierName"`
	ShippingAddress string `json:"shippingAddress"`
	Notes           string `json:"notes"`
}

func (h *Handler) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var req createShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result := h.service.CreateShipment(r.Context(), req.OrderID, req.CarrierName, req.ShippingAddress, req.Notes)
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid shipment id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetShipmentByID(r.Context(), id))
}

func (h *Handler) handleGetShipmentsByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.PathValue("orderId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetShipmentsByOrderID(r.Context(), orderID))
}

func (h *Handler) handleGetShipmentsByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := shipping.ParseStatus(r.PathValue("status"))
	if err != nil {
		http.Error(w, "invalid shipment status", apperrors.CodeOf(err).HTTPStatus())
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetShipmentsByStatus(r.Context(), status))
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid shipment id", http.StatusBadRequest)
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	status, err := shipping.ParseStatus(req.Status)
	if err != nil {
		http.Error(w, "invalid shipment status", apperrors.CodeOf(err).HTTPStatus())
		return
	}
	update := service.StatusUpdate{Status: status, Notes: req.Notes}
	writeJSON(w, http.StatusOK, h.service.UpdateShipmentStatus(r.Context(), id, update))
}

func (h *Handler) handleCancelShipment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid shipment id", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.service.CancelShipment(r.Context(), id))
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("encode shipping response: %v", err)
	}
}
