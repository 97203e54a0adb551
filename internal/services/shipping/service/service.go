// Package service implements the shipping domain operations. Every
// state-changing operation runs through the "shipping" resilience group; when
// a policy rejects the call the operation answers with a degraded result
// instead of an error.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/fulfillment/internal/events"
	"github.com/louisbranch/fulfillment/internal/platform/resilience"
	"github.com/louisbranch/fulfillment/internal/services/shipping"
	"github.com/louisbranch/fulfillment/internal/services/shipping/storage"
)

// Topic carries shipment lifecycle announcements.
const Topic = "shipping-events"

const unavailableMessage = "Shipping service is currently unavailable. Please try again later."

// Result mirrors a shipment record plus a human-readable outcome message.
// Operations always return a Result; degradation shows up in Status and
// Message, never as an error to the caller.
type Result struct {
	ID              int64           `json:"id,omitempty"`
	OrderID         int64           `json:"orderId,omitempty"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	CarrierName     string          `json:"carrierName,omitempty"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	Status          shipping.Status `json:"status,omitempty"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Message         string          `json:"message"`
}

// StatusUpdate describes a requested lifecycle transition. Notes is applied
// only when non-nil; a nil Notes leaves the stored notes untouched.
type StatusUpdate struct {
	Status shipping.Status
	Notes  *string
}

// Service owns shipment state transitions.
type Service struct {
	store     storage.Store
	publisher events.Publisher
	policies  *resilience.Group

	// Injected collaborators, overridable in tests.
	now               func() time.Time
	newTrackingNumber func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTrackingNumbers overrides the tracking number source.
func WithTrackingNumbers(generate func() string) Option {
	return func(s *Service) { s.newTrackingNumber = generate }
}

// New creates a shipping service.
func New(store storage.Store, publisher events.Publisher, policies *resilience.Group, opts ...Option) *Service {
	s := &Service{
		store:             store,
		publisher:         publisher,
		policies:          policies,
		now:               time.Now,
		newTrackingNumber: shipping.NewTrackingNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateShipment registers a new PENDING shipment with a freshly minted
// tracking number. Persistence failures are folded into a degraded result that
// echoes the request; only a policy rejection reaches the fallback.
func (s *Service) CreateShipment(ctx context.Context, orderID int64, carrier, address, notes string) Result {
	echo := func(message string) Result {
		return Result{
			OrderID:         orderID,
			CarrierName:     carrier,
			ShippingAddress: address,
			Status:          shipping.StatusPending,
			Notes:           notes,
			Message:         message,
		}
	}

	primary := func(ctx context.Context) (Result, error) {
		now := s.now().UTC()
		record := shipping.Shipment{
			OrderID:         orderID,
			TrackingNumber:  s.newTrackingNumber(),
			CarrierName:     carrier,
			ShippingAddress: address,
			Status:          shipping.StatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
			Notes:           notes,
		}
		created, err := s.store.CreateShipment(ctx, record)
		if err != nil {
			return echo("Error creating shipment: " + err.Error()), nil
		}

		s.publish(ctx, fmt.Sprintf("Shipment created: %d", created.ID))
		return fromShipment(created, "Shipment created successfully"), nil
	}

	fallback := func(error) Result {
		return echo(unavailableMessage)
	}

	return resilience.Run(ctx, s.policies, "create_shipment", primary, fallback)
}

// GetShipmentByID retrieves one shipment. Missing records answer with a
// message-only result rather than an error.
func (s *Service) GetShipmentByID(ctx context.Context, id int64) Result {
	primary := func(ctx context.Context) (Result, error) {
		record, err := s.store.GetShipment(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Result{ID: id, Message: fmt.Sprintf("Shipment not found with ID: %d", id)}, nil
		}
		if err != nil {
			return Result{}, err
		}
		return fromShipment(record, "Shipment retrieved successfully"), nil
	}

	fallback := func(error) Result {
		return Result{ID: id, Message: unavailableMessage}
	}

	return resilience.RunRead(ctx, s.policies, "get_shipment", primary, fallback)
}

// GetShipmentsByOrderID lists every shipment for an order.
func (s *Service) GetShipmentsByOrderID(ctx context.Context, orderID int64) []Result {
	primary := func(ctx context.Context) ([]Result, error) {
		records, err := s.store.ListShipmentsByOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return fromShipments(records, "Shipment retrieved successfully"), nil
	}

	fallback := func(error) []Result {
		return []Result{{OrderID: orderID, Message: unavailableMessage}}
	}

	return resilience.RunRead(ctx, s.policies, "list_shipments_by_order", primary, fallback)
}

// GetShipmentsByStatus lists every shipment currently in the given status.
func (s *Service) GetShipmentsByStatus(ctx context.Context, status shipping.Status) []Result {
	primary := func(ctx context.Context) ([]Result, error) {
		records, err := s.store.ListShipmentsByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		return fromShipments(records, "Shipments retrieved successfully"), nil
	}

	fallback := func(error) []Result {
		return []Result{{Status: status, Message: unavailableMessage}}
	}

	return resilience.RunRead(ctx, s.policies, "list_shipments_by_status", primary, fallback)
}

// UpdateShipmentStatus moves a shipment to a new lifecycle status. The first
// transition into SHIPPED stamps ShippedAt and the first into DELIVERED stamps
// DeliveredAt; neither is ever cleared or overwritten afterwards.
func (s *Service) UpdateShipmentStatus(ctx context.Context, id int64, update StatusUpdate) Result {
	primary := func(ctx context.Context) (Result, error) {
		record, err := s.store.GetShipment(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Result{ID: id, Message: fmt.Sprintf("Shipment not found with ID: %d", id)}, nil
		}
		if err != nil {
			return Result{}, err
		}

		now := s.now().UTC()
		record.Status = update.Status
		record.UpdatedAt = now
		if update.Status == shipping.StatusShipped && record.ShippedAt == nil {
			record.ShippedAt = &now
		}
		if update.Status == shipping.StatusDelivered && record.DeliveredAt == nil {
			record.DeliveredAt = &now
		}
		if update.Notes != nil {
			record.Notes = *update.Notes
		}

		saved, err := s.store.SaveShipment(ctx, record)
		if err != nil {
			return fromShipment(record, "Error updating shipment: "+err.Error()), nil
		}

		s.publish(ctx, fmt.Sprintf("Shipment status updated: %d, Status: %s", saved.ID, saved.Status))
		return fromShipment(saved, "Shipment status updated successfully"), nil
	}

	fallback := func(error) Result {
		return Result{ID: id, Message: unavailableMessage}
	}

	return resilience.Run(ctx, s.policies, "update_shipment_status", primary, fallback)
}

// CancelShipment cancels a shipment that has not yet left the warehouse.
// Shipments already with the carrier answer with an explanatory message and no
// mutation.
func (s *Service) CancelShipment(ctx context.Context, id int64) Result {
	primary := func(ctx context.Context) (Result, error) {
		record, err := s.store.GetShipment(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Result{ID: id, Message: fmt.Sprintf("Shipment not found with ID: %d", id)}, nil
		}
		if err != nil {
			return Result{}, err
		}

		if !record.Cancellable() {
			message := fmt.Sprintf("Cannot cancel shipment that has already been %s", record.Status)
			return fromShipment(record, message), nil
		}

		record.Status = shipping.StatusCancelled
		record.UpdatedAt = s.now().UTC()
		saved, err := s.store.SaveShipment(ctx, record)
		if err != nil {
			return fromShipment(record, "Error cancelling shipment: "+err.Error()), nil
		}

		s.publish(ctx, fmt.Sprintf("Shipment cancelled: %d", saved.ID))
		return fromShipment(saved, "Shipment cancelled successfully"), nil
	}

	fallback := func(error) Result {
		return Result{ID: id, Message: unavailableMessage}
	}

	return resilience.Run(ctx, s.policies, "cancel_shipment", primary, fallback)
}

// publish announces a state transition. Failures are logged, never
// propagated: the preceding transition stands regardless.
func (s *Service) publish(ctx context.Context, message string) {
	if err := s.publisher.Publish(ctx, Topic, message); err != nil {
		log.Printf("publish shipping event %q: %v", message, err)
	}
}

func fromShipment(record shipping.Shipment, message string) Result {
	result := Result{
		ID:              record.ID,
		OrderID:         record.OrderID,
		TrackingNumber:  record.TrackingNumber,
		CarrierName:     record.CarrierName,
		ShippingAddress: record.ShippingAddress,
		Status:          record.Status,
		ShippedAt:       record.ShippedAt,
		DeliveredAt:     record.DeliveredAt,
		Notes:           record.Notes,
		Message:         message,
	}
	if !record.CreatedAt.IsZero() {
		created := record.CreatedAt
		result.CreatedAt = &created
	}
	if !record.UpdatedAt.IsZero() {
		updated := record.UpdatedAt
		result.UpdatedAt = &updated
	}
	return result
}

func fromShipments(records []shipping.Shipment, message string) []Result {
	results := make([]Result, 0, len(records))
	for _, record := range records {
		results = append(results, fromShipment(record, message))
	}
	return results
}
