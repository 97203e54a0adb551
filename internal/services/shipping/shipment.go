// Package shipping holds the shipment entity and its lifecycle rules.
package shipping

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
)

// Status is the shipment lifecycle status.
type Status string

const (
	// StatusPending means the shipment was created but not yet handled.
	StatusPending Status = "PENDING"
	// StatusProcessing means the shipment is being prepared.
	StatusProcessing Status = "PROCESSING"
	// StatusShipped means the carrier picked up the shipment.
	StatusShipped Status = "SHIPPED"
	// StatusInTransit means the shipment is on its way.
	StatusInTransit Status = "IN_TRANSIT"
	// StatusDelivered means the shipment reached its destination.
	StatusDelivered Status = "DELIVERED"
	// StatusReturned means the shipment came back to the sender.
	StatusReturned Status = "RETURNED"
	// StatusCancelled means the shipment was cancelled before leaving.
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a status value from an untrusted source.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusInTransit,
		StatusDelivered, StatusReturned, StatusCancelled:
		return status, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeShipmentInvalidStatus,
			fmt.Sprintf("unknown shipment status %q", value),
			map[string]string{"status": value})
	}
}

// Shipment is one persisted shipment record. TrackingNumber and CreatedAt are
// immutable after creation; ShippedAt and DeliveredAt are each set exactly
// once, on the transition that first reaches their status.
type Shipment struct {
	ID              int64
	OrderID         int64
	TrackingNumber  string
	CarrierName     string
	ShippingAddress string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	Notes           string
}

// Cancellable reports whether the shipment may still be cancelled. Once the
// carrier has it, cancellation is no longer legal.
func (s Shipment) Cancellable() bool {
	switch s.Status {
	case StatusShipped, StatusInTransit, StatusDelivered:
		return false
	default:
		return true
	}
}

// NewTrackingNumber mints a carrier-facing tracking number, unique per
// creation.
func NewTrackingNumber() string {
	return "TRK-" + strings.ToUpper(uuid.NewString()[:8])
}
