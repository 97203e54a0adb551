// Package storage defines persistence contracts for shipment records.
package storage

import (
	"context"

	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
	"github.com/louisbranch/fulfillment/internal/services/shipping"
)

// ErrNotFound indicates a requested shipment record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeShipmentNotFound, "shipment not found")

// Store persists shipment records with keyed CRUD access.
type Store interface {
	// CreateShipment inserts a new record and returns it with the
	// store-assigned id.
	CreateShipment(ctx context.Context, record shipping.Shipment) (shipping.Shipment, error)
	// GetShipment returns the record with the given id, or ErrNotFound.
	GetShipment(ctx context.Context, id int64) (shipping.Shipment, error)
	// ListShipmentsByOrder returns every record for an order, possibly none.
	ListShipmentsByOrder(ctx context.Context, orderID int64) ([]shipping.Shipment, error)
	// ListShipmentsByStatus returns every record in the given status.
	ListShipmentsByStatus(ctx context.Context, status shipping.Status) ([]shipping.Shipment, error)
	// SaveShipment upserts a record by id.
	SaveShipment(ctx context.Context, record shipping.Shipment) (shipping.Shipment, error)
}
