// Package storage defines persistence contracts for payment records.
package storage

import (
	"context"

	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
	"github.com/louisbranch/fulfillment/internal/services/payment"
)

// ErrNotFound indicates a requested payment record is missing.
var ErrNotFound = apperrors.New(apperrors.CodePaymentNotFound, "payment not found")

// Store persists payment records with keyed CRUD access.
type Store interface {
	// CreatePayment inserts a new record and returns it with the
	// store-assigned id.
	CreatePayment(ctx context.Context, record payment.Payment) (payment.Payment, error)
	// GetPayment returns the record with the given id, or ErrNotFound.
	GetPayment(ctx context.Context, id int64) (payment.Payment, error)
	// ListPaymentsByOrder returns every record for an order, possibly none.
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]payment.Payment, error)
	// SavePayment upserts a record by id.
	SavePayment(ctx context.Context, record payment.Payment) (payment.Payment, error)
}
