// Package payment holds the payment entity and its lifecycle rules.
package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment lifecycle status.
type Status string

const (
	// StatusCompleted means the gateway accepted the charge and a
	// transaction id was assigned.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed means processing did not produce a transaction.
	StatusFailed Status = "FAILED"
	// StatusRefunded means a completed payment was refunded. Terminal.
	StatusRefunded Status = "REFUNDED"
)

// Payment is one persisted payment record. A record is COMPLETED only when
// TransactionID is set; refunds are legal only from COMPLETED and are never
// reversed.
type Payment struct {
	ID            int64
	OrderID       int64
	Amount        decimal.Decimal
	Method        string
	TransactionID string
	PaymentDate   time.Time
	Status        Status
}

// Refundable reports whether the record may transition to REFUNDED.
func (p Payment) Refundable() bool {
	return p.Status == StatusCompleted
}

// NewTransactionID mints a gateway transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}
