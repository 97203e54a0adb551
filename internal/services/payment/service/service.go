// Package service implements the payment domain operations. Every
// state-changing operation runs through the "payment" resilience group; when
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
	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
	"github.com/louisbranch/fulfillment/internal/platform/resilience"
	"github.com/louisbranch/fulfillment/internal/platform/timeouts"
	"github.com/louisbranch/fulfillment/internal/services/payment"
	"github.com/louisbranch/fulfillment/internal/services/payment/storage"
	"github.com/shopspring/decimal"
)

// Topic carries payment lifecycle announcements.
const Topic = "payment-events"

const unavailableMessage = "Payment service is currently unavailable. Please try again later."

// Result mirrors a payment record plus a human-readable outcome message.
// Operations always return a Result; degradation shows up in Status and
// Message, never as an error to the caller.
type Result struct {
	ID            int64           `json:"id,omitempty"`
	OrderID       int64           `json:"orderId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"paymentMethod,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	PaymentDate   *time.Time      `json:"paymentDate,omitempty"`
	Status        payment.Status  `json:"status,omitempty"`
	Message       string          `json:"message"`
}

// Service owns payment state transitions.
type Service struct {
	store     storage.Store
	publisher events.Publisher
	policies  *resilience.Group

	// Injected collaborators, overridable in tests.
	now              func() time.Time
	gateway          func(ctx context.Context) error
	newTransactionID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithGateway overrides the external gateway stand-in.
func WithGateway(gateway func(ctx context.Context) error) Option {
	return func(s *Service) { s.gateway = gateway }
}

// WithTransactionIDs overrides the transaction id source.
func WithTransactionIDs(generate func() string) Option {
	return func(s *Service) { s.newTransactionID = generate }
}

// New creates a payment service. The gateway stand-in simulates an external
// payment provider call with bounded latency.
func New(store storage.Store, publisher events.Publisher, policies *resilience.Group, opts ...Option) *Service {
	s := &Service{
		store:            store,
		publisher:        publisher,
		policies:         policies,
		now:              time.Now,
		gateway:          simulateGatewayCall,
		newTransactionID: payment.NewTransactionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func simulateGatewayCall(ctx context.Context) error {
	timer := time.NewTimer(timeouts.GatewayCall)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return apperrors.Wrap(apperrors.CodeGatewayFailure, "payment gateway call aborted", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// ProcessPayment charges the order through the simulated gateway and records
// the outcome. Gateway and persistence failures are folded into a persisted
// FAILED record returned as a normal result; only a policy rejection reaches
// the fallback, which answers in memory without persisting anything.
func (s *Service) ProcessPayment(ctx context.Context, orderID int64, amount decimal.Decimal, method string) Result {
	primary := func(ctx context.Context) (Result, error) {
		if err := s.gateway(ctx); err != nil {
			return s.recordFailure(ctx, orderID, amount, method, err), nil
		}

		record := payment.Payment{
			OrderID:       orderID,
			Amount:        amount,
			Method:        method,
			TransactionID: s.newTransactionID(),
			PaymentDate:   s.now().UTC(),
			Status:        payment.StatusCompleted,
		}
		created, err := s.store.CreatePayment(ctx, record)
		if err != nil {
			return s.recordFailure(ctx, orderID, amount, method, err), nil
		}

		s.publish(ctx, fmt.Sprintf("Payment processed: %d", created.ID))
		return fromPayment(created, "Payment processed successfully"), nil
	}

	fallback := func(error) Result {
		return Result{
			OrderID: orderID,
			Amount:  amount,
			Method:  method,
			Status:  payment.StatusFailed,
			Message: unavailableMessage,
		}
	}

	return resilience.Run(ctx, s.policies, "process_payment", primary, fallback)
}

// recordFailure persists a FAILED record for a processing error. When even
// persistence fails the result is returned without a stored record.
func (s *Service) recordFailure(ctx context.Context, orderID int64, amount decimal.Decimal, method string, cause error) Result {
	record := payment.Payment{
		OrderID:     orderID,
		Amount:      amount,
		Method:      method,
		PaymentDate: s.now().UTC(),
		Status:      payment.StatusFailed,
	}
	created, err := s.store.CreatePayment(ctx, record)
	if err != nil {
		log.Printf("persist failed payment for order %d: %v", orderID, err)
		return fromPayment(record, "Payment processing failed: "+cause.Error())
	}
	return fromPayment(created, "Payment processing failed: "+cause.Error())
}

// GetPaymentByID retrieves one payment. Missing records answer with a
// message-only result rather than an error.
func (s *Service) GetPaymentByID(ctx context.Context, id int64) Result {
	primary := func(ctx context.Context) (Result, error) {
		record, err := s.store.GetPayment(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Result{ID: id, Message: fmt.Sprintf("Payment not found with ID: %d", id)}, nil
		}
		if err != nil {
			return Result{}, err
		}
		return fromPayment(record, "Payment retrieved successfully"), nil
	}

	fallback := func(error) Result {
		return Result{ID: id, Message: unavailableMessage}
	}

	return resilience.RunRead(ctx, s.policies, "get_payment", primary, fallback)
}

// GetPaymentsByOrderID lists every payment for an order.
func (s *Service) GetPaymentsByOrderID(ctx context.Context, orderID int64) []Result {
	primary := func(ctx context.Context) ([]Result, error) {
		records, err := s.store.ListPaymentsByOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		results := make([]Result, 0, len(records))
		for _, record := range records {
			results = append(results, fromPayment(record, "Payment retrieved successfully"))
		}
		return results, nil
	}

	fallback := func(error) []Result {
		return []Result{{OrderID: orderID, Message: unavailableMessage}}
	}

	return resilience.RunRead(ctx, s.policies, "list_payments", primary, fallback)
}

// RefundPayment transitions a COMPLETED payment to REFUNDED. Refunding a
// record in any other status answers with an explanatory message and no
// mutation.
func (s *Service) RefundPayment(ctx context.Context, id int64) Result {
	primary := func(ctx context.Context) (Result, error) {
		record, err := s.store.GetPayment(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return Result{ID: id, Message: fmt.Sprintf("Payment not found with ID: %d", id)}, nil
		}
		if err != nil {
			return Result{}, err
		}

		if !record.Refundable() {
			return fromPayment(record, "Cannot refund payment that is not completed"), nil
		}

		if err := s.gateway(ctx); err != nil {
			return fromPayment(record, "Refund processing failed: "+err.Error()), nil
		}

		record.Status = payment.StatusRefunded
		saved, err := s.store.SavePayment(ctx, record)
		if err != nil {
			return fromPayment(record, "Refund processing failed: "+err.Error()), nil
		}

		s.publish(ctx, fmt.Sprintf("Payment refunded: %d", saved.ID))
		return fromPayment(saved, "Payment refunded successfully"), nil
	}

	fallback := func(error) Result {
		return Result{
			ID:      id,
			Status:  payment.StatusFailed,
			Message: "Refund service is currently unavailable. Please try again later.",
		}
	}

	return resilience.Run(ctx, s.policies, "refund_payment", primary, fallback)
}

// publish announces a state transition. Failures are logged, never
// propagated: the preceding transition stands regardless.
func (s *Service) publish(ctx context.Context, message string) {
	if err := s.publisher.Publish(ctx, Topic, message); err != nil {
		log.Printf("publish payment event %q: %v", message, err)
	}
}

func fromPayment(record payment.Payment, message string) Result {
	result := Result{
		ID:            record.ID,
		OrderID:       record.OrderID,
		Amount:        record.Amount,
		Method:        record.Method,
		TransactionID: record.TransactionID,
		Status:        record.Status,
		Message:       message,
	}
	if !record.PaymentDate.IsZero() {
		date := record.PaymentDate
		result.PaymentDate = &date
	}
	return result
}
