// Package sqlite provides a SQLite-backed payment storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
	"github.com/louisbranch/fulfillment/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/fulfillment/internal/services/payment"
	"github.com/louisbranch/fulfillment/internal/services/payment/storage"
	"github.com/louisbranch/fulfillment/internal/services/payment/storage/sqlite/migrations"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store persists payment records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite payment store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreatePayment inserts a new record and returns it with the assigned id.
func (s *Store) CreatePayment(ctx context.Context, record payment.Payment) (payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return payment.Payment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return payment.Payment{}, fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO payments (order_id, amount, payment_method, transaction_id, payment_date, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.OrderID,
		record.Amount.String(),
		record.Method,
		record.TransactionID,
		toMillis(record.PaymentDate),
		string(record.Status),
	)
	if err != nil {
		return payment.Payment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "create payment", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return payment.Payment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "payment insert id", err)
	}
	record.ID = id
	return record, nil
}

// GetPayment returns the record with the given id.
func (s *Store) GetPayment(ctx context.Context, id int64) (payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return payment.Payment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return payment.Payment{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, order_id, amount, payment_method, transaction_id, payment_date, status
		 FROM payments
		 WHERE id = ?`,
		id,
	)
	record, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payment.Payment{}, storage.ErrNotFound
		}
		return payment.Payment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "get payment", err)
	}
	return record, nil
}

// ListPaymentsByOrder returns every record for an order, oldest first.
func (s *Store) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, order_id, amount, payment_method, transaction_id, payment_date, status
		 FROM payments
		 WHERE order_id = ?
		 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list payments by order", err)
	}
	defer rows.Close()

	var records []payment.Payment
	for rows.Next() {
		record, err := scanPayment(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "scan payment", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "iterate payments", err)
	}
	return records, nil
}

// SavePayment upserts a record by id.
func (s *Store) SavePayment(ctx context.Context, record payment.Payment) (payment.Payment, error) {
	if err := ctx.Err(); err != nil {
		return payment.Payment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return payment.Payment{}, fmt.Errorf("storage is not configured")
	}
	if record.ID == 0 {
		return s.CreatePayment(ctx, record)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO payments (id, order_id, amount, payment_method, transaction_id, payment_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   order_id = excluded.order_id,
		   amount = excluded.amount,
		   payment_method = excluded.payment_method,
		   transaction_id = excluded.transaction_id,
		   payment_date = excluded.payment_date,
		   status = excluded.status`,
		record.ID,
		record.OrderID,
		record.Amount.String(),
		record.Method,
		record.TransactionID,
		toMillis(record.PaymentDate),
		string(record.Status),
	)
	if err != nil {
		return payment.Payment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "save payment", err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (payment.Payment, error) {
	var record payment.Payment
	var amount string
	var paymentDate int64
	var status string
	if err := row.Scan(
		&record.ID,
		&record.OrderID,
		&amount,
		&record.Method,
		&record.TransactionID,
		&paymentDate,
		&status,
	); err != nil {
		return payment.Payment{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	record.Amount = parsed
	record.PaymentDate = fromMillis(paymentDate)
	record.Status = payment.Status(status)
	return record, nil
}
