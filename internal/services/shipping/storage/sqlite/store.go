// Package sqlite provides a SQLite-backed shipment storage implementation.
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
	"github.com/louisbranch/fulfillment/internal/services/shipping"
	"github.com/louisbranch/fulfillment/internal/services/shipping/storage"
	"github.com/louisbranch/fulfillment/internal/services/shipping/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists shipment records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	parsed := fromMillis(value.Int64)
	return &parsed
}

// Open opens a SQLite shipment store and applies embedded migrations.
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

// CreateShipment inserts a new record and returns it with the assigned id.
func (s *Store) CreateShipment(ctx context.Context, record shipping.Shipment) (shipping.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return shipping.Shipment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return shipping.Shipment{}, fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO shipments (order_id, tracking_number, carrier_name, shipping_address, status,
		                        created_at, updated_at, shipped_at, delivered_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.OrderID,
		record.TrackingNumber,
		record.CarrierName,
		record.ShippingAddress,
		string(record.Status),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		toNullMillis(record.ShippedAt),
		toNullMillis(record.DeliveredAt),
		record.Notes,
	)
	if err != nil {
		return shipping.Shipment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "create shipment", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return shipping.Shipment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "shipment insert id", err)
	}
	record.ID = id
	return record, nil
}

const shipmentColumns = `id, order_id, tracking_number, carrier_name, shipping_address, status,
	created_at, updated_at, shipped_at, delivered_at, notes`

// GetShipment returns the record with the given id.
func (s *Store) GetShipment(ctx context.Context, id int64) (shipping.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return shipping.Shipment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return shipping.Shipment{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = ?`,
		id,
	)
	record, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shipping.Shipment{}, storage.ErrNotFound
		}
		return shipping.Shipment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "get shipment", err)
	}
	return record, nil
}

// ListShipmentsByOrder returns every record for an order, oldest first.
func (s *Store) ListShipmentsByOrder(ctx context.Context, orderID int64) ([]shipping.Shipment, error) {
	return s.list(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE order_id = ? ORDER BY id`, orderID)
}

// ListShipmentsByStatus returns every record in the given status, oldest first.
func (s *Store) ListShipmentsByStatus(ctx context.Context, status shipping.Status) ([]shipping.Shipment, error) {
	return s.list(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE status = ? ORDER BY id`, string(status))
}

func (s *Store) list(ctx context.Context, query string, arg any) ([]shipping.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list shipments", err)
	}
	defer rows.Close()

	var records []shipping.Shipment
	for rows.Next() {
		record, err := scanShipment(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "scan shipment", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "iterate shipments", err)
	}
	return records, nil
}

// SaveShipment upserts a record by id.
func (s *Store) SaveShipment(ctx context.Context, record shipping.Shipment) (shipping.Shipment, error) {
	if err := ctx.Err(); err != nil {
		return shipping.Shipment{}, err
	}
	if s == nil || s.sqlDB == nil {
		return shipping.Shipment{}, fmt.Errorf("storage is not configured")
	}
	if record.ID == 0 {
		return s.CreateShipment(ctx, record)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO shipments (id, order_id, tracking_number, carrier_name, shipping_address, status,
		                        created_at, updated_at, shipped_at, delivered_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   order_id = excluded.order_id,
		   tracking_number = excluded.tracking_number,
		   carrier_name = excluded.carrier_name,
		   shipping_address = excluded.shipping_address,
		   status = excluded.status,
		   created_at = excluded.created_at,
		   updated_at = excluded.updated_at,
		   shipped_at = excluded.shipped_at,
		   delivered_at = excluded.delivered_at,
		   notes = excluded.notes`,
		record.ID,
		record.OrderID,
		record.TrackingNumber,
		record.CarrierName,
		record.ShippingAddress,
		string(record.Status),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		toNullMillis(record.ShippedAt),
		toNullMillis(record.DeliveredAt),
		record.Notes,
	)
	if err != nil {
		return shipping.Shipment{}, apperrors.Wrap(apperrors.CodeStoreFailure, "save shipment", err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (shipping.Shipment, error) {
	var record shipping.Shipment
	var status string
	var createdAt, updatedAt int64
	var shippedAt, deliveredAt sql.NullInt64
	if err := row.Scan(
		&record.ID,
		&record.OrderID,
		&record.TrackingNumber,
		&record.CarrierName,
		&record.ShippingAddress,
		&status,
		&createdAt,
		&updatedAt,
		&shippedAt,
		&deliveredAt,
		&record.Notes,
	); err != nil {
		return shipping.Shipment{}, err
	}
	record.Status = shipping.Status(status)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	record.ShippedAt = fromNullMillis(shippedAt)
	record.DeliveredAt = fromNullMillis(deliveredAt)
	return record, nil
}
