package pgshipment

import (
	"context"
	"time"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const shipmentColumns = `
  id, tracking_number, status, user_id, driver_id,
  pickup_location, dropoff_location,
  sender_info, recipient_info, package_info,
  cost::text, created_at, updated_at`

func (s *Storage) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO shipments (
  id, tracking_number, status, user_id, driver_id,
  pickup_location, dropoff_location,
  sender_info, recipient_info, package_info,
  cost, created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11::numeric,$12,$13)
`, sh.ID, sh.TrackingNumber, sh.Status, sh.UserID, sh.DriverID,
		sh.PickupLocation, sh.DropoffLocation,
		sh.SenderInfo, sh.RecipientInfo, sh.PackageInfo,
		sh.Cost.String(), sh.CreatedAt.UTC(), sh.UpdatedAt.UTC())
	return errors.Wrap(err, "insert shipment")
}

func (s *Storage) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	sh, err := scanShipment(row)
	if err != nil {
		return nil, errors.Wrap(notFound(err), "select shipment")
	}
	return sh, nil
}

func (s *Storage) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT`+shipmentColumns+` FROM shipments WHERE tracking_number = $1`, trackingNumber)
	sh, err := scanShipment(row)
	if err != nil {
		return nil, errors.Wrap(notFound(err), "select shipment by tracking number")
	}
	return sh, nil
}

func (s *Storage) UpdateShipmentStatus(ctx context.Context, id uuid.UUID, status string, updatedAt time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE shipments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt.UTC())
	if err != nil {
		return errors.Wrap(err, "update shipment status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(storage.ErrNotFound, "update shipment status")
	}
	return nil
}

func (s *Storage) UpdateShipmentDriver(ctx context.Context, id, driverID uuid.UUID, updatedAt time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE shipments SET driver_id = $2, updated_at = $3 WHERE id = $1`, id, driverID, updatedAt.UTC())
	if err != nil {
		return errors.Wrap(err, "update shipment driver")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(storage.ErrNotFound, "update shipment driver")
	}
	return nil
}

func (s *Storage) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete shipment")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(storage.ErrNotFound, "delete shipment")
	}
	return nil
}

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var sh models.Shipment
	var cost string
	if err := row.Scan(
		&sh.ID, &sh.TrackingNumber, &sh.Status, &sh.UserID, &sh.DriverID,
		&sh.PickupLocation, &sh.DropoffLocation,
		&sh.SenderInfo, &sh.RecipientInfo, &sh.PackageInfo,
		&cost, &sh.CreatedAt, &sh.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, errors.Wrap(err, "parse cost")
	}
	sh.Cost = d
	return &sh, nil
}
