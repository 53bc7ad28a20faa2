package shipments

import (
	"context"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const createdNote = "Shipment created"

// CreateShipment stores a new Pending shipment with a fresh tracking number
// and its first history entry.
func (s *Service) CreateShipment(ctx context.Context, in models.ShipmentCreateInput) (*models.Shipment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, errors.Wrap(ErrInvalidInput, err.Error())
	}
	if in.Cost.IsNegative() {
		return nil, errors.Wrap(ErrInvalidInput, "cost must not be negative")
	}

	now := s.now()
	sh := &models.Shipment{
		ID:              uuid.New(),
		TrackingNumber:  models.NewTrackingNumber(),
		Status:          string(status.Pending),
		UserID:          in.UserID,
		PickupLocation:  in.PickupLocation,
		DropoffLocation: in.DropoffLocation,
		SenderInfo:      in.SenderInfo,
		RecipientInfo:   in.RecipientInfo,
		PackageInfo:     in.PackageInfo,
		Cost:            in.Cost.Round(2),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateShipment(ctx, sh); err != nil {
		return nil, errors.Wrap(err, "create shipment")
	}

	entry := newHistoryEntry(sh.ID, status.Pending, in.PickupLocation, createdNote, now)
	if err := s.store.InsertStatusHistory(ctx, entry); err != nil {
		s.log.Warnw("initial history entry", "shipment_id", sh.ID, "error", err)
	}

	s.log.Infow("shipment created", "shipment_id", sh.ID, "tracking_number", sh.TrackingNumber)
	return sh, nil
}

func (s *Service) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	return s.getShipment(ctx, id)
}

// ListStatusHistory returns the timeline of a shipment, oldest first.
func (s *Service) ListStatusHistory(ctx context.Context, id uuid.UUID) ([]*models.StatusHistoryEntry, error) {
	if _, err := s.getShipment(ctx, id); err != nil {
		return nil, err
	}
	hist, err := s.store.ListStatusHistory(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "list status history")
	}
	return hist, nil
}
