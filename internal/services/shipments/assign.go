package shipments

import (
	"context"
	"fmt"

	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type AssignResult struct {
	Shipment     *models.Shipment     `json:"shipment"`
	Notification *models.Notification `json:"notification,omitempty"`
	Email        *mailer.SendResult   `json:"email,omitempty"`
	Warnings     Warnings             `json:"warnings"`
}

// AssignDriver sets the shipment's driver. The driver notification and email
// are best-effort.
func (s *Service) AssignDriver(ctx context.Context, shipmentID, driverID uuid.UUID, actorID *uuid.UUID) (*AssignResult, error) {
	if driverID == uuid.Nil {
		return nil, errors.Wrap(ErrInvalidInput, "driver id is required")
	}
	sh, err := s.getShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.store.UpdateShipmentDriver(ctx, sh.ID, driverID, now); err != nil {
		return nil, failed(ErrUpdateFailed, err)
	}

	res := &AssignResult{Warnings: Warnings{}}
	updated := *sh
	updated.DriverID = &driverID
	updated.UpdatedAt = now
	res.Shipment = &updated

	var driverName string
	driver, err := s.store.GetProfile(ctx, driverID)
	if err != nil {
		s.warn(&res.Warnings, WarnDriverLookupFailed, err, "driver_id", driverID)
	} else {
		driverName = driver.FullName
	}

	sid := sh.ID
	n := &models.Notification{
		ID:         uuid.New(),
		UserID:     driverID,
		ShipmentID: &sid,
		Type:       models.NotificationTypeAssignment,
		Title:      "🚚 New Assignment",
		Message:    fmt.Sprintf("You have been assigned to shipment %s: %s → %s", sh.TrackingNumber, sh.PickupLocation, sh.DropoffLocation),
		CreatedAt:  now,
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		s.warn(&res.Warnings, WarnNotificationWriteFailed, err, "shipment_id", sh.ID)
	} else {
		res.Notification = n
	}

	if to, ok := s.resolveRecipient(ctx, driverID, &res.Warnings); ok {
		res.Email = s.sendAssignmentEmail(ctx, mailer.DriverAssignmentEmail{
			To:              to,
			DriverName:      driverName,
			TrackingNumber:  sh.TrackingNumber,
			PickupLocation:  sh.PickupLocation,
			DropoffLocation: sh.DropoffLocation,
		}, &res.Warnings)
	}

	s.refreshTrack(ctx, &updated, &res.Warnings)

	s.log.Infow("driver assigned",
		"shipment_id", sh.ID,
		"driver_id", driverID,
		"actor_id", actorID,
		"warnings", res.Warnings.Codes(),
	)
	return res, nil
}
