package shipments

import (
	"context"
	"time"

	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultHistoryLocation = "Status updated"

type StatusUpdate struct {
	ShipmentID uuid.UUID
	Status     string
	Location   string
	Notes      string
	ActorID    *uuid.UUID
}

type UpdateResult struct {
	Shipment       *models.Shipment           `json:"shipment"`
	PreviousStatus string                     `json:"previous_status"`
	History        *models.StatusHistoryEntry `json:"history,omitempty"`
	Notification   *models.Notification       `json:"notification,omitempty"`
	Email          *mailer.SendResult         `json:"email,omitempty"`
	Warnings       Warnings                   `json:"warnings"`
}

// ApplyStatusUpdate moves a shipment to a new status. Only the shipment write
// is load-bearing: history, notification, email, event and cache failures are
// returned as warnings on a successful result.
func (s *Service) ApplyStatusUpdate(ctx context.Context, upd StatusUpdate) (*UpdateResult, error) {
	next := status.Parse(upd.Status)
	if next == status.Unknown {
		s.metrics.StatusUpdate("invalid_status")
		return nil, errors.Wrapf(ErrInvalidStatus, "%q", upd.Status)
	}

	sh, err := s.getShipment(ctx, upd.ShipmentID)
	if err != nil {
		s.metrics.StatusUpdate("not_found")
		return nil, err
	}

	res := &UpdateResult{PreviousStatus: sh.Status, Warnings: Warnings{}}

	ok, err := s.policy.Check(sh.Status, string(next))
	if err != nil {
		s.metrics.StatusUpdate("rejected")
		return nil, err
	}
	if !ok {
		s.warn(&res.Warnings, WarnInvalidTransition,
			errors.Errorf("transition %q -> %q is not allowed", sh.Status, next),
			"shipment_id", sh.ID)
	}

	now := s.now()
	err = s.withinTx(ctx, func(ds storage.Datastore) error {
		if err := ds.UpdateShipmentStatus(ctx, sh.ID, string(next), now); err != nil {
			return failed(ErrUpdateFailed, err)
		}

		entry := newHistoryEntry(sh.ID, next, upd.Location, upd.Notes, now)
		if err := ds.InsertStatusHistory(ctx, entry); err != nil {
			s.warn(&res.Warnings, WarnHistoryWriteFailed, err, "shipment_id", sh.ID)
		} else {
			res.History = entry
		}

		n := newStatusNotification(sh, next, now)
		if err := ds.InsertNotification(ctx, n); err != nil {
			s.warn(&res.Warnings, WarnNotificationWriteFailed, err, "shipment_id", sh.ID)
		} else {
			res.Notification = n
		}
		return nil
	})
	if err != nil {
		s.metrics.StatusUpdate("failed")
		if !errors.Is(err, ErrUpdateFailed) {
			err = failed(ErrUpdateFailed, err)
		}
		return nil, err
	}

	updated := *sh
	updated.Status = string(next)
	updated.UpdatedAt = now
	res.Shipment = &updated

	res.Email = s.sendStatusEmail(ctx, &updated, upd, &res.Warnings)
	s.publishStatusChanged(ctx, res, upd.ActorID)
	s.refreshTrack(ctx, &updated, &res.Warnings)

	s.metrics.StatusUpdate("ok")
	s.log.Infow("status updated",
		"shipment_id", sh.ID,
		"tracking_number", sh.TrackingNumber,
		"from", res.PreviousStatus,
		"to", next,
		"warnings", res.Warnings.Codes(),
	)
	return res, nil
}

func newHistoryEntry(shipmentID uuid.UUID, st status.Status, location, notes string, at time.Time) *models.StatusHistoryEntry {
	if location == "" {
		location = defaultHistoryLocation
	}
	if notes == "" {
		notes = "Status updated to " + string(st)
	}
	return &models.StatusHistoryEntry{
		ID:         uuid.New(),
		ShipmentID: shipmentID,
		Status:     string(st),
		Location:   location,
		Notes:      notes,
		Timestamp:  at,
	}
}

func newStatusNotification(sh *models.Shipment, st status.Status, at time.Time) *models.Notification {
	sid := sh.ID
	return &models.Notification{
		ID:         uuid.New(),
		UserID:     sh.UserID,
		ShipmentID: &sid,
		Type:       models.NotificationTypeStatusUpdate,
		Title:      status.NotificationTitle(string(st)),
		Message:    status.NotificationMessage(sh.TrackingNumber, string(st)),
		CreatedAt:  at,
	}
}
