package shipments

import (
	"context"
	"encoding/json"

	"github.com/BearBump/EuroLink/internal/broker/kafka"
	"github.com/BearBump/EuroLink/internal/broker/messages"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/pkg/errors"
)

// HandleStatusScan applies a driver scan read from the broker. Messages that
// can never succeed are returned as kafka.PermanentError.
func (s *Service) HandleStatusScan(ctx context.Context, value []byte) error {
	var scan messages.StatusScan
	if err := json.Unmarshal(value, &scan); err != nil {
		return kafka.Permanent(errors.Wrap(err, "decode status scan"))
	}

	var upd StatusUpdate
	switch {
	case scan.ShipmentID != nil:
		upd.ShipmentID = *scan.ShipmentID
	case scan.TrackingNumber != "":
		sh, err := s.store.GetShipmentByTrackingNumber(ctx, scan.TrackingNumber)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return kafka.Permanent(errors.Wrapf(ErrNotFound, "tracking number %s", scan.TrackingNumber))
			}
			return errors.Wrap(err, "get shipment by tracking number")
		}
		upd.ShipmentID = sh.ID
	default:
		return kafka.Permanent(errors.Wrap(ErrInvalidInput, "scan has neither shipment_id nor tracking_number"))
	}
	upd.Status = scan.Status
	upd.Location = scan.Location
	upd.Notes = scan.Notes
	upd.ActorID = scan.DriverID

	res, err := s.ApplyStatusUpdate(ctx, upd)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) {
			return kafka.Permanent(err)
		}
		return err
	}
	if len(res.Warnings) > 0 {
		s.log.Infow("scan applied with warnings", "shipment_id", upd.ShipmentID, "warnings", res.Warnings.Codes())
	}
	return nil
}
