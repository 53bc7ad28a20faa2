package shipments

import (
	"context"

	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DeleteShipment removes a shipment with its history and notifications,
// dependents first.
func (s *Service) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	sh, err := s.getShipment(ctx, id)
	if err != nil {
		return err
	}

	err = s.withinTx(ctx, func(ds storage.Datastore) error {
		if err := ds.DeleteStatusHistory(ctx, id); err != nil {
			return errors.Wrap(err, "delete status history")
		}
		if err := ds.DeleteShipmentNotifications(ctx, id); err != nil {
			return errors.Wrap(err, "delete notifications")
		}
		return ds.DeleteShipment(ctx, id)
	})
	if err != nil {
		return failed(ErrDeleteFailed, err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, trackKey(sh.TrackingNumber)); err != nil {
			s.log.Warnw("evict track cache", "tracking_number", sh.TrackingNumber, "error", err)
		}
	}
	s.log.Infow("shipment deleted", "shipment_id", id, "tracking_number", sh.TrackingNumber)
	return nil
}
