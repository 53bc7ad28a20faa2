package shipments

import (
	"context"
	"encoding/json"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/pkg/errors"
)

// TrackView is what the public tracking page shows for one shipment.
type TrackView struct {
	Shipment *models.Shipment             `json:"shipment"`
	Timeline []*models.StatusHistoryEntry `json:"timeline"`
	Current  status.Definition            `json:"current"`
	Progress int                          `json:"progress"`
	Next     []status.Definition          `json:"next"`
}

// Track returns the tracking view for a tracking number, served from the
// cache when possible.
func (s *Service) Track(ctx context.Context, trackingNumber string) (*TrackView, error) {
	if trackingNumber == "" {
		return nil, errors.Wrap(ErrInvalidInput, "tracking number is required")
	}

	if s.cachingEnabled() {
		b, ok, err := s.cache.Get(ctx, trackKey(trackingNumber))
		if err != nil {
			s.log.Debugw("track cache get", "tracking_number", trackingNumber, "error", err)
		}
		if err == nil && ok {
			var v TrackView
			if json.Unmarshal(b, &v) == nil {
				return &v, nil
			}
		}
	}

	sh, err := s.store.GetShipmentByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "tracking number %s", trackingNumber)
		}
		return nil, errors.Wrap(err, "get shipment by tracking number")
	}

	v, err := s.buildTrackView(ctx, sh)
	if err != nil {
		return nil, err
	}
	if s.cachingEnabled() {
		if err := s.fillTrack(ctx, v); err != nil {
			s.log.Debugw("track cache set", "tracking_number", trackingNumber, "error", err)
		}
	}
	return v, nil
}

func (s *Service) buildTrackView(ctx context.Context, sh *models.Shipment) (*TrackView, error) {
	timeline, err := s.store.ListStatusHistory(ctx, sh.ID)
	if err != nil {
		return nil, errors.Wrap(err, "list status history")
	}
	cur, ok := status.Lookup(sh.Status)
	if !ok {
		// unregistered value stored on the row
		cur = status.Definition{Value: status.Status(sh.Status), Label: sh.Status}
	}
	return &TrackView{
		Shipment: sh,
		Timeline: timeline,
		Current:  cur,
		Progress: status.Progress(sh.Status),
		Next:     status.NextPossible(sh.Status),
	}, nil
}

// refreshTrack rewrites the cached tracking view after a write.
func (s *Service) refreshTrack(ctx context.Context, sh *models.Shipment, ws *Warnings) {
	if !s.cachingEnabled() {
		return
	}
	v, err := s.buildTrackView(ctx, sh)
	if err == nil {
		err = s.storeTrack(ctx, v)
	}
	if err != nil {
		s.warn(ws, WarnCacheRefreshFailed, err, "tracking_number", sh.TrackingNumber)
		// drop the stale page
		_ = s.cache.Delete(ctx, trackKey(sh.TrackingNumber))
	}
}

func (s *Service) storeTrack(ctx context.Context, v *TrackView) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal track view")
	}
	return s.cache.Set(ctx, trackKey(v.Shipment.TrackingNumber), b, s.trackTTL)
}

// fillTrack caches a view read on a miss. It never overwrites: a refresh
// written after a write wins over a read that started before it.
func (s *Service) fillTrack(ctx context.Context, v *TrackView) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal track view")
	}
	_, err = s.cache.SetNX(ctx, trackKey(v.Shipment.TrackingNumber), b, s.trackTTL)
	return err
}

func (s *Service) cachingEnabled() bool {
	return s.cache != nil && s.trackTTL > 0
}

func trackKey(trackingNumber string) string {
	return "track:" + trackingNumber
}
