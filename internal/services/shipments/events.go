package shipments

import (
	"context"
	"encoding/json"

	"github.com/BearBump/EuroLink/internal/broker/messages"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Service) publishStatusChanged(ctx context.Context, res *UpdateResult, actorID *uuid.UUID) {
	if s.publisher == nil {
		return
	}
	sh := res.Shipment
	evt := messages.ShipmentStatusChanged{
		ShipmentID:     sh.ID,
		TrackingNumber: sh.TrackingNumber,
		UserID:         sh.UserID,
		PreviousStatus: res.PreviousStatus,
		Status:         sh.Status,
		Progress:       status.Progress(sh.Status),
		ActorID:        actorID,
		ChangedAt:      sh.UpdatedAt,
		Warnings:       res.Warnings.Codes(),
	}
	if res.History != nil {
		evt.Location = res.History.Location
		evt.Notes = res.History.Notes
	}

	b, err := json.Marshal(evt)
	if err != nil {
		s.warn(&res.Warnings, WarnEventPublishFailed, errors.Wrap(err, "marshal event"), "shipment_id", sh.ID)
		return
	}
	if err := s.publisher.Publish(ctx, s.eventTopic, []byte(sh.ID.String()), b); err != nil {
		s.warn(&res.Warnings, WarnEventPublishFailed, err, "shipment_id", sh.ID)
	}
}
