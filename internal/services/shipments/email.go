package shipments

import (
	"context"
	"encoding/json"

	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Service) sendStatusEmail(ctx context.Context, sh *models.Shipment, upd StatusUpdate, ws *Warnings) *mailer.SendResult {
	to, ok := s.resolveRecipient(ctx, sh.UserID, ws)
	if !ok {
		return nil
	}

	email := mailer.StatusEmail{
		To:             to,
		RecipientName:  sh.SenderInfo.Name,
		TrackingNumber: sh.TrackingNumber,
		Status:         sh.Status,
		Location:       upd.Location,
		Notes:          upd.Notes,
	}
	res, err := s.mailer.SendStatusEmail(ctx, email)
	if err != nil {
		s.metrics.Email(string(models.EmailKindStatus), "failed")
		s.warn(ws, WarnEmailSendFailed, err, "shipment_id", sh.ID)
		s.enqueueRetry(ctx, models.EmailKindStatus, email, err)
		return nil
	}
	s.metrics.Email(string(models.EmailKindStatus), emailResult(res))
	return res
}

func (s *Service) sendAssignmentEmail(ctx context.Context, email mailer.DriverAssignmentEmail, ws *Warnings) *mailer.SendResult {
	res, err := s.mailer.SendDriverAssignmentEmail(ctx, email)
	if err != nil {
		s.metrics.Email(string(models.EmailKindDriverAssignment), "failed")
		s.warn(ws, WarnEmailSendFailed, err, "tracking_number", email.TrackingNumber)
		s.enqueueRetry(ctx, models.EmailKindDriverAssignment, email, err)
		return nil
	}
	s.metrics.Email(string(models.EmailKindDriverAssignment), emailResult(res))
	return res
}

func (s *Service) resolveRecipient(ctx context.Context, userID uuid.UUID, ws *Warnings) (string, bool) {
	if s.recipients == nil {
		s.warn(ws, WarnRecipientMissing, errors.New("no recipient resolver configured"), "user_id", userID)
		return "", false
	}
	to, err := s.recipients.ResolveRecipientEmail(ctx, userID)
	if err != nil {
		s.warn(ws, WarnRecipientMissing, errors.Wrap(err, "resolve recipient"), "user_id", userID)
		return "", false
	}
	if to == "" {
		s.warn(ws, WarnRecipientMissing, errors.Errorf("no email address for user %s", userID), "user_id", userID)
		return "", false
	}
	return to, true
}

// enqueueRetry hands a failed email to the retry worker. Enqueue failures are
// only logged.
func (s *Service) enqueueRetry(ctx context.Context, kind models.EmailKind, email any, sendErr error) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(email)
	if err != nil {
		s.log.Errorw("marshal email for retry", "kind", kind, "error", err)
		return
	}
	if err := s.outbox.EnqueueEmail(ctx, kind, payload, s.now().Add(s.retryDelay), sendErr.Error()); err != nil {
		s.log.Errorw("enqueue email retry", "kind", kind, "error", err)
	}
}

func emailResult(res *mailer.SendResult) string {
	if res != nil && res.Skipped {
		return "skipped"
	}
	return "sent"
}
