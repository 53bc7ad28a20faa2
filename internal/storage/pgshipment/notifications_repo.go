package pgshipment

import (
	"context"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Storage) InsertNotification(ctx context.Context, n *models.Notification) error {
	return s.bestEffort(ctx, func(db dbtx) error {
		_, err := db.Exec(ctx, `
INSERT INTO notifications (id, user_id, shipment_id, type, title, message, read, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, n.ID, n.UserID, n.ShipmentID, string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt.UTC())
		return errors.Wrap(err, "insert notification")
	})
}

func (s *Storage) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
SELECT id, user_id, shipment_id, type, title, message, read, created_at
FROM notifications
WHERE user_id = $1
  AND ($2 = FALSE OR read = FALSE)
ORDER BY created_at DESC, id DESC
LIMIT $3
`, userID, unreadOnly, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select notifications")
	}
	defer rows.Close()

	out := make([]*models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.UserID, &n.ShipmentID, &typ, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan notification")
		}
		n.Type = models.NotificationType(typ)
		out = append(out, &n)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

// MarkNotificationRead reports whether a notification owned by userID exists.
func (s *Storage) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, errors.Wrap(err, "mark notification read")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	if err != nil {
		return 0, errors.Wrap(err, "mark all notifications read")
	}
	return tag.RowsAffected(), nil
}

func (s *Storage) DeleteShipmentNotifications(ctx context.Context, shipmentID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE shipment_id = $1`, shipmentID)
	return errors.Wrap(err, "delete shipment notifications")
}
