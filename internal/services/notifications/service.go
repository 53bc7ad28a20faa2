package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/BearBump/EuroLink/internal/logger"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotFound     = errors.New("notification not found")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	maxTitleLen   = 200
	maxMessageLen = 2000
)

type Service struct {
	store storage.NotificationStore
	log   *logger.Logger
	now   func() time.Time
}

func New(store storage.NotificationStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		store: store,
		log:   log.Named("notifications"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	ns, err := s.store.ListNotifications(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	return ns, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.store.MarkNotificationRead(ctx, userID, id)
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "notification %s", id)
	}
	return nil
}

// MarkAllRead returns how many notifications changed state.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "mark all notifications read")
	}
	return n, nil
}

// SendAdminMessage drops a manual message into a user's inbox.
func (s *Service) SendAdminMessage(ctx context.Context, userID uuid.UUID, shipmentID *uuid.UUID, title, message string) (*models.Notification, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	switch {
	case userID == uuid.Nil:
		return nil, errors.Wrap(ErrInvalidInput, "user id is required")
	case title == "" || message == "":
		return nil, errors.Wrap(ErrInvalidInput, "title and message are required")
	case len(title) > maxTitleLen || len(message) > maxMessageLen:
		return nil, errors.Wrap(ErrInvalidInput, "title or message too long")
	}

	n := &models.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		ShipmentID: shipmentID,
		Type:       models.NotificationTypeAdminMessage,
		Title:      title,
		Message:    message,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertNotification(ctx, n); err != nil {
		return nil, errors.Wrap(err, "insert notification")
	}
	s.log.Infow("admin message sent", "user_id", userID, "notification_id", n.ID)
	return n, nil
}
