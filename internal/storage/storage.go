package storage

import (
	"context"
	"time"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by datastores when a row does not exist.
var ErrNotFound = errors.New("not found")

// Datastore is the persistence contract of the shipment write path.
type Datastore interface {
	CreateShipment(ctx context.Context, sh *models.Shipment) error
	GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id uuid.UUID, status string, updatedAt time.Time) error
	UpdateShipmentDriver(ctx context.Context, id, driverID uuid.UUID, updatedAt time.Time) error
	DeleteShipment(ctx context.Context, id uuid.UUID) error

	InsertStatusHistory(ctx context.Context, e *models.StatusHistoryEntry) error
	ListStatusHistory(ctx context.Context, shipmentID uuid.UUID) ([]*models.StatusHistoryEntry, error)
	DeleteStatusHistory(ctx context.Context, shipmentID uuid.UUID) error

	InsertNotification(ctx context.Context, n *models.Notification) error
	DeleteShipmentNotifications(ctx context.Context, shipmentID uuid.UUID) error

	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Transactor is implemented by datastores able to scope several writes to a
// single transaction. Inside fn, InsertStatusHistory and InsertNotification
// failures must not poison the transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ds Datastore) error) error
}

// NotificationStore backs the in-app inbox.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) (bool, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// EmailOutbox stores failed emails for the retry worker.
type EmailOutbox interface {
	EnqueueEmail(ctx context.Context, kind models.EmailKind, payload []byte, nextAttemptAt time.Time, lastErr string) error
	ClaimDueEmails(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.OutboundEmail, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	RescheduleEmail(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, lastErr string) error
	AbandonEmail(ctx context.Context, id uuid.UUID, lastErr string) error
}
