package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeStatusUpdate NotificationType = "status_update"
	NotificationTypeAssignment   NotificationType = "assignment"
	NotificationTypeAdminMessage NotificationType = "admin_message"
)

type Notification struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	ShipmentID *uuid.UUID       `json:"shipment_id,omitempty"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}
