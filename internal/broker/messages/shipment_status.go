package messages

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicStatusChanged = "shipment.status_changed"
	TopicStatusScans   = "shipment.status_scans"
)

// ShipmentStatusChanged is published after a status write commits.
type ShipmentStatusChanged struct {
	ShipmentID     uuid.UUID  `json:"shipment_id"`
	TrackingNumber string     `json:"tracking_number"`
	UserID         uuid.UUID  `json:"user_id"`
	PreviousStatus string     `json:"previous_status"`
	Status         string     `json:"status"`
	Location       string     `json:"location,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Progress       int        `json:"progress"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
	ChangedAt      time.Time  `json:"changed_at"`
	Warnings       []string   `json:"warnings,omitempty"`
}

// StatusScan is a status change reported by a driver handheld. Either
// ShipmentID or TrackingNumber identifies the shipment.
type StatusScan struct {
	ShipmentID     *uuid.UUID `json:"shipment_id,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	Status         string     `json:"status"`
	Location       string     `json:"location,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	DriverID       *uuid.UUID `json:"driver_id,omitempty"`
	ScannedAt      time.Time  `json:"scanned_at"`
}
