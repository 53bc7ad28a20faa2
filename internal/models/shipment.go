package models

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Party is the free-form sender/recipient blob stored as JSON.
type Party struct {
	Name    string `json:"name,omitempty" validate:"required,max=200"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty" validate:"max=500"`
}

// PackageInfo is the free-form package blob stored as JSON.
type PackageInfo struct {
	Description string  `json:"description,omitempty" validate:"max=1000"`
	WeightKg    float64 `json:"weight_kg,omitempty" validate:"gte=0,lte=1000"`
	Dimensions  string  `json:"dimensions,omitempty" validate:"max=100"`
	Fragile     bool    `json:"fragile,omitempty"`
}

type Shipment struct {
	ID              uuid.UUID       `json:"id"`
	TrackingNumber  string          `json:"tracking_number"`
	Status          string          `json:"status"`
	UserID          uuid.UUID       `json:"user_id"`
	DriverID        *uuid.UUID      `json:"driver_id,omitempty"`
	PickupLocation  string          `json:"pickup_location"`
	DropoffLocation string          `json:"dropoff_location"`
	SenderInfo      Party           `json:"sender_info"`
	RecipientInfo   Party           `json:"recipient_info"`
	PackageInfo     PackageInfo     `json:"package_info"`
	Cost            decimal.Decimal `json:"cost"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ShipmentCreateInput struct {
	UserID          uuid.UUID       `json:"user_id" validate:"required"`
	PickupLocation  string          `json:"pickup_location" validate:"required,max=255"`
	DropoffLocation string          `json:"dropoff_location" validate:"required,max=255"`
	SenderInfo      Party           `json:"sender_info"`
	RecipientInfo   Party           `json:"recipient_info"`
	PackageInfo     PackageInfo     `json:"package_info"`
	Cost            decimal.Decimal `json:"cost"`
}

// StatusHistoryEntry is one append-only record of a status change.
type StatusHistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	ShipmentID uuid.UUID `json:"shipment_id"`
	Status     string    `json:"status"`
	Location   string    `json:"location"`
	Notes      string    `json:"notes"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewTrackingNumber returns a customer-facing tracking number such as
// "EL7K2M9QX4TB".
func NewTrackingNumber() string {
	var b [10]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fall back to uuid entropy
		u := uuid.New()
		copy(b[:], u[:10])
	}
	var sb strings.Builder
	sb.Grow(12)
	sb.WriteString("EL")
	for _, c := range b {
		sb.WriteByte(trackingAlphabet[int(c)%len(trackingAlphabet)])
	}
	return sb.String()
}
