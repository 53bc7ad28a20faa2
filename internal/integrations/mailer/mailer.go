package mailer

import (
	"context"
)

// Mailer delivers transactional shipment emails. It is built once at startup
// and injected wherever mail is sent.
type Mailer interface {
	SendStatusEmail(ctx context.Context, email StatusEmail) (*SendResult, error)
	SendDriverAssignmentEmail(ctx context.Context, email DriverAssignmentEmail) (*SendResult, error)
}

// StatusEmail tells a shipment owner about a status change.
type StatusEmail struct {
	To             string `json:"to"`
	RecipientName  string `json:"recipient_name,omitempty"`
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
	Location       string `json:"location,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// DriverAssignmentEmail tells a driver about a newly assigned shipment.
type DriverAssignmentEmail struct {
	To              string `json:"to"`
	DriverName      string `json:"driver_name,omitempty"`
	TrackingNumber  string `json:"tracking_number"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
}

type SendResult struct {
	MessageID string `json:"message_id,omitempty"`
	// Skipped is set when delivery is disabled by configuration.
	Skipped bool `json:"skipped,omitempty"`
}
