package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EmailKind string

const (
	EmailKindStatus           EmailKind = "status"
	EmailKindDriverAssignment EmailKind = "driver_assignment"
)

// OutboundEmail is a failed email waiting to be retried by the mail worker.
type OutboundEmail struct {
	ID            uuid.UUID       `json:"id"`
	Kind          EmailKind       `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	Attempts      int32           `json:"attempts"`
	NextAttemptAt time.Time       `json:"next_attempt_at"`
	LastError     *string         `json:"last_error,omitempty"`
	SentAt        *time.Time      `json:"sent_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
