package shipments

import (
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrNotFound          = errors.New("shipment not found")
	ErrUpdateFailed      = errors.New("shipment update failed")
	ErrInvalidTransition = status.ErrInvalidTransition
	ErrDeleteFailed      = errors.New("shipment delete failed")
	ErrInvalidInput      = errors.New("invalid input")
)

// failure ties a sentinel to the error that caused it. errors.Is matches
// either one.
type failure struct {
	sentinel error
	cause    error
}

func failed(sentinel, cause error) error {
	return errors.WithStack(&failure{sentinel: sentinel, cause: cause})
}

func (f *failure) Error() string {
	return f.sentinel.Error() + ": " + f.cause.Error()
}

func (f *failure) Unwrap() []error {
	return []error{f.sentinel, f.cause}
}

type WarningCode string

const (
	WarnInvalidTransition       WarningCode = "invalid_transition"
	WarnHistoryWriteFailed      WarningCode = "history_write_failed"
	WarnNotificationWriteFailed WarningCode = "notification_write_failed"
	WarnEmailSendFailed         WarningCode = "email_send_failed"
	WarnRecipientMissing        WarningCode = "recipient_missing"
	WarnEventPublishFailed      WarningCode = "event_publish_failed"
	WarnDriverLookupFailed      WarningCode = "driver_lookup_failed"
	WarnCacheRefreshFailed      WarningCode = "cache_refresh_failed"
)

// Warning is a side effect that failed without failing the operation.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	err     error
}

func (w Warning) Error() string {
	return string(w.Code) + ": " + w.Message
}

func (w Warning) Unwrap() error {
	return w.err
}

type Warnings []Warning

func (ws *Warnings) add(code WarningCode, err error) {
	w := Warning{Code: code, err: err}
	if err != nil {
		w.Message = err.Error()
	}
	*ws = append(*ws, w)
}

func (ws Warnings) Has(code WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

func (ws Warnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, string(w.Code))
	}
	return out
}

// Err combines every warning into one error, or nil when there are none.
func (ws Warnings) Err() error {
	var err error
	for _, w := range ws {
		err = multierr.Append(err, w)
	}
	return err
}
