package shipments_api

import (
	"encoding/json"
	"net/http"

	"github.com/BearBump/EuroLink/internal/services/notifications"
	"github.com/BearBump/EuroLink/internal/services/shipments"
	"github.com/pkg/errors"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, map[string]errorBody{"error": {Code: errCode, Message: msg}})
}

// mapError translates service errors into HTTP responses.
func (a *ShipmentsAPI) mapError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {
			Code: "invalid_input", Message: reqErr.msg, Details: reqErr.details,
		}})
	case errors.Is(err, shipments.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, shipments.ErrInvalidInput), errors.Is(err, notifications.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, shipments.ErrNotFound), errors.Is(err, notifications.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shipments.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, shipments.ErrUpdateFailed):
		a.log.Errorw("update failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "update_failed", "failed to update shipment")
	case errors.Is(err, shipments.ErrDeleteFailed):
		a.log.Errorw("delete failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, "delete_failed", "failed to delete shipment")
	default:
		a.log.Errorw("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
