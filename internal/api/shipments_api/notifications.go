package shipments_api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

type adminMessageRequest struct {
	ShipmentID string `json:"shipment_id" validate:"omitempty,uuid"`
	Title      string `json:"title" validate:"required,max=200"`
	Message    string `json:"message" validate:"required,max=2000"`
}

func (a *ShipmentsAPI) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	q := r.URL.Query()
	unread, _ := strconv.ParseBool(q.Get("unread"))
	limit := 0
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			a.mapError(w, r, &requestError{msg: "limit must be a non-negative integer"})
			return
		}
	}
	ns, err := a.notifications.List(r.Context(), userID, unread, limit)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": ns})
}

func (a *ShipmentsAPI) sendAdminMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	var req adminMessageRequest
	if err := decodeJSONBody(r, &req); err != nil {
		a.mapError(w, r, err)
		return
	}
	var shipmentID *uuid.UUID
	if req.ShipmentID != "" {
		id := uuid.MustParse(req.ShipmentID)
		shipmentID = &id
	}
	n, err := a.notifications.SendAdminMessage(r.Context(), userID, shipmentID, req.Title, req.Message)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (a *ShipmentsAPI) markAllRead(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	n, err := a.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (a *ShipmentsAPI) markRead(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "userID")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	if err := a.notifications.MarkRead(r.Context(), userID, id); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
