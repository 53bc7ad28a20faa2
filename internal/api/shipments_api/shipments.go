package shipments_api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/services/shipments"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type statusUpdateRequest struct {
	Status   string `json:"status" validate:"required"`
	Location string `json:"location" validate:"max=255"`
	Notes    string `json:"notes" validate:"max=1000"`
}

type assignDriverRequest struct {
	DriverID string `json:"driver_id" validate:"required,uuid"`
}

type nextStatusesResponse struct {
	Current  status.Definition   `json:"current"`
	Progress int                 `json:"progress"`
	Next     []status.Definition `json:"next"`
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &requestError{msg: "malformed " + name}
	}
	return id, nil
}

func (a *ShipmentsAPI) createShipment(w http.ResponseWriter, r *http.Request) {
	var in models.ShipmentCreateInput
	if err := decodeJSONBody(r, &in); err != nil {
		a.mapError(w, r, err)
		return
	}
	sh, err := a.shipments.CreateShipment(r.Context(), in)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (a *ShipmentsAPI) getShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	sh, err := a.shipments.GetShipment(r.Context(), id)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (a *ShipmentsAPI) deleteShipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	if err := a.shipments.DeleteShipment(r.Context(), id); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *ShipmentsAPI) listHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	hist, err := a.shipments.ListStatusHistory(r.Context(), id)
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": hist})
}

func (a *ShipmentsAPI) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	var req statusUpdateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		a.mapError(w, r, err)
		return
	}
	res, err := a.shipments.ApplyStatusUpdate(r.Context(), shipments.StatusUpdate{
		ShipmentID: id,
		Status:     req.Status,
		Location:   req.Location,
		Notes:      req.Notes,
		ActorID:    ActorFrom(r.Context()),
	})
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *ShipmentsAPI) assignDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	var req assignDriverRequest
	if err := decodeJSONBody(r, &req); err != nil {
		a.mapError(w, r, err)
		return
	}
	res, err := a.shipments.AssignDriver(r.Context(), id, uuid.MustParse(req.DriverID), ActorFrom(r.Context()))
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *ShipmentsAPI) track(w http.ResponseWriter, r *http.Request) {
	v, err := a.shipments.Track(r.Context(), chi.URLParam(r, "trackingNumber"))
	if err != nil {
		a.mapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *ShipmentsAPI) listStatuses(w http.ResponseWriter, r *http.Request) {
	defs := status.All()
	if ordered, _ := strconv.ParseBool(r.URL.Query().Get("ordered")); ordered {
		defs = status.InOrder()
	}
	writeJSON(w, http.StatusOK, map[string]any{"statuses": defs})
}

func (a *ShipmentsAPI) nextStatuses(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "status"))
	if err != nil {
		a.mapError(w, r, &requestError{msg: "malformed status"})
		return
	}
	def, ok := status.Lookup(raw)
	if !ok {
		a.mapError(w, r, errors.Wrapf(shipments.ErrInvalidStatus, "%q", raw))
		return
	}
	writeJSON(w, http.StatusOK, nextStatusesResponse{
		Current:  def,
		Progress: status.Progress(raw),
		Next:     status.NextPossible(raw),
	})
}
