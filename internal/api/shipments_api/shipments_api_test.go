package shipments_api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BearBump/EuroLink/internal/integrations/mailer/fake"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/services/notifications"
	"github.com/BearBump/EuroLink/internal/services/recipients"
	"github.com/BearBump/EuroLink/internal/services/shipments"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/BearBump/EuroLink/internal/storage/memstore"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv    *httptest.Server
	store  *memstore.Store
	mailer *fake.Mailer
	user   uuid.UUID
}

func newTestEnv(t *testing.T, policy status.Policy, opts ...Option) *testEnv {
	t.Helper()

	store := memstore.New()
	m := fake.New()
	user := uuid.New()
	email := "customer@example.com"
	require.NoError(t, store.UpsertProfile(context.Background(), &models.Profile{
		ID: user, Email: &email, FullName: "Ada Customer", Role: models.RoleCustomer,
	}))

	ships := shipments.New(shipments.Deps{
		Store:      store,
		Mailer:     m,
		Recipients: recipients.New(store, nil),
		Outbox:     store,
	}, shipments.Config{Policy: policy})
	notes := notifications.New(store, nil)

	srv := httptest.NewServer(New(ships, notes, opts...).Routes())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, store: store, mailer: m, user: user}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) createShipment(t *testing.T) *models.Shipment {
	t.Helper()
	var sh models.Shipment
	code := e.do(t, http.MethodPost, "/v1/shipments", map[string]any{
		"user_id":          e.user,
		"pickup_location":  "Lisbon",
		"dropoff_location": "Berlin",
		"sender_info":      map[string]any{"name": "Ada"},
		"recipient_info":   map[string]any{"name": "Grace"},
		"package_info":     map[string]any{"description": "books", "weight_kg": 2.5},
		"cost":             "19.999",
	}, &sh)
	require.Equal(t, http.StatusCreated, code)
	return &sh
}

type apiError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestShipmentsAPI_CreateGetHistoryTrack(t *testing.T) {
	e := newTestEnv(t, status.PolicyLenient)
	sh := e.createShipment(t)
	require.Equal(t, string(status.Pending), sh.Status)
	require.True(t, decimal.RequireFromString("20").Equal(sh.Cost))

	var got models.Shipment
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/shipments/"+sh.ID.String(), nil, &got))
	require.Equal(t, sh.TrackingNumber, got.TrackingNumber)

	var hist struct {
		History []models.StatusHistoryEntry `json:"history"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/shipments/"+sh.ID.String()+"/history", nil, &hist))
	require.Len(t, hist.History, 1)
	require.Equal(t, "Shipment created", hist.History[0].Notes)

	var view shipments.TrackView
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/track/"+sh.TrackingNumber, nil, &view))
	require.Equal(t, 13, view.Progress)
	require.Len(t, view.Next, 2)
}

func TestShipmentsAPI_CreateValidation(t *testing.T) {
	e := newTestEnv(t, status.PolicyLenient)

	var apiErr apiError
	code := e.do(t, http.MethodPost, "/v1/shipments", map[string]any{
		"user_id":         e.user,
		"pickup_location": "Lisbon",
	}, &apiErr)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid_input", apiErr.Error.Code)
	require.Equal(t, "is required", apiErr.Error.Details["dropoff_location"])

	code = e.do(t, http.MethodPost, "/v1/shipments", map[string]any{"surprise": true}, &apiErr)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestShipmentsAPI_UpdateStatus(t *testing.T) {
	e := newTestEnv(t, status.PolicyLenient)
	sh := e.createShipment(t)

	var res shipments.UpdateResult
	code := e.do(t, http.MethodPost, "/v1/shipments/"+sh.ID.String()+"/status",
		map[string]any{"status": "Paid", "location": "Lisbon hub"}, &res)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Pending", res.PreviousStatus)
	require.Equal(t, "Paid", res.Shipment.Status)
	require.Empty(t, res.Warnings)
	require.Len(t, e.mailer.StatusEmails(), 1)

	// lenient policy lets a skip through with a warning
	code = e.do(t, http.MethodPost, "/v1/shipments/"+sh.ID.String()+"/status",
		map[string]any{"status": "Delivered"}, &res)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, []string{string(shipments.WarnInvalidTransition)}, res.Warnings.Codes())
}

func TestShipmentsAPI_UpdateStatusErrors(t *testing.T) {
	e := newTestEnv(t, status.PolicyStrict)
	sh := e.createShipment(t)
	path := "/v1/shipments/" + sh.ID.String() + "/status"

	tests := []struct {
		name string
		path string
		body any
		code int
		err  string
	}{
		{name: "unknown status", path: path, body: map[string]any{"status": "in transit"}, code: http.StatusBadRequest, err: "invalid_status"},
		{name: "missing status", path: path, body: map[string]any{"notes": "x"}, code: http.StatusBadRequest, err: "invalid_input"},
		{name: "strict rejection", path: path, body: map[string]any{"status": "Delivered"}, code: http.StatusUnprocessableEntity, err: "invalid_transition"},
		{name: "not found", path: "/v1/shipments/" + uuid.NewString() + "/status", body: map[string]any{"status": "Paid"}, code: http.StatusNotFound, err: "not_found"},
		{name: "malformed id", path: "/v1/shipments/nope/status", body: map[string]any{"status": "Paid"}, code: http.StatusBadRequest, err: "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var apiErr apiError
			require.Equal(t, tt.code, e.do(t, http.MethodPost, tt.path, tt.body, &apiErr))
			require.Equal(t, tt.err, apiErr.Error.Code)
		})
	}

	hist, err := e.store.ListStatusHistory(context.Background(), sh.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
}

func TestShipmentsAPI_AssignDriver(t *testing.T) {
	e := newTestEnv(t, status.PolicyLenient)
	sh := e.createShipment(t)

	driver := uuid.New()
	driverEmail := "driver@example.com"
	require.NoError(t, e.store.UpsertProfile(context.Background(), &models.Profile{
		ID: driver, Email: &driverEmail, FullName: "Dee Driver", Role: models.RoleDriver,
	}))

	var res shipments.AssignResult
	code := e.do(t, http.MethodPost, "/v1/shipments/"+sh.ID.String()+"/driver",
		map[string]any{"driver_id": driver.String()}, &res)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, res.Shipment.DriverID)
	require.Equal(t, driver, *res.Shipment.DriverID)
	require.Len(t, e.mailer.AssignmentEmails(), 1)

	var apiErr apiError
	code = e.do(t, http.MethodPost, "/v1/shipments/"+sh.ID.String()+"/driver",
		map[string]any{"driver_id": "not-a-uuid"}, &apiErr)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "must be a uuid", apiErr.Error.Details["driver_id"])
}

func TestShipmentsAPI_Delete(t *testing.T) {
	e := newTestEnv(t, status.PolicyLenient)
	sh := e.createShipment(t)

	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/v1/shipments/"+sh.ID.String(), nil, nil))

	var apiErr apiError
	require.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/v1/shipments/"+sh.ID.String(), nil, &apiErr))
	require.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/v1/shipments/"+sh.ID.String(), nil, &apiErr))
}

func TestShipmentsAPI_Statuses(t *testing.T) {
	e := newTestEnv(t, status.PolicyLenient)

	var all struct {
		Statuses []status.Definition `json:"statuses"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/statuses", nil, &all))
	require.Len(t, all.Statuses, 9)

	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/statuses?ordered=true", nil, &all))
	require.Len(t, all.Statuses, status.FinalStage)
	require.Equal(t, status.Pending, all.Statuses[0].Value)

	var next nextStatusesResponse
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/v1/statuses/In%20Transit/next", nil, &next))
	require.Equal(t, 63, next.Progress)
	require.Len(t, next.Next, 1)
	require.Equal(t, status.OnRoute, next.Next[0].Value)

	var apiErr apiError
	require.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/v1/statuses/Lost/next", nil, &apiErr))
	require.Equal(t, "invalid_status", apiErr.Error.Code)
}

func TestShipmentsAPI_Notifications(t *testing.T) {
	e := newTestEnv(t, status.PolicyLenient)
	base := "/v1/users/" + e.user.String() + "/notifications"

	var n models.Notification
	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, base,
		map[string]any{"title": "Hello", "message": "Your parcel is special"}, &n))
	require.Equal(t, models.NotificationTypeAdminMessage, n.Type)

	var list struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, base+"?unread=true&limit=10", nil, &list))
	require.Len(t, list.Notifications, 1)

	var apiErr apiError
	other := "/v1/users/" + uuid.NewString() + "/notifications/" + n.ID.String() + "/read"
	require.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, other, nil, &apiErr))

	require.Equal(t, http.StatusNoContent, e.do(t, http.MethodPost, base+"/"+n.ID.String()+"/read", nil, nil))
	require.Equal(t, http.StatusOK, e.do(t, http.MethodGet, base+"?unread=true", nil, &list))
	require.Empty(t, list.Notifications)

	var updated map[string]int64
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, base+"/read", nil, &updated))
	require.Equal(t, int64(0), updated["updated"])

	require.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, base+"?limit=-1", nil, &apiErr))
	require.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, base, map[string]any{"title": "x"}, &apiErr))
	require.Equal(t, "is required", apiErr.Error.Details["message"])
}
