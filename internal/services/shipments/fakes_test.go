package shipments

import (
	"context"
	"sync"
	"time"

	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/BearBump/EuroLink/internal/storage/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// faultStore wraps memstore with per-operation failures and a write counter.
type faultStore struct {
	*memstore.Store

	mu     sync.Mutex
	fail   map[string]error
	writes int
}

func newFaultStore() *faultStore {
	return &faultStore{Store: memstore.New(), fail: map[string]error{}}
}

func (f *faultStore) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *faultStore) check(op string, write bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[op]; err != nil {
		return err
	}
	if write {
		f.writes++
	}
	return nil
}

func (f *faultStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *faultStore) WithinTx(ctx context.Context, fn func(ds storage.Datastore) error) error {
	return f.Store.WithinTx(ctx, func(ds storage.Datastore) error {
		return fn(&faultView{Datastore: ds, f: f})
	})
}

func (f *faultStore) view() *faultView {
	return &faultView{Datastore: f.Store, f: f}
}

func (f *faultStore) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	return f.view().GetShipment(ctx, id)
}

func (f *faultStore) GetShipmentByTrackingNumber(ctx context.Context, tn string) (*models.Shipment, error) {
	return f.view().GetShipmentByTrackingNumber(ctx, tn)
}

func (f *faultStore) UpdateShipmentStatus(ctx context.Context, id uuid.UUID, st string, at time.Time) error {
	return f.view().UpdateShipmentStatus(ctx, id, st, at)
}

func (f *faultStore) UpdateShipmentDriver(ctx context.Context, id, driverID uuid.UUID, at time.Time) error {
	return f.view().UpdateShipmentDriver(ctx, id, driverID, at)
}

func (f *faultStore) InsertStatusHistory(ctx context.Context, e *models.StatusHistoryEntry) error {
	return f.view().InsertStatusHistory(ctx, e)
}

func (f *faultStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	return f.view().InsertNotification(ctx, n)
}

func (f *faultStore) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	return f.view().DeleteShipment(ctx, id)
}

func (f *faultStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return f.view().GetProfile(ctx, id)
}

// faultView applies the configured failures in front of a datastore, either
// the live store or a transaction.
type faultView struct {
	storage.Datastore
	f *faultStore
}

func (v *faultView) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	if err := v.f.check("GetShipment", false); err != nil {
		return nil, err
	}
	return v.Datastore.GetShipment(ctx, id)
}

func (v *faultView) GetShipmentByTrackingNumber(ctx context.Context, tn string) (*models.Shipment, error) {
	if err := v.f.check("GetShipmentByTrackingNumber", false); err != nil {
		return nil, err
	}
	return v.Datastore.GetShipmentByTrackingNumber(ctx, tn)
}

func (v *faultView) UpdateShipmentStatus(ctx context.Context, id uuid.UUID, st string, at time.Time) error {
	if err := v.f.check("UpdateShipmentStatus", true); err != nil {
		return err
	}
	return v.Datastore.UpdateShipmentStatus(ctx, id, st, at)
}

func (v *faultView) UpdateShipmentDriver(ctx context.Context, id, driverID uuid.UUID, at time.Time) error {
	if err := v.f.check("UpdateShipmentDriver", true); err != nil {
		return err
	}
	return v.Datastore.UpdateShipmentDriver(ctx, id, driverID, at)
}

func (v *faultView) InsertStatusHistory(ctx context.Context, e *models.StatusHistoryEntry) error {
	if err := v.f.check("InsertStatusHistory", true); err != nil {
		return err
	}
	return v.Datastore.InsertStatusHistory(ctx, e)
}

func (v *faultView) InsertNotification(ctx context.Context, n *models.Notification) error {
	if err := v.f.check("InsertNotification", true); err != nil {
		return err
	}
	return v.Datastore.InsertNotification(ctx, n)
}

func (v *faultView) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	if err := v.f.check("DeleteShipment", true); err != nil {
		return err
	}
	return v.Datastore.DeleteShipment(ctx, id)
}

func (v *faultView) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if err := v.f.check("GetProfile", false); err != nil {
		return nil, err
	}
	return v.Datastore.GetProfile(ctx, id)
}

type mailerMock struct {
	mock.Mock
}

func (m *mailerMock) SendStatusEmail(ctx context.Context, e mailer.StatusEmail) (*mailer.SendResult, error) {
	args := m.Called(ctx, e)
	res, _ := args.Get(0).(*mailer.SendResult)
	return res, args.Error(1)
}

func (m *mailerMock) SendDriverAssignmentEmail(ctx context.Context, e mailer.DriverAssignmentEmail) (*mailer.SendResult, error) {
	args := m.Called(ctx, e)
	res, _ := args.Get(0).(*mailer.SendResult)
	return res, args.Error(1)
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, topic string, key, value []byte) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type staticRecipients map[uuid.UUID]string

func (r staticRecipients) ResolveRecipientEmail(_ context.Context, id uuid.UUID) (string, error) {
	return r[id], nil
}

// stepClock returns strictly increasing timestamps.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}
