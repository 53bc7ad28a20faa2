// Package memstore is an in-process datastore used when no database DSN is
// configured and in service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// state holds the rows. Its methods are unlocked; Store guards the live
// state and WithinTx hands fn a private clone.
type state struct {
	shipments     map[uuid.UUID]models.Shipment
	history       map[uuid.UUID]models.StatusHistoryEntry
	notifications map[uuid.UUID]models.Notification
	profiles      map[uuid.UUID]models.Profile
	outbox        map[uuid.UUID]outboxRow
}

type outboxRow struct {
	email models.OutboundEmail
	state string
}

func newState() state {
	return state{
		shipments:     map[uuid.UUID]models.Shipment{},
		history:       map[uuid.UUID]models.StatusHistoryEntry{},
		notifications: map[uuid.UUID]models.Notification{},
		profiles:      map[uuid.UUID]models.Profile{},
		outbox:        map[uuid.UUID]outboxRow{},
	}
}

func (st state) clone() state {
	c := newState()
	for k, v := range st.shipments {
		c.shipments[k] = v
	}
	for k, v := range st.history {
		c.history[k] = v
	}
	for k, v := range st.notifications {
		c.notifications[k] = v
	}
	for k, v := range st.profiles {
		c.profiles[k] = v
	}
	for k, v := range st.outbox {
		c.outbox[k] = v
	}
	return c
}

var _ storage.Datastore = (*state)(nil)

type Store struct {
	mu sync.RWMutex
	st state
}

func New() *Store {
	return &Store{st: newState()}
}

// WithinTx holds the store lock while fn works on a copy of the state. The
// copy replaces the live state only when fn succeeds; other callers wait.
// fn must use ds, never the Store itself.
func (s *Store) WithinTx(_ context.Context, fn func(ds storage.Datastore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.st.clone()
	if err := fn(&tx); err != nil {
		return err
	}
	s.st = tx
	return nil
}

func (s *Store) CreateShipment(ctx context.Context, sh *models.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateShipment(ctx, sh)
}

func (s *Store) GetShipment(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetShipment(ctx, id)
}

func (s *Store) GetShipmentByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetShipmentByTrackingNumber(ctx, trackingNumber)
}

func (s *Store) UpdateShipmentStatus(ctx context.Context, id uuid.UUID, status string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateShipmentStatus(ctx, id, status, updatedAt)
}

func (s *Store) UpdateShipmentDriver(ctx context.Context, id, driverID uuid.UUID, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateShipmentDriver(ctx, id, driverID, updatedAt)
}

func (s *Store) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteShipment(ctx, id)
}

func (s *Store) InsertStatusHistory(ctx context.Context, e *models.StatusHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.InsertStatusHistory(ctx, e)
}

func (s *Store) ListStatusHistory(ctx context.Context, shipmentID uuid.UUID) ([]*models.StatusHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListStatusHistory(ctx, shipmentID)
}

func (s *Store) DeleteStatusHistory(ctx context.Context, shipmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteStatusHistory(ctx, shipmentID)
}

func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.InsertNotification(ctx, n)
}

func (s *Store) DeleteShipmentNotifications(ctx context.Context, shipmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteShipmentNotifications(ctx, shipmentID)
}

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetProfile(ctx, id)
}

func (s *Store) UpsertProfile(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.profiles[p.ID] = *p
	return nil
}

func (s *Store) ProfileEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if p.Email == nil {
		return "", nil
	}
	return *p.Email, nil
}

func (st *state) CreateShipment(_ context.Context, sh *models.Shipment) error {
	if _, ok := st.shipments[sh.ID]; ok {
		return errors.Errorf("insert shipment: duplicate id %s", sh.ID)
	}
	for _, existing := range st.shipments {
		if existing.TrackingNumber == sh.TrackingNumber {
			return errors.Errorf("insert shipment: duplicate tracking number %s", sh.TrackingNumber)
		}
	}
	st.shipments[sh.ID] = *sh
	return nil
}

func (st *state) GetShipment(_ context.Context, id uuid.UUID) (*models.Shipment, error) {
	sh, ok := st.shipments[id]
	if !ok {
		return nil, errors.Wrap(storage.ErrNotFound, "select shipment")
	}
	return &sh, nil
}

func (st *state) GetShipmentByTrackingNumber(_ context.Context, trackingNumber string) (*models.Shipment, error) {
	for _, sh := range st.shipments {
		if sh.TrackingNumber == trackingNumber {
			out := sh
			return &out, nil
		}
	}
	return nil, errors.Wrap(storage.ErrNotFound, "select shipment by tracking number")
}

func (st *state) UpdateShipmentStatus(_ context.Context, id uuid.UUID, status string, updatedAt time.Time) error {
	sh, ok := st.shipments[id]
	if !ok {
		return errors.Wrap(storage.ErrNotFound, "update shipment status")
	}
	sh.Status = status
	sh.UpdatedAt = updatedAt
	st.shipments[id] = sh
	return nil
}

func (st *state) UpdateShipmentDriver(_ context.Context, id, driverID uuid.UUID, updatedAt time.Time) error {
	sh, ok := st.shipments[id]
	if !ok {
		return errors.Wrap(storage.ErrNotFound, "update shipment driver")
	}
	d := driverID
	sh.DriverID = &d
	sh.UpdatedAt = updatedAt
	st.shipments[id] = sh
	return nil
}

func (st *state) DeleteShipment(_ context.Context, id uuid.UUID) error {
	if _, ok := st.shipments[id]; !ok {
		return errors.Wrap(storage.ErrNotFound, "delete shipment")
	}
	for hid, h := range st.history {
		if h.ShipmentID == id {
			return errors.Errorf("delete shipment: history row %s still references it", hid)
		}
	}
	delete(st.shipments, id)
	return nil
}

func (st *state) InsertStatusHistory(_ context.Context, e *models.StatusHistoryEntry) error {
	if _, ok := st.shipments[e.ShipmentID]; !ok {
		return errors.Errorf("insert status history: shipment %s does not exist", e.ShipmentID)
	}
	st.history[e.ID] = *e
	return nil
}

func (st *state) ListStatusHistory(_ context.Context, shipmentID uuid.UUID) ([]*models.StatusHistoryEntry, error) {
	out := make([]*models.StatusHistoryEntry, 0)
	for _, h := range st.history {
		if h.ShipmentID == shipmentID {
			e := h
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (st *state) DeleteStatusHistory(_ context.Context, shipmentID uuid.UUID) error {
	for id, h := range st.history {
		if h.ShipmentID == shipmentID {
			delete(st.history, id)
		}
	}
	return nil
}

func (st *state) GetProfile(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	p, ok := st.profiles[id]
	if !ok {
		return nil, errors.Wrap(storage.ErrNotFound, "select profile")
	}
	return &p, nil
}
