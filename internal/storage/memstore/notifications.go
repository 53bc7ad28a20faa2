package memstore

import (
	"context"
	"sort"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Store) ListNotifications(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Notification, 0)
	for _, n := range s.st.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		c := n
		out = append(out, &c)
	}
	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, userID, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.st.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	s.st.notifications[id] = n
	return true, nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, nt := range s.st.notifications {
		if nt.UserID == userID && !nt.Read {
			nt.Read = true
			s.st.notifications[id] = nt
			n++
		}
	}
	return n, nil
}

func (st *state) InsertNotification(_ context.Context, n *models.Notification) error {
	if n.ShipmentID != nil {
		if _, ok := st.shipments[*n.ShipmentID]; !ok {
			return errors.Errorf("insert notification: shipment %s does not exist", *n.ShipmentID)
		}
	}
	st.notifications[n.ID] = *n
	return nil
}

func (st *state) DeleteShipmentNotifications(_ context.Context, shipmentID uuid.UUID) error {
	for id, n := range st.notifications {
		if n.ShipmentID != nil && *n.ShipmentID == shipmentID {
			delete(st.notifications, id)
		}
	}
	return nil
}
