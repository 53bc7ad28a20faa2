package pgshipment

import (
	"context"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Storage) InsertStatusHistory(ctx context.Context, e *models.StatusHistoryEntry) error {
	return s.bestEffort(ctx, func(db dbtx) error {
		_, err := db.Exec(ctx, `
INSERT INTO shipment_status_history (id, shipment_id, status, location, notes, timestamp)
VALUES ($1,$2,$3,$4,$5,$6)
`, e.ID, e.ShipmentID, e.Status, e.Location, e.Notes, e.Timestamp.UTC())
		return errors.Wrap(err, "insert status history")
	})
}

// ListStatusHistory returns the timeline of a shipment, oldest first.
func (s *Storage) ListStatusHistory(ctx context.Context, shipmentID uuid.UUID) ([]*models.StatusHistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, shipment_id, status, location, notes, timestamp
FROM shipment_status_history
WHERE shipment_id = $1
ORDER BY timestamp ASC, id ASC
`, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "select status history")
	}
	defer rows.Close()

	out := make([]*models.StatusHistoryEntry, 0)
	for rows.Next() {
		var e models.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.ShipmentID, &e.Status, &e.Location, &e.Notes, &e.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan status history")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) DeleteStatusHistory(ctx context.Context, shipmentID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM shipment_status_history WHERE shipment_id = $1`, shipmentID)
	return errors.Wrap(err, "delete status history")
}
