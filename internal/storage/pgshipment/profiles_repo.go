package pgshipment

import (
	"context"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Storage) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	var role string
	err := s.db.QueryRow(ctx, `SELECT id, email, full_name, phone, role FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Phone, &role)
	if err != nil {
		return nil, errors.Wrap(notFound(err), "select profile")
	}
	p.Role = models.Role(role)
	return &p, nil
}

func (s *Storage) UpsertProfile(ctx context.Context, p *models.Profile) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO profiles (id, email, full_name, phone, role)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  phone = EXCLUDED.phone,
  role = EXCLUDED.role
`, p.ID, p.Email, p.FullName, p.Phone, string(p.Role))
	return errors.Wrap(err, "upsert profile")
}

// ProfileEmail returns the email stored on the profile, or "" when the profile
// or its email is missing.
func (s *Storage) ProfileEmail(ctx context.Context, userID uuid.UUID) (string, error) {
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
