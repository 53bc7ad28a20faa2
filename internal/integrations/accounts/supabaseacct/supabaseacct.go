// Package supabaseacct reads user accounts from the Supabase admin API.
package supabaseacct

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/nedpals/supabase-go"
	"github.com/pkg/errors"
)

type adminAPI interface {
	GetUser(ctx context.Context, userID string) (*supabase.AdminUser, error)
}

type Client struct {
	admin adminAPI
}

// New returns nil when url or serviceKey is empty so callers can treat the
// provider as absent.
func New(url, serviceKey string) *Client {
	if url == "" || serviceKey == "" {
		return nil
	}
	c := supabase.CreateClient(url, serviceKey)
	if c == nil {
		return nil
	}
	return &Client{admin: c.Admin}
}

func newWithAdmin(a adminAPI) *Client {
	return &Client{admin: a}
}

// AccountEmail returns the email of the auth account with the given id, or ""
// when the account has none.
func (c *Client) AccountEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := c.admin.GetUser(ctx, userID.String())
	if err != nil {
		return "", errors.Wrap(err, "supabase get user")
	}
	if u == nil {
		return "", nil
	}
	return strings.TrimSpace(u.Email), nil
}
