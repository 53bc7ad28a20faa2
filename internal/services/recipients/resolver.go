package recipients

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ProfileEmails reads the email stored on the application profile.
type ProfileEmails interface {
	ProfileEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// AccountEmails reads the email of the auth-provider account.
type AccountEmails interface {
	AccountEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// Resolver finds where to send mail for a user: the profile email first, then
// the auth account email. Either source may be nil.
type Resolver struct {
	profiles ProfileEmails
	accounts AccountEmails
}

func New(profiles ProfileEmails, accounts AccountEmails) *Resolver {
	return &Resolver{profiles: profiles, accounts: accounts}
}

// ResolveRecipientEmail returns "" with a nil error when neither source knows
// an address. Source errors are returned only when no address was found.
func (r *Resolver) ResolveRecipientEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var errs error

	if r.profiles != nil {
		email, err := r.profiles.ProfileEmail(ctx, userID)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "profile email"))
		} else if email = strings.TrimSpace(email); email != "" {
			return email, nil
		}
	}

	if r.accounts != nil {
		email, err := r.accounts.AccountEmail(ctx, userID)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "account email"))
		} else if email = strings.TrimSpace(email); email != "" {
			return email, nil
		}
	}

	return "", errs
}
