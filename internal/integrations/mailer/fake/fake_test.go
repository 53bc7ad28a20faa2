package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/BearBump/EuroLink/internal/integrations/mailer"
	"github.com/stretchr/testify/require"
)

func TestMailer_RecordsAndFails(t *testing.T) {
	m := New()
	ctx := context.Background()

	res, err := m.SendStatusEmail(ctx, mailer.StatusEmail{To: "a@b.c", Status: "Paid"})
	require.NoError(t, err)
	require.Equal(t, "fake-1", res.MessageID)

	m.FailWith(errors.New("down"))
	_, err = m.SendDriverAssignmentEmail(ctx, mailer.DriverAssignmentEmail{To: "d@e.f"})
	require.EqualError(t, err, "down")

	m.FailWith(nil)
	res, err = m.SendDriverAssignmentEmail(ctx, mailer.DriverAssignmentEmail{To: "d@e.f"})
	require.NoError(t, err)
	require.Equal(t, "fake-2", res.MessageID)

	require.Len(t, m.StatusEmails(), 1)
	require.Len(t, m.AssignmentEmails(), 1)
}
