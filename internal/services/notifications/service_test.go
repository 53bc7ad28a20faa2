package notifications

import (
	"context"
	"strings"
	"testing"

	"github.com/BearBump/EuroLink/internal/models"
	"github.com/BearBump/EuroLink/internal/storage/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestService_AdminMessageLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New(), nil)
	user := uuid.New()

	n, err := svc.SendAdminMessage(ctx, user, nil, "  Holiday schedule ", "No deliveries on 24 December.")
	require.NoError(t, err)
	require.Equal(t, "Holiday schedule", n.Title)
	require.Equal(t, models.NotificationTypeAdminMessage, n.Type)

	_, err = svc.SendAdminMessage(ctx, user, nil, "Second", "message")
	require.NoError(t, err)

	unread, err := svc.List(ctx, user, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	require.NoError(t, svc.MarkRead(ctx, user, n.ID))
	unread, err = svc.List(ctx, user, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)

	changed, err := svc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(1), changed)

	all, err := svc.List(ctx, user, false, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, n := range all {
		require.True(t, n.Read)
	}
}

func TestService_MarkRead_OtherUser(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New(), nil)

	n, err := svc.SendAdminMessage(ctx, uuid.New(), nil, "t", "m")
	require.NoError(t, err)

	err = svc.MarkRead(ctx, uuid.New(), n.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_SendAdminMessage_Validation(t *testing.T) {
	ctx := context.Background()
	svc := New(memstore.New(), nil)

	tests := []struct {
		name           string
		user           uuid.UUID
		title, message string
	}{
		{"no user", uuid.Nil, "t", "m"},
		{"blank title", uuid.New(), "  ", "m"},
		{"blank message", uuid.New(), "t", ""},
		{"long title", uuid.New(), strings.Repeat("x", maxTitleLen+1), "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendAdminMessage(ctx, tt.user, nil, tt.title, tt.message)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
