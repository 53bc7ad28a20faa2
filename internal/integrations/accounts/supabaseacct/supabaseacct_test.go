package supabaseacct

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nedpals/supabase-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminMock struct {
	mock.Mock
}

func (m *adminMock) GetUser(ctx context.Context, userID string) (*supabase.AdminUser, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*supabase.AdminUser)
	return u, args.Error(1)
}

func TestNew_MissingConfig(t *testing.T) {
	require.Nil(t, New("", "key"))
	require.Nil(t, New("https://x.supabase.co", ""))
}

func TestAccountEmail(t *testing.T) {
	am := &adminMock{}
	c := newWithAdmin(am)
	id := uuid.New()

	am.On("GetUser", mock.Anything, id.String()).Return(&supabase.AdminUser{Email: " owner@example.com "}, nil).Once()

	email, err := c.AccountEmail(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "owner@example.com", email)
	am.AssertExpectations(t)
}

func TestAccountEmail_Error(t *testing.T) {
	am := &adminMock{}
	c := newWithAdmin(am)

	am.On("GetUser", mock.Anything, mock.Anything).Return(nil, errors.New("401")).Once()

	_, err := c.AccountEmail(context.Background(), uuid.New())
	require.Error(t, err)
	require.Contains(t, err.Error(), "supabase get user")
}
