package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-enrollment-server/internal/model"
	"go-enrollment-server/internal/repository/memory"
)

func TestAccountService_Register(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	svc := NewAccountService(store.Accounts(), time.Second)

	result, created, err := svc.Register(ctx, model.Account{Email: " New@Example.com ", Name: "New", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, result.Acknowledged)
	assert.NotEmpty(t, result.InsertedID)

	account, err := store.Accounts().FindByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, account.Role, "client supplied role must be ignored")

	_, created, err = svc.Register(ctx, model.Account{Email: "new@example.com"})
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = svc.Register(ctx, model.Account{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	accounts, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}
