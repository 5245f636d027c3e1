package auth_test

import (
	"context"
	"testing"

	"github.com/plateful/recipebox/internal/auth"
	"github.com/plateful/recipebox/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*auth.Service, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	service := auth.NewService(db, testutil.CreateTestJWTService())
	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	return service, cleanup
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"lowercases domain", "Test2@Example.com", "Test2@example.com"},
		{"preserves local part casing", "UPPER@EXAMPLE.COM", "UPPER@example.com"},
		{"already normalized is a no-op", "test@example.com", "test@example.com"},
		{"no at sign left alone", "not-an-email", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.NormalizeEmail(tt.email))
			// Idempotent
			assert.Equal(t, tt.want, auth.NormalizeEmail(tt.want))
		})
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		resp, err := service.Register(ctx, auth.RegisterInput{
			Email:    "new@example.com",
			Password: "secret123",
			Name:     "New User",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.NotZero(t, resp.User.ID)
		assert.True(t, resp.User.IsActive)
		assert.False(t, resp.User.IsStaff)
		assert.NotEqual(t, "secret123", resp.User.PasswordHash)
		assert.True(t, auth.CheckPassword("secret123", resp.User.PasswordHash))
	})

	t.Run("normalizes email domain", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		resp, err := service.Register(ctx, auth.RegisterInput{
			Email:    "Chef@KITCHEN.example.COM",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.Equal(t, "Chef@kitchen.example.com", resp.User.Email)
	})

	t.Run("rejects empty email", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		_, err := service.Register(ctx, auth.RegisterInput{Password: "secret123"})
		assert.ErrorIs(t, err, auth.ErrEmailRequired)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		_, err := service.Register(ctx, auth.RegisterInput{
			Email:    "dupe@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)

		_, err = service.Register(ctx, auth.RegisterInput{
			Email:    "dupe@example.com",
			Password: "other456",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestService_CreateSuperuser(t *testing.T) {
	service, cleanup := newTestService(t)
	defer cleanup()

	user, err := service.CreateSuperuser(context.Background(), "admin@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("register then login succeeds", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		_, err := service.Register(ctx, auth.RegisterInput{
			Email:    "login@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)

		resp, err := service.Login(ctx, auth.LoginInput{
			Email:    "login@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "login@example.com", resp.User.Email)
	})

	t.Run("wrong password and missing user fail identically", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		_, err := service.Register(ctx, auth.RegisterInput{
			Email:    "login@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)

		_, wrongPass := service.Login(ctx, auth.LoginInput{
			Email:    "login@example.com",
			Password: "wrong",
		})
		_, noUser := service.Login(ctx, auth.LoginInput{
			Email:    "ghost@example.com",
			Password: "secret123",
		})

		assert.ErrorIs(t, wrongPass, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, noUser, auth.ErrInvalidCredentials)
	})

	t.Run("login matches case-insensitive domain", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		_, err := service.Register(ctx, auth.RegisterInput{
			Email:    "chef@Example.com",
			Password: "secret123",
		})
		require.NoError(t, err)

		_, err = service.Login(ctx, auth.LoginInput{
			Email:    "chef@EXAMPLE.COM",
			Password: "secret123",
		})
		assert.NoError(t, err)
	})
}

func TestService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("rehashes updated password", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		resp, err := service.Register(ctx, auth.RegisterInput{
			Email:    "update@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)

		newPassword := "newsecret456"
		updated, err := service.UpdateUser(ctx, resp.User, auth.UpdateInput{Password: &newPassword})
		require.NoError(t, err)

		fetched, err := service.GetUserByID(ctx, updated.ID)
		require.NoError(t, err)

		assert.NotEqual(t, newPassword, fetched.PasswordHash)
		assert.True(t, auth.CheckPassword(newPassword, fetched.PasswordHash))
		assert.False(t, auth.CheckPassword("secret123", fetched.PasswordHash))
	})

	t.Run("patches name without touching password", func(t *testing.T) {
		service, cleanup := newTestService(t)
		defer cleanup()

		resp, err := service.Register(ctx, auth.RegisterInput{
			Email:    "name@example.com",
			Password: "secret123",
			Name:     "Before",
		})
		require.NoError(t, err)

		name := "After"
		_, err = service.UpdateUser(ctx, resp.User, auth.UpdateInput{Name: &name})
		require.NoError(t, err)

		fetched, err := service.GetUserByID(ctx, resp.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "After", fetched.Name)
		assert.True(t, auth.CheckPassword("secret123", fetched.PasswordHash))
	})
}
