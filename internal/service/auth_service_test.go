package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-that-is-long-enough-1234"

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("rahasia123")
	require.NoError(t, err)

	admin := &model.AdminUser{ID: 1, Email: "admin@toko.id", PasswordHash: hash, Role: model.RoleAdmin}
	staff := &model.AdminUser{ID: 2, Email: "staff@toko.id", PasswordHash: hash, Role: "staff"}

	tests := []struct {
		name    string
		req     *model.LoginRequest
		user    *model.AdminUser
		wantErr error
	}{
		{name: "success", req: &model.LoginRequest{Email: "admin@toko.id", Password: "rahasia123"}, user: admin},
		{name: "wrong password", req: &model.LoginRequest{Email: "admin@toko.id", Password: "salah"}, user: admin, wantErr: model.ErrInvalidCredentials},
		{name: "unknown user", req: &model.LoginRequest{Email: "admin@toko.id", Password: "rahasia123"}, wantErr: model.ErrInvalidCredentials},
		{name: "not admin", req: &model.LoginRequest{Email: "staff@toko.id", Password: "rahasia123"}, user: staff, wantErr: model.ErrInvalidCredentials},
		{name: "missing password", req: &model.LoginRequest{Email: "admin@toko.id"}, wantErr: model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.user != nil {
				repo.On("GetByEmail", ctx, tt.req.Email).Return(tt.user, nil)
			} else {
				repo.On("GetByEmail", ctx, tt.req.Email).Return(nil, nil)
			}
			svc := NewAuthService(repo, testSecret, time.Hour, zerolog.Nop())

			session, err := svc.Login(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, session.Token)
			assert.Equal(t, admin.Email, session.User.Email)
			assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

			claims, err := svc.Authenticate(session.Token)
			require.NoError(t, err)
			assert.Equal(t, int64(1), claims.UserID)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), testSecret, time.Hour, zerolog.Nop())

	staffToken, _, err := auth.GenerateToken(testSecret, 2, "staff@toko.id", "staff", time.Hour, time.Now())
	require.NoError(t, err)
	expired, _, err := auth.GenerateToken(testSecret, 1, "admin@toko.id", model.RoleAdmin, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage": "not-a-token",
		"staff":   staffToken,
		"expired": expired,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(token)
			assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		})
	}
}
