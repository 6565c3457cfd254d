package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

type revocationLog struct {
	ids map[string]time.Time
}

func (r *revocationLog) Revoke(_ context.Context, id string, exp time.Time) error {
	r.ids[id] = exp
	return nil
}

func (r *revocationLog) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := r.ids[id]
	return ok, nil
}

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryUserRepository, *revocationLog) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	revoked := &revocationLog{ids: map[string]time.Time{}}
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}, AuthDependencies{UserRepo: users, Revocations: revoked})
	return svc, users, revoked
}

func TestRegisterUser(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterInput{Username: " asha ", Password: "secret1", Email: "Asha <asha@example.com>"})
	require.NoError(t, err)
	assert.Equal(t, "asha", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)
	require.NotNil(t, user.Email)
	assert.Equal(t, "asha@example.com", *user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = svc.RegisterUser(ctx, RegisterInput{Username: "asha", Password: "another1"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = svc.RegisterUser(ctx, RegisterInput{Username: "", Password: "short"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.RegisterUser(ctx, RegisterInput{Username: "bob", Password: "secret1", Email: "nope"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestAuthenticateAndLogin(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	registered, err := svc.RegisterUser(ctx, RegisterInput{Username: "ravi", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ravi", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	user, token, exp, err := svc.Login(ctx, "ravi", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.Subject)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, revoked := newAuthService(t)
	exp := time.Now().Add(time.Minute)
	principal := &auth.Principal{User: &domain.User{ID: "u"}, TokenID: "jti-1", ExpiresAt: exp}

	require.NoError(t, svc.Logout(context.Background(), principal))
	assert.Equal(t, exp, revoked.ids["jti-1"])

	require.NoError(t, svc.Logout(context.Background(), nil))
}

func TestEnsureAdmin(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin-pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin-pass"), "second run is a no-op")

	admin, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = svc.Authenticate(ctx, "admin", "admin-pass")
	assert.NoError(t, err)
}
