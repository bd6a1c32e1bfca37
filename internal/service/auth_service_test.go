package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/store/memory"
	appErrors "github.com/pkdx/pkdb-api/pkg/errors"
)

func newAuthFixture() (*AuthService, *memory.Store) {
	st := memory.New()
	svc := NewAuthService(st, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "pkdb-test",
	})
	return svc, st
}

func TestRegisterDefaultsToViewer(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterAcceptsExplicitRole(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "rob@example.com",
		Password: "secret123",
		Role:     models.RoleResearcher,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleResearcher, user.Role)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "eve@example.com",
		Password: "secret123",
		Role:     models.Role("superuser"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "different456",
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, "DUPLICATE_EMAIL", appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestRegisterStoresNormalizedEmail(t *testing.T) {
	svc, st := newAuthFixture()

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Alice@Example.COM",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	// The stored record matches an exact lowercase lookup, so backends with
	// a plain equality query and unique constraint behave the same as the
	// case-insensitive one.
	stored, err := st.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)

	// Login lowercases its input too.
	resp, err := svc.Token(context.Background(), models.TokenRequest{
		Email:    "ALICE@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestTokenIssuesBearer(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
		Role:     models.RoleResearcher,
	})
	require.NoError(t, err)

	resp, err := svc.Token(context.Background(), models.TokenRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, models.RoleResearcher, claims.Role)
	assert.NotEmpty(t, claims.UserID)
}

func TestTokenInvalidPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Token(context.Background(), models.TokenRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestTokenUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Token(context.Background(), models.TokenRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, st := newAuthFixture()

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	resp, err := svc.Token(context.Background(), models.TokenRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	other := NewAuthService(st, nil, nil, AuthConfig{
		TokenSecret: "another-secret",
		TokenExpiry: time.Hour,
	})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestValidateTokenExpired(t *testing.T) {
	st := memory.New()
	svc := NewAuthService(st, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: -time.Minute,
		Issuer:      "pkdb-test",
	})

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	resp, err := svc.Token(context.Background(), models.TokenRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestTokenRoleIsIssuanceSnapshot(t *testing.T) {
	svc, st := newAuthFixture()

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	before, err := svc.Token(context.Background(), models.TokenRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = st.UpdateUserRole(context.Background(), user.ID, models.RoleResearcher)
	require.NoError(t, err)

	// The old token keeps the viewer snapshot until it expires.
	oldClaims, err := svc.ValidateToken(before.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, oldClaims.Role)

	after, err := svc.Token(context.Background(), models.TokenRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	newClaims, err := svc.ValidateToken(after.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleResearcher, newClaims.Role)
}
