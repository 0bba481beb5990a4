package users

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"orderflow/internal/apperror"
	"orderflow/internal/database/dbtest"
	"orderflow/internal/database/models"
	"orderflow/internal/utils"
)

func newTestService(t *testing.T) (*Service, *utils.JWTManager) {
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	svc := NewService(dbtest.Open(t), jwt, nil, zerolog.Nop())
	svc.cost = bcrypt.MinCost
	return svc, jwt
}

func TestRegisterAndLogin(t *testing.T) {
	svc, jwt := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Email:    "Jane@Example.com",
		Password: "secret1",
		Name:     "Jane",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, models.RoleCustomer, res.User.Role)
	assert.NotEqual(t, "secret1", res.User.Password)

	claims, err := jwt.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserId)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	login, err := svc.Authenticate(ctx, LoginInput{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	got, err := svc.Get(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "A@B.com", Password: "secret2", Name: "B"})
	de, ok := apperror.IsDomain(err)
	require.True(t, ok)
	assert.Equal(t, "Email already registered", de.Message)
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, LoginInput{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.EqualError(t, err, MsgInvalidCredentials)

	_, err = svc.Authenticate(ctx, LoginInput{Email: "nobody@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestSeedAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.SeedAdmin(ctx, "admin@orderflow.com", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.SeedAdmin(ctx, "admin@orderflow.com", "admin123")
	require.NoError(t, err)
	assert.False(t, created)

	res, err := svc.Authenticate(ctx, LoginInput{Email: "admin@orderflow.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
