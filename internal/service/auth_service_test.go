package service

import (
	"context"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*authService, UserService, *repotest.Store) {
	t.Helper()
	store := repotest.New()
	cfg := &config.Config{JWTSecret: "test-secret-with-enough-length-0000", JWTExpiry: 1}
	auth := NewAuthService(cfg, store.Users()).(*authService)
	return auth, NewUserService(store.Users()), store
}

func TestLoginIssuesToken(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	ctx := context.Background()

	created, err := users.Create(ctx, CreateUserInput{Name: "Ana", Email: "Ana@Camarpe.com", Password: "segredo", Role: types.RoleComercial})
	require.NoError(t, err)

	user, token, err := auth.Login(ctx, "ana@camarpe.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, types.RoleComercial, claims.Role)
	assert.Equal(t, "Ana", claims.Name)

	_, _, err = auth.Login(ctx, "ana@camarpe.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	ctx := context.Background()

	created, err := users.Create(ctx, CreateUserInput{Name: "Bia", Email: "bia@camarpe.com", Password: "segredo", Role: types.RoleProducao})
	require.NoError(t, err)
	_, err = users.Update(ctx, admin, created.ID, UpdateUserInput{Active: ptr(false)})
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "bia@camarpe.com", "segredo")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserRules(t *testing.T) {
	auth, users, _ := newAuthFixture(t)
	ctx := context.Background()

	me, err := users.Create(ctx, CreateUserInput{Name: "Admin", Email: "admin@camarpe.com", Password: "segredo", Role: types.RoleAdmin})
	require.NoError(t, err)
	self := Actor{UserID: me.ID, Role: types.RoleAdmin}

	_, err = users.Create(ctx, CreateUserInput{Name: "Outro", Email: "admin@camarpe.com", Password: "segredo", Role: types.RoleAdmin})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = users.Create(ctx, CreateUserInput{Name: "Curto", Email: "c@camarpe.com", Password: "123", Role: types.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidInput)

	role := types.RoleComercial
	_, err = users.Update(ctx, self, me.ID, UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = users.Update(ctx, self, me.ID, UpdateUserInput{Active: ptr(false)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, auth.ChangePassword(ctx, me.ID, "segredo", "novasenha"))
	_, _, err = auth.Login(ctx, "admin@camarpe.com", "novasenha")
	require.NoError(t, err)
	assert.ErrorIs(t, auth.ChangePassword(ctx, me.ID, "errada", "outrasenha"), ErrInvalidInput)
}
