package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newResetFixture(t *testing.T, mailer Mailer) (*passwordResetService, *authService, *repotest.Store, *repository.User) {
	t.Helper()
	auth, users, store := newAuthFixture(t)
	user, err := users.Create(context.Background(), CreateUserInput{
		Name: "Ana", Email: "ana@camarpe.com.br", Password: "antiga", Role: types.RoleComercial,
	})
	require.NoError(t, err)

	cfg := &config.Config{FrontendURL: "https://app.camarpe.com.br/"}
	svc := NewPasswordResetService(store, mailer, cfg, zap.NewNop()).(*passwordResetService)
	return svc, auth, store, user
}

func tokenFrom(t *testing.T, link string) string {
	t.Helper()
	_, token, ok := strings.Cut(link, "/redefinir-senha?token=")
	require.True(t, ok, link)
	return token
}

func TestPasswordResetRoundTrip(t *testing.T) {
	mailer := &recordingMailer{configured: true}
	svc, auth, store, user := newResetFixture(t, mailer)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "  ANA@camarpe.com.br "))
	require.Len(t, mailer.resets, 1)
	assert.Equal(t, []string{"ana@camarpe.com.br"}, mailer.resetTo)
	assert.Equal(t, "Ana", mailer.resets[0].Name)
	assert.True(t, strings.HasPrefix(mailer.resets[0].ResetURL, "https://app.camarpe.com.br/redefinir-senha?token="))

	token := tokenFrom(t, mailer.resets[0].ResetURL)
	stored := store.AllPasswordResets()
	require.Len(t, stored, 1)
	assert.Equal(t, user.ID, stored[0].UserID)
	assert.NotEqual(t, token, stored[0].TokenHash)

	require.NoError(t, svc.Reset(ctx, token, "nova-senha"))
	assert.Empty(t, store.AllPasswordResets())

	_, _, err := auth.Login(ctx, "ana@camarpe.com.br", "nova-senha")
	require.NoError(t, err)
	_, _, err = auth.Login(ctx, "ana@camarpe.com.br", "antiga")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// the link works once
	err = svc.Reset(ctx, token, "outra-senha")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Link inválido ou expirado. Solicite um novo.", verr.Message)
}

func TestPasswordResetRequestReplacesEarlierLink(t *testing.T) {
	mailer := &recordingMailer{configured: true}
	svc, _, store, _ := newResetFixture(t, mailer)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "ana@camarpe.com.br"))
	require.NoError(t, svc.Request(ctx, "ana@camarpe.com.br"))
	require.Len(t, mailer.resets, 2)
	assert.Len(t, store.AllPasswordResets(), 1)

	first := tokenFrom(t, mailer.resets[0].ResetURL)
	assert.ErrorIs(t, svc.Reset(ctx, first, "nova-senha"), ErrInvalidInput)
	assert.NoError(t, svc.Reset(ctx, tokenFrom(t, mailer.resets[1].ResetURL), "nova-senha"))
}

func TestPasswordResetRequestIsSilentForUnknownUsers(t *testing.T) {
	mailer := &recordingMailer{configured: true}
	svc, _, store, user := newResetFixture(t, mailer)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "ninguem@camarpe.com.br"))

	user.Active = false
	require.NoError(t, store.Users().Update(ctx, user))
	require.NoError(t, svc.Request(ctx, "ana@camarpe.com.br"))

	assert.Empty(t, mailer.resets)
	assert.Empty(t, store.AllPasswordResets())

	err := svc.Request(ctx, "ana")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "E-mail inválido", verr.Message)
}

func TestPasswordResetStoresLinkWithoutSMTP(t *testing.T) {
	svc, _, store, _ := newResetFixture(t, &recordingMailer{})
	require.NoError(t, svc.Request(context.Background(), "ana@camarpe.com.br"))
	assert.Len(t, store.AllPasswordResets(), 1)
}

func TestPasswordResetRejectsExpiredLinkAndShortPassword(t *testing.T) {
	mailer := &recordingMailer{configured: true}
	svc, _, store, _ := newResetFixture(t, mailer)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "ana@camarpe.com.br"))
	token := tokenFrom(t, mailer.resets[0].ResetURL)

	err := svc.Reset(ctx, token, "12345")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Senha deve ter no mínimo 6 caracteres", verr.Message)

	svc.now = func() time.Time { return time.Now().Add(resetTokenTTL + time.Minute) }
	assert.ErrorIs(t, svc.Reset(ctx, token, "nova-senha"), ErrInvalidInput)
	assert.Len(t, store.AllPasswordResets(), 1)
}

func TestPasswordResetRollsBackWhenTokenDeleteFails(t *testing.T) {
	mailer := &recordingMailer{configured: true}
	svc, auth, store, _ := newResetFixture(t, mailer)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "ana@camarpe.com.br"))
	store.Fail = func(op string) error {
		if op == "passwordResets.Delete" {
			return errors.New("boom")
		}
		return nil
	}
	require.Error(t, svc.Reset(ctx, tokenFrom(t, mailer.resets[0].ResetURL), "nova-senha"))

	_, _, err := auth.Login(ctx, "ana@camarpe.com.br", "antiga")
	assert.NoError(t, err)
}
