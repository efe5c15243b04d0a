package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/email"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ============================================
// Password Reset Service
// ============================================

const resetTokenTTL = time.Hour

// ResetRequestedMessage is returned for every reset request so the answer
// never tells whether the address exists.
const ResetRequestedMessage = "Se o e-mail existir, você receberá o link para redefinir a senha."

type PasswordResetService interface {
	Request(ctx context.Context, emailAddr string) error
	Reset(ctx context.Context, token, password string) error
}

type passwordResetService struct {
	store  repository.Store
	mailer Mailer
	cfg    *config.Config
	now    func() time.Time
	log    *zap.Logger
}

func NewPasswordResetService(store repository.Store, mailer Mailer, cfg *config.Config, log *zap.Logger) PasswordResetService {
	return &passwordResetService{
		store:  store,
		mailer: mailer,
		cfg:    cfg,
		now:    time.Now,
		log:    log.With(zap.String("component", "password-reset")),
	}
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Request issues a one hour reset link for an active user and replaces any
// earlier one. Unknown or inactive addresses succeed silently.
func (s *passwordResetService) Request(ctx context.Context, emailAddr string) error {
	addr := strings.ToLower(strings.TrimSpace(emailAddr))
	if !validEmail(addr) {
		return invalid("E-mail inválido")
	}
	user, err := s.store.Users().FindByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if user == nil || !user.Active {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	if err := s.store.PasswordResets().Replace(ctx, &repository.PasswordReset{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		ExpiresAt: s.now().Add(resetTokenTTL),
	}); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/redefinir-senha?token=" + token
	if s.mailer == nil || !s.mailer.Configured() {
		if !s.cfg.IsProduction() {
			s.log.Info("password reset link", zap.String("user_id", user.ID), zap.String("link", link))
		} else {
			s.log.Warn("smtp not configured, reset link not sent", zap.String("user_id", user.ID))
		}
		return nil
	}
	if err := s.mailer.SendPasswordReset(user.Email, email.PasswordResetData{
		Name:      user.Name,
		ResetURL:  link,
		ExpiresIn: "1 hora",
	}); err != nil {
		s.log.Error("failed to send reset e-mail", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// Reset sets a new password from a valid link and consumes the link.
func (s *passwordResetService) Reset(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" || len(password) < 6 {
		return invalid("Senha deve ter no mínimo 6 caracteres")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.store.WithTx(ctx, func(tx repository.Store) error {
		reset, err := tx.PasswordResets().FindByTokenHash(ctx, hashResetToken(token))
		if err != nil {
			return err
		}
		if reset == nil || reset.ExpiresAt.Before(s.now()) {
			return invalid("Link inválido ou expirado. Solicite um novo.")
		}
		user, err := tx.Users().FindByID(ctx, reset.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return invalid("Link inválido ou expirado. Solicite um novo.")
		}
		user.PasswordHash = string(hash)
		if err := tx.Users().Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return tx.PasswordResets().Delete(ctx, reset.ID)
	})
}
