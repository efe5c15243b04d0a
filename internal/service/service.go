package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/email"
	"github.com/camarpe/camarpe-backend/internal/importer"
	"github.com/camarpe/camarpe-backend/internal/notification"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/camarpe/camarpe-backend/internal/vault"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotConfigured      = errors.New("not configured")
)

// ValidationError carries a message meant for the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   types.Role
}

func (a Actor) ref() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

func authorize(actor Actor, allowed ...types.Role) error {
	if actor.UserID == "" {
		return ErrUnauthorized
	}
	if !types.HasRole(actor.Role, allowed...) {
		return ErrForbidden
	}
	return nil
}

// Cache is the read-through cache used by the dashboard. *db.RedisDB
// satisfies it.
type Cache interface {
	GetCache(ctx context.Context, key string, dest interface{}) error
	SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	InvalidateCache(ctx context.Context, pattern string) error
}

// Mailer sends the daily digest and reset links. *email.Service satisfies it.
type Mailer interface {
	Configured() bool
	SendDailyAlerts(to []string, data email.DailyAlertsData) error
	SendPasswordReset(to string, data email.PasswordResetData) error
}

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth        AuthService
	User        UserService
	Lead        LeadService
	Project     ProjectService
	Payment     PaymentService
	CashFlow    CashFlowService
	Stock       StockService
	Suggestion  SuggestionService
	Credential  CredentialService
	Contact     ContactService
	CompanyInfo CompanyInfoService
	Reset       PasswordResetService
	Dashboard   DashboardService
	Import      ImportService
	DailyAlerts DailyAlertService
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Notifier notification.Notifier
	Mailer   Mailer
	Cache    Cache
	Vault    *vault.Cipher
	Log      *zap.Logger
}

func NewServices(deps *ServiceDeps) *Services {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	store := deps.Repos.Store
	cacheTTL := time.Duration(deps.Config.DashboardCacheTTL) * time.Second

	dashboard := NewDashboardService(deps.Repos.Dashboard, deps.Cache, cacheTTL, log)

	return &Services{
		Auth:        NewAuthService(deps.Config, store.Users()),
		User:        NewUserService(store.Users()),
		Lead:        NewLeadService(store, deps.Repos.Dashboard),
		Project:     NewProjectService(store, deps.Repos.Dashboard, deps.Notifier, log),
		Payment:     NewPaymentService(store),
		CashFlow:    NewCashFlowService(store),
		Stock:       NewStockService(store),
		Suggestion:  NewSuggestionService(store),
		Credential:  NewCredentialService(store, deps.Vault),
		Contact:     NewContactService(store),
		CompanyInfo: NewCompanyInfoService(store),
		Reset:       NewPasswordResetService(store, deps.Mailer, deps.Config, log),
		Dashboard:   dashboard,
		Import:      NewImportService(importer.New(store, log), dashboard, log),
		DailyAlerts: NewDailyAlertService(deps.Repos.Dashboard, deps.Notifier, deps.Mailer, deps.Config, log),
	}
}

// ============================================
// Input helpers
// ============================================

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ParseDay accepts YYYY-MM-DD (taken as noon UTC so the calendar day
// survives any local offset) or an RFC 3339 timestamp.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == 10 {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, invalid("Data inválida: %s", s)
		}
		return t.Add(12 * time.Hour), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalid("Data inválida: %s", s)
	}
	return t, nil
}

func parseOptionalDay(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseMonth parses YYYY-MM into the half-open interval [start, end) in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("Parâmetro mes (YYYY-MM) inválido")
	}
	return t, t.AddDate(0, 1, 0), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
