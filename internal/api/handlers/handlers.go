package handlers

import (
	"errors"
	"net/http"

	"github.com/camarpe/camarpe-backend/internal/config"
	"github.com/camarpe/camarpe-backend/internal/models"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Lead       *LeadHandler
	Project    *ProjectHandler
	CashFlow   *CashFlowHandler
	Stock      *StockHandler
	Suggestion *SuggestionHandler
	Credential *CredentialHandler
	Contact    *ContactHandler
	Company    *CompanyInfoHandler
	Dashboard  *DashboardHandler
	Import     *ImportHandler
	Cron       *CronHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, cfg *config.Config, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	errs := &errorWriter{log: log}

	return &Handlers{
		Auth: &AuthHandler{
			authService:  services.Auth,
			resetService: services.Reset,
			secureCookie: cfg.IsProduction(),
			errorWriter:  errs,
		},
		User:       &UserHandler{userService: services.User, errorWriter: errs},
		Lead:       &LeadHandler{leadService: services.Lead, projectService: services.Project, errorWriter: errs},
		Project:    &ProjectHandler{projectService: services.Project, paymentService: services.Payment, errorWriter: errs},
		CashFlow:   &CashFlowHandler{cashFlowService: services.CashFlow, errorWriter: errs},
		Stock:      &StockHandler{stockService: services.Stock, errorWriter: errs},
		Suggestion: &SuggestionHandler{suggestionService: services.Suggestion, errorWriter: errs},
		Credential: &CredentialHandler{credentialService: services.Credential, errorWriter: errs},
		Contact:    &ContactHandler{contactService: services.Contact, errorWriter: errs},
		Company:    &CompanyInfoHandler{companyInfoService: services.CompanyInfo, errorWriter: errs},
		Dashboard:  &DashboardHandler{dashboardService: services.Dashboard, errorWriter: errs},
		Import:     &ImportHandler{importService: services.Import, errorWriter: errs},
		Cron:       &CronHandler{dailyAlerts: services.DailyAlerts, secret: cfg.CronSecret, errorWriter: errs},
	}
}

// ============================================
// Error mapping
// ============================================

type errorWriter struct {
	log *zap.Logger
}

func (w *errorWriter) handleServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "Dados inválidos")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "E-mail ou senha inválidos")
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidToken):
		respondError(c, http.StatusUnauthorized, "Não autenticado")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "Acesso negado")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "Não encontrado")
	case errors.Is(err, service.ErrUserExists):
		respondError(c, http.StatusConflict, "E-mail já cadastrado")
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, "Registro já existe")
	case errors.Is(err, service.ErrNotConfigured):
		w.log.Error("feature not configured", zap.String("path", c.Request.URL.Path), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Chave de criptografia não configurada")
	default:
		w.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Erro interno")
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: message})
}

// bindJSON writes 400 and returns false when the body does not decode.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Corpo da requisição inválido")
		return false
	}
	return true
}
