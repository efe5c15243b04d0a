package handlers

import (
	"crypto/subtle"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/camarpe/camarpe-backend/internal/api/middleware"
	"github.com/camarpe/camarpe-backend/internal/importer"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadMemory = 32 << 20

// ============================================
// Dashboard
// ============================================

type DashboardHandler struct {
	*errorWriter
	dashboardService service.DashboardService
}

func (h *DashboardHandler) Get(c *gin.Context) {
	dashboard, err := h.dashboardService.Get(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ============================================
// Spreadsheet import
// ============================================

type ImportHandler struct {
	*errorWriter
	importService service.ImportService
}

// Upload - POST /import/planilhas (multipart, one field per sheet kind)
func (h *ImportHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(c, http.StatusBadRequest, "Envie as planilhas como multipart/form-data")
		return
	}

	files := make(map[importer.Kind]io.Reader, len(importer.Kinds))
	for _, kind := range importer.Kinds {
		header, err := c.FormFile(string(kind))
		if err != nil {
			continue
		}
		f, err := header.Open()
		if err != nil {
			h.log.Warn("failed to open upload", zap.String("field", string(kind)), zap.Error(err))
			respondError(c, http.StatusBadRequest, fmt.Sprintf("Não foi possível ler o arquivo %s", kind))
			return
		}
		defer f.Close()
		files[kind] = f
	}

	stats, err := h.importService.Import(c.Request.Context(), middleware.CurrentActor(c), files)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Template - GET /import/template?tipo= (defaults to clientes)
func (h *ImportHandler) Template(c *gin.Context) {
	kind := c.Query("tipo")
	if kind == "" {
		kind = string(importer.KindClients)
	}
	header, err := h.importService.Template(kind)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="modelo-%s.csv"`, kind))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(header))
}

// ============================================
// Scheduled alerts
// ============================================

type CronHandler struct {
	*errorWriter
	dailyAlerts service.DailyAlertService
	secret      string
}

// DailyAlerts - GET /cron/avisos. The secret is only enforced when set.
func (h *CronHandler) DailyAlerts(c *gin.Context) {
	if h.secret != "" {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
			respondError(c, http.StatusUnauthorized, "Não autorizado")
			return
		}
	}

	result, err := h.dailyAlerts.Run(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
