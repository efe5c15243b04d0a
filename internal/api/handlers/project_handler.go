package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/camarpe/camarpe-backend/internal/api/middleware"
	"github.com/camarpe/camarpe-backend/internal/models"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/gin-gonic/gin"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	*errorWriter
	projectService service.ProjectService
	paymentService service.PaymentService
}

// List - GET /projetos
func (h *ProjectHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := repository.ProjectFilter{
		LeadID: c.Query("leadId"),
		Status: types.ProductionStatus(c.Query("statusProducao")),
		Search: c.Query("busca"),
		Order:  repository.ProjectOrder(c.Query("ordenar")),
		Page:   page,
		Limit:  limit,
	}

	var ok bool
	if filter.From, ok = periodBound(c, "periodoDe", false); !ok {
		return
	}
	if filter.To, ok = periodBound(c, "periodoAte", true); !ok {
		return
	}

	result, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// periodBound parses a YYYY-MM-DD query value; the upper bound covers the
// whole day.
func periodBound(c *gin.Context, key string, end bool) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Período inválido")
		return nil, false
	}
	if end {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, true
}

// Create - POST /projetos
func (h *ProjectHandler) Create(c *gin.Context) {
	var input service.CreateProjectInput
	if !bindJSON(c, &input) {
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Get - GET /projetos/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Update - PATCH /projetos/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var input service.UpdateProjectInput
	if !bindJSON(c, &input) {
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Export - GET /export/projetos?statusProducao=
func (h *ProjectHandler) Export(c *gin.Context) {
	status := types.ProductionStatus(c.Query("statusProducao"))
	var buf bytes.Buffer
	if err := h.projectService.Export(c.Request.Context(), status, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("projetos-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// UpdateStatus - PATCH /projetos/:id/status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	var req models.StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Transition(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Kanban - GET /projetos/kanban
func (h *ProjectHandler) Kanban(c *gin.Context) {
	columns, err := h.projectService.Kanban(c.Request.Context(), types.ProductionStatus(c.Query("status")))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, columns)
}

// StatusLog - GET /projetos/:id/status-log
func (h *ProjectHandler) StatusLog(c *gin.Context) {
	logs, err := h.projectService.StatusLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetChecklist - GET /projetos/:id/checklist
func (h *ProjectHandler) GetChecklist(c *gin.Context) {
	checklist, err := h.projectService.GetChecklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checklist)
}

// UpdateChecklist - PATCH /projetos/:id/checklist
func (h *ProjectHandler) UpdateChecklist(c *gin.Context) {
	var input service.UpdateChecklistInput
	if !bindJSON(c, &input) {
		return
	}

	checklist, err := h.projectService.UpdateChecklist(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checklist)
}

// ListPayments - GET /projetos/:id/pagamentos
func (h *ProjectHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// CreatePayment - POST /projetos/:id/pagamentos
func (h *ProjectHandler) CreatePayment(c *gin.Context) {
	var input service.CreatePaymentInput
	if !bindJSON(c, &input) {
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}
