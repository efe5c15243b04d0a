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
// Lead Handler
// ============================================

type LeadHandler struct {
	*errorWriter
	leadService    service.LeadService
	projectService service.ProjectService
}

func leadFilter(c *gin.Context) repository.LeadFilter {
	search := c.Query("search")
	if search == "" {
		search = c.Query("q")
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repository.LeadFilter{
		Status:  types.LeadStatus(c.Query("status")),
		Channel: types.LeadChannel(c.Query("origem")),
		Search:  search,
		Limit:   limit,
	}
}

// List - GET /leads
func (h *LeadHandler) List(c *gin.Context) {
	leads, err := h.leadService.List(c.Request.Context(), leadFilter(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// Create - POST /leads
func (h *LeadHandler) Create(c *gin.Context) {
	var input service.CreateLeadInput
	if !bindJSON(c, &input) {
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// Get - GET /leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.leadService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Update - PATCH /leads/:id
func (h *LeadHandler) Update(c *gin.Context) {
	var input service.UpdateLeadInput
	if !bindJSON(c, &input) {
		return
	}

	lead, err := h.leadService.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lead)
}

// Delete - DELETE /leads/:id
func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.leadService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// ListActivities - GET /leads/:id/atividades
func (h *LeadHandler) ListActivities(c *gin.Context) {
	activities, err := h.leadService.ListActivities(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

// AddActivity - POST /leads/:id/atividades
func (h *LeadHandler) AddActivity(c *gin.Context) {
	var input service.AddActivityInput
	if !bindJSON(c, &input) {
		return
	}

	activity, err := h.leadService.AddActivity(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// Convert - POST /leads/:id/converter
func (h *LeadHandler) Convert(c *gin.Context) {
	var input service.ConvertLeadInput
	if !bindJSON(c, &input) {
		return
	}

	project, err := h.projectService.ConvertLead(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// Export - GET /export/leads
func (h *LeadHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.leadService.Export(c.Request.Context(), leadFilter(c), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
