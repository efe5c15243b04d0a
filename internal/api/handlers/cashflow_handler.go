package handlers

import (
	"net/http"

	"github.com/camarpe/camarpe-backend/internal/api/middleware"
	"github.com/camarpe/camarpe-backend/internal/models"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/gin-gonic/gin"
)

type CashFlowHandler struct {
	*errorWriter
	cashFlowService service.CashFlowService
}

// List - GET /fluxo-caixa
func (h *CashFlowHandler) List(c *gin.Context) {
	filter := service.CashListFilter{
		Month:     c.Query("mes"),
		Type:      types.LedgerType(c.Query("tipo")),
		Status:    types.LedgerStatus(c.Query("status")),
		ProjectID: c.Query("projetoId"),
		Payables:  c.Query("contasAPagar") == "true",
	}

	entries, err := h.cashFlowService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Report - GET /fluxo-caixa/relatorio?mes=YYYY-MM
func (h *CashFlowHandler) Report(c *gin.Context) {
	report, err := h.cashFlowService.Report(c.Request.Context(), c.Query("mes"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *CashFlowHandler) Create(c *gin.Context) {
	var input service.CreateCashEntryInput
	if !bindJSON(c, &input) {
		return
	}

	entry, err := h.cashFlowService.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *CashFlowHandler) Get(c *gin.Context) {
	entry, err := h.cashFlowService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *CashFlowHandler) Update(c *gin.Context) {
	var input service.UpdateCashEntryInput
	if !bindJSON(c, &input) {
		return
	}

	entry, err := h.cashFlowService.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *CashFlowHandler) Delete(c *gin.Context) {
	if err := h.cashFlowService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}
