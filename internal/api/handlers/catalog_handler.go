package handlers

import (
	"net/http"

	"github.com/camarpe/camarpe-backend/internal/api/middleware"
	"github.com/camarpe/camarpe-backend/internal/models"
	"github.com/camarpe/camarpe-backend/internal/repository"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/gin-gonic/gin"
)

// ============================================
// Stock
// ============================================

type StockHandler struct {
	*errorWriter
	stockService service.StockService
}

func (h *StockHandler) List(c *gin.Context) {
	overview, err := h.stockService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *StockHandler) Create(c *gin.Context) {
	var input service.CreateStockItemInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := h.stockService.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *StockHandler) Update(c *gin.Context) {
	var input service.UpdateStockItemInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := h.stockService.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *StockHandler) Delete(c *gin.Context) {
	if err := h.stockService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// ============================================
// Suggestions
// ============================================

type SuggestionHandler struct {
	*errorWriter
	suggestionService service.SuggestionService
}

func (h *SuggestionHandler) List(c *gin.Context) {
	filter := repository.SuggestionFilter{
		Status:    types.SuggestionStatus(c.Query("status")),
		ProjectID: c.Query("projetoId"),
	}

	suggestions, err := h.suggestionService.List(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

func (h *SuggestionHandler) Create(c *gin.Context) {
	var input service.CreateSuggestionInput
	if !bindJSON(c, &input) {
		return
	}

	suggestion, err := h.suggestionService.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, suggestion)
}

// UpdateStatus - PATCH /sugestoes/:id
func (h *SuggestionHandler) UpdateStatus(c *gin.Context) {
	var req models.SuggestionStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	suggestion, err := h.suggestionService.UpdateStatus(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// ============================================
// Contacts
// ============================================

type ContactHandler struct {
	*errorWriter
	contactService service.ContactService
}

func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contactService.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandler) Create(c *gin.Context) {
	var input service.CreateContactInput
	if !bindJSON(c, &input) {
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contactService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// ============================================
// Credentials
// ============================================

type CredentialHandler struct {
	*errorWriter
	credentialService service.CredentialService
}

func (h *CredentialHandler) List(c *gin.Context) {
	credentials, err := h.credentialService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, credentials)
}

func (h *CredentialHandler) Create(c *gin.Context) {
	var input service.CredentialInput
	if !bindJSON(c, &input) {
		return
	}

	credential, err := h.credentialService.Create(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, credential)
}

func (h *CredentialHandler) Update(c *gin.Context) {
	var input service.UpdateCredentialInput
	if !bindJSON(c, &input) {
		return
	}

	credential, err := h.credentialService.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, credential)
}

// Reveal - GET /credenciais/:id/revelar
func (h *CredentialHandler) Reveal(c *gin.Context) {
	credential, err := h.credentialService.Reveal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, credential)
}

func (h *CredentialHandler) Delete(c *gin.Context) {
	if err := h.credentialService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// ============================================
// Company info
// ============================================

type CompanyInfoHandler struct {
	*errorWriter
	companyInfoService service.CompanyInfoService
}

// Get - GET /dados-institucionais
func (h *CompanyInfoHandler) Get(c *gin.Context) {
	info, err := h.companyInfoService.Get(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Update - PATCH /dados-institucionais
func (h *CompanyInfoHandler) Update(c *gin.Context) {
	var input service.UpdateCompanyInfoInput
	if !bindJSON(c, &input) {
		return
	}

	info, err := h.companyInfoService.Update(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
