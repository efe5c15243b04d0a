package api

import (
	"net/http"
	"time"

	"github.com/camarpe/camarpe-backend/internal/api/handlers"
	"github.com/camarpe/camarpe-backend/internal/api/middleware"
	"github.com/camarpe/camarpe-backend/internal/service"
	"github.com/camarpe/camarpe-backend/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps are the pieces the HTTP surface is assembled from.
type RouterDeps struct {
	Handlers       *handlers.Handlers
	Auth           service.AuthService
	AllowedOrigins []string
	// WebSocket and Health are optional.
	WebSocket gin.HandlerFunc
	Health    gin.HandlerFunc
	Log       *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := deps.Handlers

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	if deps.Health != nil {
		r.GET("/health", deps.Health)
	}

	api := r.Group("/api")

	// ============================================
	// Public routes
	// ============================================
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)
	api.POST("/auth/esqueci-senha", h.Auth.ForgotPassword)
	api.POST("/auth/redefinir-senha", h.Auth.ResetPassword)
	api.GET("/cron/avisos", h.Cron.DailyAlerts)
	if deps.WebSocket != nil {
		api.GET("/ws", deps.WebSocket)
	}

	// ============================================
	// Protected routes
	// ============================================
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth, log))

	all := middleware.RequireRoles(types.AllRoles...)
	sales := middleware.RequireRoles(types.SalesRoles...)
	management := middleware.RequireRoles(types.ManagementRoles...)
	admin := middleware.RequireRoles(types.AdminOnly...)

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/senha", h.Auth.ChangePassword)

	users := protected.Group("/usuarios", admin)
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.PATCH("/:id", h.User.Update)
	}

	leads := protected.Group("/leads", sales)
	{
		leads.GET("", h.Lead.List)
		leads.POST("", h.Lead.Create)
		leads.GET("/:id", h.Lead.Get)
		leads.PATCH("/:id", h.Lead.Update)
		leads.DELETE("/:id", h.Lead.Delete)
		leads.GET("/:id/atividades", h.Lead.ListActivities)
		leads.POST("/:id/atividades", h.Lead.AddActivity)
		leads.POST("/:id/converter", h.Lead.Convert)
	}
	protected.GET("/export/leads", sales, h.Lead.Export)
	protected.GET("/export/projetos", sales, h.Project.Export)

	// Field-level rules for PATCH live in the project service.
	projects := protected.Group("/projetos", all)
	{
		projects.GET("", h.Project.List)
		projects.GET("/kanban", h.Project.Kanban)
		projects.POST("", sales, h.Project.Create)
		projects.GET("/:id", h.Project.Get)
		projects.PATCH("/:id", h.Project.Update)
		projects.PATCH("/:id/status", h.Project.UpdateStatus)
		projects.GET("/:id/status-log", h.Project.StatusLog)
		projects.GET("/:id/checklist", h.Project.GetChecklist)
		projects.PATCH("/:id/checklist", h.Project.UpdateChecklist)
		projects.GET("/:id/pagamentos", sales, h.Project.ListPayments)
		projects.POST("/:id/pagamentos", sales, h.Project.CreatePayment)
	}

	cash := protected.Group("/fluxo-caixa", management)
	{
		cash.GET("", h.CashFlow.List)
		cash.GET("/relatorio", h.CashFlow.Report)
		cash.POST("", h.CashFlow.Create)
		cash.GET("/:id", h.CashFlow.Get)
		cash.PATCH("/:id", h.CashFlow.Update)
		cash.DELETE("/:id", h.CashFlow.Delete)
	}

	stock := protected.Group("/estoque", all)
	{
		stock.GET("", h.Stock.List)
		stock.POST("", sales, h.Stock.Create)
		stock.PATCH("/:id", sales, h.Stock.Update)
		stock.DELETE("/:id", sales, h.Stock.Delete)
	}

	suggestions := protected.Group("/sugestoes", all)
	{
		suggestions.GET("", h.Suggestion.List)
		suggestions.POST("", h.Suggestion.Create)
		suggestions.PATCH("/:id", h.Suggestion.UpdateStatus)
	}

	contacts := protected.Group("/contatos", all)
	{
		contacts.GET("", h.Contact.List)
		contacts.POST("", sales, h.Contact.Create)
		contacts.DELETE("/:id", sales, h.Contact.Delete)
	}

	credentials := protected.Group("/credenciais", admin)
	{
		credentials.GET("", h.Credential.List)
		credentials.POST("", h.Credential.Create)
		credentials.PATCH("/:id", h.Credential.Update)
		credentials.GET("/:id/revelar", h.Credential.Reveal)
		credentials.DELETE("/:id", h.Credential.Delete)
	}

	protected.GET("/dados-institucionais", all, h.Company.Get)
	protected.PATCH("/dados-institucionais", management, h.Company.Update)

	protected.GET("/dashboard", sales, h.Dashboard.Get)

	imports := protected.Group("/import", admin)
	{
		imports.POST("/planilhas", h.Import.Upload)
		imports.GET("/template", h.Import.Template)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rota não encontrada"})
	})

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
