package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/clientdesk/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Customer *apiHandler.CustomerHandler
	Import   *apiHandler.ImportHandler
	Settings *apiHandler.SettingsHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Imports and conflict resolution
	r.POST("/api/v1/imports", authMiddleware(handlers.Import.Run))
	r.POST("/api/v1/imports/marketplace/sync", authMiddleware(handlers.Import.SyncMarketplace))
	r.GET("/api/v1/imports/conflicts", authMiddleware(handlers.Import.PendingConflicts))
	r.POST("/api/v1/imports/conflicts/{id}/resolve", authMiddleware(handlers.Import.ResolveConflict))
	r.GET("/api/v1/imports/history", authMiddleware(handlers.Import.History))

	// Customers
	r.GET("/api/v1/customers", authMiddleware(handlers.Customer.List))
	r.GET("/api/v1/customers/{id}", authMiddleware(handlers.Customer.Get))
	r.DELETE("/api/v1/customers/{id}", authMiddleware(handlers.Customer.Delete))

	// Settings
	r.GET("/api/v1/settings/thresholds", authMiddleware(handlers.Settings.GetThresholds))
	r.PUT("/api/v1/settings/thresholds", authMiddleware(handlers.Settings.PutThresholds))

	return r
}
