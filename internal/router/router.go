package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/school-records/internal/config"
	"github.com/iliyamo/school-records/internal/handler"
	"github.com/iliyamo/school-records/internal/middleware"
	"github.com/iliyamo/school-records/internal/model"
)

// Register wires every route of the service onto the provided Echo
// instance. The authorization gate runs as middleware, so no gated handler
// is reachable without a verified token of an allowed role.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, a *handler.AuthHandler, acc *handler.AccountHandler, adm *handler.AdminHandler) {
	e.GET("/healthz", handler.Health)

	// Token issuance and provisioning. Signup carries OptionalJWT so the
	// bootstrap admin can be created without a token while authenticated
	// callers are still named in the audit trail.
	auth := e.Group("/v1/auth")
	auth.POST("/login", a.Login)
	auth.POST("/signup", acc.Signup, middleware.OptionalJWT(cfg.JWTSecret))

	// Admin surface: every route below requires a valid bearer token whose
	// embedded role is admin.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/results/upload", adm.UploadResults,
		middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	admin.GET("/students", adm.ListStudents)
	admin.GET("/students/:id/report", adm.StudentReport)
	admin.GET("/analytics", adm.Analytics)
	admin.GET("/logs", adm.ListLogs)
}
