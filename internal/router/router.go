// Package router registers the HTTP routes of the kiosk service.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/prepaid-kiosk/internal/handler"
	"github.com/iliyamo/prepaid-kiosk/internal/middleware"
	"github.com/iliyamo/prepaid-kiosk/internal/model"
)

// RegisterRoutes exposes health and metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers login and token endpoints under /v1/auth and the
// authenticated /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin, model.RoleUser))
}

// RegisterPublic registers the catalog listing behind the response cache
// and the one-shot balance lookup behind the rate limiter.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache, limit echo.MiddlewareFunc) {
	e.GET("/v1/items", p.ListItems, cache)
	e.GET("/v1/balance/:display_id", p.Balance, limit)
}

// RegisterKiosk registers the booking sessions. Kiosks run unattended and
// unauthenticated, so every route is rate limited.
func RegisterKiosk(e *echo.Echo, k *handler.KioskHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/kiosk/sessions", limit)
	g.POST("", k.Create)
	g.GET("/:id", k.Get)
	g.DELETE("/:id", k.Delete)
	g.PUT("/:id/identifier", k.SetIdentifier)
	g.POST("/:id/lookup/retry", k.RetryLookup)
	g.PUT("/:id/selection", k.Select)
	g.PUT("/:id/quantity", k.SetQuantity)
	g.POST("/:id/quantity/increment", k.Increment)
	g.POST("/:id/quantity/decrement", k.Decrement)
	g.POST("/:id/book", k.Book)
}

// Admin groups the staff handlers.
type Admin struct {
	Payments *handler.PaymentHandler
	Members  *handler.MemberHandler
	Items    *handler.ItemHandler
	Roles    *handler.RoleHandler
}

// RegisterAdmin registers the staff routes under /v1/admin, reserved to
// ADMIN.
func RegisterAdmin(e *echo.Echo, a Admin, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))

	p := g.Group("/payment-sessions")
	p.POST("", a.Payments.Create)
	p.GET("/:id", a.Payments.Get)
	p.DELETE("/:id", a.Payments.Delete)
	p.PUT("/:id/identifier", a.Payments.SetIdentifier)
	p.POST("/:id/lookup/retry", a.Payments.RetryLookup)
	p.PUT("/:id/amount", a.Payments.SetAmount)
	p.POST("/:id/quick/:units", a.Payments.Quick)
	p.PUT("/:id/method", a.Payments.SetMethod)
	p.POST("/:id/submit", a.Payments.Submit)

	g.GET("/members", a.Members.Search)
	g.POST("/members", a.Members.Upsert)
	g.PATCH("/members/:id/active", a.Members.SetActive)

	g.GET("/items", a.Items.List)
	g.POST("/items", a.Items.Create)
	g.PUT("/items/:id", a.Items.Update)
	g.PATCH("/items/:id/active", a.Items.SetActive)

	g.PUT("/roles", a.Roles.SetRole)
}
