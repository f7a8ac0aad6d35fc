package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/handler"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
)

// RegisterAdmin registers the admin console endpoints under /v1/admin.
// All routes require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret, adminRole string) {
	g := e.Group(
		"/v1/admin",
		middleware.BearerAuth(jwtSecret),
		middleware.RequireRole(adminRole),
	)

	// ---- Submission ledger ----
	// local data: only signature-checked tokens
	verified := middleware.RequireVerified()
	g.GET("/submissions", a.ListSubmissions, verified)
	g.GET("/submissions/:id", a.GetSubmission, verified)

	// ---- Bookings ----
	g.GET("/bookings", a.ListBookings)
	g.PUT("/bookings/:id/status", a.UpdateBookingStatus)

	// ---- Catalog, users and bookings CRUD ----
	g.GET("/:kind", a.List)
	g.POST("/:kind", a.Create)
	g.GET("/:kind/:id", a.Get)
	g.PUT("/:kind/:id", a.Update)
	g.PATCH("/:kind/:id", a.Update)
	g.DELETE("/:kind/:id", a.Delete)
}
