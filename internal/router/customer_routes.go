package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/handler"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
)

// RegisterCustomer registers the signed-in booking endpoints under
// /v1/bookings. Every route requires a bearer token; the mutating ones are
// additionally metered by submitLimit, a per-user bucket tighter than the
// global one.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, submitLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/bookings", middleware.BearerAuth(jwtSecret))

	g.POST("/car", h.BookCar, submitLimit)
	g.POST("/hotel", h.BookHotel, submitLimit)
	g.POST("/flight", h.BookFlight, submitLimit)
	g.POST("/tour", h.BookTour, submitLimit)

	// "mine" is registered before ":id" only for readability; echo prefers
	// static segments regardless of order.
	g.GET("/mine", h.ListMine)
	g.GET("/:id", h.Get)
	g.POST("/:id/pay", h.Pay, submitLimit)
	g.POST("/:id/cancel", h.Cancel, submitLimit)
}
