package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/handler"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
)

// RegisterRoutes registers the probes. They sit outside every limiter.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", h.Ready)
}

// RegisterPublic registers the catalog endpoints. No token is required; a
// token that is present is forwarded to the travel API. cache and limit are
// applied to the whole group and may be pass-through middlewares when Redis
// is not configured.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, jwtSecret string, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.OptionalBearer(jwtSecret), limit)

	g.GET("/cars", p.SearchCars, cache)
	g.GET("/cars/:id", p.GetCar, cache)
	g.GET("/hotels", p.SearchHotels, cache)
	g.GET("/hotels/:id", p.GetHotel, cache)
	// Availability depends on checkIn/checkOut, which are part of the
	// cache key like any other query parameter.
	g.GET("/hotels/:id/rooms", p.HotelRooms, cache)
	g.GET("/flights", p.SearchFlights, cache)
	g.GET("/flights/:id", p.GetFlight, cache)
	g.GET("/tours", p.SearchTours, cache)
	g.GET("/tours/:id", p.GetTour, cache)

	g.POST("/quote", p.Quote)
}
