package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
	"github.com/iliyamo/travel-booking-gateway/internal/service"
)

// BookingReader lists the caller's bookings.
type BookingReader interface {
	MyBookings(ctx context.Context, cred apiclient.Credential) ([]model.Booking, error)
}

// BookingHandler serves the customer booking routes. Every route sits
// behind BearerAuth.
type BookingHandler struct {
	Bookings *service.BookingService
	Payments *service.PaymentService
	Reader   BookingReader
}

// NewBookingHandler constructs a BookingHandler and panics if any dependency is nil.
func NewBookingHandler(bookings *service.BookingService, payments *service.PaymentService, reader BookingReader) *BookingHandler {
	if bookings == nil || payments == nil || reader == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Payments: payments, Reader: reader}
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}

func (h *BookingHandler) submitted(c echo.Context, res service.SubmitResult, err error) error {
	if err != nil {
		return respondError(c, err)
	}
	views := make([]service.BookingView, len(res.Bookings))
	for i, b := range res.Bookings {
		views[i] = service.NewBookingView(b)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"submissionId": res.SubmissionID,
		"quote":        res.Quote,
		"displayTotal": res.DisplayTotal,
		"bookings":     views,
	})
}

// BookCar handles POST /v1/bookings/car.
func (h *BookingHandler) BookCar(c echo.Context) error {
	var req service.CarRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	res, err := h.Bookings.SubmitCar(c.Request().Context(), caller(c), req)
	return h.submitted(c, res, err)
}

// BookHotel handles POST /v1/bookings/hotel. One booking is created per
// selected room number.
func (h *BookingHandler) BookHotel(c echo.Context) error {
	var req service.HotelRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	res, err := h.Bookings.SubmitHotel(c.Request().Context(), caller(c), req)
	return h.submitted(c, res, err)
}

// BookFlight handles POST /v1/bookings/flight.
func (h *BookingHandler) BookFlight(c echo.Context) error {
	var req service.FlightRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	res, err := h.Bookings.SubmitFlight(c.Request().Context(), caller(c), req)
	return h.submitted(c, res, err)
}

// BookTour handles POST /v1/bookings/tour.
func (h *BookingHandler) BookTour(c echo.Context) error {
	var req service.TourRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	res, err := h.Bookings.SubmitTour(c.Request().Context(), caller(c), req)
	return h.submitted(c, res, err)
}

// ListMine returns the caller's bookings, newest first as the API sends
// them, each with the actions it still allows.
func (h *BookingHandler) ListMine(c echo.Context) error {
	bookings, err := h.Reader.MyBookings(c.Request().Context(), middleware.Credential(c))
	if err != nil {
		return respondError(c, err)
	}
	views := make([]service.BookingView, len(bookings))
	for i, b := range bookings {
		views[i] = service.NewBookingView(b)
	}
	page, size := paging(c)
	return c.JSON(http.StatusOK, echo.Map{
		"data":      paginate(views, page, size),
		"total":     len(views),
		"page":      page,
		"page_size": size,
	})
}

// Get returns one booking.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	v, err := h.Payments.Get(c.Request().Context(), middleware.Credential(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Pay submits the mock card form for a pending booking. Nothing here
// charges a card; the fields are only checked for shape.
func (h *BookingHandler) Pay(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var card reservation.CardFields
	if err := c.Bind(&card); err != nil {
		return invalidBody(c)
	}
	b, err := h.Payments.ConfirmPayment(c.Request().Context(), caller(c), id, card)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, service.NewBookingView(b))
}

// Cancel cancels a booking that is not cancelled yet.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	b, err := h.Payments.Cancel(c.Request().Context(), caller(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, service.NewBookingView(b))
}
