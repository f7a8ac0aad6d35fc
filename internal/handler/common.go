package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
	"github.com/iliyamo/travel-booking-gateway/internal/repository"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
	"github.com/iliyamo/travel-booking-gateway/internal/service"
)

// caller builds the service caller from what the bearer middleware stored.
func caller(c echo.Context) service.Caller {
	return service.Caller{Credential: middleware.Credential(c), UserID: middleware.UserID(c)}
}

// pathID returns the trimmed :id param; empty ids are rejected before any
// upstream call.
func pathID(c echo.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	return id, id != ""
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}

// respondError translates workflow errors into the JSON error responses.
// Validation problems are 400, a missing credential 401, state conflicts
// 409, missing resources 404; remote API errors keep the API's status and
// message, and transport failures become 502 (504 on timeout).
func respondError(c echo.Context, err error) error {
	var (
		verr   *reservation.ValidationError
		uerr   *reservation.UnavailableError
		perr   *service.PartialFailureError
		apiErr *apiclient.APIError
	)
	switch {
	case errors.As(err, &perr):
		status, msg := upstreamStatus(perr.Cause)
		return c.JSON(status, echo.Map{
			"error":         msg,
			"submissionId":  perr.SubmissionID,
			"created":       perr.Created,
			"compensated":   perr.Compensated,
			"uncompensated": perr.Uncompensated,
		})
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": reservation.ErrValidation.Error(), "fields": verr.Fields})
	case errors.As(err, &uerr):
		return c.JSON(http.StatusConflict, echo.Map{"error": reservation.ErrUnavailable.Error(), "blockedDates": uerr.Dates})
	case errors.Is(err, reservation.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, reservation.ErrValidation),
		errors.Is(err, reservation.ErrInvalidDate),
		errors.Is(err, reservation.ErrInvalidRange),
		errors.Is(err, reservation.ErrInvalidRate),
		errors.Is(err, reservation.ErrInvalidUnits),
		errors.Is(err, reservation.ErrInvalidHeadcount),
		errors.Is(err, reservation.ErrRoomCountMismatch),
		errors.Is(err, reservation.ErrInvalidStatus),
		errors.Is(err, reservation.ErrInvalidType),
		errors.Is(err, apiclient.ErrUnknownKind):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, reservation.ErrUnavailable),
		errors.Is(err, reservation.ErrCapacityExceeded),
		errors.Is(err, reservation.ErrAlreadyCancelled),
		errors.Is(err, reservation.ErrNotPayable),
		errors.Is(err, service.ErrInFlight):
		return c.JSON(http.StatusConflict, echo.Map{"error": rootMessage(err)})
	case errors.Is(err, apiclient.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.As(err, &apiErr):
		status, msg := upstreamStatus(apiErr)
		return c.JSON(status, echo.Map{"error": msg})
	}
	status, msg := upstreamStatus(err)
	if status == http.StatusBadGateway {
		c.Logger().Errorf("travel api call failed: %v", err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// upstreamStatus maps an error from the travel API call to a status and a
// user-facing message.
func upstreamStatus(err error) (int, string) {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Status < 400 || apiErr.Status > 599 {
			return http.StatusBadGateway, apiErr.Message
		}
		return apiErr.Status, apiErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "travel api timed out"
	}
	return http.StatusBadGateway, "travel api unreachable"
}

// rootMessage drops the wrapping detail for the conflict sentinels that
// have a user-facing message of their own.
func rootMessage(err error) string {
	for _, s := range []error{
		reservation.ErrAlreadyCancelled, reservation.ErrNotPayable,
		reservation.ErrCapacityExceeded, service.ErrInFlight,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

// paging reads page and page_size with the same bounds everywhere.
func paging(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.QueryParam("page_size"))
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
