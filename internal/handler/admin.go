package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/repository"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
	"github.com/iliyamo/travel-booking-gateway/internal/service"
)

// AdminAPI is the admin CRUD surface of the travel API.
type AdminAPI interface {
	AdminList(ctx context.Context, cred apiclient.Credential, kind apiclient.Kind, q url.Values) (json.RawMessage, error)
	AdminGet(ctx context.Context, cred apiclient.Credential, kind apiclient.Kind, id string) (json.RawMessage, error)
	AdminCreate(ctx context.Context, cred apiclient.Credential, kind apiclient.Kind, body json.RawMessage) (json.RawMessage, error)
	AdminUpdate(ctx context.Context, cred apiclient.Credential, kind apiclient.Kind, id string, body json.RawMessage) (json.RawMessage, error)
	AdminDelete(ctx context.Context, cred apiclient.Credential, kind apiclient.Kind, id string) error
	ListBookings(ctx context.Context, cred apiclient.Credential) ([]model.Booking, error)
}

// SubmissionReader reads the submission ledger.
type SubmissionReader interface {
	Get(ctx context.Context, id string) (model.Submission, error)
	List(ctx context.Context, status model.SubmissionStatus, limit int) ([]model.Submission, error)
}

// AdminHandler serves the admin console routes. Catalog bodies are passed
// through to the travel API; booking status overrides go through the
// payment service. Ledger may be nil when no database is configured.
type AdminHandler struct {
	API      AdminAPI
	Payments *service.PaymentService
	Ledger   SubmissionReader
}

// NewAdminHandler constructs an AdminHandler and panics if a required
// dependency is nil.
func NewAdminHandler(api AdminAPI, payments *service.PaymentService, ledger SubmissionReader) *AdminHandler {
	if api == nil || payments == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{API: api, Payments: payments, Ledger: ledger}
}

func kindParam(c echo.Context) (apiclient.Kind, error) {
	return apiclient.ParseKind(c.Param("kind"))
}

// readObject reads a JSON object body, rejecting anything else.
func readObject(c echo.Context) (json.RawMessage, bool) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	var obj map[string]json.RawMessage
	if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &obj) != nil {
		return nil, false
	}
	return raw, true
}

func blob(c echo.Context, status int, raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSONBlob(status, raw)
}

// List handles GET /v1/admin/:kind. The query string is forwarded as is.
func (h *AdminHandler) List(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return respondError(c, err)
	}
	raw, err := h.API.AdminList(c.Request().Context(), middleware.Credential(c), kind, c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	return blob(c, http.StatusOK, raw)
}

func (h *AdminHandler) Get(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	raw, err := h.API.AdminGet(c.Request().Context(), middleware.Credential(c), kind, id)
	if err != nil {
		return respondError(c, err)
	}
	return blob(c, http.StatusOK, raw)
}

func (h *AdminHandler) Create(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return respondError(c, err)
	}
	body, ok := readObject(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must be a JSON object"})
	}
	raw, err := h.API.AdminCreate(c.Request().Context(), middleware.Credential(c), kind, body)
	if err != nil {
		return respondError(c, err)
	}
	return blob(c, http.StatusCreated, raw)
}

func (h *AdminHandler) Update(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	body, ok := readObject(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must be a JSON object"})
	}
	raw, err := h.API.AdminUpdate(c.Request().Context(), middleware.Credential(c), kind, id, body)
	if err != nil {
		return respondError(c, err)
	}
	return blob(c, http.StatusOK, raw)
}

func (h *AdminHandler) Delete(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return respondError(c, err)
	}
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	if err := h.API.AdminDelete(c.Request().Context(), middleware.Credential(c), kind, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/admin/bookings. Unlike the generic kind
// listing it decodes the bookings, so they can be filtered by status,
// paymentStatus and bookingType and carry their actions.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	var (
		status  model.BookingStatus
		payment model.PaymentStatus
		bt      model.BookingType
		err     error
	)
	if raw := c.QueryParam("status"); raw != "" {
		if status, err = reservation.ParseStatus(raw); err != nil {
			return respondError(c, err)
		}
	}
	if raw := c.QueryParam("paymentStatus"); raw != "" {
		if payment, err = reservation.ParsePaymentStatus(raw); err != nil {
			return respondError(c, err)
		}
	}
	if raw := c.QueryParam("bookingType"); raw != "" {
		if bt, err = reservation.ParseBookingType(raw); err != nil {
			return respondError(c, err)
		}
	}
	bookings, err := h.API.ListBookings(c.Request().Context(), middleware.Credential(c))
	if err != nil {
		return respondError(c, err)
	}
	views := make([]service.BookingView, 0, len(bookings))
	for _, b := range bookings {
		if (status != "" && b.Status != status) ||
			(payment != "" && b.PaymentStatus != payment) ||
			(bt != "" && b.BookingType != bt) {
			continue
		}
		views = append(views, service.NewBookingView(b))
	}
	page, size := paging(c)
	return c.JSON(http.StatusOK, echo.Map{
		"data":      paginate(views, page, size),
		"total":     len(views),
		"page":      page,
		"page_size": size,
	})
}

// UpdateBookingStatus handles PUT /v1/admin/bookings/:id/status.
func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var u model.StatusUpdate
	if err := c.Bind(&u); err != nil {
		return invalidBody(c)
	}
	b, err := h.Payments.AdminUpdateStatus(c.Request().Context(), caller(c), id, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, service.NewBookingView(b))
}

func (h *AdminHandler) ledgerDisabled(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "submission ledger is not configured"})
}

// ListSubmissions handles GET /v1/admin/submissions?status=&limit=. Use
// status=compensation_failed to find bookings that need a manual cancel.
func (h *AdminHandler) ListSubmissions(c echo.Context) error {
	if h.Ledger == nil {
		return h.ledgerDisabled(c)
	}
	status := model.SubmissionStatus(c.QueryParam("status"))
	switch status {
	case "", model.SubmissionPending, model.SubmissionCompleted, model.SubmissionFailed,
		model.SubmissionCompensated, model.SubmissionCompensationFailed:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	subs, err := h.Ledger.List(c.Request().Context(), status, limit)
	if err != nil {
		c.Logger().Errorf("ledger list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": subs, "total": len(subs)})
}

// GetSubmission handles GET /v1/admin/submissions/:id.
func (h *AdminHandler) GetSubmission(c echo.Context) error {
	if h.Ledger == nil {
		return h.ledgerDisabled(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	s, err := h.Ledger.Get(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		c.Logger().Errorf("ledger get %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"submission": s, "bookingIds": repository.SplitIDs(s.BookingIDs)})
}
