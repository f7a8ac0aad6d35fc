package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
	"github.com/iliyamo/travel-booking-gateway/internal/service"
)

// stubAPI serves every interface the handlers depend on from memory.
type stubAPI struct {
	mu sync.Mutex

	cars     []model.Car
	hotels   []model.Hotel
	rooms    map[string][]model.Room
	flights  []model.Flight
	tours    []model.Tour
	bookings map[string]model.Booking
	order    []string

	listErr  error
	creates  []model.CreateBookingRequest
	adminLog []string
	nextID   int
}

func newStubAPI() *stubAPI {
	return &stubAPI{rooms: map[string][]model.Room{}, bookings: map[string]model.Booking{}}
}

func missing() error { return &apiclient.APIError{Status: http.StatusNotFound, Message: "not found"} }

func find[T any](items []T, id string, idOf func(T) string) (T, error) {
	for _, it := range items {
		if idOf(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, missing()
}

func (s *stubAPI) ListCars(context.Context, apiclient.Credential, url.Values) ([]model.Car, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]model.Car(nil), s.cars...), nil
}

func (s *stubAPI) GetCar(_ context.Context, _ apiclient.Credential, id string) (model.Car, error) {
	return find(s.cars, id, func(c model.Car) string { return c.ID })
}

func (s *stubAPI) ListHotels(context.Context, apiclient.Credential, url.Values) ([]model.Hotel, error) {
	return append([]model.Hotel(nil), s.hotels...), nil
}

func (s *stubAPI) GetHotel(_ context.Context, _ apiclient.Credential, id string) (model.Hotel, error) {
	return find(s.hotels, id, func(h model.Hotel) string { return h.ID })
}

func (s *stubAPI) RoomsByHotel(_ context.Context, _ apiclient.Credential, hotelID string) ([]model.Room, error) {
	r, ok := s.rooms[hotelID]
	if !ok {
		return nil, missing()
	}
	return r, nil
}

func (s *stubAPI) ListFlights(context.Context, apiclient.Credential, url.Values) ([]model.Flight, error) {
	return append([]model.Flight(nil), s.flights...), nil
}

func (s *stubAPI) GetFlight(_ context.Context, _ apiclient.Credential, id string) (model.Flight, error) {
	return find(s.flights, id, func(f model.Flight) string { return f.ID })
}

func (s *stubAPI) ListTours(context.Context, apiclient.Credential, url.Values) ([]model.Tour, error) {
	return append([]model.Tour(nil), s.tours...), nil
}

func (s *stubAPI) GetTour(_ context.Context, _ apiclient.Credential, id string) (model.Tour, error) {
	return find(s.tours, id, func(t model.Tour) string { return t.ID })
}

func (s *stubAPI) CreateBooking(_ context.Context, _ apiclient.Credential, req model.CreateBookingRequest) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.creates = append(s.creates, req)
	b := model.Booking{
		ID:            fmt.Sprintf("b%d", s.nextID),
		BookingType:   req.BookingType,
		RoomNumber:    req.RoomNumber,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TotalPrice:    req.TotalPrice,
		Passengers:    req.Passengers,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
	}
	b.BookedItem, _ = json.Marshal(req.BookedItemID)
	s.put(b)
	return b, nil
}

func (s *stubAPI) put(b model.Booking) {
	s.bookings[b.ID] = b
	s.order = append(s.order, b.ID)
}

func (s *stubAPI) GetBooking(_ context.Context, _ apiclient.Credential, id string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, missing()
	}
	return b, nil
}

func (s *stubAPI) MyBookings(context.Context, apiclient.Credential) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bookings[id])
	}
	return out, nil
}

func (s *stubAPI) ListBookings(ctx context.Context, cred apiclient.Credential) ([]model.Booking, error) {
	return s.MyBookings(ctx, cred)
}

func (s *stubAPI) mutate(id string, fn func(*model.Booking)) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, missing()
	}
	fn(&b)
	s.bookings[id] = b
	return b, nil
}

func (s *stubAPI) ConfirmPayment(_ context.Context, _ apiclient.Credential, id string, _ reservation.CardFields) (model.Booking, error) {
	return s.mutate(id, func(b *model.Booking) {
		b.Status = model.StatusConfirmed
		b.PaymentStatus = model.PaymentPaid
	})
}

func (s *stubAPI) CancelBooking(_ context.Context, _ apiclient.Credential, id string) (model.Booking, error) {
	return s.mutate(id, func(b *model.Booking) { b.Status = model.StatusCancelled })
}

func (s *stubAPI) UpdateBookingStatus(_ context.Context, _ apiclient.Credential, id string, u model.StatusUpdate) (model.Booking, error) {
	return s.mutate(id, func(b *model.Booking) {
		if u.Status != "" {
			b.Status = u.Status
		}
		if u.PaymentStatus != "" {
			b.PaymentStatus = u.PaymentStatus
		}
	})
}

func (s *stubAPI) AdminList(_ context.Context, _ apiclient.Credential, kind apiclient.Kind, q url.Values) (json.RawMessage, error) {
	s.adminLog = append(s.adminLog, "list "+string(kind)+" "+q.Encode())
	return json.RawMessage(`[{"id":"x1"}]`), nil
}

func (s *stubAPI) AdminGet(_ context.Context, _ apiclient.Credential, kind apiclient.Kind, id string) (json.RawMessage, error) {
	if id == "gone" {
		return nil, missing()
	}
	return json.RawMessage(`{"id":"` + id + `"}`), nil
}

func (s *stubAPI) AdminCreate(_ context.Context, _ apiclient.Credential, kind apiclient.Kind, body json.RawMessage) (json.RawMessage, error) {
	s.adminLog = append(s.adminLog, "create "+string(kind)+" "+string(body))
	return body, nil
}

func (s *stubAPI) AdminUpdate(_ context.Context, _ apiclient.Credential, kind apiclient.Kind, id string, body json.RawMessage) (json.RawMessage, error) {
	s.adminLog = append(s.adminLog, "update "+string(kind)+" "+id)
	return body, nil
}

func (s *stubAPI) AdminDelete(_ context.Context, _ apiclient.Credential, kind apiclient.Kind, id string) error {
	s.adminLog = append(s.adminLog, "delete "+string(kind)+" "+id)
	return nil
}

// fixture wires the real services and handlers over a stubAPI.
type fixture struct {
	api     *stubAPI
	catalog *CatalogHandler
	booking *BookingHandler
	admin   *AdminHandler
}

func newFixture() *fixture {
	api := newStubAPI()
	bookings := service.NewBookingService(api, service.NewLocalGuard(), nil, nil)
	payments := service.NewPaymentService(api, nil)
	return &fixture{
		api:     api,
		catalog: NewCatalogHandler(api, bookings),
		booking: NewBookingHandler(bookings, payments, api),
		admin:   NewAdminHandler(api, payments, nil),
	}
}

// call runs one handler with an optional JSON body, path params and a
// signed-in caller, and returns the recorder.
func call(t *testing.T, h echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make([]string, 0, len(params))
		for k, v := range params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	c.Set(middleware.CtxCredential, apiclient.Credential("tok"))
	c.Set(middleware.CtxUserID, "u1")
	require.NoError(t, h(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}
