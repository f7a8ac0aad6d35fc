package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
	"github.com/iliyamo/travel-booking-gateway/internal/service"
)

// CatalogAPI is the read side of the travel API used by the public routes.
type CatalogAPI interface {
	ListCars(ctx context.Context, cred apiclient.Credential, q url.Values) ([]model.Car, error)
	GetCar(ctx context.Context, cred apiclient.Credential, id string) (model.Car, error)
	ListHotels(ctx context.Context, cred apiclient.Credential, q url.Values) ([]model.Hotel, error)
	GetHotel(ctx context.Context, cred apiclient.Credential, id string) (model.Hotel, error)
	RoomsByHotel(ctx context.Context, cred apiclient.Credential, hotelID string) ([]model.Room, error)
	ListFlights(ctx context.Context, cred apiclient.Credential, q url.Values) ([]model.Flight, error)
	GetFlight(ctx context.Context, cred apiclient.Credential, id string) (model.Flight, error)
	ListTours(ctx context.Context, cred apiclient.Credential, q url.Values) ([]model.Tour, error)
	GetTour(ctx context.Context, cred apiclient.Credential, id string) (model.Tour, error)
}

// CatalogHandler serves catalog search, detail and quote endpoints. No
// credential is required; one that is present is forwarded upstream.
type CatalogHandler struct {
	API      CatalogAPI
	Bookings *service.BookingService
}

// NewCatalogHandler constructs a CatalogHandler and panics if a dependency is nil.
func NewCatalogHandler(api CatalogAPI, bookings *service.BookingService) *CatalogHandler {
	if api == nil || bookings == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{API: api, Bookings: bookings}
}

// upstreamParams lists, per collection, the query parameters forwarded to
// the travel API. Anything else is either a local filter or dropped.
var upstreamParams = map[string][]string{
	"cars":    {"location", "make", "model", "seats"},
	"hotels":  {"city", "min", "max", "featured"},
	"flights": {"from", "to", "date", "airline"},
	"tours":   {"destination", "maxPrice"},
}

// searchParams normalises the incoming query into the upstream query:
// whitelisted keys only, values trimmed, empty values removed.
func searchParams(kind string, in url.Values) url.Values {
	out := url.Values{}
	for _, k := range upstreamParams[kind] {
		if v := strings.TrimSpace(in.Get(k)); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

func contains(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// positiveQuery reads an optional positive integer; 0 means absent.
func positiveQuery(c echo.Context, key string, verr *reservation.ValidationError) int {
	s := strings.TrimSpace(c.QueryParam(key))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		verr.Add(key, "must be a positive integer")
		return 0
	}
	return n
}

func listResponse[T any](c echo.Context, items []T, query url.Values) error {
	page, size := paging(c)
	return c.JSON(http.StatusOK, echo.Map{
		"data":      paginate(items, page, size),
		"total":     len(items),
		"page":      page,
		"page_size": size,
		"query":     query,
	})
}

// SearchCars lists cars. With start and end, only cars free on every day of
// that range are returned.
func (h *CatalogHandler) SearchCars(c echo.Context) error {
	verr := &reservation.ValidationError{}
	var start, end time.Time
	startS, endS := strings.TrimSpace(c.QueryParam("start")), strings.TrimSpace(c.QueryParam("end"))
	if startS != "" || endS != "" {
		var err error
		if start, err = reservation.ParseDay(startS); err != nil {
			verr.Add("start", "must be a date (YYYY-MM-DD)")
		}
		if end, err = reservation.ParseDay(endS); err != nil {
			verr.Add("end", "must be a date (YYYY-MM-DD)")
		}
		if len(verr.Fields) == 0 {
			reservation.CheckStay("start", "end", start, end, verr)
		}
	}
	if err := verr.OrNil(); err != nil {
		return respondError(c, err)
	}

	q := searchParams("cars", c.QueryParams())
	cars, err := h.API.ListCars(c.Request().Context(), middleware.Credential(c), q)
	if err != nil {
		return respondError(c, err)
	}
	if !start.IsZero() {
		free := cars[:0]
		for _, car := range cars {
			blocked, err := reservation.ParseBlockedDates(car.UnavailableDates)
			if err != nil {
				continue
			}
			if reservation.IsAvailable(blocked, start, end) {
				free = append(free, car)
			}
		}
		cars = free
		q.Set("start", reservation.DayKey(start))
		q.Set("end", reservation.DayKey(end))
	}
	return listResponse(c, cars, q)
}

// SearchHotels lists hotels, narrowed locally by city and name substrings.
func (h *CatalogHandler) SearchHotels(c echo.Context) error {
	q := searchParams("hotels", c.QueryParams())
	hotels, err := h.API.ListHotels(c.Request().Context(), middleware.Credential(c), q)
	if err != nil {
		return respondError(c, err)
	}
	city := strings.TrimSpace(c.QueryParam("city"))
	name := strings.TrimSpace(c.QueryParam("name"))
	out := hotels[:0]
	for _, ht := range hotels {
		if contains(ht.City, city) && contains(ht.Name, name) {
			out = append(out, ht)
		}
	}
	if name != "" {
		q.Set("name", name)
	}
	return listResponse(c, out, q)
}

// SearchFlights lists flights with at least `passengers` seats left.
func (h *CatalogHandler) SearchFlights(c echo.Context) error {
	verr := &reservation.ValidationError{}
	passengers := positiveQuery(c, "passengers", verr)
	if err := verr.OrNil(); err != nil {
		return respondError(c, err)
	}
	q := searchParams("flights", c.QueryParams())
	flights, err := h.API.ListFlights(c.Request().Context(), middleware.Credential(c), q)
	if err != nil {
		return respondError(c, err)
	}
	from, to := q.Get("from"), q.Get("to")
	out := flights[:0]
	for _, f := range flights {
		if !contains(f.From, from) || !contains(f.To, to) {
			continue
		}
		if passengers > 0 && f.AvailableSeats < passengers {
			continue
		}
		out = append(out, f)
	}
	if passengers > 0 {
		q.Set("passengers", strconv.Itoa(passengers))
	}
	return listResponse(c, out, q)
}

// SearchTours lists tours with room for `participants`.
func (h *CatalogHandler) SearchTours(c echo.Context) error {
	verr := &reservation.ValidationError{}
	participants := positiveQuery(c, "participants", verr)
	if err := verr.OrNil(); err != nil {
		return respondError(c, err)
	}
	q := searchParams("tours", c.QueryParams())
	tours, err := h.API.ListTours(c.Request().Context(), middleware.Credential(c), q)
	if err != nil {
		return respondError(c, err)
	}
	dest := q.Get("destination")
	out := tours[:0]
	for _, t := range tours {
		if !contains(t.Destination, dest) {
			continue
		}
		if participants > 0 && t.CapacityRemaining() < participants {
			continue
		}
		out = append(out, t)
	}
	if participants > 0 {
		q.Set("participants", strconv.Itoa(participants))
	}
	return listResponse(c, out, q)
}

func (h *CatalogHandler) GetCar(c echo.Context) error {
	return getResource(c, h.API.GetCar)
}

func (h *CatalogHandler) GetHotel(c echo.Context) error {
	return getResource(c, h.API.GetHotel)
}

func (h *CatalogHandler) GetFlight(c echo.Context) error {
	return getResource(c, h.API.GetFlight)
}

func (h *CatalogHandler) GetTour(c echo.Context) error {
	return getResource(c, h.API.GetTour)
}

func getResource[T any](c echo.Context, get func(context.Context, apiclient.Credential, string) (T, error)) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	v, err := get(c.Request().Context(), middleware.Credential(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// roomNumberView is one physical room; Available and Conflicts are only
// filled when the request carried checkIn and checkOut.
type roomNumberView struct {
	Number    model.RoomLabel `json:"number"`
	Available *bool           `json:"available,omitempty"`
	Conflicts []string        `json:"conflicts,omitempty"`
}

type roomView struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Price        float64                `json:"price"`
	MaxPeople    int                    `json:"maxPeople"`
	RoomNumbers  []roomNumberView       `json:"roomNumbers"`
	Free         *int                   `json:"free,omitempty"`
	QuotePerRoom *reservation.QuoteLine `json:"quotePerRoom,omitempty"`
}

// HotelRooms lists a hotel's room types. With checkIn and checkOut every
// room number is marked available or not and each type is priced for the
// stay.
func (h *CatalogHandler) HotelRooms(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	verr := &reservation.ValidationError{}
	var start, end time.Time
	nights := 0
	inS, outS := strings.TrimSpace(c.QueryParam("checkIn")), strings.TrimSpace(c.QueryParam("checkOut"))
	if inS != "" || outS != "" {
		var err error
		if start, err = reservation.ParseDay(inS); err != nil {
			verr.Add("checkIn", "must be a date (YYYY-MM-DD)")
		}
		if end, err = reservation.ParseDay(outS); err != nil {
			verr.Add("checkOut", "must be a date (YYYY-MM-DD)")
		}
		if len(verr.Fields) == 0 {
			nights = reservation.CheckStay("checkIn", "checkOut", start, end, verr)
		}
	}
	if err := verr.OrNil(); err != nil {
		return respondError(c, err)
	}

	rooms, err := h.API.RoomsByHotel(c.Request().Context(), middleware.Credential(c), id)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		v := roomView{ID: r.ID, Title: r.Title, Description: r.Description, Price: r.Price, MaxPeople: r.MaxPeople,
			RoomNumbers: make([]roomNumberView, 0, len(r.RoomNumbers))}
		free := 0
		for _, rn := range r.RoomNumbers {
			nv := roomNumberView{Number: rn.Number}
			if nights > 0 {
				avail := false
				if blocked, err := reservation.ParseBlockedDates(rn.UnavailableDates); err == nil {
					avail = reservation.IsAvailable(blocked, start, end)
					nv.Conflicts = reservation.Conflicts(blocked, start, end)
				}
				nv.Available = &avail
				if avail {
					free++
				}
			}
			v.RoomNumbers = append(v.RoomNumbers, nv)
		}
		if nights > 0 {
			v.Free = &free
			if line, err := reservation.NewQuoteLine(r.Title, r.Price, nights); err == nil {
				v.QuotePerRoom = &line
			}
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out, "nights": nights})
}

// Quote prices a booking request without creating anything. The body is
// any booking request plus its "bookingType".
func (h *CatalogHandler) Quote(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var head struct {
		BookingType string `json:"bookingType"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	bt, err := reservation.ParseBookingType(head.BookingType)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cred := c.Request().Context(), middleware.Credential(c)
	var quote reservation.Quote
	switch bt {
	case model.BookingCar:
		var req service.CarRequest
		if err = json.Unmarshal(body, &req); err == nil {
			quote, err = h.Bookings.QuoteCar(ctx, cred, req)
		}
	case model.BookingHotel:
		var req service.HotelRequest
		if err = json.Unmarshal(body, &req); err == nil {
			quote, err = h.Bookings.QuoteHotel(ctx, cred, req)
		}
	case model.BookingFlight:
		var req service.FlightRequest
		if err = json.Unmarshal(body, &req); err == nil {
			quote, err = h.Bookings.QuoteFlight(ctx, cred, req)
		}
	case model.BookingTour:
		var req service.TourRequest
		if err = json.Unmarshal(body, &req); err == nil {
			quote, err = h.Bookings.QuoteTour(ctx, cred, req)
		}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookingType":  bt,
		"quote":        quote,
		"displayTotal": quote.DisplayTotal(),
	})
}
