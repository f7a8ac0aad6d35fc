package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/queue"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
)

func intPtr(n int) *int { return &n }

func seededAPI() *fakeAPI {
	api := newFakeAPI()
	api.cars["c1"] = model.Car{ID: "c1", Make: "Fiat", Model: "Panda", DailyRate: 50,
		UnavailableDates: []string{"2025-03-10"}}
	api.rooms["h1"] = []model.Room{{
		ID: "r1", Title: "Double", Price: 100, MaxPeople: 2,
		RoomNumbers: []model.RoomNumber{
			{Number: "101"},
			{Number: "102", UnavailableDates: []string{"2025-03-02T00:00:00.000Z"}},
			{Number: "103"},
		},
	}}
	api.flights["f1"] = model.Flight{ID: "f1", FlightNumber: "AZ100", Price: 200, AvailableSeats: 2,
		DepartureTime: time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)}
	api.tours["t1"] = model.Tour{ID: "t1", Title: "Old Town", Price: 40, MaxParticipants: 10,
		AvailableSlots: intPtr(3), StartDate: "2025-06-01"}
	return api
}

func newBookingService(api *fakeAPI) (*BookingService, *recordingLedger, *recordingPublisher) {
	ledger := newRecordingLedger()
	pub := &recordingPublisher{}
	return NewBookingService(api, NewLocalGuard(), ledger, pub), ledger, pub
}

func TestSubmitCarPricesNights(t *testing.T) {
	api := seededAPI()
	svc, ledger, pub := newBookingService(api)

	res, err := svc.SubmitCar(context.Background(), customer, CarRequest{CarID: "c1", StartDate: "2025-03-01", EndDate: "2025-03-04"})
	require.NoError(t, err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, 150.0, res.Quote.Total)
	require.Len(t, api.creates, 1)
	assert.Equal(t, model.CreateBookingRequest{
		BookingType: model.BookingCar, BookedItemID: "c1", StartDate: "2025-03-01", EndDate: "2025-03-04",
		TotalPrice: 150, Passengers: 1,
	}, api.creates[0])

	assert.Equal(t, model.SubmissionCompleted, ledger.statuses[res.SubmissionID])
	assert.Equal(t, []queue.EventType{queue.EventBookingCreated}, pub.types())
}

func TestSubmitCarRefusesBlockedRange(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitCar(context.Background(), customer, CarRequest{CarID: "c1", StartDate: "2025-03-08", EndDate: "2025-03-11"})
	assert.ErrorIs(t, err, reservation.ErrUnavailable)
	var ue *reservation.UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"2025-03-10"}, ue.Dates)
	assert.Empty(t, api.creates)
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)
	ctx := context.Background()

	_, err := svc.SubmitCar(ctx, Caller{}, CarRequest{CarID: "c1", StartDate: "2025-03-01", EndDate: "2025-03-04"})
	assert.ErrorIs(t, err, reservation.ErrUnauthenticated)

	_, err = svc.SubmitCar(ctx, customer, CarRequest{CarID: "c1", StartDate: "2025-03-04", EndDate: "2025-03-04"})
	assert.ErrorIs(t, err, reservation.ErrValidation)

	_, err = svc.SubmitCar(ctx, customer, CarRequest{StartDate: "nope", EndDate: "2025-03-04"})
	var verr *reservation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "carId")
	assert.Contains(t, verr.Fields, "startDate")

	assert.Empty(t, api.creates)
}

func TestSubmitHotelFewerGuestsThanRooms(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitHotel(context.Background(), customer, HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 2, RoomNumbers: []model.RoomLabel{"101", "102"},
		CheckIn: "2025-03-05", CheckOut: "2025-03-07", Guests: 1,
	})
	var verr *reservation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "guests")
	assert.Empty(t, api.creates)
}

func TestSubmitRejectsOverlongStay(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitCar(context.Background(), customer, CarRequest{CarID: "c1", StartDate: "0001-01-02", EndDate: "9999-12-31"})
	var verr *reservation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["endDate"], "at most")

	_, err = svc.QuoteHotel(context.Background(), "", HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 1, RoomNumbers: []model.RoomLabel{"101"},
		CheckIn: "2025-03-05", CheckOut: "2026-03-07", Guests: 1,
	})
	assert.ErrorIs(t, err, reservation.ErrValidation)
	assert.Empty(t, api.creates)
}

func TestSubmitHotelRoomCountMismatch(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitHotel(context.Background(), customer, HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 2, RoomNumbers: []model.RoomLabel{"101"},
		CheckIn: "2025-03-05", CheckOut: "2025-03-07", Guests: 2,
	})
	assert.ErrorIs(t, err, reservation.ErrRoomCountMismatch)
	assert.Empty(t, api.creates)
}

func TestSubmitHotelMultiRoomSumsLines(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	res, err := svc.SubmitHotel(context.Background(), customer, HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 2, RoomNumbers: []model.RoomLabel{"101", "103"},
		CheckIn: "2025-03-01", CheckOut: "2025-03-04", Guests: 3,
	})
	require.NoError(t, err)
	require.Len(t, res.Quote.Lines, 2)
	assert.Equal(t, 600.0, res.Quote.Total)
	require.Len(t, api.creates, 2)
	assert.Equal(t, model.RoomLabel("101"), api.creates[0].RoomNumber)
	assert.Equal(t, model.RoomLabel("103"), api.creates[1].RoomNumber)
	assert.Equal(t, 2, api.creates[0].Passengers)
	assert.Equal(t, 1, api.creates[1].Passengers)
	assert.Equal(t, 300.0, api.creates[1].TotalPrice)
}

func TestSubmitHotelBlockedRoomNumber(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitHotel(context.Background(), customer, HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 2, RoomNumbers: []model.RoomLabel{"101", "102"},
		CheckIn: "2025-03-01", CheckOut: "2025-03-04", Guests: 2,
	})
	assert.ErrorIs(t, err, reservation.ErrUnavailable)
	assert.Empty(t, api.creates)
}

func TestSubmitHotelUnknownRoomType(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitHotel(context.Background(), customer, HotelRequest{
		HotelID: "h1", RoomID: "nope", Rooms: 1, RoomNumbers: []model.RoomLabel{"101"},
		CheckIn: "2025-03-01", CheckOut: "2025-03-04", Guests: 1,
	})
	assert.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestPartialFailureCompensatesInReverse(t *testing.T) {
	api := seededAPI()
	api.rooms["h1"][0].RoomNumbers = append(api.rooms["h1"][0].RoomNumbers, model.RoomNumber{Number: "104"})
	api.failCreateAt = 3
	svc, ledger, pub := newBookingService(api)

	_, err := svc.SubmitHotel(context.Background(), customer, HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 3, RoomNumbers: []model.RoomLabel{"101", "103", "104"},
		CheckIn: "2025-03-01", CheckOut: "2025-03-04", Guests: 3,
	})
	var perr *PartialFailureError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"b1", "b2"}, perr.Created)
	assert.Equal(t, []string{"b2", "b1"}, api.cancels)
	assert.Equal(t, []string{"b2", "b1"}, perr.Compensated)
	assert.Empty(t, perr.Uncompensated)

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Room is already booked", apiErr.Message)

	assert.Equal(t, model.SubmissionCompensated, ledger.statuses[perr.SubmissionID])
	assert.Equal(t, []queue.EventType{queue.EventBookingCompensated}, pub.types())
}

func TestPartialFailureReportsUncompensated(t *testing.T) {
	api := seededAPI()
	api.failCreateAt = 2
	api.failCancel["b1"] = true
	svc, ledger, _ := newBookingService(api)

	_, err := svc.SubmitHotel(context.Background(), customer, HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 2, RoomNumbers: []model.RoomLabel{"101", "103"},
		CheckIn: "2025-03-01", CheckOut: "2025-03-04", Guests: 2,
	})
	var perr *PartialFailureError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"b1"}, perr.Uncompensated)
	assert.Equal(t, model.SubmissionCompensationFailed, ledger.statuses[perr.SubmissionID])
	assert.Contains(t, err.Error(), "left in place (b1)")
}

func TestFirstCreateFailureIsPlainError(t *testing.T) {
	api := seededAPI()
	api.failCreateAt = 1
	svc, ledger, _ := newBookingService(api)

	_, err := svc.SubmitCar(context.Background(), customer, CarRequest{CarID: "c1", StartDate: "2025-03-01", EndDate: "2025-03-04"})
	var perr *PartialFailureError
	assert.False(t, errors.As(err, &perr))
	var apiErr *apiclient.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Empty(t, api.cancels)
	require.Len(t, ledger.begun, 1)
	assert.Equal(t, model.SubmissionFailed, ledger.statuses[ledger.begun[0].ID])
}

func TestFlightPassengersOverSeats(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitFlight(context.Background(), customer, FlightRequest{FlightID: "f1", Passengers: 3})
	assert.ErrorIs(t, err, reservation.ErrCapacityExceeded)
	assert.Empty(t, api.creates)

	res, err := svc.SubmitFlight(context.Background(), customer, FlightRequest{FlightID: "f1", Passengers: 2})
	require.NoError(t, err)
	assert.Equal(t, 400.0, res.Quote.Total)
	assert.Equal(t, "2025-05-01", api.creates[0].StartDate)
}

func TestTourUsesRemainingSlots(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	_, err := svc.SubmitTour(context.Background(), customer, TourRequest{TourID: "t1", Participants: 4})
	assert.ErrorIs(t, err, reservation.ErrCapacityExceeded)

	res, err := svc.SubmitTour(context.Background(), customer, TourRequest{TourID: "t1", Participants: 3})
	require.NoError(t, err)
	assert.Equal(t, 120.0, res.Quote.Total)
	assert.Equal(t, "2025-06-01", api.creates[0].StartDate)
	assert.Equal(t, 3, api.creates[0].Passengers)
}

func TestQuoteCreatesNothing(t *testing.T) {
	api := seededAPI()
	svc, _, _ := newBookingService(api)

	q, err := svc.QuoteHotel(context.Background(), "", HotelRequest{
		HotelID: "h1", RoomID: "r1", Rooms: 1, RoomNumbers: []model.RoomLabel{"101"},
		CheckIn: "2025-03-01", CheckOut: "2025-03-02", Guests: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, q.Total)
	assert.Empty(t, api.creates)
}

type blockingGuard struct{ calls int }

func (g *blockingGuard) Acquire(context.Context, string) (func(), error) {
	g.calls++
	return nil, ErrInFlight
}

func TestInFlightSubmissionRejected(t *testing.T) {
	api := seededAPI()
	svc := NewBookingService(api, &blockingGuard{}, nil, nil)

	_, err := svc.SubmitCar(context.Background(), customer, CarRequest{CarID: "c1", StartDate: "2025-03-01", EndDate: "2025-03-04"})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Empty(t, api.creates)
}

func TestSpreadGuests(t *testing.T) {
	assert.Equal(t, []int{2, 2, 1}, spreadGuests(5, 3))
	assert.Equal(t, []int{1, 1}, spreadGuests(2, 2))
	assert.Equal(t, []int{4}, spreadGuests(4, 1))
}
