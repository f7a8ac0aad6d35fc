package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/queue"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
	"github.com/iliyamo/travel-booking-gateway/internal/utils"
)

// CarRequest books one car from StartDate to EndDate.
type CarRequest struct {
	CarID     string `json:"carId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// HotelRequest books Rooms room numbers of one room type. RoomNumbers must
// list exactly Rooms distinct numbers.
type HotelRequest struct {
	HotelID     string            `json:"hotelId"`
	RoomID      string            `json:"roomId"`
	RoomNumbers []model.RoomLabel `json:"roomNumbers"`
	Rooms       int               `json:"rooms"`
	CheckIn     string            `json:"checkIn"`
	CheckOut    string            `json:"checkOut"`
	Guests      int               `json:"guests"`
}

// FlightRequest books Passengers seats on one flight.
type FlightRequest struct {
	FlightID   string `json:"flightId"`
	Passengers int    `json:"passengers"`
}

// TourRequest books Participants places on a tour. StartDate defaults to
// the tour's own start date.
type TourRequest struct {
	TourID       string `json:"tourId"`
	Participants int    `json:"participants"`
	StartDate    string `json:"startDate,omitempty"`
}

// SubmitResult is what a successful submission returns. Bookings are in
// creation order, one per reserved unit.
type SubmitResult struct {
	SubmissionID string            `json:"submissionId"`
	Quote        reservation.Quote `json:"quote"`
	DisplayTotal float64           `json:"displayTotal"`
	Bookings     []model.Booking   `json:"bookings"`
}

// PartialFailureError reports a multi-unit submission that failed after at
// least one booking was created. Created bookings are cancelled in reverse
// order; any that could not be cancelled are listed in Uncompensated and
// need an operator.
type PartialFailureError struct {
	SubmissionID  string
	Attempted     int
	Created       []string
	Compensated   []string
	Uncompensated []string
	Cause         error
}

func (e *PartialFailureError) Error() string {
	msg := fmt.Sprintf("booking %d of %d failed: %v; %d cancelled", len(e.Created)+1, e.Attempted, e.Cause, len(e.Compensated))
	if len(e.Uncompensated) > 0 {
		msg += fmt.Sprintf(", %d left in place (%s)", len(e.Uncompensated), strings.Join(e.Uncompensated, ", "))
	}
	return msg
}

func (e *PartialFailureError) Unwrap() error { return e.Cause }

// plan is a validated and priced submission, ready to be posted.
type plan struct {
	bookingType model.BookingType
	itemID      string
	units       int
	quote       reservation.Quote
	requests    []model.CreateBookingRequest
	fingerprint []string
}

// BookingService is the booking submitter. Every Submit* call validates and
// prices the request against freshly fetched resource data before anything
// is created upstream.
type BookingService struct {
	api    TravelAPI
	guard  Guard
	ledger Ledger
	events EventPublisher
}

func NewBookingService(api TravelAPI, guard Guard, ledger Ledger, events EventPublisher) *BookingService {
	if api == nil {
		panic("nil travel api")
	}
	if guard == nil {
		guard = NewLocalGuard()
	}
	if ledger == nil {
		ledger = NopLedger
	}
	if events == nil {
		events = NopPublisher
	}
	return &BookingService{api: api, guard: guard, ledger: ledger, events: events}
}

func (s *BookingService) SubmitCar(ctx context.Context, caller Caller, req CarRequest) (SubmitResult, error) {
	if err := caller.require(); err != nil {
		return SubmitResult{}, err
	}
	p, err := s.planCar(ctx, caller.Credential, req)
	if err != nil {
		return SubmitResult{}, err
	}
	return s.submit(ctx, caller, p)
}

func (s *BookingService) SubmitHotel(ctx context.Context, caller Caller, req HotelRequest) (SubmitResult, error) {
	if err := caller.require(); err != nil {
		return SubmitResult{}, err
	}
	p, err := s.planHotel(ctx, caller.Credential, req)
	if err != nil {
		return SubmitResult{}, err
	}
	return s.submit(ctx, caller, p)
}

func (s *BookingService) SubmitFlight(ctx context.Context, caller Caller, req FlightRequest) (SubmitResult, error) {
	if err := caller.require(); err != nil {
		return SubmitResult{}, err
	}
	p, err := s.planFlight(ctx, caller.Credential, req)
	if err != nil {
		return SubmitResult{}, err
	}
	return s.submit(ctx, caller, p)
}

func (s *BookingService) SubmitTour(ctx context.Context, caller Caller, req TourRequest) (SubmitResult, error) {
	if err := caller.require(); err != nil {
		return SubmitResult{}, err
	}
	p, err := s.planTour(ctx, caller.Credential, req)
	if err != nil {
		return SubmitResult{}, err
	}
	return s.submit(ctx, caller, p)
}

// The Quote* calls run the same checks as Submit* without creating anything
// and without requiring a credential.

func (s *BookingService) QuoteCar(ctx context.Context, cred apiclient.Credential, req CarRequest) (reservation.Quote, error) {
	p, err := s.planCar(ctx, cred, req)
	return p.quote, err
}

func (s *BookingService) QuoteHotel(ctx context.Context, cred apiclient.Credential, req HotelRequest) (reservation.Quote, error) {
	p, err := s.planHotel(ctx, cred, req)
	return p.quote, err
}

func (s *BookingService) QuoteFlight(ctx context.Context, cred apiclient.Credential, req FlightRequest) (reservation.Quote, error) {
	p, err := s.planFlight(ctx, cred, req)
	return p.quote, err
}

func (s *BookingService) QuoteTour(ctx context.Context, cred apiclient.Credential, req TourRequest) (reservation.Quote, error) {
	p, err := s.planTour(ctx, cred, req)
	return p.quote, err
}

// parseRange validates a start/end pair and returns the billable nights.
func parseRange(startField, endField, start, end string, verr *reservation.ValidationError) (time.Time, time.Time, int) {
	from, err := reservation.ParseDay(start)
	if err != nil {
		verr.Add(startField, "must be a date (YYYY-MM-DD)")
	}
	to, err2 := reservation.ParseDay(end)
	if err2 != nil {
		verr.Add(endField, "must be a date (YYYY-MM-DD)")
	}
	if err != nil || err2 != nil {
		return from, to, 0
	}
	return from, to, reservation.CheckStay(startField, endField, from, to, verr)
}

func (s *BookingService) planCar(ctx context.Context, cred apiclient.Credential, req CarRequest) (plan, error) {
	verr := &reservation.ValidationError{}
	if strings.TrimSpace(req.CarID) == "" {
		verr.Add("carId", "is required")
	}
	start, end, nights := parseRange("startDate", "endDate", req.StartDate, req.EndDate, verr)
	if err := verr.OrNil(); err != nil {
		return plan{}, err
	}

	car, err := s.api.GetCar(ctx, cred, req.CarID)
	if err != nil {
		return plan{}, err
	}
	blocked, err := reservation.ParseBlockedDates(car.UnavailableDates)
	if err != nil {
		return plan{}, fmt.Errorf("car %s calendar unreadable (%v): %w", car.ID, err, reservation.ErrUnavailable)
	}
	if err := reservation.CheckAvailable("car "+carLabel(car), blocked, start, end); err != nil {
		return plan{}, err
	}
	line, err := reservation.NewQuoteLine(carLabel(car), car.DailyRate, nights)
	if err != nil {
		return plan{}, err
	}
	quote := reservation.NewQuote(line)
	return plan{
		bookingType: model.BookingCar,
		itemID:      req.CarID,
		units:       nights,
		quote:       quote,
		requests: []model.CreateBookingRequest{{
			BookingType:  model.BookingCar,
			BookedItemID: req.CarID,
			StartDate:    reservation.DayKey(start),
			EndDate:      reservation.DayKey(end),
			TotalPrice:   line.Amount,
			Passengers:   1,
		}},
		fingerprint: []string{req.CarID, reservation.DayKey(start), reservation.DayKey(end)},
	}, nil
}

func carLabel(c model.Car) string {
	if name := strings.TrimSpace(c.Make + " " + c.Model); name != "" {
		return name
	}
	return c.ID
}

func (s *BookingService) planHotel(ctx context.Context, cred apiclient.Credential, req HotelRequest) (plan, error) {
	verr := &reservation.ValidationError{}
	if strings.TrimSpace(req.HotelID) == "" {
		verr.Add("hotelId", "is required")
	}
	if strings.TrimSpace(req.RoomID) == "" {
		verr.Add("roomId", "is required")
	}
	if req.Rooms < 1 {
		verr.Add("rooms", "must be at least 1")
	}
	seen := make(map[model.RoomLabel]bool, len(req.RoomNumbers))
	for _, n := range req.RoomNumbers {
		if strings.TrimSpace(string(n)) == "" || seen[n] {
			verr.Add("roomNumbers", "must be distinct, non-empty room numbers")
			break
		}
		seen[n] = true
	}
	if req.Rooms >= 1 && req.Guests >= 1 && req.Guests < req.Rooms {
		verr.Add("guests", "must be at least one per room")
	}
	start, end, nights := parseRange("checkIn", "checkOut", req.CheckIn, req.CheckOut, verr)
	if err := verr.OrNil(); err != nil {
		return plan{}, err
	}
	if len(req.RoomNumbers) != req.Rooms {
		return plan{}, reservation.ErrRoomCountMismatch
	}

	rooms, err := s.api.RoomsByHotel(ctx, cred, req.HotelID)
	if err != nil {
		return plan{}, err
	}
	var room *model.Room
	for i := range rooms {
		if rooms[i].ID == req.RoomID {
			room = &rooms[i]
			break
		}
	}
	if room == nil {
		return plan{}, fmt.Errorf("room %s in hotel %s: %w", req.RoomID, req.HotelID, apiclient.ErrNotFound)
	}
	capacity := req.Guests
	if room.MaxPeople > 0 {
		capacity = room.MaxPeople * req.Rooms
	}
	if _, err := reservation.Headcount(req.Guests, capacity); err != nil {
		return plan{}, err
	}

	guests := spreadGuests(req.Guests, req.Rooms)
	lines := make([]reservation.QuoteLine, 0, req.Rooms)
	requests := make([]model.CreateBookingRequest, 0, req.Rooms)
	for i, label := range req.RoomNumbers {
		rn, ok := room.FindNumber(label)
		if !ok {
			verr.Add("roomNumbers", fmt.Sprintf("room %s does not exist in %s", label, room.Title))
			return plan{}, verr
		}
		blocked, err := reservation.ParseBlockedDates(rn.UnavailableDates)
		if err != nil {
			return plan{}, fmt.Errorf("room %s calendar unreadable (%v): %w", label, err, reservation.ErrUnavailable)
		}
		if err := reservation.CheckAvailable("room "+string(label), blocked, start, end); err != nil {
			return plan{}, err
		}
		line, err := reservation.NewQuoteLine("Room "+string(label), room.Price, nights)
		if err != nil {
			return plan{}, err
		}
		lines = append(lines, line)
		requests = append(requests, model.CreateBookingRequest{
			BookingType:  model.BookingHotel,
			BookedItemID: req.HotelID,
			RoomID:       req.RoomID,
			RoomNumber:   label,
			StartDate:    reservation.DayKey(start),
			EndDate:      reservation.DayKey(end),
			TotalPrice:   line.Amount,
			Passengers:   guests[i],
		})
	}

	fp := []string{req.HotelID, req.RoomID, reservation.DayKey(start), reservation.DayKey(end)}
	for _, n := range req.RoomNumbers {
		fp = append(fp, string(n))
	}
	return plan{
		bookingType: model.BookingHotel,
		itemID:      req.HotelID,
		units:       nights,
		quote:       reservation.NewQuote(lines...),
		requests:    requests,
		fingerprint: fp,
	}, nil
}

// spreadGuests splits guests over rooms as evenly as possible, earlier rooms
// first. The parts always sum to guests; callers ensure guests >= rooms.
func spreadGuests(guests, rooms int) []int {
	out := make([]int, rooms)
	for i := range out {
		out[i] = guests / rooms
		if i < guests%rooms {
			out[i]++
		}
	}
	return out
}

func (s *BookingService) planFlight(ctx context.Context, cred apiclient.Credential, req FlightRequest) (plan, error) {
	verr := &reservation.ValidationError{}
	if strings.TrimSpace(req.FlightID) == "" {
		verr.Add("flightId", "is required")
	}
	if req.Passengers < 1 {
		verr.Add("passengers", "must be at least 1")
	}
	if err := verr.OrNil(); err != nil {
		return plan{}, err
	}

	flight, err := s.api.GetFlight(ctx, cred, req.FlightID)
	if err != nil {
		return plan{}, err
	}
	if _, err := reservation.Headcount(req.Passengers, flight.AvailableSeats); err != nil {
		return plan{}, err
	}
	line, err := reservation.NewQuoteLine("Seat "+flight.FlightNumber, flight.Price, req.Passengers)
	if err != nil {
		return plan{}, err
	}
	day := time.Now().UTC()
	if !flight.DepartureTime.IsZero() {
		day = flight.DepartureTime
	}
	return plan{
		bookingType: model.BookingFlight,
		itemID:      req.FlightID,
		units:       req.Passengers,
		quote:       reservation.NewQuote(line),
		requests: []model.CreateBookingRequest{{
			BookingType:  model.BookingFlight,
			BookedItemID: req.FlightID,
			StartDate:    reservation.DayKey(day),
			TotalPrice:   line.Amount,
			Passengers:   req.Passengers,
		}},
		fingerprint: []string{req.FlightID, strconv.Itoa(req.Passengers)},
	}, nil
}

func (s *BookingService) planTour(ctx context.Context, cred apiclient.Credential, req TourRequest) (plan, error) {
	verr := &reservation.ValidationError{}
	if strings.TrimSpace(req.TourID) == "" {
		verr.Add("tourId", "is required")
	}
	if req.Participants < 1 {
		verr.Add("participants", "must be at least 1")
	}
	var start time.Time
	if req.StartDate != "" {
		d, err := reservation.ParseDay(req.StartDate)
		if err != nil {
			verr.Add("startDate", "must be a date (YYYY-MM-DD)")
		}
		start = d
	}
	if err := verr.OrNil(); err != nil {
		return plan{}, err
	}

	tour, err := s.api.GetTour(ctx, cred, req.TourID)
	if err != nil {
		return plan{}, err
	}
	if start.IsZero() && tour.StartDate != "" {
		if d, err := reservation.ParseDay(tour.StartDate); err == nil {
			start = d
		}
	}
	if start.IsZero() {
		verr.Add("startDate", "is required for this tour")
		return plan{}, verr
	}
	if _, err := reservation.Headcount(req.Participants, tour.CapacityRemaining()); err != nil {
		return plan{}, err
	}
	line, err := reservation.NewQuoteLine(tour.Title, tour.Price, req.Participants)
	if err != nil {
		return plan{}, err
	}
	return plan{
		bookingType: model.BookingTour,
		itemID:      req.TourID,
		units:       req.Participants,
		quote:       reservation.NewQuote(line),
		requests: []model.CreateBookingRequest{{
			BookingType:  model.BookingTour,
			BookedItemID: req.TourID,
			StartDate:    reservation.DayKey(start),
			TotalPrice:   line.Amount,
			Passengers:   req.Participants,
		}},
		fingerprint: []string{req.TourID, reservation.DayKey(start), strconv.Itoa(req.Participants)},
	}, nil
}

// submit posts the planned bookings one at a time, each awaited before the
// next. A failure after the first booking triggers compensation.
func (s *BookingService) submit(ctx context.Context, caller Caller, p plan) (SubmitResult, error) {
	key := utils.Fingerprint(append([]string{caller.key(), string(p.bookingType)}, p.fingerprint...)...)
	release, err := s.guard.Acquire(ctx, key)
	if err != nil {
		return SubmitResult{}, err
	}
	defer release()

	sub := model.Submission{
		ID:          uuid.NewString(),
		UserID:      caller.UserID,
		BookingType: p.bookingType,
		ItemID:      p.itemID,
		Units:       p.units,
		TotalPrice:  p.quote.Total,
		Status:      model.SubmissionPending,
	}
	if err := s.ledger.Begin(ctx, sub); err != nil {
		log.Printf("ledger: begin submission %s: %v", sub.ID, err)
	}

	created := make([]model.Booking, 0, len(p.requests))
	for _, r := range p.requests {
		b, err := s.api.CreateBooking(ctx, caller.Credential, r)
		if err != nil {
			if len(created) == 0 {
				s.finish(ctx, sub.ID, model.SubmissionFailed, nil, err)
				return SubmitResult{}, err
			}
			return SubmitResult{}, s.compensate(ctx, caller, sub, p, created, err)
		}
		created = append(created, b)
	}

	ids := bookingIDs(created)
	s.finish(ctx, sub.ID, model.SubmissionCompleted, ids, nil)

	ev := queue.NewBookingEvent(queue.EventBookingCreated)
	ev.SubmissionID = sub.ID
	ev.BookingIDs = ids
	ev.BookingType = p.bookingType
	ev.ItemID = p.itemID
	ev.UserID = caller.UserID
	ev.TotalPrice = p.quote.Total
	ev.Status = model.StatusPending
	ev.PaymentStatus = model.PaymentPending
	publish(ctx, s.events, ev)

	return SubmitResult{
		SubmissionID: sub.ID,
		Quote:        p.quote,
		DisplayTotal: p.quote.DisplayTotal(),
		Bookings:     created,
	}, nil
}

// compensate cancels the bookings created so far, newest first. It runs
// detached from ctx so a caller that disconnects does not leave a half
// finished submission behind.
func (s *BookingService) compensate(ctx context.Context, caller Caller, sub model.Submission, p plan, created []model.Booking, cause error) error {
	cctx := context.WithoutCancel(ctx)
	perr := &PartialFailureError{
		SubmissionID: sub.ID,
		Attempted:    len(p.requests),
		Created:      bookingIDs(created),
		Cause:        cause,
	}
	for i := len(created) - 1; i >= 0; i-- {
		id := created[i].ID
		if _, err := s.api.CancelBooking(cctx, caller.Credential, id); err != nil && !errors.Is(err, reservation.ErrAlreadyCancelled) {
			log.Printf("submission %s: compensating cancel of booking %s failed: %v", sub.ID, id, err)
			perr.Uncompensated = append(perr.Uncompensated, id)
			continue
		}
		perr.Compensated = append(perr.Compensated, id)
	}

	status := model.SubmissionCompensated
	if len(perr.Uncompensated) > 0 {
		status = model.SubmissionCompensationFailed
	}
	s.finish(cctx, sub.ID, status, perr.Created, perr)

	ev := queue.NewBookingEvent(queue.EventBookingCompensated)
	ev.SubmissionID = sub.ID
	ev.BookingIDs = perr.Compensated
	ev.BookingType = p.bookingType
	ev.ItemID = p.itemID
	ev.UserID = caller.UserID
	ev.Status = model.StatusCancelled
	ev.Detail = perr.Error()
	publish(cctx, s.events, ev)

	return perr
}

func (s *BookingService) finish(ctx context.Context, id string, status model.SubmissionStatus, ids []string, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := s.ledger.Finish(context.WithoutCancel(ctx), id, status, ids, msg); err != nil {
		log.Printf("ledger: finish submission %s as %s: %v", id, status, err)
	}
}

func bookingIDs(bs []model.Booking) []string {
	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}
