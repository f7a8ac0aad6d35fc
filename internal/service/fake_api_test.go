package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/queue"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
)

// fakeAPI is an in-memory travel API. failCreateAt makes the n-th
// CreateBooking call (1-based) fail; failCancel lists ids whose cancel fails.
type fakeAPI struct {
	mu sync.Mutex

	cars    map[string]model.Car
	rooms   map[string][]model.Room
	flights map[string]model.Flight
	tours   map[string]model.Tour

	bookings     map[string]model.Booking
	failCreateAt int
	failCancel   map[string]bool

	creates  []model.CreateBookingRequest
	cancels  []string
	payments []string
	updates  []model.StatusUpdate
	nextID   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		cars:       map[string]model.Car{},
		rooms:      map[string][]model.Room{},
		flights:    map[string]model.Flight{},
		tours:      map[string]model.Tour{},
		bookings:   map[string]model.Booking{},
		failCancel: map[string]bool{},
	}
}

func notFound() error { return &apiclient.APIError{Status: http.StatusNotFound, Message: "not found"} }

func (f *fakeAPI) GetCar(_ context.Context, _ apiclient.Credential, id string) (model.Car, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cars[id]
	if !ok {
		return model.Car{}, notFound()
	}
	return c, nil
}

func (f *fakeAPI) RoomsByHotel(_ context.Context, _ apiclient.Credential, hotelID string) ([]model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rooms[hotelID]
	if !ok {
		return nil, notFound()
	}
	return r, nil
}

func (f *fakeAPI) GetFlight(_ context.Context, _ apiclient.Credential, id string) (model.Flight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fl, ok := f.flights[id]
	if !ok {
		return model.Flight{}, notFound()
	}
	return fl, nil
}

func (f *fakeAPI) GetTour(_ context.Context, _ apiclient.Credential, id string) (model.Tour, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tours[id]
	if !ok {
		return model.Tour{}, notFound()
	}
	return t, nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, _ apiclient.Credential, req model.CreateBookingRequest) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	if f.failCreateAt > 0 && len(f.creates) == f.failCreateAt {
		return model.Booking{}, &apiclient.APIError{Status: http.StatusBadRequest, Message: "Room is already booked"}
	}
	f.nextID++
	b := model.Booking{
		ID:            fmt.Sprintf("b%d", f.nextID),
		BookingType:   req.BookingType,
		RoomNumber:    req.RoomNumber,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TotalPrice:    req.TotalPrice,
		Passengers:    req.Passengers,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
	}
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeAPI) GetBooking(_ context.Context, _ apiclient.Credential, id string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return model.Booking{}, notFound()
	}
	return b, nil
}

func (f *fakeAPI) ConfirmPayment(_ context.Context, _ apiclient.Credential, id string, _ reservation.CardFields) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, id)
	b := f.bookings[id]
	b.PaymentStatus = model.PaymentPaid
	f.bookings[id] = b
	return b, nil
}

func (f *fakeAPI) CancelBooking(_ context.Context, _ apiclient.Credential, id string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, id)
	if f.failCancel[id] {
		return model.Booking{}, &apiclient.APIError{Status: http.StatusInternalServerError, Message: "boom"}
	}
	b := f.bookings[id]
	b.Status = model.StatusCancelled
	f.bookings[id] = b
	return b, nil
}

func (f *fakeAPI) UpdateBookingStatus(_ context.Context, _ apiclient.Credential, id string, u model.StatusUpdate) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	b := f.bookings[id]
	if u.Status != "" {
		b.Status = u.Status
	}
	if u.PaymentStatus != "" {
		b.PaymentStatus = u.PaymentStatus
	}
	f.bookings[id] = b
	return b, nil
}

type recordingLedger struct {
	mu       sync.Mutex
	begun    []model.Submission
	statuses map[string]model.SubmissionStatus
	ids      map[string][]string
}

func newRecordingLedger() *recordingLedger {
	return &recordingLedger{statuses: map[string]model.SubmissionStatus{}, ids: map[string][]string{}}
}

func (l *recordingLedger) Begin(_ context.Context, s model.Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.begun = append(l.begun, s)
	l.statuses[s.ID] = s.Status
	return nil
}

func (l *recordingLedger) Finish(_ context.Context, id string, st model.SubmissionStatus, ids []string, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses[id] = st
	l.ids[id] = ids
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

var customer = Caller{Credential: "tok", UserID: "u1"}
