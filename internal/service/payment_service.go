package service

import (
	"context"
	"log"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/queue"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
)

// PaymentService is the payment confirmer plus the other booking state
// transitions. The card check is a shape check only; the travel API decides
// whether a payment goes through and what the booking status becomes.
type PaymentService struct {
	api    TravelAPI
	events EventPublisher
}

func NewPaymentService(api TravelAPI, events EventPublisher) *PaymentService {
	if api == nil {
		panic("nil travel api")
	}
	if events == nil {
		events = NopPublisher
	}
	return &PaymentService{api: api, events: events}
}

// ConfirmPayment validates the card fields, makes sure the booking is still
// awaiting payment and submits the payment. The booking is returned as the
// API sent it back.
func (s *PaymentService) ConfirmPayment(ctx context.Context, caller Caller, bookingID string, card reservation.CardFields) (model.Booking, error) {
	if err := caller.require(); err != nil {
		return model.Booking{}, err
	}
	if err := card.Validate(); err != nil {
		return model.Booking{}, err
	}
	current, err := s.api.GetBooking(ctx, caller.Credential, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if !reservation.CanPay(current) {
		return model.Booking{}, reservation.ErrNotPayable
	}

	updated, err := s.api.ConfirmPayment(ctx, caller.Credential, bookingID, card)
	if err != nil {
		return model.Booking{}, err
	}
	log.Printf("payment submitted for booking %s (card ending %s): status=%s payment=%s",
		bookingID, card.Last4(), updated.Status, updated.PaymentStatus)

	ev := queue.EventFromBooking(queue.EventBookingPaid, withID(updated, bookingID))
	publish(ctx, s.events, ev)
	return updated, nil
}

// Cancel cancels a booking. A booking that is already cancelled is refused
// here without a mutation call.
func (s *PaymentService) Cancel(ctx context.Context, caller Caller, bookingID string) (model.Booking, error) {
	if err := caller.require(); err != nil {
		return model.Booking{}, err
	}
	current, err := s.api.GetBooking(ctx, caller.Credential, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if !reservation.CanCancel(current) {
		return model.Booking{}, reservation.ErrAlreadyCancelled
	}
	updated, err := s.api.CancelBooking(ctx, caller.Credential, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	publish(ctx, s.events, queue.EventFromBooking(queue.EventBookingCancelled, withID(updated, bookingID)))
	return updated, nil
}

// AdminUpdateStatus applies an administrator override. Any accepted
// combination is forwarded regardless of the booking's current state.
func (s *PaymentService) AdminUpdateStatus(ctx context.Context, caller Caller, bookingID string, u model.StatusUpdate) (model.Booking, error) {
	if err := caller.require(); err != nil {
		return model.Booking{}, err
	}
	if err := reservation.ValidateAdminStatus(u); err != nil {
		return model.Booking{}, err
	}
	updated, err := s.api.UpdateBookingStatus(ctx, caller.Credential, bookingID, u)
	if err != nil {
		return model.Booking{}, err
	}
	updated = withID(updated, bookingID)
	switch {
	case u.Status == model.StatusCancelled:
		publish(ctx, s.events, queue.EventFromBooking(queue.EventBookingCancelled, updated))
	case u.PaymentStatus == model.PaymentPaid:
		publish(ctx, s.events, queue.EventFromBooking(queue.EventBookingPaid, updated))
	}
	return updated, nil
}

// Get returns one booking with the actions it still allows.
func (s *PaymentService) Get(ctx context.Context, cred apiclient.Credential, bookingID string) (BookingView, error) {
	b, err := s.api.GetBooking(ctx, cred, bookingID)
	if err != nil {
		return BookingView{}, err
	}
	return NewBookingView(b), nil
}

// BookingView is a booking plus the actions a client should offer for it.
type BookingView struct {
	model.Booking
	Actions reservation.Actions `json:"actions"`
}

func NewBookingView(b model.Booking) BookingView {
	return BookingView{Booking: b, Actions: reservation.ActionsFor(b)}
}

// Some API versions answer mutations without echoing the id.
func withID(b model.Booking, id string) model.Booking {
	if b.ID == "" {
		b.ID = id
	}
	return b
}
