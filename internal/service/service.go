// Package service orchestrates the booking workflow on top of the travel
// API: availability and price checks before a submission, the sequential
// per-unit booking loop with compensation, and the payment and cancel
// transitions.
package service

import (
	"context"
	"errors"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/queue"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
)

// ErrInFlight is returned while an identical submission from the same
// caller is still running.
var ErrInFlight = errors.New("an identical booking request is already in progress")

// TravelAPI is the part of the remote API the workflow needs.
// *apiclient.Client implements it.
type TravelAPI interface {
	GetCar(ctx context.Context, cred apiclient.Credential, id string) (model.Car, error)
	RoomsByHotel(ctx context.Context, cred apiclient.Credential, hotelID string) ([]model.Room, error)
	GetFlight(ctx context.Context, cred apiclient.Credential, id string) (model.Flight, error)
	GetTour(ctx context.Context, cred apiclient.Credential, id string) (model.Tour, error)

	CreateBooking(ctx context.Context, cred apiclient.Credential, req model.CreateBookingRequest) (model.Booking, error)
	GetBooking(ctx context.Context, cred apiclient.Credential, id string) (model.Booking, error)
	ConfirmPayment(ctx context.Context, cred apiclient.Credential, id string, card reservation.CardFields) (model.Booking, error)
	CancelBooking(ctx context.Context, cred apiclient.Credential, id string) (model.Booking, error)
	UpdateBookingStatus(ctx context.Context, cred apiclient.Credential, id string, u model.StatusUpdate) (model.Booking, error)
}

// Caller identifies who is acting. Credential is forwarded upstream as is;
// UserID is only used for the ledger and the in-flight guard key.
type Caller struct {
	Credential apiclient.Credential
	UserID     string
}

func (c Caller) key() string {
	if c.UserID != "" {
		return "user:" + c.UserID
	}
	return "token:" + string(c.Credential)
}

func (c Caller) require() error {
	if c.Credential.Empty() {
		return reservation.ErrUnauthenticated
	}
	return nil
}

// Guard rejects a second acquisition of the same key until the first is
// released or expires.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Ledger records submissions for later reconciliation. Implementations must
// be safe for concurrent use.
type Ledger interface {
	Begin(ctx context.Context, s model.Submission) error
	Finish(ctx context.Context, id string, status model.SubmissionStatus, bookingIDs []string, errMsg string) error
}

// EventPublisher sends booking events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

type nopLedger struct{}

func (nopLedger) Begin(context.Context, model.Submission) error { return nil }
func (nopLedger) Finish(context.Context, string, model.SubmissionStatus, []string, string) error {
	return nil
}

// NopLedger is used when no database is configured.
var NopLedger Ledger = nopLedger{}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

// NopPublisher is used when no broker is configured.
var NopPublisher EventPublisher = nopPublisher{}
