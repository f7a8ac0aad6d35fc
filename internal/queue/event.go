// Package queue defines the booking events exchanged over the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/travel-booking-gateway/internal/model"
)

// BookingQueueName is the durable queue every booking event goes to.
const BookingQueueName = "booking.events"

// EventType names what happened to a booking.
type EventType string

const (
	EventBookingCreated     EventType = "booking.created"
	EventBookingPaid        EventType = "booking.paid"
	EventBookingCancelled   EventType = "booking.cancelled"
	EventBookingCompensated EventType = "booking.compensated"
)

// BookingEvent is published after the travel API accepted a mutation. It
// carries enough for downstream consumers to log or notify without calling
// the API again. BookingIDs holds one id per reserved unit; a multi-room
// hotel booking produces several.
type BookingEvent struct {
	EventID       string              `json:"event_id"`
	Type          EventType           `json:"type"`
	SubmissionID  string              `json:"submission_id,omitempty"`
	BookingIDs    []string            `json:"booking_ids"`
	BookingType   model.BookingType   `json:"booking_type"`
	ItemID        string              `json:"item_id,omitempty"`
	UserID        string              `json:"user_id,omitempty"`
	TotalPrice    float64             `json:"total_price"`
	Status        model.BookingStatus `json:"status,omitempty"`
	PaymentStatus model.PaymentStatus `json:"payment_status,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
	Detail        string              `json:"detail,omitempty"`
}

// NewBookingEvent stamps a fresh event id and time.
func NewBookingEvent(t EventType) BookingEvent {
	return BookingEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}

// EventFromBooking fills an event from a booking as the API returned it.
func EventFromBooking(t EventType, b model.Booking) BookingEvent {
	ev := NewBookingEvent(t)
	ev.BookingIDs = []string{b.ID}
	ev.BookingType = b.BookingType
	ev.ItemID = b.BookedItemID()
	ev.UserID = b.UserID()
	ev.TotalPrice = b.TotalPrice
	ev.Status = b.Status
	ev.PaymentStatus = b.PaymentStatus
	return ev
}
