package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// BookingType names the kind of resource a booking reserves.
type BookingType string

const (
	BookingFlight BookingType = "flight"
	BookingHotel  BookingType = "hotel"
	BookingTour   BookingType = "tour"
	BookingCar    BookingType = "car"
)

// BookingStatus is the reservation state owned by the travel API.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks the (mock) payment of a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

// Booking mirrors the booking document returned by the travel API. The
// gateway never stores it; it only holds the copy for the duration of a
// request.
//
// Fields:
//  ID            – booking identifier assigned upstream.
//  BookingType   – flight, hotel, tour or car.
//  BookedItem    – the reserved resource, either its id or the populated document.
//  Room          – hotel room type (id or populated document), hotel only.
//  RoomNumber    – concrete room number, hotel only.
//  StartDate     – first day (or departure) of the reservation.
//  EndDate       – last day, empty for flights and tours.
//  TotalPrice    – price charged, never negative.
//  Passengers    – seats, guests or participants depending on BookingType.
//  Status        – pending, confirmed or cancelled.
//  PaymentStatus – pending, paid, refunded or failed.
//  CreatedAt     – creation timestamp.
type Booking struct {
	ID            string          `json:"id"`
	User          json.RawMessage `json:"user,omitempty"`
	BookingType   BookingType     `json:"bookingType"`
	BookedItem    json.RawMessage `json:"bookedItem,omitempty"`
	Room          json.RawMessage `json:"room,omitempty"`
	RoomNumber    RoomLabel       `json:"roomNumber,omitempty"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate,omitempty"`
	TotalPrice    float64         `json:"totalPrice"`
	Passengers    int             `json:"passengers"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// BookedItemID returns the id of the booked resource whether the API sent
// a bare id or a populated document.
func (b Booking) BookedItemID() string { return refID(b.BookedItem) }

// UserID returns the id of the owning user, populated or not.
func (b Booking) UserID() string { return refID(b.User) }

func refID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var doc struct {
		ID    string `json:"id"`
		Mongo string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	if doc.ID != "" {
		return doc.ID
	}
	return doc.Mongo
}

// RoomLabel is a hotel room number. The API sends it as a JSON number for
// numeric rooms and as a string for labels like "12B".
type RoomLabel string

func (r *RoomLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RoomLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RoomLabel(n.String())
	return nil
}

// MarshalJSON keeps numeric labels numeric so the API sees the type it sent.
func (r RoomLabel) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(r), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(r) {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}

// CreateBookingRequest is the POST /bookings body.
type CreateBookingRequest struct {
	BookingType  BookingType `json:"bookingType"`
	BookedItemID string      `json:"bookedItemId"`
	RoomID       string      `json:"roomId,omitempty"`
	RoomNumber   RoomLabel   `json:"roomNumber,omitempty"`
	StartDate    string      `json:"startDate"`
	EndDate      string      `json:"endDate,omitempty"`
	TotalPrice   float64     `json:"totalPrice"`
	Passengers   int         `json:"passengers"`
}

// StatusUpdate is the admin override body for PUT /bookings/:id/status.
type StatusUpdate struct {
	Status        BookingStatus `json:"status,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
}
