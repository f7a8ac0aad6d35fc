package model

import "time"

// SubmissionStatus tracks a booking submission through the gateway.
type SubmissionStatus string

const (
	SubmissionPending            SubmissionStatus = "pending"
	SubmissionCompleted          SubmissionStatus = "completed"
	SubmissionFailed             SubmissionStatus = "failed"
	SubmissionCompensated        SubmissionStatus = "compensated"
	SubmissionCompensationFailed SubmissionStatus = "compensation_failed"
)

// Submission is one row of the booking_submissions ledger. A submission may
// create several bookings upstream (one per hotel room number); their ids
// are stored comma separated in BookingIDs.
//
// Fields:
//  ID          – gateway-generated uuid, also sent on booking events.
//  UserID      – subject of the caller's bearer token, empty when unknown.
//  BookingType – flight, hotel, tour or car.
//  ItemID      – id of the booked resource.
//  Units       – billable units per booking line (nights or headcount).
//  TotalPrice  – unrounded sum of all lines.
//  Status      – pending until the loop ends, then a terminal status.
//  BookingIDs  – ids created upstream, in creation order.
//  Error       – last failure message, empty on success.
type Submission struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"userId"`
	BookingType BookingType      `db:"booking_type" json:"bookingType"`
	ItemID      string           `db:"item_id" json:"itemId"`
	Units       int              `db:"units" json:"units"`
	TotalPrice  float64          `db:"total_price" json:"totalPrice"`
	Status      SubmissionStatus `db:"status" json:"status"`
	BookingIDs  string           `db:"booking_ids" json:"bookingIds"`
	Error       string           `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}
