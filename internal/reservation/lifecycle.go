package reservation

import (
	"strings"

	"github.com/iliyamo/travel-booking-gateway/internal/model"
)

// ParseBookingType accepts any casing of flight, hotel, tour or car.
func ParseBookingType(s string) (model.BookingType, error) {
	switch t := model.BookingType(strings.ToLower(strings.TrimSpace(s))); t {
	case model.BookingFlight, model.BookingHotel, model.BookingTour, model.BookingCar:
		return t, nil
	}
	return "", ErrInvalidType
}

// ParseStatus accepts pending, confirmed or cancelled.
func ParseStatus(s string) (model.BookingStatus, error) {
	switch st := model.BookingStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// ParsePaymentStatus accepts pending, paid, refunded or failed.
func ParsePaymentStatus(s string) (model.PaymentStatus, error) {
	switch ps := model.PaymentStatus(strings.ToLower(strings.TrimSpace(s))); ps {
	case model.PaymentPending, model.PaymentPaid, model.PaymentRefunded, model.PaymentFailed:
		return ps, nil
	}
	return "", ErrInvalidStatus
}

// CanCancel is false once a booking is cancelled; cancellation is terminal.
func CanCancel(b model.Booking) bool {
	return b.Status != model.StatusCancelled
}

// CanPay holds only for a booking that is still pending on both axes.
func CanPay(b model.Booking) bool {
	return b.Status == model.StatusPending && b.PaymentStatus == model.PaymentPending
}

// ValidateAdminStatus checks an administrator override. Any combination of
// {pending, confirmed, cancelled} and {pending, paid, refunded} is allowed,
// regardless of the booking's current state. An empty field leaves that
// axis unchanged, but at least one must be set.
func ValidateAdminStatus(u model.StatusUpdate) error {
	if u.Status == "" && u.PaymentStatus == "" {
		return ErrInvalidStatus
	}
	switch u.Status {
	case "", model.StatusPending, model.StatusConfirmed, model.StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	switch u.PaymentStatus {
	case "", model.PaymentPending, model.PaymentPaid, model.PaymentRefunded:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// Actions tells a client which booking actions to offer.
type Actions struct {
	CanCancel bool `json:"canCancel"`
	CanPay    bool `json:"canPay"`
}

func ActionsFor(b model.Booking) Actions {
	return Actions{CanCancel: CanCancel(b), CanPay: CanPay(b)}
}
