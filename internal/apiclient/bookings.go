package apiclient

import (
	"context"
	"net/http"

	"github.com/iliyamo/travel-booking-gateway/internal/model"
	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
)

// CreateBooking posts one booking. The API creates it pending/pending and
// updates the resource's availability on its side.
func (c *Client) CreateBooking(ctx context.Context, cred Credential, req model.CreateBookingRequest) (model.Booking, error) {
	var out model.Booking
	if err := requireCredential(cred); err != nil {
		return out, err
	}
	err := c.do(ctx, cred, http.MethodPost, "/bookings", nil, req, &out)
	return out, err
}

func (c *Client) GetBooking(ctx context.Context, cred Credential, id string) (model.Booking, error) {
	if err := requireCredential(cred); err != nil {
		return model.Booking{}, err
	}
	return getOne[model.Booking](ctx, c, cred, idPath("/bookings", id))
}

// MyBookings lists the bookings of the credential's owner.
func (c *Client) MyBookings(ctx context.Context, cred Credential) ([]model.Booking, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return getList[model.Booking](ctx, c, cred, "/bookings/mybookings", nil)
}

// ListBookings is the admin listing of every booking.
func (c *Client) ListBookings(ctx context.Context, cred Credential) ([]model.Booking, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return getList[model.Booking](ctx, c, cred, "/bookings", nil)
}

// ConfirmPayment submits the mock card fields against a pending booking.
// The returned booking is whatever the API answers; its status after
// payment is decided upstream.
func (c *Client) ConfirmPayment(ctx context.Context, cred Credential, id string, card reservation.CardFields) (model.Booking, error) {
	var out model.Booking
	if err := requireCredential(cred); err != nil {
		return out, err
	}
	err := c.do(ctx, cred, http.MethodPut, idPath("/bookings", id)+"/confirm-payment", nil, card.Normalized(), &out)
	return out, err
}

func (c *Client) CancelBooking(ctx context.Context, cred Credential, id string) (model.Booking, error) {
	var out model.Booking
	if err := requireCredential(cred); err != nil {
		return out, err
	}
	err := c.do(ctx, cred, http.MethodPut, idPath("/bookings", id)+"/cancel", nil, nil, &out)
	return out, err
}

// UpdateBookingStatus is the administrator override.
func (c *Client) UpdateBookingStatus(ctx context.Context, cred Credential, id string, u model.StatusUpdate) (model.Booking, error) {
	var out model.Booking
	if err := requireCredential(cred); err != nil {
		return out, err
	}
	err := c.do(ctx, cred, http.MethodPut, idPath("/bookings", id)+"/status", nil, u, &out)
	return out, err
}
