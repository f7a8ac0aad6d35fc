package apiclient

import (
	"context"
	"net/url"

	"github.com/iliyamo/travel-booking-gateway/internal/model"
)

// Catalog reads work without a credential; the bearer is forwarded when the
// caller has one.

func (c *Client) ListCars(ctx context.Context, cred Credential, q url.Values) ([]model.Car, error) {
	return getList[model.Car](ctx, c, cred, "/cars", q)
}

func (c *Client) GetCar(ctx context.Context, cred Credential, id string) (model.Car, error) {
	return getOne[model.Car](ctx, c, cred, idPath("/cars", id))
}

func (c *Client) ListHotels(ctx context.Context, cred Credential, q url.Values) ([]model.Hotel, error) {
	return getList[model.Hotel](ctx, c, cred, "/hotels", q)
}

func (c *Client) GetHotel(ctx context.Context, cred Credential, id string) (model.Hotel, error) {
	return getOne[model.Hotel](ctx, c, cred, idPath("/hotels", id))
}

// RoomsByHotel returns the room types of a hotel with their room numbers
// and per-number blocked dates.
func (c *Client) RoomsByHotel(ctx context.Context, cred Credential, hotelID string) ([]model.Room, error) {
	return getList[model.Room](ctx, c, cred, idPath("/rooms/byhotel", hotelID), nil)
}

func (c *Client) ListFlights(ctx context.Context, cred Credential, q url.Values) ([]model.Flight, error) {
	return getList[model.Flight](ctx, c, cred, "/flights", q)
}

func (c *Client) GetFlight(ctx context.Context, cred Credential, id string) (model.Flight, error) {
	return getOne[model.Flight](ctx, c, cred, idPath("/flights", id))
}

func (c *Client) ListTours(ctx context.Context, cred Credential, q url.Values) ([]model.Tour, error) {
	return getList[model.Tour](ctx, c, cred, "/tours", q)
}

func (c *Client) GetTour(ctx context.Context, cred Credential, id string) (model.Tour, error) {
	return getOne[model.Tour](ctx, c, cred, idPath("/tours", id))
}
