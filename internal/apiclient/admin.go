package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// ErrUnknownKind is returned for a collection the admin console does not manage.
var ErrUnknownKind = errors.New("unknown resource kind")

// Kind is a catalog collection managed through the admin console.
type Kind string

const (
	KindUsers    Kind = "users"
	KindTours    Kind = "tours"
	KindHotels   Kind = "hotels"
	KindRooms    Kind = "rooms"
	KindFlights  Kind = "flights"
	KindCars     Kind = "cars"
	KindBookings Kind = "bookings"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindUsers, KindTours, KindHotels, KindRooms, KindFlights, KindCars, KindBookings:
		return k, nil
	}
	return "", ErrUnknownKind
}

// The admin CRUD calls pass bodies through untouched: the console's forms
// are validated by the API itself.

func (c *Client) AdminList(ctx context.Context, cred Credential, kind Kind, q url.Values) (json.RawMessage, error) {
	return c.admin(ctx, cred, http.MethodGet, "/"+string(kind), q, nil)
}

func (c *Client) AdminGet(ctx context.Context, cred Credential, kind Kind, id string) (json.RawMessage, error) {
	return c.admin(ctx, cred, http.MethodGet, idPath("/"+string(kind), id), nil, nil)
}

func (c *Client) AdminCreate(ctx context.Context, cred Credential, kind Kind, body json.RawMessage) (json.RawMessage, error) {
	return c.admin(ctx, cred, http.MethodPost, "/"+string(kind), nil, body)
}

func (c *Client) AdminUpdate(ctx context.Context, cred Credential, kind Kind, id string, body json.RawMessage) (json.RawMessage, error) {
	return c.admin(ctx, cred, http.MethodPut, idPath("/"+string(kind), id), nil, body)
}

func (c *Client) AdminDelete(ctx context.Context, cred Credential, kind Kind, id string) error {
	_, err := c.admin(ctx, cred, http.MethodDelete, idPath("/"+string(kind), id), nil, nil)
	return err
}

func (c *Client) admin(ctx context.Context, cred Credential, method, path string, q url.Values, body json.RawMessage) (json.RawMessage, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	var in any
	if body != nil {
		in = body
	}
	var out json.RawMessage
	if err := c.do(ctx, cred, method, path, q, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}
