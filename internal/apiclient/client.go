// Package apiclient talks to the remote travel API. The bearer credential
// is always passed in by the caller; the client keeps no token of its own.
// Requests are never retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/travel-booking-gateway/internal/reservation"
)

// ErrNotFound matches any APIError with status 404.
var ErrNotFound = errors.New("not found")

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// Credential is the caller's bearer token for the travel API.
type Credential string

func (c Credential) Empty() bool { return strings.TrimSpace(string(c)) == "" }

// APIError is a non-2xx response. Message is the server's own message when
// the body carried one and a generic fallback otherwise.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("travel api: %d %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		h := *c.http
		h.Timeout = d
		c.http = &h
	}
}

// New builds a client for the API rooted at baseURL, e.g.
// "https://api.example.com/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{base: u, http: &http.Client{}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// endpoint joins an already escaped path onto the base URL. Ids are
// escaped once by idPath, so RawPath carries the wire form and Path the
// decoded one.
func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.RawPath = c.base.EscapedPath() + path
	if p, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = p
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends one request. A non-nil out receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, cred Credential, method, path string, q url.Values, body, out any) error {
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case json.RawMessage:
			rdr = bytes.NewReader(b)
		default:
			buf, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("encode %s %s: %w", method, path, err)
			}
			rdr = bytes.NewReader(buf)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), rdr)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !cred.Empty() {
		req.Header.Set("Authorization", "Bearer "+string(cred))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s %s: %w", method, path, err)
		}
		*raw = b
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage prefers the server's message and falls back to a generic one.
func errorMessage(status int, raw []byte) string {
	raw = bytes.TrimSpace(raw)
	var doc struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Msg     string `json:"msg"`
	}
	if len(raw) > 0 && raw[0] == '{' && json.Unmarshal(raw, &doc) == nil {
		for _, m := range []string{doc.Message, doc.Error, doc.Msg} {
			if m = strings.TrimSpace(m); m != "" {
				return m
			}
		}
	} else if len(raw) > 0 && len(raw) <= 512 && !bytes.HasPrefix(raw, []byte("<")) {
		return string(raw)
	}
	if text := http.StatusText(status); text != "" {
		return "request failed: " + strings.ToLower(text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// requireCredential is checked by every call that needs a signed-in user,
// before anything is sent.
func requireCredential(cred Credential) error {
	if cred.Empty() {
		return reservation.ErrUnauthenticated
	}
	return nil
}

// decodeList accepts a bare JSON array or an envelope with the array under
// "data" or "items".
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	out := []T{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var env struct {
		Data  []T `json:"data"`
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch {
	case env.Data != nil:
		return env.Data, nil
	case env.Items != nil:
		return env.Items, nil
	}
	return out, nil
}

func getList[T any](ctx context.Context, c *Client, cred Credential, path string, q url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, cred, http.MethodGet, path, q, nil, &raw); err != nil {
		return nil, err
	}
	out, err := decodeList[T](raw)
	if err != nil {
		return nil, fmt.Errorf("decode GET %s: %w", path, err)
	}
	return out, nil
}

func getOne[T any](ctx context.Context, c *Client, cred Credential, path string) (T, error) {
	var out T
	err := c.do(ctx, cred, http.MethodGet, path, nil, nil, &out)
	return out, err
}

// idPath appends one escaped path segment, so "/" and "%" in an id stay
// inside it.
func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
