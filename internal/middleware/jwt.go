package middleware // middleware provides shared request processing for handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
)

// Context keys set by the bearer middlewares.
const (
	CtxCredential = "credential"
	CtxUserID     = "user_id"
	CtxRole       = "role"
	CtxVerified   = "token_verified"
)

// BearerAuth requires an Authorization: Bearer header. The token is issued
// by the travel API and is forwarded to it untouched; the gateway only
// reads its claims for the user id and role. When secret is non-empty the
// token must also carry a valid HS256 signature made with it; otherwise the
// claims are read unverified and the API stays the authority on the token.
// On success the credential, user id and role are stored in the context.
func BearerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := parseClaims(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			setIdentity(c, raw, claims, secret != "")
			return next(c)
		}
	}
}

// OptionalBearer attaches the credential when a usable one is present and
// lets the request through either way. Public catalog routes use it so that
// signed-in callers' reads still carry their token upstream.
func OptionalBearer(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c.Request()); ok {
				if claims, err := parseClaims(raw, secret); err == nil {
					setIdentity(c, raw, claims, secret != "")
				}
			}
			return next(c)
		}
	}
}

// Credential returns the bearer stored by BearerAuth or OptionalBearer.
func Credential(c echo.Context) apiclient.Credential {
	cred, _ := c.Get(CtxCredential).(apiclient.Credential)
	return cred
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(auth[7:])
	return raw, raw != ""
}

func parseClaims(raw, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if secret == "" {
		// signature unchecked, but expiry still applies
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return nil, err
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
			return nil, jwt.ErrTokenExpired
		}
		return claims, nil
	}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func setIdentity(c echo.Context, raw string, claims jwt.MapClaims, verified bool) {
	c.Set(CtxCredential, apiclient.Credential(raw))
	c.Set(CtxVerified, verified)
	if id := claimString(claims, "sub", "id", "user_id", "_id"); id != "" {
		c.Set(CtxUserID, id)
	}
	role := claimString(claims, "role")
	if role == "" {
		if admin, _ := claims["isAdmin"].(bool); admin {
			role = "admin"
		}
	}
	if role != "" {
		c.Set(CtxRole, role)
	}
}

// claimString returns the first non-empty claim among keys. Numeric ids are
// formatted without exponent.
func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
