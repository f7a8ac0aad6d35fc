package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated caller carries one of the
// given roles (compared case-insensitively). It must run after BearerAuth:
// a request without a credential gets 401, one with the wrong role 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Credential(c).Empty() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			role, _ := c.Get(CtxRole).(string)
			if !allowed[strings.ToLower(role)] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireVerified only lets through identities whose token signature was
// checked against JWT_SECRET. Routes served from the gateway's own data use
// it, since no upstream call re-checks the token there.
func RequireVerified() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Credential(c).Empty() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if ok, _ := c.Get(CtxVerified).(bool); !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "token signature not verified"})
			}
			return next(c)
		}
	}
}
