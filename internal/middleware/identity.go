package middleware

import "github.com/labstack/echo/v4"

// UserID returns the caller's user id as stored by the bearer middlewares,
// or "" when the request is anonymous or the token has no id claim.
func UserID(c echo.Context) string {
	id, _ := c.Get(CtxUserID).(string)
	return id
}

// rateIdentity keys anonymous callers together as "anon".
func rateIdentity(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
