package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id. JSON numbers in the token
// arrive as float64.
func UserID(c echo.Context) (uint64, bool) {
	switch t := c.Get(CtxUserID).(type) {
	case uint64:
		return t, true
	case int64:
		return uint64(t), t > 0
	case float64:
		return uint64(t), t > 0
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// subject is the rate limit key part for the caller: the user id or anon.
func subject(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
