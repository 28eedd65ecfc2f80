package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userKey returns the authenticated user id as a string for use in keys and
// log fields, or "anon" before the gate has run or on public routes.
func userKey(c echo.Context) string {
	if id, ok := c.Get(ContextKeyUserID).(int64); ok {
		return strconv.FormatInt(id, 10)
	}
	return "anon"
}
