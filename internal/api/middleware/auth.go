package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// UserIDHeader identifies the calling user. The value is an opaque
// principal; the API trusts whatever upstream authentication put there.
const UserIDHeader = "X-User-ID"

// userIDKey is the echo context key the user ID is stored under.
const userIDKey = "user_id"

// RequireUser returns Echo middleware that rejects requests missing the
// X-User-ID header with 401.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(UserIDHeader)
			if userID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "missing " + UserIDHeader + " header",
				})
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user ID set by RequireUser.
func UserID(c echo.Context) string {
	if v, ok := c.Get(userIDKey).(string); ok {
		return v
	}
	return ""
}
