package middleware

import (
	"net/http"

	"athena_privacy_go/db"
	"athena_privacy_go/models"

	"github.com/labstack/echo/v4"
)

// UserIDHeader carries the authenticated user id, set by the platform
// gateway. Authentication itself happens upstream of this service; the
// gateway strips any client-supplied value before forwarding.
const UserIDHeader = "X-User-ID"

// RequireUser resolves the acting user from the gateway header and stores it
// in the request context.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Request().Header.Get(UserIDHeader)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			var user models.User
			if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unknown user")
			}

			c.Set("user", &user)
			return next(c)
		}
	}
}

// RequireAdmin restricts a route to admin users. Must run after RequireUser.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*models.User)
			if !ok || user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}
