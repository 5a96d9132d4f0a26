package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/okoval/contacts_api/internal/models"
)

// AdminOnly must run after RequireLogin.
func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		if user.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Permission denied")
		}
		return next(c)
	}
}
