package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okoval/contacts_api/internal/cache"
	"github.com/okoval/contacts_api/internal/models"
	"github.com/okoval/contacts_api/internal/repository"
	"github.com/okoval/contacts_api/internal/service/token"
)

const userCacheTTL = 5 * time.Minute

type Middleware struct {
	Users  *repository.UserRepository
	Tokens *token.Service
	Cache  *cache.Cache
}

// RequireLogin resolves the bearer token to a full user record and stores
// it on the request context. Lookups go through the TTL cache first.
func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authorization := c.Request().Header.Get(echo.HeaderAuthorization)
		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}

		username, err := m.Tokens.SubjectFromToken(parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}

		user, err := m.currentUser(c, username)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}

		c.Set("user", user)
		return next(c)
	}
}

func (m *Middleware) currentUser(c echo.Context, username string) (*models.User, error) {
	ctx := c.Request().Context()

	if cached, err := m.Cache.Get(ctx, "user", username); err == nil {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
	}

	user, err := m.Users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return user, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := m.Cache.Set(ctx, "user", username, data, userCacheTTL); err != nil {
			c.Logger().Errorf("user cache set error: %v", err)
		}
	}

	return user, nil
}

// Invalidate drops the cached record after a mutation (avatar, password).
func (m *Middleware) Invalidate(c echo.Context, username string) {
	if err := m.Cache.Delete(c.Request().Context(), "user", username); err != nil {
		c.Logger().Errorf("user cache delete error: %v", err)
	}
}

func CurrentUser(c echo.Context) *models.User {
	if user, ok := c.Get("user").(*models.User); ok {
		return user
	}
	return nil
}
