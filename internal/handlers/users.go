package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/okoval/contacts_api/internal/middleware/auth"
	"github.com/okoval/contacts_api/internal/repository"
)

type AvatarStorage interface {
	UploadAvatar(ctx context.Context, username, contentType string, body io.Reader) (string, error)
}

type UserHandler struct {
	Users   *repository.UserRepository
	Storage AvatarStorage
	Auth    *authmw.Middleware
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, authmw.CurrentUser(c))
}

// UpdateAvatar is admin-gated in the router. The image goes to cloud
// storage, only its URL lands on the user row.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	user := authmw.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer file.Close()

	ctx := c.Request().Context()
	url, err := h.Storage.UploadAvatar(ctx, user.Username, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	updated, err := h.Users.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Auth.Invalidate(c, user.Username)

	return c.JSON(http.StatusOK, updated)
}
