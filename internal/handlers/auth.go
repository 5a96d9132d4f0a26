package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/okoval/contacts_api/internal/hash"
	"github.com/okoval/contacts_api/internal/models"
	"github.com/okoval/contacts_api/internal/mykafka"
	"github.com/okoval/contacts_api/internal/repository"
	"github.com/okoval/contacts_api/internal/service/token"
	"github.com/okoval/contacts_api/internal/transport"
)

type AuthHandler struct {
	Users    *repository.UserRepository
	Tokens   *token.Service
	Producer *mykafka.Producer
	BaseURL  string
}

// sendEmail publishes the mail job for the background worker. A publish
// failure is logged and swallowed: the data mutation is already committed
// and the caller still gets the "check your email" answer. Recovery is the
// explicit request_email / reset_password re-request.
func (h *AuthHandler) sendEmail(c echo.Context, event mykafka.EmailEvent) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, mykafka.EmailTopic, event.To, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) confirmLink(tok string) string {
	return h.BaseURL + "/api/auth/confirmed_email/" + tok
}

func (h *AuthHandler) resetLink(tok string) string {
	return h.BaseURL + "/api/auth/confirm_reset_password/" + tok
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	emailUser, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if emailUser != nil {
		return echo.NewHTTPError(http.StatusConflict, "user with this email already exists")
	}

	usernameUser, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if usernameUser != nil {
		return echo.NewHTTPError(http.StatusConflict, "user with this name already exists")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		// the pre-checks race with concurrent registration, the unique
		// constraints are the final guard
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if confirmToken, err := h.Tokens.CreateEmailToken(user.Email); err != nil {
		c.Logger().Errorf("email token error: %v", err)
	} else {
		h.sendEmail(c, mykafka.EmailEvent{
			Type:     mykafka.EmailTypeConfirm,
			To:       user.Email,
			Username: user.Username,
			Link:     h.confirmLink(confirmToken),
		})
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Users.GetByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user == nil || !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !user.Confirmed {
		return echo.NewHTTPError(http.StatusUnauthorized, "email is not confirmed")
	}

	accessToken, err := h.Tokens.CreateAccessToken(user.Username, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	})
}

// ConfirmEmail is idempotent: confirming an already-confirmed address
// answers success without touching the flag again.
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
	email, err := h.Tokens.SubjectFromToken(c.Param("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid token for email verification")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "verification error")
	}
	if user.Confirmed {
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "your email is already confirmed"})
	}

	if err := h.Users.ConfirmEmail(ctx, email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "email confirmed"})
}

// RequestEmail answers the same way whether or not the address exists, so
// the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) RequestEmail(c echo.Context) error {
	var req transport.RequestEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user != nil && user.Confirmed {
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "your email is already confirmed"})
	}
	if user != nil {
		if confirmToken, err := h.Tokens.CreateEmailToken(user.Email); err != nil {
			c.Logger().Errorf("email token error: %v", err)
		} else {
			h.sendEmail(c, mykafka.EmailEvent{
				Type:     mykafka.EmailTypeConfirm,
				To:       user.Email,
				Username: user.Username,
				Link:     h.confirmLink(confirmToken),
			})
		}
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "check your email for confirmation"})
}

// ResetPassword hashes the replacement password right away and ships the
// hash inside the reset token; nothing is stored until the link is clicked.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user == nil {
		return c.JSON(http.StatusOK, transport.MessageResponse{Message: "check your email for confirmation"})
	}
	if !user.Confirmed {
		return echo.NewHTTPError(http.StatusBadRequest, "your email is not confirmed")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resetToken, err := h.Tokens.CreateResetToken(user.Email, passwordHash)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.sendEmail(c, mykafka.EmailEvent{
		Type:     mykafka.EmailTypeReset,
		To:       user.Email,
		Username: user.Username,
		Link:     h.resetLink(resetToken),
	})

	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "check your email for confirmation"})
}

func (h *AuthHandler) ConfirmResetPassword(c echo.Context) error {
	rawToken := c.Param("token")

	email, err := h.Tokens.SubjectFromToken(rawToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}
	passwordHash, err := h.Tokens.PasswordFromToken(rawToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no user with this email address")
	}

	if err := h.Users.ResetPassword(ctx, user.ID, passwordHash); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "password changed successfully"})
}
