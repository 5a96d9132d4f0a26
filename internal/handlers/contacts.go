package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/okoval/contacts_api/internal/middleware/auth"
	"github.com/okoval/contacts_api/internal/models"
	"github.com/okoval/contacts_api/internal/mykafka"
	"github.com/okoval/contacts_api/internal/repository"
	"github.com/okoval/contacts_api/internal/transport"
	"github.com/okoval/contacts_api/internal/util"
)

type ContactHandler struct {
	Contacts *repository.ContactRepository
	Producer *mykafka.Producer
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ContactHandler) publish(c echo.Context, eventType string, contact models.Contact) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	event := mykafka.ContactEvent{Type: eventType, Contact: contact}
	if err := h.Producer.PublishEvent(ctx, mykafka.ContactTopic, fmt.Sprint(contact.ID), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *ContactHandler) GetContacts(c echo.Context) error {
	user := authmw.CurrentUser(c)

	skip, limit := util.Calculate(
		parseIntDefault(c.QueryParam("skip"), 0),
		parseIntDefault(c.QueryParam("limit"), util.DefaultLimit),
	)

	contacts, err := h.Contacts.List(
		c.Request().Context(),
		user.ID,
		c.QueryParam("name"),
		c.QueryParam("surname"),
		c.QueryParam("email"),
		skip, limit,
	)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, transport.NewContactResponses(contacts))
}

func (h *ContactHandler) GetContact(c echo.Context) error {
	user := authmw.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	contact, err := h.Contacts.GetByID(c.Request().Context(), uint(id), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if contact == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Contact not found")
	}

	return c.JSON(http.StatusOK, transport.NewContactResponse(*contact))
}

func (h *ContactHandler) CreateContact(c echo.Context) error {
	user := authmw.CurrentUser(c)

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	birthday, err := time.Parse(transport.BirthdayLayout, req.Birthday)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "birthday must be YYYY-MM-DD")
	}

	ctx := c.Request().Context()

	exists, err := h.Contacts.Exists(ctx, user.ID, req.Email, req.Phone)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("Contact with '%s' email or '%s' phone number already exists.", req.Email, req.Phone))
	}

	contact := models.Contact{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Phone:    req.Phone,
		Birthday: birthday,
		Info:     req.Info,
		UserID:   user.ID,
	}
	if err := h.Contacts.Create(ctx, &contact); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict,
				fmt.Sprintf("Contact with '%s' email or '%s' phone number already exists.", req.Email, req.Phone))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, mykafka.ContactCreated, contact)

	return c.JSON(http.StatusCreated, transport.NewContactResponse(contact))
}

func (h *ContactHandler) UpdateContact(c echo.Context) error {
	user := authmw.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.ContactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	birthday, err := time.Parse(transport.BirthdayLayout, req.Birthday)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "birthday must be YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	contact, err := h.Contacts.GetByID(ctx, uint(id), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if contact == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Contact not found")
	}

	contact.Name = req.Name
	contact.Surname = req.Surname
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Birthday = birthday
	contact.Info = req.Info

	if err := h.Contacts.Save(ctx, contact); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict,
				fmt.Sprintf("Contact with '%s' email or '%s' phone number already exists.", req.Email, req.Phone))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, mykafka.ContactUpdated, *contact)

	return c.JSON(http.StatusOK, transport.NewContactResponse(*contact))
}

func (h *ContactHandler) DeleteContact(c echo.Context) error {
	user := authmw.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	contact, err := h.Contacts.GetByID(ctx, uint(id), user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if contact == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Contact not found")
	}

	if err := h.Contacts.Delete(ctx, contact); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, mykafka.ContactDeleted, *contact)

	return c.JSON(http.StatusOK, transport.NewContactResponse(*contact))
}

func (h *ContactHandler) GetUpcomingBirthdays(c echo.Context) error {
	user := authmw.CurrentUser(c)

	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "days must be an integer")
		}
		days = v
	}
	if days < 1 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "days must be at least 1")
	}

	contacts, err := h.Contacts.UpcomingBirthdays(c.Request().Context(), user.ID, days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, transport.NewContactResponses(contacts))
}
