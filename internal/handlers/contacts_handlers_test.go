package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/okoval/contacts_api/internal/models"
	"github.com/okoval/contacts_api/internal/repository"
	"github.com/okoval/contacts_api/internal/transport"
)

func newContactHandler(db *gorm.DB) *ContactHandler {
	return &ContactHandler{Contacts: &repository.ContactRepository{DB: db}}
}

func authedContext(e *echo.Echo, user *models.User, method, target string, payload interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", user)
	return c, rec
}

func contactPayload() map[string]string {
	return map[string]string{
		"name":     "John",
		"surname":  "Doe",
		"email":    "john.doe@example.com",
		"phone":    "+380501234567",
		"birthday": "1990-06-15",
		"info":     "college friend",
	}
}

func TestContactRoundTrip(t *testing.T) {
	db := InitTestDB(t)
	h := newContactHandler(db)
	e := newTestEcho()
	user := seedUser(t, db, "owner", "owner@example.com", "password", true)

	payload := contactPayload()
	c, rec := authedContext(e, user, http.MethodPost, "/api/contacts", payload)
	require.NoError(t, h.CreateContact(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created transport.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	c, rec = authedContext(e, user, http.MethodGet, "/api/contacts/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetContact(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got transport.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, payload["name"], got.Name)
	require.Equal(t, payload["surname"], got.Surname)
	require.Equal(t, payload["email"], got.Email)
	require.Equal(t, payload["phone"], got.Phone)
	require.Equal(t, payload["birthday"], got.Birthday)
	require.Equal(t, payload["info"], got.Info)
}

func TestContactDuplicateScopedToOwner(t *testing.T) {
	db := InitTestDB(t)
	h := newContactHandler(db)
	e := newTestEcho()
	owner := seedUser(t, db, "owner", "owner@example.com", "password", true)
	other := seedUser(t, db, "other", "other@example.com", "password", true)

	c, rec := authedContext(e, owner, http.MethodPost, "/api/contacts", contactPayload())
	require.NoError(t, h.CreateContact(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// same owner, same email: conflict
	payload := contactPayload()
	payload["phone"] = "+380509999999"
	c, _ = authedContext(e, owner, http.MethodPost, "/api/contacts", payload)
	err := h.CreateContact(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	// same owner, same phone: conflict
	payload = contactPayload()
	payload["email"] = "someone.else@example.com"
	c, _ = authedContext(e, owner, http.MethodPost, "/api/contacts", payload)
	err = h.CreateContact(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	// a different owner may reuse both email and phone
	c, rec = authedContext(e, other, http.MethodPost, "/api/contacts", contactPayload())
	require.NoError(t, h.CreateContact(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestContactForeignOwnerLooksMissing(t *testing.T) {
	db := InitTestDB(t)
	h := newContactHandler(db)
	e := newTestEcho()
	owner := seedUser(t, db, "owner", "owner@example.com", "password", true)
	intruder := seedUser(t, db, "intruder", "intruder@example.com", "password", true)

	c, rec := authedContext(e, owner, http.MethodPost, "/api/contacts", contactPayload())
	require.NoError(t, h.CreateContact(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created transport.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	notFound := func(user *models.User, id string) *echo.HTTPError {
		c, _ := authedContext(e, user, http.MethodGet, "/api/contacts/"+id, nil)
		c.SetParamNames("id")
		c.SetParamValues(id)
		err := h.GetContact(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError")
		return he
	}

	// someone else's contact and a nonexistent id answer identically
	foreign := notFound(intruder, "1")
	missing := notFound(owner, "999")
	require.Equal(t, http.StatusNotFound, foreign.Code)
	require.Equal(t, http.StatusNotFound, missing.Code)
	require.Equal(t, foreign.Message, missing.Message)

	// update and delete behave the same way
	c, _ = authedContext(e, intruder, http.MethodPut, "/api/contacts/1", contactPayload())
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := h.UpdateContact(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)

	c, _ = authedContext(e, intruder, http.MethodDelete, "/api/contacts/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err = h.DeleteContact(c)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestContactUpdateAndDelete(t *testing.T) {
	db := InitTestDB(t)
	h := newContactHandler(db)
	e := newTestEcho()
	user := seedUser(t, db, "owner", "owner@example.com", "password", true)

	c, rec := authedContext(e, user, http.MethodPost, "/api/contacts", contactPayload())
	require.NoError(t, h.CreateContact(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	payload := contactPayload()
	payload["name"] = "Johnny"
	payload["phone"] = "+380507654321"
	c, rec = authedContext(e, user, http.MethodPut, "/api/contacts/1", payload)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateContact(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated transport.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, "Johnny", updated.Name)
	require.Equal(t, "+380507654321", updated.Phone)

	c, rec = authedContext(e, user, http.MethodDelete, "/api/contacts/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteContact(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, _ = authedContext(e, user, http.MethodGet, "/api/contacts/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := h.GetContact(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func seedContact(t *testing.T, db *gorm.DB, userID uint, email, phone string, birthday time.Time) {
	contact := models.Contact{
		Name:     "Test",
		Surname:  "Contact",
		Email:    email,
		Phone:    phone,
		Birthday: birthday,
		UserID:   userID,
	}
	require.NoError(t, db.Create(&contact).Error)
}

// The window is matched on day-of-month only: the month of the birthday is
// never compared, so a birthday in a different month whose day falls inside
// the numeric window is matched as well. Faithful to the production query.
func TestUpcomingBirthdaysWrap(t *testing.T) {
	db := InitTestDB(t)
	h := newContactHandler(db)
	// pin the clock to day 28 of a 31-day month; days=7 wraps to day 4
	h.Contacts.Now = func() time.Time { return time.Date(2025, time.January, 28, 12, 0, 0, 0, time.UTC) }
	e := newTestEcho()
	user := seedUser(t, db, "owner", "owner@example.com", "password", true)

	seedContact(t, db, user.ID, "a@example.com", "+380500000001", time.Date(1990, time.June, 29, 0, 0, 0, 0, time.UTC))
	seedContact(t, db, user.ID, "b@example.com", "+380500000002", time.Date(2001, time.September, 3, 0, 0, 0, 0, time.UTC))
	seedContact(t, db, user.ID, "c@example.com", "+380500000003", time.Date(1985, time.January, 15, 0, 0, 0, 0, time.UTC))

	c, rec := authedContext(e, user, http.MethodGet, "/api/contacts/birthdays?days=7", nil)
	require.NoError(t, h.GetUpcomingBirthdays(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []transport.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	// window order: day 29 sits closer to the window start than day 3
	require.Equal(t, "a@example.com", got[0].Email)
	require.Equal(t, "b@example.com", got[1].Email)
}

func TestUpcomingBirthdaysNoWrap(t *testing.T) {
	db := InitTestDB(t)
	h := newContactHandler(db)
	h.Contacts.Now = func() time.Time { return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC) }
	e := newTestEcho()
	user := seedUser(t, db, "owner", "owner@example.com", "password", true)

	seedContact(t, db, user.ID, "a@example.com", "+380500000001", time.Date(1990, time.March, 12, 0, 0, 0, 0, time.UTC))
	seedContact(t, db, user.ID, "b@example.com", "+380500000002", time.Date(1990, time.March, 20, 0, 0, 0, 0, time.UTC))

	c, rec := authedContext(e, user, http.MethodGet, "/api/contacts/birthdays?days=5", nil)
	require.NoError(t, h.GetUpcomingBirthdays(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []transport.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "a@example.com", got[0].Email)
}

func TestUpcomingBirthdaysValidation(t *testing.T) {
	db := InitTestDB(t)
	h := newContactHandler(db)
	e := newTestEcho()
	user := seedUser(t, db, "owner", "owner@example.com", "password", true)

	for _, days := range []string{"0", "-3", "abc", "1.5"} {
		c, _ := authedContext(e, user, http.MethodGet, "/api/contacts/birthdays?days="+days, nil)
		err := h.GetUpcomingBirthdays(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError for days=%s", days)
		require.Equal(t, http.StatusUnprocessableEntity, he.Code)
	}
}

// Updates carry no existence pre-check, so a clashing email surfaces straight
// from the composite unique index; the handler must translate the constraint
// violation into the same 409 the pre-checked create path answers.
func TestContactUpdateDuplicateConstraint(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contact{}))

	h := newContactHandler(db)
	e := newTestEcho()
	user := seedUser(t, db, "owner", "owner@example.com", "password", true)

	seedContact(t, db, user.ID, "first@example.com", "+380500000001", time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC))
	seedContact(t, db, user.ID, "second@example.com", "+380500000002", time.Date(1991, time.July, 16, 0, 0, 0, 0, time.UTC))

	payload := contactPayload()
	payload["email"] = "first@example.com"
	payload["phone"] = "+380500000002"

	c, _ := authedContext(e, user, http.MethodPut, "/api/contacts/2", payload)
	c.SetParamNames("id")
	c.SetParamValues("2")
	err = h.UpdateContact(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}
