package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/okoval/contacts_api/internal/models"
	"github.com/okoval/contacts_api/internal/repository"
	"github.com/okoval/contacts_api/internal/service/token"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contact{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newMiddleware(db *gorm.DB) (*Middleware, *token.Service) {
	tokens := &token.Service{Secret: []byte("test_secret"), ExpirationSeconds: 3600}
	return &Middleware{
		Users:  &repository.UserRepository{DB: db},
		Tokens: tokens,
	}, tokens
}

func runRequireLogin(m *Middleware, authorization string) (error, *models.User) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *models.User
	err := m.RequireLogin(func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return err, seen
}

func TestRequireLoginMissingHeader(t *testing.T) {
	db := initTestDB(t)
	m, _ := newMiddleware(db)

	for _, header := range []string{"", "Basic abc", "Bearer"} {
		err, _ := runRequireLogin(m, header)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "expected HTTPError")
		require.Equal(t, http.StatusUnauthorized, he.Code)
	}
}

func TestRequireLoginResolvesUser(t *testing.T) {
	db := initTestDB(t)
	m, tokens := newMiddleware(db)

	user := models.User{
		Username:     "test_user",
		Email:        "test_user@example.com",
		PasswordHash: "hash",
		Confirmed:    true,
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)

	tok, err := tokens.CreateAccessToken("test_user", 0)
	require.NoError(t, err)

	reqErr, seen := runRequireLogin(m, "Bearer "+tok)
	require.NoError(t, reqErr)
	require.NotNil(t, seen)
	require.Equal(t, user.ID, seen.ID)
	require.Equal(t, "test_user", seen.Username)
}

func TestRequireLoginUnknownSubject(t *testing.T) {
	db := initTestDB(t)
	m, tokens := newMiddleware(db)

	tok, err := tokens.CreateAccessToken("ghost", 0)
	require.NoError(t, err)

	reqErr, _ := runRequireLogin(m, "Bearer "+tok)
	he, ok := reqErr.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLoginExpiredToken(t *testing.T) {
	db := initTestDB(t)
	m, _ := newMiddleware(db)

	expired := &token.Service{Secret: []byte("test_secret"), ExpirationSeconds: -3600}
	tok, err := expired.CreateAccessToken("test_user", 0)
	require.NoError(t, err)

	reqErr, _ := runRequireLogin(m, "Bearer "+tok)
	he, ok := reqErr.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAdminOnly(t *testing.T) {
	db := initTestDB(t)
	m, _ := newMiddleware(db)

	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	run := func(user *models.User) error {
		req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if user != nil {
			c.Set("user", user)
		}
		return m.AdminOnly(next)(c)
	}

	err := run(&models.User{Role: models.RoleUser})
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)

	require.NoError(t, run(&models.User{Role: models.RoleAdmin}))

	err = run(nil)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
