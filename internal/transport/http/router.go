package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/okoval/contacts_api/internal/handlers"
	authmw "github.com/okoval/contacts_api/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	ContactHandler *handlers.ContactHandler
	UserHandler    *handlers.UserHandler
	SearchHandler  *handlers.SearchHandler
	AuthMiddleware *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/api/healthchecker", healthchecker(d.DB))

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/confirmed_email/:token", d.AuthHandler.ConfirmEmail)
	auth.POST("/request_email", d.AuthHandler.RequestEmail)
	auth.POST("/reset_password", d.AuthHandler.ResetPassword)
	auth.GET("/confirm_reset_password/:token", d.AuthHandler.ConfirmResetPassword)

	contacts := api.Group("/contacts", d.AuthMiddleware.RequireLogin)
	contacts.GET("/birthdays", d.ContactHandler.GetUpcomingBirthdays)
	contacts.GET("/search", d.SearchHandler.Handler)
	contacts.GET("", d.ContactHandler.GetContacts)
	contacts.GET("/:id", d.ContactHandler.GetContact)
	contacts.POST("", d.ContactHandler.CreateContact)
	contacts.PUT("/:id", d.ContactHandler.UpdateContact)
	contacts.DELETE("/:id", d.ContactHandler.DeleteContact)

	users := api.Group("/users", d.AuthMiddleware.RequireLogin)
	users.GET("/me", d.UserHandler.Me,
		middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(10.0 / 60.0), Burst: 10},
		)))
	users.PATCH("/avatar", d.UserHandler.UpdateAvatar, d.AuthMiddleware.AdminOnly)
}

// healthchecker is the one place a store failure is reported distinctly
// instead of surfacing as a generic fault.
func healthchecker(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var one int
		if err := db.WithContext(c.Request().Context()).Raw("SELECT 1").Scan(&one).Error; err != nil || one != 1 {
			return echo.NewHTTPError(http.StatusInternalServerError, "Error connecting to the database")
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Welcome to Contacts API!"})
	}
}
