package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/okoval/contacts_api/internal/cache"
	"github.com/okoval/contacts_api/internal/config"
	"github.com/okoval/contacts_api/internal/es"
	"github.com/okoval/contacts_api/internal/handlers"
	"github.com/okoval/contacts_api/internal/logging"
	authmw "github.com/okoval/contacts_api/internal/middleware/auth"
	"github.com/okoval/contacts_api/internal/mykafka"
	"github.com/okoval/contacts_api/internal/repository"
	"github.com/okoval/contacts_api/internal/service/search"
	"github.com/okoval/contacts_api/internal/service/token"
	"github.com/okoval/contacts_api/internal/storage"
	"github.com/okoval/contacts_api/internal/transport"
	httpserver "github.com/okoval/contacts_api/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	prod := mykafka.NewProducer(configuration.KAFKA_ADDRESS)

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	s3Storage, err := storage.NewS3Storage(context.Background(),
		configuration.S3_BUCKET, configuration.S3_REGION, configuration.S3_PUBLIC_URL)
	if err != nil {
		log.Fatal(err)
	}

	userCache := cache.New(configuration.REDIS_ADDR, configuration.REDIS_PASSWORD)

	users := &repository.UserRepository{DB: db}
	contacts := &repository.ContactRepository{DB: db}
	tokens := &token.Service{
		Secret:            []byte(configuration.JWT_SECRET),
		ExpirationSeconds: configuration.JWT_EXPIRATION_SECONDS,
	}
	authMiddleware := &authmw.Middleware{Users: users, Tokens: tokens, Cache: userCache}

	e := echo.New()
	e.Validator = transport.NewValidator()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &handlers.AuthHandler{
			Users:    users,
			Tokens:   tokens,
			Producer: prod,
			BaseURL:  configuration.APP_BASE_URL,
		},
		ContactHandler: &handlers.ContactHandler{Contacts: contacts, Producer: prod},
		UserHandler:    &handlers.UserHandler{Users: users, Storage: s3Storage, Auth: authMiddleware},
		SearchHandler:  handlers.NewSearchHandler(esClient, search.DefaultIndex),
		AuthMiddleware: authMiddleware,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "err", err)
		}
	} else {
		logger.Error("db() error", "err", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "err", err)
	}
	if err := userCache.Close(); err != nil {
		logger.Error("redis close error", "err", err)
	}

	logger.Info("shutdown complete")
}
