package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/okoval/contacts_api/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	JWT_SECRET             string
	JWT_EXPIRATION_SECONDS int

	APP_BASE_URL string

	KAFKA_ADDRESS string

	REDIS_ADDR     string
	REDIS_PASSWORD string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	MAIL_HOST     string
	MAIL_PORT     int
	MAIL_USERNAME string
	MAIL_PASSWORD string
	MAIL_FROM     string

	S3_BUCKET     string
	S3_REGION     string
	S3_PUBLIC_URL string

	LOG_LEVEL string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:                os.Getenv("DB_HOST"),
		DB_PORT:                os.Getenv("DB_PORT"),
		DB_USER:                os.Getenv("DB_USER"),
		DB_PASSWORD:            os.Getenv("DB_PASSWORD"),
		DB_NAME:                os.Getenv("DB_NAME"),
		JWT_SECRET:             os.Getenv("JWT_SECRET"),
		JWT_EXPIRATION_SECONDS: getInt("JWT_EXPIRATION_SECONDS", 3600),
		APP_BASE_URL:           getDefault("APP_BASE_URL", "http://localhost:8080"),
		KAFKA_ADDRESS:          os.Getenv("KAFKA_ADDRESS"),
		REDIS_ADDR:             os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD:         os.Getenv("REDIS_PASSWORD"),
		ES_URL:                 os.Getenv("ES_URL"),
		ES_USER:                os.Getenv("ES_USER"),
		ES_PASSWORD:            os.Getenv("ES_PASSWORD"),
		MAIL_HOST:              os.Getenv("MAIL_HOST"),
		MAIL_PORT:              getInt("MAIL_PORT", 465),
		MAIL_USERNAME:          os.Getenv("MAIL_USERNAME"),
		MAIL_PASSWORD:          os.Getenv("MAIL_PASSWORD"),
		MAIL_FROM:              getDefault("MAIL_FROM", os.Getenv("MAIL_USERNAME")),
		S3_BUCKET:              os.Getenv("S3_BUCKET"),
		S3_REGION:              os.Getenv("S3_REGION"),
		S3_PUBLIC_URL:          os.Getenv("S3_PUBLIC_URL"),
		LOG_LEVEL:              getDefault("LOG_LEVEL", "info"),
	}

	return config, nil
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Notice: %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	host := configuration.DB_HOST
	port := configuration.DB_PORT
	user := configuration.DB_USER
	password := configuration.DB_PASSWORD
	dbname := configuration.DB_NAME

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Contact{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
