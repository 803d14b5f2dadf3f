package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"calendareventservice/pkg/auth"
	"calendareventservice/pkg/cache"
	"calendareventservice/pkg/calendar"
	"calendareventservice/pkg/config"
	"calendareventservice/pkg/handlers"
	"calendareventservice/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OAuth2 configuration
	oauthConfig := &oauth2.Config{
		RedirectURL:  cfg.RedirectURL,
		ClientID:     cfg.GoogleClientId,
		ClientSecret: cfg.GoogleSecretId,
		Scopes: []string{
			gcal.CalendarReadonlyScope,
			"https://www.googleapis.com/auth/userinfo.email",
			"openid",
		},
		Endpoint: google.Endpoint,
	}

	users, err := newUserStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize user store: %v", err)
	}

	h := handlers.New(
		users,
		cache.New(cache.DefaultTTL),
		calendar.NewFetcher(oauthConfig),
		auth.NewResolver(oauthConfig),
		oauthConfig,
	)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	h.Register(app)

	log.Fatal(app.Listen(":" + cfg.Port))
}

// newUserStore picks Postgres when DB settings are present, otherwise the
// JSON file store.
func newUserStore(cfg config.Config) (store.UserStore, error) {
	if cfg.DBHost == "" {
		return store.NewFileStore(cfg.UsersFile), nil
	}

	dsn := fmt.Sprintf("host=%s user=%s dbname=%s port=%s password=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBName, cfg.DBPort, cfg.DBPassword)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return store.NewGormStore(db)
}
