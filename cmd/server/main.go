package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/travel-booking-gateway/internal/apiclient"
	"github.com/iliyamo/travel-booking-gateway/internal/config"
	"github.com/iliyamo/travel-booking-gateway/internal/database"
	"github.com/iliyamo/travel-booking-gateway/internal/handler"
	"github.com/iliyamo/travel-booking-gateway/internal/middleware"
	"github.com/iliyamo/travel-booking-gateway/internal/queue"
	"github.com/iliyamo/travel-booking-gateway/internal/repository"
	"github.com/iliyamo/travel-booking-gateway/internal/router"
	"github.com/iliyamo/travel-booking-gateway/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := apiclient.New(cfg.UpstreamURL, apiclient.WithTimeout(cfg.UpstreamTimeout))
	if err != nil {
		log.Fatalf("travel api client: %v", err)
	}

	checks := map[string]handler.Pinger{}
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var (
		ledger      service.Ledger = service.NopLedger
		submissions handler.SubmissionReader
	)
	if cfg.LedgerEnabled() {
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("ledger database: %v", err)
		}
		defer db.Close()
		repo := repository.NewLedgerRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("ledger schema: %v", err)
		}
		ledger, submissions = repo, repo
		checks["ledger"] = db.PingContext
		log.Printf("submission ledger enabled (%s:%s/%s)", cfg.DBHost, cfg.DBPort, cfg.DBName)
		if cfg.JWTSecret == "" {
			log.Printf("JWT_SECRET is unset: admin submission views will refuse every token")
		}
	}

	var events service.EventPublisher = service.NopPublisher
	if cfg.EventsEnabled() {
		events = service.NewAMQPPublisher(cfg.AMQPURL)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogPath)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking event consumer stopped: %v", err)
			}
		}()
		log.Printf("booking events enabled, logging to %s", cfg.BookingLogPath)
	}

	bookings := service.NewBookingService(api, service.NewGuard(rdb, cfg.SubmitGuardTTL), ledger, events)
	payments := service.NewPaymentService(api, events)

	rl := config.LoadRateLimitConfig()
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(rl, rdb)
	submitLimit := middleware.NewTokenBucket(rl.Submit(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSAllowOrigins}))
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, &handler.HealthHandler{Checks: checks})
	router.RegisterPublic(e, handler.NewCatalogHandler(api, bookings), cfg.JWTSecret, cache, limit)
	router.RegisterCustomer(e, handler.NewBookingHandler(bookings, payments, api), cfg.JWTSecret, submitLimit)
	router.RegisterAdmin(e, handler.NewAdminHandler(api, payments, submissions), cfg.JWTSecret, cfg.AdminRole)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, upstream=%s)", addr, cfg.Env, cfg.UpstreamURL)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
