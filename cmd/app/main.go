package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/skybooking/api"
	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/auth"
	"github.com/Domenick1991/skybooking/internal/bootstrap"
	"github.com/Domenick1991/skybooking/internal/cache"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/companies"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/Domenick1991/skybooking/internal/service/session"
	"github.com/Domenick1991/skybooking/internal/service/users"
	"github.com/Domenick1991/skybooking/internal/telemetry"
	"github.com/Domenick1991/skybooking/internal/weather"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Tracing)
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.WithError(err).Warn("flush traces")
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	flightOpts := []flights.FlightServiceOption{flights.WithLogger(log)}
	companyOpts := []companies.CompanyServiceOption{companies.WithLogger(log)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Flights.CacheTTLSeconds)*time.Second)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, flight lists will hit the store")
		}
		flightOpts = append(flightOpts, flights.WithCache(redisCache))
		companyOpts = append(companyOpts, companies.WithCache(redisCache))
	}

	bookingOpts := []booking.BookingServiceOption{booking.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.WithError(err).Warn("kafka unreachable, booking events may be lost")
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(kafka.Retrying{Producer: producer, Attempts: cfg.Kafka.PublishAttempts}, cfg.Kafka.BookingEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
	}

	svc := api.Services{
		Companies: companies.NewCompanyService(store, companyOpts...),
		Flights:   flights.NewFlightService(store, flightOpts...),
		Bookings:  booking.NewBookingService(store, bookingOpts...),
		Users:     users.NewUserService(store, users.WithHasher(hasher), users.WithLogger(log)),
		Sessions:  session.NewSessionService(store, session.WithHasher(hasher), session.WithLogger(log)),
	}
	if cfg.Weather.APIKey != "" {
		resolver, err := weather.LoadResolver(cfg.Weather.CityIDsPath)
		if err != nil {
			log.Fatalf("load city ids: %v", err)
		}
		svc.Weather = weather.NewClient(cfg.Weather, resolver)
	}

	if err := bootstrap.Run(ctx, cfg.HTTP, api.NewRouter(svc, log), log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	if cfg.Storage.Driver == config.StorageMemory {
		return repository.NewMemoryStore(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repository.NewPGStore(pool), pool.Close, nil
}
