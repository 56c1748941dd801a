package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/skybooking/config"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/internal/kafka"
	"github.com/Domenick1991/skybooking/internal/logging"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// The worker mails booking notifications published by the app.
func main() {
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

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("kafka brokers are not configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := checkStorage(cfg.Storage); err != nil {
		log.Fatal(err)
	}
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	users := repository.NewPGStore(pool).Users()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(users, log)
	handle := kafka.BookingEvents(sender.Send)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			if err := handle(ctx, msg); err != nil {
				log.WithError(err).WithField("offset", msg.Offset).Warn("dropping booking event")
			}
			return nil
		}); err != nil {
			log.WithError(err).Error("consumer stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.WithField("signal", s.String()).Info("shutting down")
		cancel()
		<-stopped
	case <-stopped:
	}
}

// checkStorage rejects the in-memory driver: its users live inside the API
// process, so the worker would resolve no recipients.
func checkStorage(cfg config.StorageConfig) error {
	if cfg.Driver == config.StorageMemory {
		return errors.New("worker requires postgres storage, the memory store is not shared across processes")
	}
	return nil
}
