package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	notifapp "github.com/btechtrader/checkout-service/internal/notification/application"
	notifkafka "github.com/btechtrader/checkout-service/internal/notification/infrastructure/kafka"
	"github.com/btechtrader/checkout-service/internal/notification/infrastructure/smtp"
	"github.com/btechtrader/checkout-service/pkg/idempotency"
	"github.com/btechtrader/checkout-service/pkg/logging"
	"github.com/btechtrader/checkout-service/pkg/shutdown"
	"github.com/btechtrader/checkout-service/pkg/tracing"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := logging.New("notification-service")
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	kafkaBrokers := strings.Split(env("KAFKA_ADDR", "localhost:9092"), ",")
	jaeger := env("JAEGER_URL", "http://localhost:14268/api/traces")
	redisAddr := env("REDIS_ADDR", "localhost:6379")
	inTopic := env("IN_TOPIC", "purchase.events")
	group := env("CONSUMER_GROUP", "notification-service")
	mailFrom := env("MAIL_FROM", `"BTech Trader" <no-reply@btechtrader.in>`)
	operatorEmail := env("OPERATOR_EMAIL", "")

	tp, err := tracing.Init(ctx, "notification-service", jaeger, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	redisDB := redis.NewClient(&redis.Options{Addr: redisAddr})
	idem := idempotency.NewStore(redisDB, 10*time.Minute)

	mailer, err := smtp.NewMailer(smtp.Config{
		Host:     env("SMTP_HOST", "smtp.gmail.com"),
		Port:     envInt("SMTP_PORT", 587),
		Username: env("SMTP_USERNAME", ""),
		Password: env("SMTP_PASSWORD", ""),
	})
	if err != nil {
		log.Error("smtp init failed", "err", err)
		os.Exit(1)
	}

	dispatcher := notifapp.NewDispatcher(log, mailer, mailFrom, operatorEmail)
	consumer := notifkafka.NewConsumer(log, kafkaBrokers, inTopic, group, dispatcher, idem)

	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("notification-service shutdown")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
