package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/example/inventory-keeper/internal/email"
	"github.com/example/inventory-keeper/internal/infrastructure/kafka"
	"github.com/example/inventory-keeper/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Configuration from environment variables
	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "localhost:9092")
	kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
	kafkaTopic := getEnv("KAFKA_TOPIC", "stock-events")
	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	smtpFrom := getEnv("SMTP_FROM", "noreply@inventory-keeper.local")
	alertTo := os.Getenv("ALERT_EMAIL")
	if alertTo == "" {
		log.Fatal("[Notifier] ALERT_EMAIL environment variable is required")
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Low Stock Notifier")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", kafkaBrokers)
	log.Printf("[Notifier] Topic: %s", kafkaTopic)
	log.Printf("[Notifier] Alerts to: %s", alertTo)

	emailService := email.NewService(smtpHost, smtpPort, smtpFrom)
	handler := notification.NewHandler(emailService, alertTo)

	consumer := kafka.NewConsumer(kafkaBrokers, kafkaTopic, "low-stock-notifier")
	defer consumer.Close()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[Notifier] Shutting down...")
		cancel()
	}()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
		log.Fatalf("[Notifier] Consumer error: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
