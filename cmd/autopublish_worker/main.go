package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"blogpress/config"
	"blogpress/internal/application"
	pginfra "blogpress/internal/infrastructure/postgres"
	"blogpress/internal/jobs"
	"blogpress/pkg/helpers"
)

// The auto-publish worker consumes the delayed queue and publishes posts
// that are still unpublished when their delay elapses. Failed executions
// are nacked back to the broker for redelivery.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-autopublish", cfg.Env)

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	posts := pginfra.NewPostRepository(pool)
	users := pginfra.NewUserRepository(pool)

	var mail application.MailQueue
	if q, mErr := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQMailQueue); mErr == nil {
		defer q.Close()
		mail = q
	} else {
		logger.WithError(mErr).Warn("mail queue unavailable, publish notifications disabled")
	}

	publish := application.NewPublishService(posts, users, mail, logger)
	task := jobs.NewAutoPublish(posts, publish, logger)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQAutoPublishQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQAutoPublishQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var payload jobs.AutoPublishPayload
			if err := json.Unmarshal(msg.Body, &payload); err != nil {
				logger.WithError(err).Warn("bad message, dropping")
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := task.Run(c, payload.PostID)
			cancel()
			if err != nil {
				// Let the broker's retry policy have it again.
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("auto-publish worker listening on queue=%s", cfg.RabbitMQAutoPublishQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
