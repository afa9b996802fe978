package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/warbler-social/warbler/internal/config"
	"github.com/warbler-social/warbler/pkg/cache"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

// The worker keeps a Redis like-count cache warm from the graph event
// stream so the API can answer hot-count reads without a database hit.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting Warbler like-count worker...")

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	consumer := queue.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.GraphEvents, "like-count-worker")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down worker...")
		cancel()
	}()

	err = consumer.Subscribe(ctx, func(msg queue.Message) error {
		var delta int64
		switch msg.Event.Type {
		case queue.EventLikeCreated:
			delta = 1
		case queue.EventLikeDeleted:
			delta = -1
		default:
			return nil
		}

		var data queue.LikeEventData
		if err := json.Unmarshal(msg.Event.Data, &data); err != nil {
			logger.WithError(err).Error("Failed to decode like event")
			return nil
		}

		key := fmt.Sprintf("warble:likes:%d", data.MessageID)
		if _, err := redisClient.IncrBy(ctx, key, delta); err != nil {
			logger.WithError(err).WithField("message_id", data.MessageID).Error("Failed to update like count")
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("Worker stopped with error")
	}

	logger.Info("Worker exited")
}
