package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// WarmupHandler renders one warm-up request into the cache.
type WarmupHandler func(ctx context.Context, req entity.WarmupRequest) error

// StartWarmupConsumer reads warm-up requests until ctx is cancelled.
// Requests are handled one at a time.
func StartWarmupConsumer(ctx context.Context, brokers []string, topic, groupID string, handle WarmupHandler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	log := logrus.WithFields(logrus.Fields{"topic": topic, "group": groupID})
	log.Info("Warm-up consumer started")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Warm-up consumer stopped")
				return
			}
			log.WithError(err).Error("Error reading message from Kafka")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		req, err := DecodeWarmup(msg.Value)
		if err != nil {
			log.WithError(err).WithField("offset", msg.Offset).Warn("Skipping warm-up message")
			continue
		}
		if err := handle(ctx, req); err != nil {
			log.WithError(err).WithField("profile", req.Profile).Warn("Warm-up render failed")
		}
	}
}

func DecodeWarmup(value []byte) (entity.WarmupRequest, error) {
	var req entity.WarmupRequest
	if err := json.Unmarshal(value, &req); err != nil {
		return req, fmt.Errorf("failed to parse warm-up request: %w", err)
	}
	if req.Profile == "" {
		return req, errors.New("warm-up request has no profile")
	}
	return req, nil
}
