package notify

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/pkg/kafka"
	"github.com/vlasovmax/shopcore/pkg/logger"
	"github.com/vlasovmax/shopcore/pkg/utils"
	"go.uber.org/zap"
)

// Publisher is the handoff between a committed status change and the
// asynchronous delivery path. Implementations are fire-and-forget: a
// returned error means the event is lost, never retried.
type Publisher interface {
	PublishOrderStatus(ctx context.Context, event domain.NotificationEvent) error
}

// LocalPublisher feeds the in-process hub directly. It is the single
// instance deployment path and the one tests observe.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) PublishOrderStatus(_ context.Context, event domain.NotificationEvent) error {
	p.hub.Publish(UserGroup(event.UserID), event)
	return nil
}

// KafkaPublisher routes events through the shared backplane topic so
// every server instance's hub sees them. Produce failures trip the
// breaker instead of stalling status updates behind a dead broker.
type KafkaPublisher struct {
	producer kafka.Producer
	topic    string
	cb       *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

func NewKafkaPublisher(producer kafka.Producer, topic string, l *zap.Logger) *KafkaPublisher {
	settings := gobreaker.Settings{
		Name:     "NotifyBackplane",
		Interval: 5 * time.Second,
		Timeout:  10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			l.Warn(
				"Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		cb:       gobreaker.NewCircuitBreaker(settings),
		logger:   l,
	}
}

func (p *KafkaPublisher) PublishOrderStatus(ctx context.Context, event domain.NotificationEvent) error {
	_, err := utils.ExecuteWithBreaker(p.cb, func() (struct{}, error) {
		return struct{}{}, p.producer.ProduceMessage(ctx, p.topic, UserGroup(event.UserID), event)
	})
	if err != nil {
		logger.Warn(
			ctx,
			p.logger,
			"Failed to publish notification event",
			zap.Int64("user_id", event.UserID),
			zap.Error(err),
		)

		return err
	}

	return nil
}
