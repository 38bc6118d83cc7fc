package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/vlasovmax/shopcore/internal/domain"
	"github.com/vlasovmax/shopcore/pkg/kafka"
	"go.uber.org/zap"
)

// NewStatusConsumer drains the backplane topic into the local hub, so
// connections held by this process receive events published by any
// process. Every instance must consume with its own group id: a shared
// group id would split events between instances instead of
// broadcasting them.
func NewStatusConsumer(brokers []string, groupID, topic string, hub *Hub, l *zap.Logger) *kafka.ConsumerGroup {
	handler := func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		var event domain.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to decode notification event: %w", err)
		}

		hub.Publish(UserGroup(event.UserID), event)
		return nil
	}

	return kafka.NewConsumerGroup(brokers, groupID, []string{topic}, handler, l)
}
