// Package messaging 将成交事件发布到 Kafka，供下游系统消费
package messaging

import (
	"context"

	"github.com/wyfcoding/brokerage/internal/trading/domain"
	"github.com/wyfcoding/brokerage/pkg/mq"
)

type kafkaTradePublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaTradePublisher 创建 Kafka 成交事件发布器
func NewKafkaTradePublisher(producer *mq.KafkaProducer, topic string) domain.EventPublisher {
	return &kafkaTradePublisher{producer: producer, topic: topic}
}

// PublishTradeExecuted 以用户 ID 为分区键发布成交事件，
// 保证同一用户的事件在分区内有序
func (p *kafkaTradePublisher) PublishTradeExecuted(ctx context.Context, event domain.TradeExecutedEvent) error {
	return p.producer.SendMessage(ctx, p.topic, event.UserID, event)
}
