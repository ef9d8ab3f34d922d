// Package publisher 风险告警的 Kafka 发布实现
package publisher

import (
	"context"

	"github.com/wyfcoding/riskanalytics/internal/risk/domain"
	"github.com/wyfcoding/riskanalytics/pkg/logger"
	"github.com/wyfcoding/riskanalytics/pkg/mq"
)

// KafkaAlertPublisher 基于 Kafka 的告警发布器
type KafkaAlertPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaAlertPublisher 创建告警发布器
func NewKafkaAlertPublisher(producer *mq.KafkaProducer, topic string) domain.AlertPublisher {
	return &KafkaAlertPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish 发布风险限额告警
func (p *KafkaAlertPublisher) Publish(ctx context.Context, alert *domain.Alert) error {
	if err := p.producer.SendMessage(ctx, p.topic, alert.ID, alert); err != nil {
		return err
	}

	logger.Info(ctx, "Risk alert published",
		"alert_id", alert.ID,
		"severity", alert.Severity,
		"utilization_pct", alert.UtilizationPct,
	)
	return nil
}
