package services

import (
	"context"
	"encoding/json"
	"time"

	awspkg "wholesale-service/pkg/aws"

	"go.uber.org/zap"
)

// typedPublisher is implemented by publishers that can tag a message with its
// event type.
type typedPublisher interface {
	PublishWithType(ctx context.Context, topicArn, eventType string, message []byte) error
}

// eventPublisher publishes domain events to SNS. Failures are logged and
// never fail the request that produced the event.
type eventPublisher struct {
	sns      awspkg.SNSPublisher
	topicArn string
	logger   *zap.Logger
}

func (p eventPublisher) publish(ctx context.Context, eventType string, event interface{}) {
	if p.sns == nil || p.topicArn == "" {
		p.logger.Debug("SNS not configured, skipping event", zap.String("event_type", eventType))
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	if typed, ok := p.sns.(typedPublisher); ok {
		err = typed.PublishWithType(ctx, p.topicArn, eventType, body)
	} else {
		err = p.sns.Publish(ctx, p.topicArn, body)
	}
	if err != nil {
		p.logger.Error("Failed to publish event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	p.logger.Info("Published event", zap.String("event_type", eventType))
}

// recordCount emits a CloudWatch counter without blocking the caller.
func recordCount(metrics awspkg.MetricsRecorder, name string, dims map[string]string) {
	if metrics == nil || !metrics.IsEnabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metrics.RecordCount(ctx, name, dims)
	}()
}
