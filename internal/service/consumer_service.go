package service

import (
	"context"
	"encoding/json"

	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes every trip event from the bus to the audit log.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	audit      logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, topicName string, audit logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		audit:      audit,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var env events.Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		cs.audit.Error("EVENTS", "Unreadable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // retrying will not fix the payload
		return
	}

	details := map[string]interface{}{
		"message_id":  msg.UUID,
		"occurred_at": env.OccurredAt,
	}
	for k, v := range env.Payload {
		details[k] = v
	}
	cs.audit.Info("EVENTS", env.Type, details)
	msg.Ack()
}
