package service

import (
	"context"
	"strings"

	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/pkg/events"
	pktNats "learning-hub-be/pkg/nats"
)

// ResultDelivery defines how to push real-time updates.
// Implemented by the WebSocket Hub.
type ResultDelivery interface {
	Send(channelID string, event events.Event)
}

// NotificationService bridges completion events from NATS to waiting
// websocket clients, keyed by task id.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   ResultDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery ResultDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	taskId, _ := event.Payload()["task_id"].(string)
	if taskId == "" {
		s.logger.Warn("NotificationService", "Event without task_id, skipping", map[string]interface{}{"type": typeCode})
		return nil
	}

	s.logger.Info("NotificationService", "Delivering event", map[string]interface{}{
		"type":    typeCode,
		"task_id": taskId,
	})

	if s.delivery != nil {
		s.delivery.Send(taskId, events.BaseEvent{
			Type:       typeCode,
			Data:       event.Payload(),
			OccurredAt: event.Timestamp(),
		})
	}
	return nil
}
