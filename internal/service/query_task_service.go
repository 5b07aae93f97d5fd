package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"learning-hub-be/internal/dto"
	"learning-hub-be/pkg/events"
	"learning-hub-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// EventPublisher sends completion events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IQueryTaskService interface {
	// Enqueue schedules a background query run and returns the task id
	// clients subscribe to for the result. Every call enqueues a fresh
	// task; concurrent identical queries are resolved by the cache, not
	// deduplicated here.
	Enqueue(ctx context.Context, query string) (string, error)

	// Consume starts the background query worker.
	Consume(ctx context.Context) error
}

type queryTaskService struct {
	publisherService IPublisherService
	pubSub           *gochannel.GoChannel
	topicName        string
	index            *rag.Index
	natsPub          EventPublisher
}

func NewQueryTaskService(
	publisherService IPublisherService,
	pubSub *gochannel.GoChannel,
	topicName string,
	index *rag.Index,
	natsPub EventPublisher,
) IQueryTaskService {
	return &queryTaskService{
		publisherService: publisherService,
		pubSub:           pubSub,
		topicName:        topicName,
		index:            index,
		natsPub:          natsPub,
	}
}

func (s *queryTaskService) Enqueue(ctx context.Context, query string) (string, error) {
	taskId := uuid.NewString()

	payload := dto.RunQueryMessage{
		TaskId: taskId,
		Query:  query,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
		return "", err
	}
	return taskId, nil
}

func (s *queryTaskService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *queryTaskService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RunQueryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal query message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Running query task %s", payload.TaskId)

	result, err := s.index.Query(ctx, payload.Query)
	if err != nil {
		log.Printf("[ERROR] Query task %s failed: %v", payload.TaskId, err)
		msg.Nack()
		return
	}

	resultMap, err := toMap(result)
	if err != nil {
		log.Printf("[ERROR] Failed to serialize result for task %s: %v", payload.TaskId, err)
		msg.Ack() // Result is computed and cached; only delivery failed
		return
	}

	event := events.QueryCompletedEvent{
		TaskId:     payload.TaskId,
		Query:      payload.Query,
		Result:     resultMap,
		OccurredAt: time.Now(),
	}

	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, event); err != nil {
			log.Printf("[ERROR] Failed to publish completion event for task %s: %v", payload.TaskId, err)
		}
	}

	log.Printf("[SUCCESS] Query task completed: %s", payload.TaskId)
	msg.Ack()
}

func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
