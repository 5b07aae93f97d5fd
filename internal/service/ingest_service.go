package service

import (
	"context"
	"encoding/json"
	"log"

	"learning-hub-be/internal/dto"
	"learning-hub-be/internal/entity"
	"learning-hub-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IIngestService interface {
	// Submit validates and enqueues documents for background indexing.
	Submit(ctx context.Context, req *dto.IngestDocumentsRequest) (*dto.IngestDocumentsResponse, error)

	// Consume starts the background indexing worker.
	Consume(ctx context.Context) error
}

type ingestService struct {
	publisherService IPublisherService
	pubSub           *gochannel.GoChannel
	topicName        string
	index            *rag.Index
}

func NewIngestService(
	publisherService IPublisherService,
	pubSub *gochannel.GoChannel,
	topicName string,
	index *rag.Index,
) IIngestService {
	return &ingestService{
		publisherService: publisherService,
		pubSub:           pubSub,
		topicName:        topicName,
		index:            index,
	}
}

func (s *ingestService) Submit(ctx context.Context, req *dto.IngestDocumentsRequest) (*dto.IngestDocumentsResponse, error) {
	documentIds := make([]string, 0, len(req.Documents))

	for _, docReq := range req.Documents {
		doc := docReq.ToEntity()

		payload := dto.IndexDocumentMessage{
			Document: doc.Document,
			Text:     doc.Text,
		}
		payloadJson, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
			return nil, err
		}
		documentIds = append(documentIds, doc.Id)
	}

	return &dto.IngestDocumentsResponse{DocumentIds: documentIds}, nil
}

func (s *ingestService) Consume(ctx context.Context) error {
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

func (s *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal index message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing document %s (%s)", payload.Document.Id, payload.Document.Title)

	doc := entity.DocumentWithText{
		Document: payload.Document,
		Text:     payload.Text,
	}

	if err := s.index.IndexDocuments(ctx, []entity.DocumentWithText{doc}); err != nil {
		log.Printf("[ERROR] Failed to index document %s: %v", payload.Document.Id, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[SUCCESS] Document indexed: %s", payload.Document.Id)
	msg.Ack()
}
