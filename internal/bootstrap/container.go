package bootstrap

import (
	"context"
	"log"
	"time"

	"learning-hub-be/internal/catalog"
	"learning-hub-be/internal/config"
	"learning-hub-be/internal/controller"
	"learning-hub-be/internal/handler"
	"learning-hub-be/internal/pkg/logger"
	"learning-hub-be/internal/repository/unitofwork"
	"learning-hub-be/internal/service"
	"learning-hub-be/internal/websocket"
	"learning-hub-be/pkg/cache"
	"learning-hub-be/pkg/embedding"
	"learning-hub-be/pkg/llm/factory"
	"learning-hub-be/pkg/rag"

	pktNats "learning-hub-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SearchController   controller.ISearchController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	IngestService    service.IIngestService
	QueryTaskService service.IQueryTaskService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Shared facades (Exposed for CLI entrypoints)
	Index *rag.Index
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	var completionPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		completionPublisher = natsPub
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	queryCache := cache.NewRedisCache(rdb, cache.Config{
		Prefix: cfg.Cache.QueryPrefix,
		TTL:    time.Duration(cfg.Cache.QueryTTLSeconds) * time.Second,
	})

	// 5. Retrieval Index
	documentCatalog := catalog.NewCatalog(uowFactory)

	index := rag.NewIndex(
		embeddingProvider,
		llmProvider,
		cfg.Ai.SafePrompt,
		uowFactory,
		documentCatalog,
		queryCache,
		rag.Config{
			ChunkSize:            cfg.Retrieval.ChunkSize,
			ChunkOverlap:         cfg.Retrieval.ChunkOverlap,
			TopK:                 cfg.Retrieval.TopK,
			MaxDocumentSummaries: cfg.Retrieval.MaxDocumentSummaries,
		},
		sysLogger,
	)

	// 6. WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 7. Services
	indexPublisher := service.NewPublisherService(cfg.Topics.IndexDocument, pubSub)
	queryPublisher := service.NewPublisherService(cfg.Topics.Query, pubSub)

	ingestService := service.NewIngestService(indexPublisher, pubSub, cfg.Topics.IndexDocument, index)
	queryTaskService := service.NewQueryTaskService(queryPublisher, pubSub, cfg.Topics.Query, index, completionPublisher)

	searchService := service.NewSearchService(index, documentCatalog, queryTaskService, sysLogger)

	notifService := service.NewNotificationService(natsSub, wsHub, sysLogger)
	if natsSub != nil {
		go notifService.Start()
	}

	notifHandler := handler.NewNotificationHandler(notifService, wsHub, sysLogger)

	// 8. Controllers
	return &Container{
		SearchController:   controller.NewSearchController(searchService),
		DocumentController: controller.NewDocumentController(ingestService, searchService),

		IngestService:    ingestService,
		QueryTaskService: queryTaskService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		Index: index,
	}
}
