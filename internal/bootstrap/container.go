package bootstrap

import (
	"context"
	"log"

	"ai-docstore-be/internal/config"
	"ai-docstore-be/internal/controller"
	"ai-docstore-be/internal/handler"
	"ai-docstore-be/internal/pkg/logger"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/internal/repository/memory"
	"ai-docstore-be/internal/service"
	"ai-docstore-be/internal/websocket"
	"ai-docstore-be/pkg/credential"
	"ai-docstore-be/pkg/gemini"
	"ai-docstore-be/pkg/ingest"
	"ai-docstore-be/pkg/operation"
	"ai-docstore-be/pkg/realtime"

	pktNats "ai-docstore-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	StoreController      controller.IStoreController
	DocumentController   controller.IDocumentController
	UploadController     controller.IUploadController
	QueryController      controller.IQueryController
	SpeechController     controller.ISpeechController
	CredentialController controller.ICredentialController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	EventsHandler *handler.EventsHandler
	LiveHandler   *handler.LiveHandler
	WebSocketHub  *websocket.Hub

	NatsPublisher *pktNats.Publisher
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	liveLogger := logger.NewIsolatedLogger(cfg.App.LiveLogFilePath)

	credentialRepo := memory.NewCredentialRepository(cfg.App.CredentialTTL)
	sessionStoreRepo := memory.NewSessionStoreRepository(cfg.App.CredentialTTL)
	uploadJobRepo := memory.NewUploadJobRepository(cfg.App.JobTTL)

	creds := credential.NewUserProvider(credentialRepo, cfg.Gemini.APIKey)
	geminiClient := gemini.NewClient(creds, gemini.Config{
		BaseURL:         cfg.Gemini.BaseURL,
		UploadURL:       cfg.Gemini.UploadURL,
		QueryModel:      cfg.Gemini.QueryModel,
		SpeechModel:     cfg.Gemini.SpeechModel,
		TranscribeModel: cfg.Gemini.TranscribeModel,
		Voice:           cfg.Gemini.Voice,
	})
	liveDialer := gemini.NewLiveDialer(creds, gemini.LiveConfig{
		URL:               cfg.Gemini.LiveURL,
		Model:             cfg.Gemini.LiveModel,
		Voice:             cfg.Gemini.Voice,
		SystemInstruction: cfg.Live.SystemInstruction,
	}, liveLogger)
	poller := operation.NewPoller(cfg.Ingest.PollInterval, cfg.Ingest.MaxAttempts)

	// 2. Event Bus
	// Upload events of one job must reach the relay in order; block each
	// publish until the subscriber has acked the previous one.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	var eventPub service.EventPublisher
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPub = natsPub
		}
	}

	// Redis
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.UploadTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.UploadTopic,
		uploadJobRepo,
		wsHub, // Hub implements ProgressDelivery
		eventPub,
		sysLogger,
	)

	storeService := service.NewStoreService(geminiClient, sessionStoreRepo, eventPub, sysLogger)
	documentService := service.NewDocumentService(geminiClient, sysLogger)
	uploadService := service.NewUploadService(
		geminiClient,
		poller,
		ingest.Options{
			StoreWeight:    cfg.Ingest.StoreWeight,
			MaxBytes:       cfg.Ingest.MaxBytes,
			RequireVersion: cfg.Ingest.RequireVersion,
		},
		uploadJobRepo,
		sessionStoreRepo,
		publisherService,
		sysLogger,
	)
	queryService := service.NewQueryService(geminiClient, cfg.Gemini.Language, sysLogger)
	speechService := service.NewSpeechService(geminiClient)
	credentialService := service.NewCredentialService(credentialRepo, cfg.Gemini.APIKey, sysLogger)
	liveService := service.NewLiveService(liveDialer, realtime.Config{
		InputSampleRate:  cfg.Live.InputSampleRate,
		OutputSampleRate: cfg.Live.OutputSampleRate,
	}, liveLogger)

	// 4. Controllers
	auth := serverutils.NewJwtMiddleware(cfg.App.JWTSecret)

	return &Container{
		StoreController:      controller.NewStoreController(storeService, auth),
		DocumentController:   controller.NewDocumentController(documentService, auth),
		UploadController:     controller.NewUploadController(uploadService, auth, cfg.Ingest.MaxBytes),
		QueryController:      controller.NewQueryController(queryService, auth),
		SpeechController:     controller.NewSpeechController(speechService, auth),
		CredentialController: controller.NewCredentialController(credentialService, auth),

		ConsumerService: consumerService,

		EventsHandler: handler.NewEventsHandler(wsHub, cfg.App.JWTSecret, sysLogger),
		LiveHandler:   handler.NewLiveHandler(liveService, cfg.App.JWTSecret, liveLogger),
		WebSocketHub:  wsHub,

		NatsPublisher: natsPub,
	}
}
