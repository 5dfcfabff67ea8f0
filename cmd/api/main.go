package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-maintenance-tickets/internal/aws"
	"github.com/imrishuroy/go-maintenance-tickets/internal/blob"
	"github.com/imrishuroy/go-maintenance-tickets/internal/cleanup"
	"github.com/imrishuroy/go-maintenance-tickets/internal/config"
	"github.com/imrishuroy/go-maintenance-tickets/internal/handlers"
	"github.com/imrishuroy/go-maintenance-tickets/internal/logging"
	"github.com/imrishuroy/go-maintenance-tickets/internal/metrics"
	"github.com/imrishuroy/go-maintenance-tickets/internal/notify"
	"github.com/imrishuroy/go-maintenance-tickets/internal/tickets"
)

func setupRouter(cfg handlers.HandlerConfig, maxBodyBytes int64) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.CORS())
	r.Use(handlers.BodyLimit(maxBodyBytes))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterTicketRoutes(r, cfg)

	return r
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	store := tickets.NewStore(clients.DynamoDB, cfg.TicketsTable)
	blobs := blob.NewStore(clients.S3, clients.S3Presign, cfg.ImageBucket, cfg.PresignTTL)
	notifier := notify.NewPublisher(clients.SNS, cfg.TopicARN)
	cleanupQueue := cleanup.NewQueue(clients.SQS, cfg.CleanupQueueURL)
	recorder := metrics.NewRecorder(clients.CloudWatch, "MaintenanceTickets", logger)

	coordinator := tickets.NewCoordinator(
		store, blobs, notifier, cleanupQueue, recorder,
		logging.WithComponent(logger, "coordinator"),
		tickets.CoordinatorConfig{
			MaxImageBytes:  cfg.MaxImageBytes,
			RetryAttempts:  cfg.RetryAttempts,
			RetryBaseDelay: cfg.RetryBaseDelay,
		},
	)

	r := setupRouter(handlers.HandlerConfig{
		Coordinator: coordinator,
		Log:         logging.WithComponent(logger, "handlers"),
	}, cfg.MaxImageBytes*2) // room for base64 expansion plus the rest of the body

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		logger.Sugar().Infof("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
