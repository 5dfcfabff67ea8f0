package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-maintenance-tickets/internal/aws"
	"github.com/imrishuroy/go-maintenance-tickets/internal/blob"
	"github.com/imrishuroy/go-maintenance-tickets/internal/config"
	"github.com/imrishuroy/go-maintenance-tickets/internal/logging"
	"github.com/imrishuroy/go-maintenance-tickets/internal/metrics"
)

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

	blobs := blob.NewStore(clients.S3, clients.S3Presign, cfg.ImageBucket, cfg.PresignTTL)
	recorder := metrics.NewRecorder(clients.CloudWatch, "MaintenanceTickets", logger)
	p := NewProcessor(blobs, recorder, logging.WithComponent(logger, "cleanup-worker"))

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"image_key":"local-ticket-1.jpg","ticket_id":"local-ticket-1","reason":"ticket_complete"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{
					Body: testBody,
				},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
