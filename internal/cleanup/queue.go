package cleanup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/imrishuroy/go-maintenance-tickets/internal/aws"
)

// Message is the payload enqueued for the reconciliation worker when a
// synchronous blob delete fails.
type Message struct {
	ImageKey string `json:"image_key"`
	TicketID string `json:"ticket_id"`
	Reason   string `json:"reason,omitempty"`
}

// Queue wraps an SQS client and a queue URL for deferred blob cleanup.
type Queue struct {
	SQS      aws.SQSAPI
	QueueURL string
}

// NewQueue returns a Queue bound to a queue URL.
func NewQueue(sqsClient aws.SQSAPI, queueURL string) *Queue {
	return &Queue{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// Enqueue records a blob whose deletion must be re-attempted out of
// band. The worker drives retries; redelivery after worker failure is
// the queue's job.
func (q *Queue) Enqueue(ctx context.Context, imageKey, ticketID, reason string) error {
	body, err := json.Marshal(Message{
		ImageKey: imageKey,
		TicketID: ticketID,
		Reason:   reason,
	})
	if err != nil {
		return fmt.Errorf("marshal cleanup message: %w", err)
	}

	bodyStr := string(body)
	input := &sqs.SendMessageInput{
		QueueUrl:    &q.QueueURL,
		MessageBody: &bodyStr,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"ticket_id": {
				DataType:    awsString("String"),
				StringValue: &ticketID,
			},
		},
	}

	if _, err := q.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// awsString helper
func awsString(s string) *string { return &s }
