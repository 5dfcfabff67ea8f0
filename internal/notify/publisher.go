package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/imrishuroy/go-maintenance-tickets/internal/aws"
	"github.com/imrishuroy/go-maintenance-tickets/internal/tickets"
)

// Publisher wraps an SNS client and a topic ARN. Delivery is
// at-least-once and fire-and-forget; subscriber receipt is never
// surfaced to the caller.
type Publisher struct {
	SNS      aws.SNSAPI
	TopicARN string
}

// NewPublisher returns a Publisher bound to a topic.
func NewPublisher(snsClient aws.SNSAPI, topicARN string) *Publisher {
	return &Publisher{
		SNS:      snsClient,
		TopicARN: topicARN,
	}
}

// PublishCompletion publishes one completion event. The subject and
// body are shaped for the email subscribers on the topic.
func (p *Publisher) PublishCompletion(ctx context.Context, ev tickets.CompletionEvent) error {
	subject := fmt.Sprintf("RESOLVED: %s - %s", ev.Location, ev.Description)
	message := fmt.Sprintf(
		"Good news!\n\nThe maintenance request %q at %s has been marked COMPLETE.\n\nTicket ID: %s\nReported by: %s\n",
		ev.Description, ev.Location, ev.TicketID, ev.Reporter)
	if ev.Technician != "" {
		message += fmt.Sprintf("Completed by: %s\n", ev.Technician)
	}

	input := &sns.PublishInput{
		TopicArn: &p.TopicARN,
		Subject:  &subject,
		Message:  &message,
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"ticket_id": {
				DataType:    awsString("String"),
				StringValue: &ev.TicketID,
			},
		},
	}

	if _, err := p.SNS.Publish(ctx, input); err != nil {
		return fmt.Errorf("publish completion: %w", err)
	}
	return nil
}

// awsString helper
func awsString(s string) *string { return &s }
