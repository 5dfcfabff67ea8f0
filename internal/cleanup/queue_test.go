package cleanup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type mockSQS struct {
	inputs []*sqs.SendMessageInput
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

func TestEnqueue(t *testing.T) {
	mock := &mockSQS{}
	q := NewQueue(mock, "https://sqs.test/cleanup")

	if err := q.Enqueue(context.Background(), "t1.jpg", "t1", "ticket_complete"); err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	if len(mock.inputs) != 1 {
		t.Fatalf("expected 1 send, got %d", len(mock.inputs))
	}
	in := mock.inputs[0]
	if *in.QueueUrl != q.QueueURL {
		t.Fatalf("wrong queue url %q", *in.QueueUrl)
	}

	var msg Message
	if err := json.Unmarshal([]byte(*in.MessageBody), &msg); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if msg.ImageKey != "t1.jpg" || msg.TicketID != "t1" || msg.Reason != "ticket_complete" {
		t.Fatalf("unexpected message %+v", msg)
	}

	attr, ok := in.MessageAttributes["ticket_id"]
	if !ok || *attr.StringValue != "t1" {
		t.Fatalf("ticket_id attribute missing or wrong: %+v", in.MessageAttributes)
	}
}
