package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-maintenance-tickets/internal/aws"
)

// Store encapsulates operations on the tickets table. It is the only
// place that talks to DynamoDB; all invariants live in the Coordinator.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewStore creates a new ticket metadata Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

// Create persists a brand-new ticket record. It guards with
// attribute_not_exists so an id collision never silently overwrites.
func (s *Store) Create(ctx context.Context, t *Ticket) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(ticket_id)"),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		if isConditionalFailure(err) {
			return fmt.Errorf("ticket id already exists: %w", ErrConcurrentModification)
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get fetches a ticket by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, ticketID string) (*Ticket, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"ticket_id": &types.AttributeValueMemberS{Value: ticketID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var t Ticket
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, fmt.Errorf("unmarshal ticket: %w", err)
	}
	return &t, nil
}

// Scan returns every ticket, optionally filtered to one state. The
// table is scanned page by page; ordering is the caller's concern.
func (s *Store) Scan(ctx context.Context, state string) ([]Ticket, error) {
	var out []Ticket
	var startKey map[string]types.AttributeValue

	for {
		input := &dyn.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: startKey,
		}
		if state != "" {
			input.FilterExpression = awsString("#s = :state")
			input.ExpressionAttributeNames = map[string]string{"#s": "state"}
			input.ExpressionAttributeValues = map[string]types.AttributeValue{
				":state": &types.AttributeValueMemberS{Value: state},
			}
		}

		page, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for _, item := range page.Items {
			var t Ticket
			if err := attributevalue.UnmarshalMap(item, &t); err != nil {
				return nil, fmt.Errorf("unmarshal ticket: %w", err)
			}
			out = append(out, t)
		}

		if len(page.LastEvaluatedKey) == 0 {
			return out, nil
		}
		startKey = page.LastEvaluatedKey
	}
}

// Update replaces the stored record with t, but only if the stored
// version still equals expectedVersion. The loser of a write race gets
// ErrConcurrentModification; t.Version must already be bumped by the
// caller.
func (s *Store) Update(ctx context.Context, t *Ticket, expectedVersion int64) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_exists(ticket_id) AND version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
		},
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		if isConditionalFailure(err) {
			return fmt.Errorf("ticket %s version %d: %w", t.TicketID, expectedVersion, ErrConcurrentModification)
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Delete removes the ticket record. Deleting a missing id succeeds.
func (s *Store) Delete(ctx context.Context, ticketID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"ticket_id": &types.AttributeValueMemberS{Value: ticketID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }
