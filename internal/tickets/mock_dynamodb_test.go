package tickets

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for the DynamoDB client,
// just rich enough for the store's conditional expressions.
type mockDynamo struct {
	mu    sync.Mutex
	table map[string]map[string]types.AttributeValue

	putCalls    int
	getCalls    int
	scanCalls   int
	deleteCalls int

	failNextPut error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		table: map[string]map[string]types.AttributeValue{},
	}
}

func itemKey(item map[string]types.AttributeValue) (string, error) {
	attr, ok := item["ticket_id"]
	if !ok {
		return "", errors.New("missing ticket_id")
	}
	s, ok := attr.(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("ticket_id is not a string")
	}
	return s.Value, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++

	if m.failNextPut != nil {
		err := m.failNextPut
		m.failNextPut = nil
		return nil, err
	}

	k, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}

	if params.ConditionExpression != nil {
		cond := *params.ConditionExpression
		existing, exists := m.table[k]

		if strings.Contains(cond, "attribute_not_exists(ticket_id)") && exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		if strings.Contains(cond, "attribute_exists(ticket_id)") && !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		if strings.Contains(cond, "version = :expected") {
			expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN).Value
			stored, ok := existing["version"].(*types.AttributeValueMemberN)
			if !ok || stored.Value != expected {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}

	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	keyAttr, ok := params.Key["ticket_id"]
	if !ok {
		return nil, errors.New("missing key")
	}
	k := keyAttr.(*types.AttributeValueMemberS).Value
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("UpdateItem not used by the ticket store")
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++

	keyAttr, ok := params.Key["ticket_id"]
	if !ok {
		return nil, errors.New("missing key")
	}
	delete(m.table, keyAttr.(*types.AttributeValueMemberS).Value)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanCalls++

	var stateFilter string
	if params.FilterExpression != nil {
		attr, ok := params.ExpressionAttributeValues[":state"]
		if !ok {
			return nil, errors.New("filter without :state value")
		}
		stateFilter = attr.(*types.AttributeValueMemberS).Value
	}

	out := &dyn.ScanOutput{}
	for _, item := range m.table {
		if stateFilter != "" {
			st, ok := item["state"].(*types.AttributeValueMemberS)
			if !ok || st.Value != stateFilter {
				continue
			}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
