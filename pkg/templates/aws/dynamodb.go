package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBTable points at one DynamoDB table.
type DynamoDBTable struct {
	Session

	TableName string `config:"table_name" validate:"required"`
}

// Client builds a DynamoDB client from the section's session.
func (t *DynamoDBTable) Client(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := t.Config(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// Describe fetches the table's metadata.
func (t *DynamoDBTable) Describe(ctx context.Context) (*types.TableDescription, error) {
	client, err := t.Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(t.TableName),
	})
	if err != nil {
		return nil, fmt.Errorf("describing table %s: %w", t.TableName, err)
	}
	return out.Table, nil
}

// GetItem reads one item by its full key.
func (t *DynamoDBTable) GetItem(ctx context.Context, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	client, err := t.Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.TableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("getting item from %s: %w", t.TableName, err)
	}
	return out.Item, nil
}
