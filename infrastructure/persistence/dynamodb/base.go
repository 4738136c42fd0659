package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
)

// baseRepository holds the client and shared write helpers. All entity
// repositories embed it.
type baseRepository struct {
	client    *awsdynamodb.Client
	tableName string
	logger    *zap.Logger
}

func newBaseRepository(client *awsdynamodb.Client, tableName string, logger *zap.Logger) baseRepository {
	return baseRepository{client: client, tableName: tableName, logger: logger}
}

// putVersioned writes item conditioned on the stored Version matching
// expected, or on the item not existing. The marshalled item must already
// carry Version = expected+1.
func (r *baseRepository) putVersioned(ctx context.Context, operation string, item interface{}, expected int64) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.NewRepositoryError(operation, err)
	}

	condition := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Equal(expression.Name("Version"), expression.Value(expected)))
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return errors.NewRepositoryError(operation, err)
	}

	_, err = r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return translateError(operation, err)
}

// getItem loads one item by key with a strongly consistent read. Returns
// false when the item does not exist.
func (r *baseRepository) getItem(ctx context.Context, operation, pk, sk string, out interface{}) (bool, error) {
	result, err := r.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, translateError(operation, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, errors.NewRepositoryError(operation, err)
	}
	return true, nil
}

// deleteItem removes one item by key. Missing items succeed.
func (r *baseRepository) deleteItem(ctx context.Context, operation, pk, sk string) error {
	_, err := r.client.DeleteItem(ctx, &awsdynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	return translateError(operation, err)
}

// versionCondition builds the transactional condition for one write:
// expected 0 demands absence, anything else demands equality.
func versionCondition(expected int64) expression.ConditionBuilder {
	if expected == 0 {
		return expression.AttributeNotExists(expression.Name("PK"))
	}
	return expression.Equal(expression.Name("Version"), expression.Value(expected))
}
