package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
)

// PointerRepository implements ports.PointerRepository. Pointer records live
// in their group's partition; the chronological queries run against the two
// time-ordered indexes.
type PointerRepository struct {
	baseRepository
}

// NewPointerRepository creates the repository.
func NewPointerRepository(client *awsdynamodb.Client, tableName string, logger *zap.Logger) ports.PointerRepository {
	return &PointerRepository{baseRepository: newBaseRepository(client, tableName, logger)}
}

func (r *PointerRepository) GetHangoutPointer(ctx context.Context, groupID, hangoutID string) (*domain.HangoutPointer, error) {
	var item hangoutPointerItem
	found, err := r.getItem(ctx, "GetHangoutPointer", groupPK(groupID), hangoutPtrSK(hangoutID), &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toDomain(), nil
}

func (r *PointerRepository) SaveHangoutPointer(ctx context.Context, p *domain.HangoutPointer) error {
	expected := p.Version
	p.Version++
	if err := r.putVersioned(ctx, "SaveHangoutPointer", newHangoutPointerItem(p), expected); err != nil {
		p.Version = expected
		return err
	}
	return nil
}

func (r *PointerRepository) DeleteHangoutPointer(ctx context.Context, groupID, hangoutID string) error {
	return r.deleteItem(ctx, "DeleteHangoutPointer", groupPK(groupID), hangoutPtrSK(hangoutID))
}

func (r *PointerRepository) HangoutPointersByGroup(ctx context.Context, groupID string) ([]*domain.HangoutPointer, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(groupPK(groupID))).
		And(expression.Key("SK").BeginsWith(hangoutPtrSKPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, errors.NewRepositoryError("HangoutPointersByGroup", err)
	}

	var out []*domain.HangoutPointer
	paginator := awsdynamodb.NewQueryPaginator(r.client, &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError("HangoutPointersByGroup", err)
		}
		items, err := unmarshalPointers(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (r *PointerRepository) GetSeriesPointer(ctx context.Context, groupID, seriesID string) (*domain.SeriesPointer, error) {
	var item seriesPointerItem
	found, err := r.getItem(ctx, "GetSeriesPointer", groupPK(groupID), seriesPtrSK(seriesID), &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toDomain(), nil
}

func (r *PointerRepository) SaveSeriesPointer(ctx context.Context, p *domain.SeriesPointer) error {
	expected := p.Version
	p.Version++
	if err := r.putVersioned(ctx, "SaveSeriesPointer", newSeriesPointerItem(p), expected); err != nil {
		p.Version = expected
		return err
	}
	return nil
}

func (r *PointerRepository) DeleteSeriesPointer(ctx context.Context, groupID, seriesID string) error {
	return r.deleteItem(ctx, "DeleteSeriesPointer", groupPK(groupID), seriesPtrSK(seriesID))
}

// QueryUpcoming returns dated pointers with (start, id) strictly after the
// boundary, ascending.
func (r *PointerRepository) QueryUpcoming(ctx context.Context, groupID string, afterTimestamp int64, afterID string, limit int) ([]*domain.HangoutPointer, error) {
	keyEx := expression.Key("GSI2PK").Equal(expression.Value(groupPK(groupID))).
		And(expression.Key("GSI2SK").GreaterThan(expression.Value(timeSortKey(afterTimestamp, afterID))))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, errors.NewRepositoryError("QueryUpcoming", err)
	}

	input := &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(EntityTimeIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, translateError("QueryUpcoming", err)
	}
	return unmarshalPointers(result.Items)
}

// QueryInProgress returns dated pointers spanning the instant at: started
// already, not ended yet.
func (r *PointerRepository) QueryInProgress(ctx context.Context, groupID string, at int64) ([]*domain.HangoutPointer, error) {
	// "~" sorts after every id character, closing the range at timestamp at.
	keyEx := expression.Key("GSI2PK").Equal(expression.Value(groupPK(groupID))).
		And(expression.Key("GSI2SK").LessThanEqual(expression.Value(timeSortKey(at, "~"))))
	filter := expression.GreaterThan(expression.Name("EndTimestamp"), expression.Value(at))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).WithFilter(filter).Build()
	if err != nil {
		return nil, errors.NewRepositoryError("QueryInProgress", err)
	}

	var out []*domain.HangoutPointer
	paginator := awsdynamodb.NewQueryPaginator(r.client, &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(EntityTimeIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError("QueryInProgress", err)
		}
		items, err := unmarshalPointers(page.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

// QueryEndedBefore returns dated pointers with (end, id) strictly before the
// boundary, descending by end time.
func (r *PointerRepository) QueryEndedBefore(ctx context.Context, groupID string, beforeTimestamp int64, beforeID string, limit int) ([]*domain.HangoutPointer, error) {
	keyEx := expression.Key("GSI3PK").Equal(expression.Value(groupPK(groupID))).
		And(expression.Key("GSI3SK").LessThan(expression.Value(timeSortKey(beforeTimestamp, beforeID))))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, errors.NewRepositoryError("QueryEndedBefore", err)
	}

	input := &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(EndTimestampIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, translateError("QueryEndedBefore", err)
	}
	return unmarshalPointers(result.Items)
}

// TransactWrite applies up to 25 conditioned pointer writes atomically. Any
// failed condition cancels the whole batch.
func (r *PointerRepository) TransactWrite(ctx context.Context, writes []ports.PointerWrite) error {
	if len(writes) == 0 {
		return nil
	}
	if len(writes) > ports.MaxTransactWriteItems {
		return errors.NewValidationError("transaction exceeds item cap")
	}

	items := make([]types.TransactWriteItem, 0, len(writes))
	for _, w := range writes {
		switch {
		case w.HangoutPointer != nil:
			p := *w.HangoutPointer
			p.Version = w.ExpectedVersion + 1
			item, err := r.conditionedPut(newHangoutPointerItem(&p), w.ExpectedVersion)
			if err != nil {
				return err
			}
			items = append(items, item)
		case w.SeriesPointer != nil:
			p := *w.SeriesPointer
			p.Version = w.ExpectedVersion + 1
			item, err := r.conditionedPut(newSeriesPointerItem(&p), w.ExpectedVersion)
			if err != nil {
				return err
			}
			items = append(items, item)
		case w.Membership != nil:
			m := *w.Membership
			m.Version = w.ExpectedVersion + 1
			item, err := r.conditionedPut(newMembershipItem(&m), w.ExpectedVersion)
			if err != nil {
				return err
			}
			items = append(items, item)
		case w.Delete != nil:
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key:       deleteKey(w.Delete),
				},
			})
		default:
			return errors.NewValidationError("empty pointer write")
		}
	}

	_, err := r.client.TransactWriteItems(ctx, &awsdynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		r.logger.Warn("pointer transaction failed",
			zap.Int("items", len(items)),
			zap.Error(err),
		)
		return translateError("TransactWrite", err)
	}
	return nil
}

func (r *PointerRepository) conditionedPut(item interface{}, expected int64) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.TransactWriteItem{}, errors.NewRepositoryError("TransactWrite", err)
	}
	expr, err := expression.NewBuilder().WithCondition(versionCondition(expected)).Build()
	if err != nil {
		return types.TransactWriteItem{}, errors.NewRepositoryError("TransactWrite", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                 aws.String(r.tableName),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}

func deleteKey(k *ports.PointerKey) map[string]types.AttributeValue {
	sk := ""
	switch {
	case k.HangoutID != "":
		sk = hangoutPtrSK(k.HangoutID)
	case k.SeriesID != "":
		sk = seriesPtrSK(k.SeriesID)
	case k.UserID != "":
		sk = memberSK(k.UserID)
	}
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: groupPK(k.GroupID)},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func unmarshalPointers(raw []map[string]types.AttributeValue) ([]*domain.HangoutPointer, error) {
	var items []hangoutPointerItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, errors.NewRepositoryError("unmarshal pointers", err)
	}
	out := make([]*domain.HangoutPointer, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out, nil
}
