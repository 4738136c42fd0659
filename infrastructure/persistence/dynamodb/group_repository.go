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

// GroupRepository implements ports.GroupRepository on the shared table.
type GroupRepository struct {
	baseRepository
}

// NewGroupRepository creates the repository.
func NewGroupRepository(client *awsdynamodb.Client, tableName string, logger *zap.Logger) ports.GroupRepository {
	return &GroupRepository{baseRepository: newBaseRepository(client, tableName, logger)}
}

// CreateWithOwner writes the group and the creator's admin membership in one
// transaction, both conditioned on not existing yet.
func (r *GroupRepository) CreateWithOwner(ctx context.Context, g *domain.Group, owner *domain.GroupMembership) error {
	groupAV, err := attributevalue.MarshalMap(newGroupItem(g))
	if err != nil {
		return errors.NewRepositoryError("CreateWithOwner", err)
	}
	memberAV, err := attributevalue.MarshalMap(newMembershipItem(owner))
	if err != nil {
		return errors.NewRepositoryError("CreateWithOwner", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return errors.NewRepositoryError("CreateWithOwner", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &awsdynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                 aws.String(r.tableName),
					Item:                      groupAV,
					ConditionExpression:       expr.Condition(),
					ExpressionAttributeNames:  expr.Names(),
					ExpressionAttributeValues: expr.Values(),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      memberAV,
				},
			},
		},
	})
	if err != nil {
		return translateError("CreateWithOwner", err)
	}

	r.logger.Debug("group created",
		zap.String("groupID", g.ID),
		zap.String("ownerID", owner.UserID),
	)
	return nil
}

func (r *GroupRepository) SaveGroup(ctx context.Context, g *domain.Group) error {
	expected := g.Version
	g.Version++
	if err := r.putVersioned(ctx, "SaveGroup", newGroupItem(g), expected); err != nil {
		g.Version = expected
		return err
	}
	return nil
}

func (r *GroupRepository) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	var item groupItem
	found, err := r.getItem(ctx, "GetGroup", groupPK(groupID), metadataSK, &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toDomain(), nil
}

func (r *GroupRepository) DeleteGroup(ctx context.Context, groupID string) error {
	return r.deleteItem(ctx, "DeleteGroup", groupPK(groupID), metadataSK)
}

// Touch advances the group's change marker to markerMillis. When the marker
// already sits at or past that value, it is bumped by one instead: the
// marker must change on every touch for caches to invalidate.
func (r *GroupRepository) Touch(ctx context.Context, groupID string, markerMillis int64) error {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: groupPK(groupID)},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}

	set := expression.Set(expression.Name("LastActivityAt"), expression.Value(markerMillis))
	condition := expression.AttributeExists(expression.Name("PK")).
		And(expression.LessThan(expression.Name("LastActivityAt"), expression.Value(markerMillis)))
	expr, err := expression.NewBuilder().WithUpdate(set).WithCondition(condition).Build()
	if err != nil {
		return errors.NewRepositoryError("Touch", err)
	}

	_, err = r.client.UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err == nil {
		return nil
	}
	if !errors.IsConflict(translateError("Touch", err)) {
		return translateError("Touch", err)
	}

	// Same-millisecond touch: increment instead so the marker still moves.
	bump := expression.Add(expression.Name("LastActivityAt"), expression.Value(1))
	exists := expression.AttributeExists(expression.Name("PK"))
	expr, err = expression.NewBuilder().WithUpdate(bump).WithCondition(exists).Build()
	if err != nil {
		return errors.NewRepositoryError("Touch", err)
	}

	_, err = r.client.UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if errors.IsConflict(translateError("Touch", err)) {
			return errors.NewNotFoundError("group")
		}
		return translateError("Touch", err)
	}
	return nil
}

func (r *GroupRepository) SaveMembership(ctx context.Context, m *domain.GroupMembership) error {
	expected := m.Version
	m.Version++
	if err := r.putVersioned(ctx, "SaveMembership", newMembershipItem(m), expected); err != nil {
		m.Version = expected
		return err
	}
	return nil
}

func (r *GroupRepository) GetMembership(ctx context.Context, groupID, userID string) (*domain.GroupMembership, error) {
	var item membershipItem
	found, err := r.getItem(ctx, "GetMembership", groupPK(groupID), memberSK(userID), &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toDomain(), nil
}

func (r *GroupRepository) DeleteMembership(ctx context.Context, groupID, userID string) error {
	return r.deleteItem(ctx, "DeleteMembership", groupPK(groupID), memberSK(userID))
}

func (r *GroupRepository) MembershipsByGroup(ctx context.Context, groupID string) ([]*domain.GroupMembership, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(groupPK(groupID))).
		And(expression.Key("SK").BeginsWith(memberSKPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, errors.NewRepositoryError("MembershipsByGroup", err)
	}

	var out []*domain.GroupMembership
	paginator := awsdynamodb.NewQueryPaginator(r.client, &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError("MembershipsByGroup", err)
		}
		var items []membershipItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, errors.NewRepositoryError("MembershipsByGroup", err)
		}
		for _, item := range items {
			out = append(out, item.toDomain())
		}
	}
	return out, nil
}

func (r *GroupRepository) MembershipsByUser(ctx context.Context, userID string) ([]*domain.GroupMembership, error) {
	keyEx := expression.Key("GSI1PK").Equal(expression.Value(userGSI1PK(userID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, errors.NewRepositoryError("MembershipsByUser", err)
	}

	var out []*domain.GroupMembership
	paginator := awsdynamodb.NewQueryPaginator(r.client, &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(UserGroupIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError("MembershipsByUser", err)
		}
		var items []membershipItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, errors.NewRepositoryError("MembershipsByUser", err)
		}
		for _, item := range items {
			out = append(out, item.toDomain())
		}
	}
	return out, nil
}
