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

// HangoutRepository implements ports.HangoutRepository. Hangouts, their
// reservation offers and claimed-spot items share one partition, so reads
// of a hangout and its claims are a single-partition query.
type HangoutRepository struct {
	baseRepository
}

// NewHangoutRepository creates the repository.
func NewHangoutRepository(client *awsdynamodb.Client, tableName string, logger *zap.Logger) ports.HangoutRepository {
	return &HangoutRepository{baseRepository: newBaseRepository(client, tableName, logger)}
}

func (r *HangoutRepository) SaveHangout(ctx context.Context, h *domain.Hangout) error {
	expected := h.Version
	h.Version++
	if err := r.putVersioned(ctx, "SaveHangout", newHangoutItem(h), expected); err != nil {
		h.Version = expected
		return err
	}
	return nil
}

// GetHangout loads the canonical record and folds the partition's claim
// items into its participation list, so participant counts always derive
// from canonical state.
func (r *HangoutRepository) GetHangout(ctx context.Context, hangoutID string) (*domain.Hangout, error) {
	keyEx := expression.Key("PK").Equal(expression.Value(hangoutPK(hangoutID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyEx).Build()
	if err != nil {
		return nil, errors.NewRepositoryError("GetHangout", err)
	}

	var hangout *domain.Hangout
	var claims []*domain.Participation

	paginator := awsdynamodb.NewQueryPaginator(r.client, &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, translateError("GetHangout", err)
		}
		for _, raw := range page.Items {
			entityType := ""
			if av, ok := raw["EntityType"].(*types.AttributeValueMemberS); ok {
				entityType = av.Value
			}
			switch entityType {
			case "HANGOUT":
				var item hangoutItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return nil, errors.NewRepositoryError("GetHangout", err)
				}
				hangout = item.toDomain()
			case "CLAIM":
				var item claimItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					return nil, errors.NewRepositoryError("GetHangout", err)
				}
				claims = append(claims, item.toDomain())
			}
		}
	}

	if hangout == nil {
		return nil, nil
	}
	for _, c := range claims {
		hangout.Participations = append(hangout.Participations, *c)
	}
	return hangout, nil
}

// DeleteHangout removes every item in the hangout's partition: the
// canonical record plus its offer and claimed-spot items.
func (r *HangoutRepository) DeleteHangout(ctx context.Context, hangoutID string) error {
	keyEx := expression.Key("PK").Equal(expression.Value(hangoutPK(hangoutID)))
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyEx).
		WithProjection(expression.NamesList(expression.Name("PK"), expression.Name("SK"))).
		Build()
	if err != nil {
		return errors.NewRepositoryError("DeleteHangout", err)
	}

	var keys []map[string]types.AttributeValue
	paginator := awsdynamodb.NewQueryPaginator(r.client, &awsdynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return translateError("DeleteHangout", err)
		}
		for _, raw := range page.Items {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": raw["PK"],
				"SK": raw["SK"],
			})
		}
	}

	for start := 0; start < len(keys); start += maxBatchWriteItems {
		end := start + maxBatchWriteItems
		if end > len(keys) {
			end = len(keys)
		}
		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key},
			})
		}
		for len(requests) > 0 {
			out, err := r.client.BatchWriteItem(ctx, &awsdynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{r.tableName: requests},
			})
			if err != nil {
				return translateError("DeleteHangout", err)
			}
			requests = out.UnprocessedItems[r.tableName]
		}
	}

	r.logger.Debug("hangout partition deleted",
		zap.String("hangoutID", hangoutID),
		zap.Int("items", len(keys)),
	)
	return nil
}

func (r *HangoutRepository) SaveOffer(ctx context.Context, o *domain.ReservationOffer) error {
	expected := o.Version
	o.Version++
	if err := r.putVersioned(ctx, "SaveOffer", newOfferItem(o), expected); err != nil {
		o.Version = expected
		return err
	}
	return nil
}

func (r *HangoutRepository) GetOffer(ctx context.Context, hangoutID, offerID string) (*domain.ReservationOffer, error) {
	var item offerItem
	found, err := r.getItem(ctx, "GetOffer", hangoutPK(hangoutID), offerSK(offerID), &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toDomain(), nil
}

// ClaimSpot writes the incremented offer and the new claim item in one
// transaction, the offer conditioned on the version read. A concurrent
// claimant fails the condition and surfaces as Conflict.
func (r *HangoutRepository) ClaimSpot(ctx context.Context, o *domain.ReservationOffer, p *domain.Participation) error {
	expected := o.Version
	o.Version++

	offerAV, err := attributevalue.MarshalMap(newOfferItem(o))
	if err != nil {
		o.Version = expected
		return errors.NewRepositoryError("ClaimSpot", err)
	}
	claimAV, err := attributevalue.MarshalMap(newClaimItem(p))
	if err != nil {
		o.Version = expected
		return errors.NewRepositoryError("ClaimSpot", err)
	}

	expr, err := expression.NewBuilder().WithCondition(versionCondition(expected)).Build()
	if err != nil {
		o.Version = expected
		return errors.NewRepositoryError("ClaimSpot", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &awsdynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                 aws.String(r.tableName),
					Item:                      offerAV,
					ConditionExpression:       expr.Condition(),
					ExpressionAttributeNames:  expr.Names(),
					ExpressionAttributeValues: expr.Values(),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.tableName),
					Item:      claimAV,
				},
			},
		},
	})
	if err != nil {
		o.Version = expected
		return translateError("ClaimSpot", err)
	}

	r.logger.Debug("spot claimed",
		zap.String("offerID", o.ID),
		zap.String("userID", p.UserID),
		zap.Int("claimedSpots", o.ClaimedSpots),
	)
	return nil
}

// ReleaseSpot writes the decremented offer and deletes the claim item in
// one transaction, same conditioning as ClaimSpot.
func (r *HangoutRepository) ReleaseSpot(ctx context.Context, o *domain.ReservationOffer, userID string) error {
	expected := o.Version
	o.Version++

	offerAV, err := attributevalue.MarshalMap(newOfferItem(o))
	if err != nil {
		o.Version = expected
		return errors.NewRepositoryError("ReleaseSpot", err)
	}

	expr, err := expression.NewBuilder().WithCondition(versionCondition(expected)).Build()
	if err != nil {
		o.Version = expected
		return errors.NewRepositoryError("ReleaseSpot", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &awsdynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:                 aws.String(r.tableName),
					Item:                      offerAV,
					ConditionExpression:       expr.Condition(),
					ExpressionAttributeNames:  expr.Names(),
					ExpressionAttributeValues: expr.Values(),
				},
			},
			{
				Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: hangoutPK(o.HangoutID)},
						"SK": &types.AttributeValueMemberS{Value: claimSK(o.ID, userID)},
					},
				},
			},
		},
	})
	if err != nil {
		o.Version = expected
		return translateError("ReleaseSpot", err)
	}
	return nil
}

func (r *HangoutRepository) GetClaim(ctx context.Context, hangoutID, offerID, userID string) (*domain.Participation, error) {
	var item claimItem
	found, err := r.getItem(ctx, "GetClaim", hangoutPK(hangoutID), claimSK(offerID, userID), &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toDomain(), nil
}
