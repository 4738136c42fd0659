package dynamodb

import (
	"context"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/domain"
)

// SeriesRepository implements ports.SeriesRepository.
type SeriesRepository struct {
	baseRepository
}

// NewSeriesRepository creates the repository.
func NewSeriesRepository(client *awsdynamodb.Client, tableName string, logger *zap.Logger) ports.SeriesRepository {
	return &SeriesRepository{baseRepository: newBaseRepository(client, tableName, logger)}
}

func (r *SeriesRepository) SaveSeries(ctx context.Context, s *domain.EventSeries) error {
	expected := s.Version
	s.Version++
	if err := r.putVersioned(ctx, "SaveSeries", newSeriesItem(s), expected); err != nil {
		s.Version = expected
		return err
	}
	return nil
}

func (r *SeriesRepository) GetSeries(ctx context.Context, seriesID string) (*domain.EventSeries, error) {
	var item seriesItem
	found, err := r.getItem(ctx, "GetSeries", seriesPK(seriesID), metadataSK, &item)
	if err != nil || !found {
		return nil, err
	}
	return item.toDomain(), nil
}

func (r *SeriesRepository) DeleteSeries(ctx context.Context, seriesID string) error {
	return r.deleteItem(ctx, "DeleteSeries", seriesPK(seriesID), metadataSK)
}
