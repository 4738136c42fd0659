// Package di wires the application together with google/wire.
package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/application/services"
	"github.com/bbthechange/hangoutsBackend-sub012/infrastructure/config"
	"github.com/bbthechange/hangoutsBackend-sub012/infrastructure/persistence/dynamodb"
	"github.com/bbthechange/hangoutsBackend-sub012/interfaces/http/rest"
	"github.com/bbthechange/hangoutsBackend-sub012/interfaces/http/rest/handlers"
	"github.com/bbthechange/hangoutsBackend-sub012/pkg/auth"
)

// ProvideLogger creates the logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideGroupRepository creates the group repository.
func ProvideGroupRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GroupRepository {
	return dynamodb.NewGroupRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideHangoutRepository creates the hangout repository.
func ProvideHangoutRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.HangoutRepository {
	return dynamodb.NewHangoutRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideSeriesRepository creates the series repository.
func ProvideSeriesRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SeriesRepository {
	return dynamodb.NewSeriesRepository(client, cfg.DynamoDBTable, logger)
}

// ProvidePointerRepository creates the pointer repository.
func ProvidePointerRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.PointerRepository {
	return dynamodb.NewPointerRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideTimestampService creates the change marker service.
func ProvideTimestampService(groups ports.GroupRepository, logger *zap.Logger) *services.TimestampService {
	return services.NewTimestampService(groups, nil, logger)
}

// ProvidePointerService creates the pointer propagation service.
func ProvidePointerService(
	pointers ports.PointerRepository,
	groups ports.GroupRepository,
	timestamps *services.TimestampService,
	logger *zap.Logger,
) *services.PointerService {
	return services.NewPointerService(pointers, groups, timestamps, logger)
}

// ProvideETagService creates the feed freshness gate.
func ProvideETagService(groups ports.GroupRepository) *services.ETagService {
	return services.NewETagService(groups)
}

// ProvideFeedService creates the feed query engine.
func ProvideFeedService(pointers ports.PointerRepository) *services.FeedService {
	return services.NewFeedService(pointers, nil)
}

// ProvideClaimService creates the capacity claim engine.
func ProvideClaimService(hangouts ports.HangoutRepository, pointers *services.PointerService, logger *zap.Logger) *services.ClaimService {
	return services.NewClaimService(hangouts, pointers, logger)
}

// ProvideGroupService creates the group service.
func ProvideGroupService(groups ports.GroupRepository, pointers *services.PointerService, logger *zap.Logger) *services.GroupService {
	return services.NewGroupService(groups, pointers, logger)
}

// ProvideHangoutService creates the hangout service.
func ProvideHangoutService(
	hangouts ports.HangoutRepository,
	groups ports.GroupRepository,
	series ports.SeriesRepository,
	pointers *services.PointerService,
	logger *zap.Logger,
) *services.HangoutService {
	return services.NewHangoutService(hangouts, groups, series, pointers, nil, logger)
}

// ProvideJWTValidator creates the token validator.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideGroupHandler creates the group handler.
func ProvideGroupHandler(groups *services.GroupService, logger *zap.Logger) *handlers.GroupHandler {
	return handlers.NewGroupHandler(groups, logger)
}

// ProvideHangoutHandler creates the hangout handler.
func ProvideHangoutHandler(hangouts *services.HangoutService, claims *services.ClaimService, logger *zap.Logger) *handlers.HangoutHandler {
	return handlers.NewHangoutHandler(hangouts, claims, logger)
}

// ProvideFeedHandler creates the feed handler.
func ProvideFeedHandler(etags *services.ETagService, feed *services.FeedService, logger *zap.Logger) *handlers.FeedHandler {
	return handlers.NewFeedHandler(etags, feed, logger)
}

// ProvideRouter creates the HTTP router.
func ProvideRouter(
	groupHandler *handlers.GroupHandler,
	hangoutHandler *handlers.HangoutHandler,
	feedHandler *handlers.FeedHandler,
	validator *auth.JWTValidator,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(groupHandler, hangoutHandler, feedHandler, validator, logger)
}
