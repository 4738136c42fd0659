//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/application/ports"
	"github.com/bbthechange/hangoutsBackend-sub012/application/services"
	"github.com/bbthechange/hangoutsBackend-sub012/infrastructure/config"
	"github.com/bbthechange/hangoutsBackend-sub012/interfaces/http/rest"
)

// Container holds all application dependencies.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	GroupRepo   ports.GroupRepository
	HangoutRepo ports.HangoutRepository
	SeriesRepo  ports.SeriesRepository
	PointerRepo ports.PointerRepository
	Timestamps  *services.TimestampService
	Pointers    *services.PointerService
	ETags       *services.ETagService
	Feed        *services.FeedService
	Claims      *services.ClaimService
	Groups      *services.GroupService
	Hangouts    *services.HangoutService
	Router      *rest.Router
}

// SuperSet is the complete provider set for the application.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideGroupRepository,
	ProvideHangoutRepository,
	ProvideSeriesRepository,
	ProvidePointerRepository,
	ProvideTimestampService,
	ProvidePointerService,
	ProvideETagService,
	ProvideFeedService,
	ProvideClaimService,
	ProvideGroupService,
	ProvideHangoutService,
	ProvideJWTValidator,
	ProvideGroupHandler,
	ProvideHangoutHandler,
	ProvideFeedHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer builds the full dependency graph.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
