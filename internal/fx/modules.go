package fx

import (
	"lol-encounters/internal/config"
	"lol-encounters/internal/database"
	"lol-encounters/internal/events"
	"lol-encounters/internal/lcu"
	"lol-encounters/internal/logger"
	"lol-encounters/internal/monitor"
	"lol-encounters/internal/repository"
	"lol-encounters/internal/riot"
	"lol-encounters/internal/server"
	"lol-encounters/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideUserStore(r *repository.UserRepository) service.UserStore    { return r }
func ProvideMatchStore(r *repository.MatchRepository) service.MatchStore { return r }
func ProvideTagStore(r *repository.TagRepository) service.TagStore       { return r }
func ProvideVendorClient(c *riot.Client) service.VendorClient            { return c }
func ProvideGameClient(c *lcu.Connector) service.GameClient              { return c }

func ProvideMonitor(
	cfg *config.Config,
	conn *lcu.Connector,
	detector *service.Detector,
	lastMatch *service.LastMatchService,
	imports *service.ImportService,
	publisher events.Publisher,
	logger zerolog.Logger,
) *monitor.Monitor {
	return monitor.New(cfg.PollInterval, conn, detector, lastMatch, imports, publisher, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(events.New),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewTagRepository),
	fx.Provide(ProvideUserStore, ProvideMatchStore, ProvideTagStore),
	// clients
	fx.Provide(riot.NewClient),
	fx.Provide(lcu.NewConnector),
	fx.Provide(ProvideVendorClient, ProvideGameClient),
	// svc
	fx.Provide(service.NewEncounterService),
	fx.Provide(service.NewDetector),
	fx.Provide(service.NewImportService),
	fx.Provide(service.NewSettingsService),
	fx.Provide(service.NewTagService),
	fx.Provide(service.NewLastMatchService),
	fx.Provide(ProvideMonitor),
	// server
	fx.Provide(server.NewTrackerServer),
)
