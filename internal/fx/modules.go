package fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/rexlManu/ClimbChallenge/internal/config"
	"github.com/rexlManu/ClimbChallenge/internal/database"
	"github.com/rexlManu/ClimbChallenge/internal/logger"
	"github.com/rexlManu/ClimbChallenge/internal/repository"
	"github.com/rexlManu/ClimbChallenge/internal/riot"
	"github.com/rexlManu/ClimbChallenge/internal/server"
	"github.com/rexlManu/ClimbChallenge/internal/service"
	"github.com/rexlManu/ClimbChallenge/internal/tracker"
)

// ProvidePoller adapts the concrete repositories and riot client to the
// tracker's store and provider interfaces.
func ProvidePoller(
	client *riot.Client,
	participants *repository.ParticipantRepository,
	summoners *repository.SummonerRepository,
	tracks *repository.TrackRepository,
	matches *repository.MatchRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *tracker.Poller {
	return tracker.NewPoller(client, client, participants, summoners, tracks, matches, cfg.PollConcurrency, logger)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewParticipantRepository),
	fx.Provide(repository.NewSummonerRepository),
	fx.Provide(repository.NewTrackRepository),
	fx.Provide(repository.NewMatchRepository),
	// api client
	fx.Provide(riot.NewClient),
	// tracking + read side
	fx.Provide(ProvidePoller),
	fx.Provide(service.NewStatsService),
	// server
	fx.Provide(server.NewServer),
)
