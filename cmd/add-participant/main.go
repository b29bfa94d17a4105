package main

import (
	"context"
	"flag"

	"github.com/rexlManu/ClimbChallenge/internal/config"
	"github.com/rexlManu/ClimbChallenge/internal/constants"
	"github.com/rexlManu/ClimbChallenge/internal/database"
	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/logger"
	"github.com/rexlManu/ClimbChallenge/internal/repository"
)

// Registers a participant for tracking. The PUUID is resolved later by
// the poller, so only the riot id is needed here.
func main() {
	displayName := flag.String("name", "", "display name shown on the dashboard")
	gameName := flag.String("game-name", "", "riot id game name")
	tagLine := flag.String("tag", "", "riot id tag line, without the #")
	hide := flag.Bool("hide", false, "mask the participant's name in API output")
	flag.Parse()

	log := logger.New()

	if *displayName == "" || *gameName == "" || *tagLine == "" {
		log.Fatal().Msg("-name, -game-name and -tag are required")
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	participant := &domain.Participant{
		DisplayName: *displayName,
		GameName:    *gameName,
		TagLine:     *tagLine,
		HideName:    *hide,
	}

	repo := repository.NewParticipantRepository(db, log)
	if err := repo.Create(ctx, participant); err != nil {
		log.Fatal().Err(err).Str("riot_id", participant.RiotID()).Msg("failed to create participant")
	}

	log.Info().
		Int64("id", participant.ID).
		Str("riot_id", participant.RiotID()).
		Bool("hidden", participant.HideName).
		Msg("participant registered")
}
