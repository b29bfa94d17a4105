package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rexlManu/ClimbChallenge/internal/constants"
	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/riot"
)

// MatchProvider supplies match detail and timeline data.
type MatchProvider interface {
	GetMatch(ctx context.Context, matchID string) (*riot.MatchDTO, error)
	GetMatchTimeline(ctx context.Context, matchID string) (*riot.TimelineDTO, error)
}

// MatchStore persists ingested matches and their track links.
type MatchStore interface {
	UpsertMatch(ctx context.Context, m *domain.LeagueMatch) error
	UpsertLink(ctx context.Context, l *domain.LeagueMatchSummoner) error
}

var errIncompleteMatch = errors.New("match is not a complete game")

// ingestMatch runs one match through fetch, validation, participant
// resolution, outcome resolution and linking. Every rejection only affects
// this match; the caller logs and moves on.
func (p *Poller) ingestMatch(ctx context.Context, participant *domain.Participant, track *domain.SummonerTrack, matchID string) error {
	matchCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	matchDTO, err := p.matchProvider.GetMatch(matchCtx, matchID)
	cancel()
	if err != nil {
		return fmt.Errorf("match %s not found: %w", matchID, err)
	}

	timelineCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	timelineDTO, err := p.matchProvider.GetMatchTimeline(timelineCtx, matchID)
	cancel()
	if err != nil {
		return fmt.Errorf("timeline for match %s not found: %w", matchID, err)
	}

	if !matchDTO.Info.IsComplete() {
		p.logger.Warn().
			Str("match_id", matchID).
			Str("end_of_game_result", matchDTO.Info.EndOfGameResult).
			Msg("match is not a complete game")
		return errIncompleteMatch
	}

	matchData, err := json.Marshal(matchDTO)
	if err != nil {
		return fmt.Errorf("failed to encode match %s: %w", matchID, err)
	}
	timelineData, err := json.Marshal(timelineDTO)
	if err != nil {
		return fmt.Errorf("failed to encode timeline %s: %w", matchID, err)
	}

	match := &domain.LeagueMatch{
		MatchID:      matchID,
		MatchData:    matchData,
		TimelineData: timelineData,
	}
	if err := p.matches.UpsertMatch(ctx, match); err != nil {
		return err
	}

	var player *riot.MatchParticipantDTO
	for i := range matchDTO.Info.Participants {
		if matchDTO.Info.Participants[i].Puuid == participant.Puuid {
			player = &matchDTO.Info.Participants[i]
			break
		}
	}
	if player == nil {
		return fmt.Errorf("participant %s not found in match %s", participant.DisplayName, matchID)
	}

	p.refreshRiotID(ctx, participant, player)

	var result domain.MatchResult
	switch {
	case player.GameEndedInEarlySurrender:
		result = domain.ResultDraw
	case player.Win:
		result = domain.ResultWin
	default:
		result = domain.ResultLoss
	}

	link := &domain.LeagueMatchSummoner{
		LeagueMatchID:   match.ID,
		SummonerTrackID: track.ID,
		Kills:           player.Kills,
		Deaths:          player.Deaths,
		Assists:         player.Assists,
		Champion:        player.ChampionName,
		Result:          result,
	}
	if err := p.matches.UpsertLink(ctx, link); err != nil {
		return err
	}

	p.logger.Info().
		Str("match_id", matchID).
		Str("track_id", track.ID).
		Str("participant", participant.DisplayName).
		Str("result", string(result)).
		Str("kda", fmt.Sprintf("%d/%d/%d", player.Kills, player.Deaths, player.Assists)).
		Msg("linked match to summoner track")
	return nil
}

// refreshRiotID updates the stored game name and tag line when the match
// data shows they changed. Name changes happen; identity stays on PUUID.
func (p *Poller) refreshRiotID(ctx context.Context, participant *domain.Participant, player *riot.MatchParticipantDTO) {
	gameName := participant.GameName
	tagLine := participant.TagLine

	if player.RiotIDGameName != "" && player.RiotIDGameName != gameName {
		gameName = player.RiotIDGameName
	}
	if player.RiotIDTagline != "" && player.RiotIDTagline != tagLine {
		tagLine = player.RiotIDTagline
	}
	if gameName == participant.GameName && tagLine == participant.TagLine {
		return
	}

	if err := p.participants.UpdateRiotID(ctx, participant.ID, gameName, tagLine); err != nil {
		p.logger.Error().Err(err).
			Str("participant", participant.DisplayName).
			Msg("failed to update riot id")
		return
	}

	p.logger.Info().
		Str("participant", participant.DisplayName).
		Str("old", participant.RiotID()).
		Str("new", gameName+"#"+tagLine).
		Msg("updated riot id")
	participant.GameName = gameName
	participant.TagLine = tagLine
}
