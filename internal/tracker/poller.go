package tracker

import (
	"context"
	"errors"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rexlManu/ClimbChallenge/internal/constants"
	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/rank"
	"github.com/rexlManu/ClimbChallenge/internal/riot"
)

// RankProvider supplies a player's account identity, current ranked state
// and newly completed match ids.
type RankProvider interface {
	GetAccount(ctx context.Context, gameName, tagLine string) (*riot.AccountDTO, error)
	GetSummoner(ctx context.Context, puuid string) (*riot.SummonerDTO, error)
	GetLeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntryDTO, error)
	GetMatchIDs(ctx context.Context, puuid string, sinceEpoch int64) ([]string, error)
}

type ParticipantStore interface {
	ListTracked(ctx context.Context) ([]domain.Participant, error)
	ListMissingPuuid(ctx context.Context) ([]domain.Participant, error)
	SetPuuid(ctx context.Context, id int64, puuid string) error
	UpdateRiotID(ctx context.Context, id int64, gameName, tagLine string) error
}

type SummonerStore interface {
	GetByParticipantID(ctx context.Context, participantID int64) (*domain.Summoner, error)
	CommitCycle(ctx context.Context, s *domain.Summoner, track *domain.SummonerTrack) error
	UpdatePeak(ctx context.Context, summonerID int64, peak rank.Point, achievedAt time.Time) error
	SetLastMatchFetchedAt(ctx context.Context, summonerID int64, t time.Time) error
}

type TrackStore interface {
	Latest(ctx context.Context, summonerID int64) (*domain.SummonerTrack, error)
}

// Poller runs the per-participant tracking pipeline: fetch rank, detect
// change, classify it, promote the peak and ingest new matches. Every
// participant's cycle is independent; one player's failure never aborts
// the batch.
type Poller struct {
	rankProvider  RankProvider
	matchProvider MatchProvider
	participants  ParticipantStore
	summoners     SummonerStore
	tracks        TrackStore
	matches       MatchStore
	logger        zerolog.Logger
	concurrency   int

	now func() time.Time
}

func NewPoller(
	rankProvider RankProvider,
	matchProvider MatchProvider,
	participants ParticipantStore,
	summoners SummonerStore,
	tracks TrackStore,
	matches MatchStore,
	concurrency int,
	logger zerolog.Logger,
) *Poller {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Poller{
		rankProvider:  rankProvider,
		matchProvider: matchProvider,
		participants:  participants,
		summoners:     summoners,
		tracks:        tracks,
		matches:       matches,
		logger:        logger,
		concurrency:   concurrency,
		now:           time.Now,
	}
}

// Run executes one poll batch: resolve missing identities, then poll every
// tracked participant. Participants are processed concurrently up to the
// configured limit; each touches only its own state.
func (p *Poller) Run(ctx context.Context) error {
	p.resolveIdentities(ctx)

	participants, err := p.participants.ListTracked(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range participants {
		participant := participants[i]
		g.Go(func() error {
			p.pollParticipant(gctx, &participant)
			return nil
		})
	}

	return g.Wait()
}

// resolveIdentities fills in PUUIDs for participants that were registered
// by Riot ID only.
func (p *Poller) resolveIdentities(ctx context.Context) {
	missing, err := p.participants.ListMissingPuuid(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to list participants missing puuid")
		return
	}

	for i := range missing {
		participant := missing[i]

		acctCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		account, err := p.rankProvider.GetAccount(acctCtx, participant.GameName, participant.TagLine)
		cancel()
		if err != nil {
			p.logEvent(err, "participant", participant.DisplayName).Msg("account not found")
			continue
		}

		if err := p.participants.SetPuuid(ctx, participant.ID, account.Puuid); err != nil {
			p.logger.Error().Err(err).Str("participant", participant.DisplayName).Msg("failed to set puuid")
			continue
		}
		p.logger.Info().Str("participant", participant.DisplayName).Msg("fetched puuid")
	}
}

// pollParticipant runs the sequential per-player pipeline. All failures
// are logged here and swallowed; the player simply stays stale for this
// cycle.
func (p *Poller) pollParticipant(ctx context.Context, participant *domain.Participant) {
	logger := p.logger.With().Str("participant", participant.DisplayName).Logger()

	summonerCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	summonerDTO, err := p.rankProvider.GetSummoner(summonerCtx, participant.Puuid)
	cancel()
	if err != nil {
		p.logEvent(err, "participant", participant.DisplayName).Msg("summoner not found")
		return
	}

	entriesCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	entries, err := p.rankProvider.GetLeagueEntries(entriesCtx, participant.Puuid)
	cancel()
	if err != nil {
		p.logEvent(err, "participant", participant.DisplayName).Msg("league entries not found")
		return
	}

	obs := observationFromEntries(entries)

	summoner, err := p.summoners.GetByParticipantID(ctx, participant.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load summoner")
		return
	}
	if summoner == nil {
		summoner = &domain.Summoner{ParticipantID: participant.ID}
	}

	summoner.AccountID = summonerDTO.AccountID
	summoner.Level = summonerDTO.SummonerLevel
	summoner.ProfileIconID = summonerDTO.ProfileIconID
	summoner.CurrentTier = obs.Tier
	summoner.CurrentDivision = obs.Division
	summoner.CurrentLeaguePoints = obs.LeaguePoints
	summoner.CurrentWins = obs.Wins
	summoner.CurrentLosses = obs.Losses

	var lastTrack *domain.SummonerTrack
	if summoner.ID != 0 {
		lastTrack, err = p.tracks.Latest(ctx, summoner.ID)
		if err != nil {
			logger.Error().Err(err).Msg("failed to load latest track")
			return
		}
	}

	var newTrack *domain.SummonerTrack
	if HasChanged(lastTrack, obs) {
		cls := Classify(lastTrack, obs)

		id, err := gonanoid.New()
		if err != nil {
			logger.Error().Err(err).Msg("failed to generate track id")
			return
		}

		newTrack = &domain.SummonerTrack{
			ID:             id,
			Tier:           obs.Tier,
			Division:       obs.Division,
			LeaguePoints:   obs.LeaguePoints,
			Wins:           obs.Wins,
			Losses:         obs.Losses,
			LPChange:       cls.LPChange,
			LPChangeType:   cls.Type,
			LPChangeReason: cls.Reason,
			IsDodge:        cls.IsDodge,
		}
	}

	if err := p.summoners.CommitCycle(ctx, summoner, newTrack); err != nil {
		logger.Error().Err(err).Msg("failed to commit poll cycle")
		return
	}

	activeTrack := lastTrack
	if newTrack != nil {
		activeTrack = newTrack

		event := logger.Info().
			Str("rank", obs.Point().Format()).
			Int("league_points", obs.LeaguePoints)
		if newTrack.LPChange != nil {
			event = event.
				Int("lp_change", *newTrack.LPChange).
				Str("reason", string(*newTrack.LPChangeReason)).
				Bool("is_dodge", newTrack.IsDodge)
		}
		event.Msg("rank change recorded")
	}

	if PromoteIfHigher(summoner, p.now()) {
		peak := *summoner.PeakPoint()
		if err := p.summoners.UpdatePeak(ctx, summoner.ID, peak, *summoner.PeakAchievedAt); err != nil {
			logger.Error().Err(err).Msg("failed to persist peak")
		} else {
			logger.Info().
				Str("peak", peak.Format()).
				Int("league_points", peak.LeaguePoints).
				Msg("new peak rank achieved")
		}
	}

	var since int64
	if summoner.LastMatchFetchedAt != nil {
		since = summoner.LastMatchFetchedAt.Unix()
	}

	idsCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	matchIDs, err := p.rankProvider.GetMatchIDs(idsCtx, participant.Puuid, since)
	cancel()
	if err != nil {
		p.logEvent(err, "participant", participant.DisplayName).Msg("match ids not found")
		return
	}
	fetchedAt := p.now()

	if len(matchIDs) > 1 {
		logger.Warn().Int("count", len(matchIDs)).Msg("found more than one new match")
	}

	for _, matchID := range matchIDs {
		if activeTrack == nil {
			// Cannot happen after a committed cycle, but never link without
			// a track to hang the match on.
			logger.Error().Str("match_id", matchID).Msg("no active track for match link")
			break
		}
		if err := p.ingestMatch(ctx, participant, activeTrack, matchID); err != nil {
			p.logEvent(err, "match_id", matchID).Msg("match ingestion rejected")
		}
	}

	// Advance the watermark even when no matches were found so polling
	// progresses through empty cycles.
	if err := p.summoners.SetLastMatchFetchedAt(ctx, summoner.ID, fetchedAt); err != nil {
		logger.Error().Err(err).Msg("failed to update last match fetched at")
		return
	}

	logger.Debug().Msg("summoner updated")
}

// observationFromEntries picks the ranked solo queue entry; players
// without one count as unranked with zeroed records.
func observationFromEntries(entries []riot.LeagueEntryDTO) Observation {
	for _, entry := range entries {
		if entry.QueueType == riot.QueueRankedSolo5x5 {
			return Observation{
				Tier:         rank.ParseTier(entry.Tier),
				Division:     rank.ParseDivision(entry.Rank),
				LeaguePoints: entry.LeaguePoints,
				Wins:         entry.Wins,
				Losses:       entry.Losses,
			}
		}
	}
	return Observation{Tier: rank.TierUnranked, Division: rank.DivisionNone}
}

// logEvent picks the severity for a provider failure: not-found and
// incomplete games are expected conditions, everything else is an error.
func (p *Poller) logEvent(err error, key, value string) *zerolog.Event {
	if errors.Is(err, riot.ErrNotFound) || errors.Is(err, errIncompleteMatch) || errors.Is(err, context.DeadlineExceeded) {
		return p.logger.Warn().Err(err).Str(key, value)
	}
	return p.logger.Error().Err(err).Str(key, value)
}
