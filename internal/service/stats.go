package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rexlManu/ClimbChallenge/internal/constants"
	"github.com/rexlManu/ClimbChallenge/internal/repository"
)

// StatsService serves the read side of the dashboard: the participant
// overview, champion aggregates, the rank progression chart and the
// recent matches feed. All writes happen in the poller; this service
// only shapes stored data.
type StatsService struct {
	summoners *repository.SummonerRepository
	tracks    *repository.TrackRepository
	matches   *repository.MatchRepository
	logger    zerolog.Logger
}

func NewStatsService(summoners *repository.SummonerRepository, tracks *repository.TrackRepository, matches *repository.MatchRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{summoners: summoners, tracks: tracks, matches: matches, logger: logger}
}

// OverviewEntry is one participant's card on the dashboard. Names and
// riot ids are already masked for hidden participants.
type OverviewEntry struct {
	DisplayName    string     `json:"display_name"`
	RiotID         string     `json:"riot_id"`
	Level          int        `json:"level"`
	ProfileIconID  int        `json:"profile_icon_id"`
	Rank           string     `json:"rank"`
	Tier           string     `json:"tier"`
	Division       string     `json:"division,omitempty"`
	LeaguePoints   int        `json:"league_points"`
	Wins           int        `json:"wins"`
	Losses         int        `json:"losses"`
	TotalGames     int        `json:"total_games"`
	WinRate        float64    `json:"win_rate"`
	PeakRank       string     `json:"peak_rank,omitempty"`
	PeakAchievedAt *time.Time `json:"peak_achieved_at,omitempty"`
	LPGained       int        `json:"lp_gained"`
	LPLost         int        `json:"lp_lost"`
	LPNet          int        `json:"lp_net"`
	Dodges         int        `json:"dodges"`
}

// Overview returns every participant with their current standing and LP
// totals, best rank first. Participants that have never been polled show
// up unranked.
func (s *StatsService) Overview(ctx context.Context) ([]OverviewEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	entries, err := s.summoners.ListWithParticipants(ctx)
	if err != nil {
		return nil, err
	}
	lpStats, err := s.tracks.LPStats(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return overviewScale(entries[i]) > overviewScale(entries[j])
	})

	result := make([]OverviewEntry, 0, len(entries))
	for _, e := range entries {
		entry := OverviewEntry{
			DisplayName: e.Participant.DisplayedName(),
			RiotID:      e.Participant.DisplayedRiotID(),
			Rank:        "Unranked",
		}
		if summoner := e.Summoner; summoner != nil {
			stats := lpStats[summoner.ID]
			entry.Level = summoner.Level
			entry.ProfileIconID = summoner.ProfileIconID
			entry.Rank = summoner.CurrentFormattedRank()
			entry.Tier = string(summoner.CurrentTier)
			entry.Division = string(summoner.CurrentDivision)
			entry.LeaguePoints = summoner.CurrentLeaguePoints
			entry.Wins = summoner.CurrentWins
			entry.Losses = summoner.CurrentLosses
			entry.TotalGames = summoner.CurrentTotalGames()
			entry.WinRate = summoner.CurrentWinRate()
			entry.PeakRank = summoner.PeakFormattedRank()
			entry.PeakAchievedAt = summoner.PeakAchievedAt
			entry.LPGained = stats.TotalGained
			entry.LPLost = stats.TotalLost
			entry.LPNet = stats.NetChange()
			entry.Dodges = stats.TotalDodges
		}
		result = append(result, entry)
	}
	return result, nil
}

func overviewScale(e repository.SummonerWithParticipant) int {
	if e.Summoner == nil {
		return -400
	}
	return e.Summoner.CurrentPoint().Scale()
}

type ChampionStatsEntry struct {
	DisplayName string  `json:"display_name"`
	Champion    string  `json:"champion"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	AvgKills    float64 `json:"avg_kills"`
	AvgDeaths   float64 `json:"avg_deaths"`
	AvgAssists  float64 `json:"avg_assists"`
	AvgKDA      float64 `json:"avg_kda"`
	WinRate     float64 `json:"win_rate"`
}

func (s *StatsService) ChampionStats(ctx context.Context) ([]ChampionStatsEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	rows, err := s.matches.ChampionStats(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]ChampionStatsEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, ChampionStatsEntry{
			DisplayName: maskName(row.DisplayName, row.HideName),
			Champion:    row.Champion,
			GamesPlayed: row.GamesPlayed,
			Wins:        row.Wins,
			Losses:      row.Losses,
			AvgKills:    row.AvgKills,
			AvgDeaths:   row.AvgDeaths,
			AvgAssists:  row.AvgAssists,
			AvgKDA:      row.AvgKDA,
			WinRate:     row.WinRate,
		})
	}
	return result, nil
}

// ProgressionChart is the rank-over-time chart: one label per calendar
// day with any activity and one series per participant. A nil point means
// the participant had no recorded rank yet on that day; otherwise the
// last known rank carries forward through quiet days.
type ProgressionChart struct {
	Dates  []string            `json:"dates"`
	Series []ProgressionSeries `json:"series"`
}

type ProgressionSeries struct {
	DisplayName string `json:"display_name"`
	Points      []*int `json:"points"`
}

func (s *StatsService) RankProgression(ctx context.Context) (*ProgressionChart, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	rows, err := s.tracks.Progression(ctx)
	if err != nil {
		return nil, err
	}
	chart := buildChart(rows)
	return &chart, nil
}

// buildChart folds time-ordered track rows into the date-bucketed chart.
func buildChart(rows []repository.ProgressionRow) ProgressionChart {
	chart := ProgressionChart{Dates: []string{}, Series: []ProgressionSeries{}}

	var dates []string
	for _, row := range rows {
		date := row.CreatedAt.Format("2006-01-02")
		if len(dates) == 0 || dates[len(dates)-1] != date {
			dates = append(dates, date)
		}
	}
	chart.Dates = dates

	byParticipant := make(map[int64][]repository.ProgressionRow)
	var order []int64
	for _, row := range rows {
		if _, seen := byParticipant[row.ParticipantID]; !seen {
			order = append(order, row.ParticipantID)
		}
		byParticipant[row.ParticipantID] = append(byParticipant[row.ParticipantID], row)
	}

	for _, id := range order {
		tracks := byParticipant[id]
		series := ProgressionSeries{
			DisplayName: maskName(tracks[0].DisplayName, tracks[0].HideName),
			Points:      make([]*int, len(dates)),
		}

		next := 0
		var last *int
		for i, date := range dates {
			for next < len(tracks) && tracks[next].CreatedAt.Format("2006-01-02") <= date {
				scale := tracks[next].Point.Scale()
				last = &scale
				next++
			}
			series.Points[i] = last
		}
		chart.Series = append(chart.Series, series)
	}
	return chart
}

type RecentMatchEntry struct {
	DisplayName string    `json:"display_name"`
	Champion    string    `json:"champion"`
	Kills       int       `json:"kills"`
	Deaths      int       `json:"deaths"`
	Assists     int       `json:"assists"`
	Result      string    `json:"result"`
	MatchDate   time.Time `json:"match_date"`
}

func (s *StatsService) RecentMatches(ctx context.Context, limit int) ([]RecentMatchEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if limit <= 0 || limit > constants.RecentMatchLimit {
		limit = constants.RecentMatchLimit
	}
	rows, err := s.matches.RecentMatches(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]RecentMatchEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, RecentMatchEntry{
			DisplayName: maskName(row.DisplayName, row.HideName),
			Champion:    row.Champion,
			Kills:       row.Kills,
			Deaths:      row.Deaths,
			Assists:     row.Assists,
			Result:      string(row.Result),
			MatchDate:   row.MatchDate,
		})
	}
	return result, nil
}

func maskName(name string, hidden bool) string {
	if hidden {
		return "Hidden Player"
	}
	return name
}
