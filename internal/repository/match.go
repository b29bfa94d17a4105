package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/rexlManu/ClimbChallenge/internal/domain"
)

type MatchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewMatchRepository(db *sql.DB, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: logger}
}

// UpsertMatch stores a match keyed by its upstream match id. Re-ingestion
// refreshes the payloads; the row id is stable and written back to m.
func (r *MatchRepository) UpsertMatch(ctx context.Context, m *domain.LeagueMatch) error {
	if m.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		m.ID = id
	}

	now := time.Now()
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO league_matches (id, match_id, match_data, timeline_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO UPDATE SET
			match_data = excluded.match_data,
			timeline_data = excluded.timeline_data,
			updated_at = excluded.updated_at
		 RETURNING id`,
		m.ID, m.MatchID, string(m.MatchData), string(m.TimelineData), now, now,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", m.MatchID, err)
	}
	return nil
}

func (r *MatchRepository) GetByMatchID(ctx context.Context, matchID string) (*domain.LeagueMatch, error) {
	var m domain.LeagueMatch
	var matchData, timelineData string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, match_id, match_data, timeline_data, created_at, updated_at
		 FROM league_matches WHERE match_id = ?`, matchID).
		Scan(&m.ID, &m.MatchID, &matchData, &timelineData, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.MatchData = []byte(matchData)
	m.TimelineData = []byte(timelineData)
	return &m, nil
}

// UpsertLink writes the match-to-track association. The unique constraint
// on (league_match_id, summoner_track_id) makes re-ingestion idempotent:
// the second write updates the stats in place instead of duplicating.
func (r *MatchRepository) UpsertLink(ctx context.Context, l *domain.LeagueMatchSummoner) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO league_match_summoners
			(league_match_id, summoner_track_id, kills, deaths, assists, champion, result, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(league_match_id, summoner_track_id) DO UPDATE SET
			kills = excluded.kills,
			deaths = excluded.deaths,
			assists = excluded.assists,
			champion = excluded.champion,
			result = excluded.result,
			updated_at = excluded.updated_at`,
		l.LeagueMatchID, l.SummonerTrackID, l.Kills, l.Deaths, l.Assists,
		l.Champion, string(l.Result), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert match link %s/%s: %w", l.LeagueMatchID, l.SummonerTrackID, err)
	}
	return nil
}

// CountLinks reports how many links exist for a (match, track) pair; used
// by tests to pin the uniqueness invariant.
func (r *MatchRepository) CountLinks(ctx context.Context, leagueMatchID, trackID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM league_match_summoners
		 WHERE league_match_id = ? AND summoner_track_id = ?`, leagueMatchID, trackID).Scan(&count)
	return count, err
}

// ChampionStatsRow aggregates one participant's performance on one champion.
type ChampionStatsRow struct {
	DisplayName string
	HideName    bool
	Champion    string
	GamesPlayed int
	Wins        int
	Losses      int
	AvgKills    float64
	AvgDeaths   float64
	AvgAssists  float64
	AvgKDA      float64
	WinRate     float64
}

func (r *MatchRepository) ChampionStats(ctx context.Context) ([]ChampionStatsRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.display_name, p.hide_name, lms.champion,
			COUNT(*) AS games_played,
			SUM(CASE WHEN lms.result = 'WIN' THEN 1 ELSE 0 END) AS wins,
			SUM(CASE WHEN lms.result = 'LOSS' THEN 1 ELSE 0 END) AS losses,
			AVG(lms.kills), AVG(lms.deaths), AVG(lms.assists),
			ROUND(AVG((lms.kills + lms.assists) * 1.0 / CASE WHEN lms.deaths = 0 THEN 1 ELSE lms.deaths END), 2),
			ROUND(SUM(CASE WHEN lms.result = 'WIN' THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2)
		 FROM league_match_summoners lms
		 JOIN summoner_tracks st ON lms.summoner_track_id = st.id
		 JOIN summoners s ON st.summoner_id = s.id
		 JOIN participants p ON s.participant_id = p.id
		 GROUP BY p.display_name, lms.champion
		 ORDER BY games_played DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ChampionStatsRow
	for rows.Next() {
		var row ChampionStatsRow
		if err := rows.Scan(&row.DisplayName, &row.HideName, &row.Champion,
			&row.GamesPlayed, &row.Wins, &row.Losses,
			&row.AvgKills, &row.AvgDeaths, &row.AvgAssists,
			&row.AvgKDA, &row.WinRate); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// RecentMatchRow is one recently ingested match for the dashboard feed.
type RecentMatchRow struct {
	DisplayName string
	HideName    bool
	Champion    string
	Kills       int
	Deaths      int
	Assists     int
	Result      domain.MatchResult
	MatchDate   time.Time
}

func (r *MatchRepository) RecentMatches(ctx context.Context, limit int) ([]RecentMatchRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.display_name, p.hide_name, lms.champion,
			lms.kills, lms.deaths, lms.assists, lms.result, lm.created_at
		 FROM league_match_summoners lms
		 JOIN league_matches lm ON lms.league_match_id = lm.id
		 JOIN summoner_tracks st ON lms.summoner_track_id = st.id
		 JOIN summoners s ON st.summoner_id = s.id
		 JOIN participants p ON s.participant_id = p.id
		 ORDER BY lm.created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RecentMatchRow
	for rows.Next() {
		var row RecentMatchRow
		if err := rows.Scan(&row.DisplayName, &row.HideName, &row.Champion,
			&row.Kills, &row.Deaths, &row.Assists, &row.Result, &row.MatchDate); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
