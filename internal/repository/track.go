package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/rank"
)

type TrackRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewTrackRepository(db *sql.DB, logger zerolog.Logger) *TrackRepository {
	return &TrackRepository{db: db, logger: logger}
}

const trackColumns = `id, summoner_id, tier, division, league_points, wins, losses,
	lp_change, lp_change_type, lp_change_reason, is_dodge, created_at`

func scanTrack(row interface{ Scan(...any) error }) (*domain.SummonerTrack, error) {
	var t domain.SummonerTrack
	var lpChange sql.NullInt64
	var changeType, changeReason sql.NullString

	err := row.Scan(
		&t.ID, &t.SummonerID, &t.Tier, &t.Division, &t.LeaguePoints, &t.Wins, &t.Losses,
		&lpChange, &changeType, &changeReason, &t.IsDodge, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lpChange.Valid {
		v := int(lpChange.Int64)
		t.LPChange = &v
	}
	if changeType.Valid {
		v := domain.LPChangeType(changeType.String)
		t.LPChangeType = &v
	}
	if changeReason.Valid {
		v := domain.LPChangeReason(changeReason.String)
		t.LPChangeReason = &v
	}
	return &t, nil
}

// Latest returns the most recent track for the summoner, nil when none
// exists yet.
func (r *TrackRepository) Latest(ctx context.Context, summonerID int64) (*domain.SummonerTrack, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+trackColumns+` FROM summoner_tracks
		 WHERE summoner_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT 1`, summonerID)
	t, err := scanTrack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// LPStats aggregates the LP movement of every summoner over all tracks
// that carry a change: total gained, total lost and dodge count.
type LPStats struct {
	SummonerID  int64
	TotalGained int
	TotalLost   int
	TotalDodges int
}

func (s LPStats) NetChange() int {
	return s.TotalGained - s.TotalLost
}

func (r *TrackRepository) LPStats(ctx context.Context) (map[int64]LPStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT summoner_id,
			COALESCE(SUM(CASE WHEN lp_change_type = 'gain' THEN lp_change ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN lp_change_type = 'loss' THEN ABS(lp_change) ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_dodge = 1 THEN 1 ELSE 0 END), 0)
		 FROM summoner_tracks
		 WHERE lp_change IS NOT NULL
		 GROUP BY summoner_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[int64]LPStats)
	for rows.Next() {
		var s LPStats
		if err := rows.Scan(&s.SummonerID, &s.TotalGained, &s.TotalLost, &s.TotalDodges); err != nil {
			return nil, err
		}
		stats[s.SummonerID] = s
	}
	return stats, rows.Err()
}

// ProgressionRow is one track joined with its participant, ordered by
// creation time; the stats service folds these into the chart series.
type ProgressionRow struct {
	ParticipantID int64
	DisplayName   string
	HideName      bool
	Point         rank.Point
	CreatedAt     time.Time
}

func (r *TrackRepository) Progression(ctx context.Context) ([]ProgressionRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.display_name, p.hide_name, st.tier, st.division, st.league_points, st.created_at
		 FROM summoner_tracks st
		 JOIN summoners s ON st.summoner_id = s.id
		 JOIN participants p ON s.participant_id = p.id
		 ORDER BY st.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProgressionRow
	for rows.Next() {
		var row ProgressionRow
		if err := rows.Scan(&row.ParticipantID, &row.DisplayName, &row.HideName,
			&row.Point.Tier, &row.Point.Division, &row.Point.LeaguePoints, &row.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
