package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rexlManu/ClimbChallenge/internal/domain"
	"github.com/rexlManu/ClimbChallenge/internal/rank"
)

type SummonerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSummonerRepository(db *sql.DB, logger zerolog.Logger) *SummonerRepository {
	return &SummonerRepository{db: db, logger: logger}
}

const summonerColumns = `id, participant_id, account_id, level, profile_icon_id,
	current_tier, current_division, current_league_points, current_wins, current_losses,
	peak_tier, peak_division, peak_league_points, peak_achieved_at,
	last_match_fetched_at, created_at, updated_at`

func scanSummoner(row interface{ Scan(...any) error }) (*domain.Summoner, error) {
	var s domain.Summoner
	var peakTier, peakDivision sql.NullString
	var peakLP sql.NullInt64
	var peakAchievedAt, lastFetchedAt sql.NullTime

	err := row.Scan(
		&s.ID, &s.ParticipantID, &s.AccountID, &s.Level, &s.ProfileIconID,
		&s.CurrentTier, &s.CurrentDivision, &s.CurrentLeaguePoints, &s.CurrentWins, &s.CurrentLosses,
		&peakTier, &peakDivision, &peakLP, &peakAchievedAt,
		&lastFetchedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if peakTier.Valid {
		s.PeakTier = rank.Tier(peakTier.String)
		s.PeakDivision = rank.Division(peakDivision.String)
		s.PeakLeaguePoints = int(peakLP.Int64)
	}
	if peakAchievedAt.Valid {
		t := peakAchievedAt.Time
		s.PeakAchievedAt = &t
	}
	if lastFetchedAt.Valid {
		t := lastFetchedAt.Time
		s.LastMatchFetchedAt = &t
	}
	return &s, nil
}

// GetByParticipantID returns nil, nil when the participant has no summoner
// row yet (first poll cycle).
func (r *SummonerRepository) GetByParticipantID(ctx context.Context, participantID int64) (*domain.Summoner, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+summonerColumns+` FROM summoners WHERE participant_id = ?`, participantID)
	s, err := scanSummoner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// CommitCycle writes the poll cycle's state in a single transaction:
// the summoner row is upserted and, when the change detector fired, the
// new track is inserted alongside it. A mid-cycle failure leaves neither
// half visible.
func (r *SummonerRepository) CommitCycle(ctx context.Context, s *domain.Summoner, track *domain.SummonerTrack) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO summoners (participant_id, account_id, level, profile_icon_id,
			current_tier, current_division, current_league_points, current_wins, current_losses,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(participant_id) DO UPDATE SET
			account_id = excluded.account_id,
			level = excluded.level,
			profile_icon_id = excluded.profile_icon_id,
			current_tier = excluded.current_tier,
			current_division = excluded.current_division,
			current_league_points = excluded.current_league_points,
			current_wins = excluded.current_wins,
			current_losses = excluded.current_losses,
			updated_at = excluded.updated_at
		 RETURNING id`,
		s.ParticipantID, s.AccountID, s.Level, s.ProfileIconID,
		string(s.CurrentTier), string(s.CurrentDivision), s.CurrentLeaguePoints, s.CurrentWins, s.CurrentLosses,
		now, now,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert summoner: %w", err)
	}

	if track != nil {
		track.SummonerID = s.ID
		track.CreatedAt = now

		var lpChange sql.NullInt64
		var changeType, changeReason sql.NullString
		if track.LPChange != nil {
			lpChange = sql.NullInt64{Int64: int64(*track.LPChange), Valid: true}
		}
		if track.LPChangeType != nil {
			changeType = sql.NullString{String: string(*track.LPChangeType), Valid: true}
		}
		if track.LPChangeReason != nil {
			changeReason = sql.NullString{String: string(*track.LPChangeReason), Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO summoner_tracks (id, summoner_id, tier, division, league_points,
				wins, losses, lp_change, lp_change_type, lp_change_reason, is_dodge, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			track.ID, track.SummonerID, string(track.Tier), string(track.Division), track.LeaguePoints,
			track.Wins, track.Losses, lpChange, changeType, changeReason, track.IsDodge, track.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert summoner track: %w", err)
		}
	}

	return tx.Commit()
}

// UpdatePeak persists a peak promotion. It only ever raises the stored
// peak; the caller decides promotion through the peak tracker.
func (r *SummonerRepository) UpdatePeak(ctx context.Context, summonerID int64, peak rank.Point, achievedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE summoners SET peak_tier = ?, peak_division = ?, peak_league_points = ?,
			peak_achieved_at = ?, updated_at = ?
		 WHERE id = ?`,
		string(peak.Tier), string(peak.Division), peak.LeaguePoints, achievedAt, time.Now(), summonerID)
	if err != nil {
		return fmt.Errorf("failed to update peak for summoner %d: %w", summonerID, err)
	}
	return nil
}

func (r *SummonerRepository) SetLastMatchFetchedAt(ctx context.Context, summonerID int64, t time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE summoners SET last_match_fetched_at = ?, updated_at = ? WHERE id = ?`,
		t, time.Now(), summonerID)
	if err != nil {
		return fmt.Errorf("failed to set last match fetched at for summoner %d: %w", summonerID, err)
	}
	return nil
}

// ListWithParticipants returns every summoner joined with its participant,
// for the read-side overview.
func (r *SummonerRepository) ListWithParticipants(ctx context.Context) ([]SummonerWithParticipant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.display_name, p.game_name, p.tag_line, p.puuid, p.hide_name, p.created_at, p.updated_at,
			s.id, s.participant_id, s.account_id, s.level, s.profile_icon_id,
			s.current_tier, s.current_division, s.current_league_points, s.current_wins, s.current_losses,
			s.peak_tier, s.peak_division, s.peak_league_points, s.peak_achieved_at,
			s.last_match_fetched_at, s.created_at, s.updated_at
		 FROM participants p
		 LEFT JOIN summoners s ON s.participant_id = p.id
		 ORDER BY p.display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SummonerWithParticipant
	for rows.Next() {
		var p domain.Participant
		var s domain.Summoner
		var sID sql.NullInt64
		var sParticipantID, sLevel, sProfileIcon, sLP, sWins, sLosses sql.NullInt64
		var sAccountID, sTier, sDivision sql.NullString
		var peakTier, peakDivision sql.NullString
		var peakLP sql.NullInt64
		var peakAchievedAt, lastFetchedAt, sCreatedAt, sUpdatedAt sql.NullTime

		err := rows.Scan(
			&p.ID, &p.DisplayName, &p.GameName, &p.TagLine, &p.Puuid, &p.HideName, &p.CreatedAt, &p.UpdatedAt,
			&sID, &sParticipantID, &sAccountID, &sLevel, &sProfileIcon,
			&sTier, &sDivision, &sLP, &sWins, &sLosses,
			&peakTier, &peakDivision, &peakLP, &peakAchievedAt,
			&lastFetchedAt, &sCreatedAt, &sUpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry := SummonerWithParticipant{Participant: p}
		if sID.Valid {
			s.ID = sID.Int64
			s.ParticipantID = sParticipantID.Int64
			s.AccountID = sAccountID.String
			s.Level = int(sLevel.Int64)
			s.ProfileIconID = int(sProfileIcon.Int64)
			s.CurrentTier = rank.Tier(sTier.String)
			s.CurrentDivision = rank.Division(sDivision.String)
			s.CurrentLeaguePoints = int(sLP.Int64)
			s.CurrentWins = int(sWins.Int64)
			s.CurrentLosses = int(sLosses.Int64)
			if peakTier.Valid {
				s.PeakTier = rank.Tier(peakTier.String)
				s.PeakDivision = rank.Division(peakDivision.String)
				s.PeakLeaguePoints = int(peakLP.Int64)
			}
			if peakAchievedAt.Valid {
				t := peakAchievedAt.Time
				s.PeakAchievedAt = &t
			}
			if lastFetchedAt.Valid {
				t := lastFetchedAt.Time
				s.LastMatchFetchedAt = &t
			}
			s.CreatedAt = sCreatedAt.Time
			s.UpdatedAt = sUpdatedAt.Time
			entry.Summoner = &s
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// SummonerWithParticipant pairs a participant with its summoner state;
// Summoner is nil until the first poll cycle has run.
type SummonerWithParticipant struct {
	Participant domain.Participant
	Summoner    *domain.Summoner
}
