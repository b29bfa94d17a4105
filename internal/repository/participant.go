package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rexlManu/ClimbChallenge/internal/domain"
)

type ParticipantRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewParticipantRepository(db *sql.DB, logger zerolog.Logger) *ParticipantRepository {
	return &ParticipantRepository{db: db, logger: logger}
}

const participantColumns = `id, display_name, game_name, tag_line, puuid, hide_name, created_at, updated_at`

func scanParticipant(row interface{ Scan(...any) error }) (*domain.Participant, error) {
	var p domain.Participant
	err := row.Scan(&p.ID, &p.DisplayName, &p.GameName, &p.TagLine, &p.Puuid, &p.HideName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO participants (display_name, game_name, tag_line, puuid, hide_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.DisplayName, p.GameName, p.TagLine, p.Puuid, p.HideName, now, now)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id int64) (*domain.Participant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = ?`, id)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// List returns every participant ordered by display name.
func (r *ParticipantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	return r.list(ctx, `SELECT `+participantColumns+` FROM participants ORDER BY display_name`)
}

// ListTracked returns the participants whose PUUID has been resolved and
// who therefore take part in poll cycles.
func (r *ParticipantRepository) ListTracked(ctx context.Context) ([]domain.Participant, error) {
	return r.list(ctx, `SELECT `+participantColumns+` FROM participants WHERE puuid != '' ORDER BY display_name`)
}

// ListMissingPuuid returns the participants still waiting for identity
// resolution through the account endpoint.
func (r *ParticipantRepository) ListMissingPuuid(ctx context.Context) ([]domain.Participant, error) {
	return r.list(ctx, `SELECT `+participantColumns+` FROM participants WHERE puuid = '' ORDER BY display_name`)
}

func (r *ParticipantRepository) list(ctx context.Context, query string) ([]domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (r *ParticipantRepository) SetPuuid(ctx context.Context, id int64, puuid string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE participants SET puuid = ?, updated_at = ? WHERE id = ?`,
		puuid, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set puuid for participant %d: %w", id, err)
	}
	return nil
}

// UpdateRiotID records a name/tag change observed in match data; identity
// matching stays on the PUUID.
func (r *ParticipantRepository) UpdateRiotID(ctx context.Context, id int64, gameName, tagLine string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE participants SET game_name = ?, tag_line = ?, updated_at = ? WHERE id = ?`,
		gameName, tagLine, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update riot id for participant %d: %w", id, err)
	}
	return nil
}
