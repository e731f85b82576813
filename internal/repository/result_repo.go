package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bigfive-insight/internal/domain"
)

var ErrNotFound = errors.New("record not found")

type ResultRepository interface {
	Create(ctx context.Context, result domain.PersonalityResult) error
	FindByID(ctx context.Context, id string) (domain.PersonalityResult, error)
}

type PgResultRepository struct {
	pool *pgxpool.Pool
}

func NewPgResultRepository(pool *pgxpool.Pool) *PgResultRepository {
	return &PgResultRepository{pool: pool}
}

// Create guarda scores, percentiles y raw scores como JSONB.
func (r *PgResultRepository) Create(ctx context.Context, result domain.PersonalityResult) error {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	percentiles, err := json.Marshal(result.Percentiles)
	if err != nil {
		return fmt.Errorf("marshal percentiles: %w", err)
	}
	raw, err := json.Marshal(result.RawScores)
	if err != nil {
		return fmt.Errorf("marshal raw scores: %w", err)
	}

	const query = `
		INSERT INTO personality_results (id, scores, percentiles, raw_scores, narrative, provenance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		result.ID,
		scores,
		percentiles,
		raw,
		result.Narrative,
		string(result.Provenance),
		result.CreatedAt,
	)
	return err
}

func (r *PgResultRepository) FindByID(ctx context.Context, id string) (domain.PersonalityResult, error) {
	const query = `
		SELECT id, scores, percentiles, raw_scores, narrative, provenance, created_at
		FROM personality_results
		WHERE id = $1
	`
	var (
		result                   domain.PersonalityResult
		scores, percentiles, raw []byte
		provenance               string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&result.ID,
		&scores,
		&percentiles,
		&raw,
		&result.Narrative,
		&provenance,
		&result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PersonalityResult{}, ErrNotFound
	}
	if err != nil {
		return domain.PersonalityResult{}, err
	}

	result.Provenance = domain.Provenance(provenance)
	if err := json.Unmarshal(scores, &result.Scores); err != nil {
		return domain.PersonalityResult{}, fmt.Errorf("unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(percentiles, &result.Percentiles); err != nil {
		return domain.PersonalityResult{}, fmt.Errorf("unmarshal percentiles: %w", err)
	}
	if err := json.Unmarshal(raw, &result.RawScores); err != nil {
		return domain.PersonalityResult{}, fmt.Errorf("unmarshal raw scores: %w", err)
	}
	return result, nil
}
