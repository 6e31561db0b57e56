package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ModelRepo reads and mutates Model rows.
type ModelRepo struct{}

func (r *ModelRepo) ListActive(ctx context.Context, exclude map[uuid.UUID]bool) ([]*Model, error) {
	rows, err := GetPool().Query(ctx, `
		SELECT id, name, provider, api_model_id, elo_rating, debates_won, debates_lost,
		       times_judged, avg_judge_score, times_excused, is_active, created_at
		FROM models
		WHERE is_active = true
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active models: %w", err)
	}
	defer rows.Close()

	var out []*Model
	for rows.Next() {
		m := &Model{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Provider, &m.APIModelID, &m.EloRating,
			&m.DebatesWon, &m.DebatesLost, &m.TimesJudged, &m.AvgJudgeScore,
			&m.TimesExcused, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		if exclude != nil && exclude[m.ID] {
			continue
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ModelRepo) GetByID(ctx context.Context, id uuid.UUID) (*Model, error) {
	m := &Model{}
	err := GetPool().QueryRow(ctx, `
		SELECT id, name, provider, api_model_id, elo_rating, debates_won, debates_lost,
		       times_judged, avg_judge_score, times_excused, is_active, created_at
		FROM models WHERE id = $1`, id).Scan(
		&m.ID, &m.Name, &m.Provider, &m.APIModelID, &m.EloRating,
		&m.DebatesWon, &m.DebatesLost, &m.TimesJudged, &m.AvgJudgeScore,
		&m.TimesExcused, &m.IsActive, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get model %s: %w", id, err)
	}
	return m, nil
}

// GetByIDForUpdate loads a model row locked FOR UPDATE within an open
// transaction, so a concurrent debate sharing this model blocks on the lock
// rather than racing a read-modify-write against elo_rating or
// avg_judge_score: spec.md §5.
func (r *ModelRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*Model, error) {
	m := &Model{}
	err := q.QueryRow(ctx, `
		SELECT id, name, provider, api_model_id, elo_rating, debates_won, debates_lost,
		       times_judged, avg_judge_score, times_excused, is_active, created_at
		FROM models WHERE id = $1 FOR UPDATE`, id).Scan(
		&m.ID, &m.Name, &m.Provider, &m.APIModelID, &m.EloRating,
		&m.DebatesWon, &m.DebatesLost, &m.TimesJudged, &m.AvgJudgeScore,
		&m.TimesExcused, &m.IsActive, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get model %s for update: %w", id, err)
	}
	return m, nil
}

// IncrementExcused bumps times_excused by one for the given model.
func (r *ModelRepo) IncrementExcused(ctx context.Context, id uuid.UUID) error {
	_, err := GetPool().Exec(ctx,
		`UPDATE models SET times_excused = times_excused + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment times_excused for %s: %w", id, err)
	}
	return nil
}

// ApplyEloResult updates elo_rating and the win/loss counter for a model in
// one statement. isWin selects which counter increments. q must be the same
// transaction that locked this row via GetByIDForUpdate and that also
// transitions the owning Debate to COMPLETED: spec.md §5.
func (r *ModelRepo) ApplyEloResult(ctx context.Context, q Querier, id uuid.UUID, newElo int, isWin bool) error {
	col := "debates_lost"
	if isWin {
		col = "debates_won"
	}
	_, err := q.Exec(ctx, fmt.Sprintf(
		`UPDATE models SET elo_rating = $2, %s = %s + 1 WHERE id = $1`, col, col),
		id, newElo)
	if err != nil {
		return fmt.Errorf("apply elo result for %s: %w", id, err)
	}
	return nil
}

// UpdateRollingJudgeScore overwrites avg_judge_score and increments
// times_judged for the model that served as judge. q must be the same
// transaction that locked this row via GetByIDForUpdate: spec.md §5.
func (r *ModelRepo) UpdateRollingJudgeScore(ctx context.Context, q Querier, id uuid.UUID, newAvg float64) error {
	_, err := q.Exec(ctx,
		`UPDATE models SET avg_judge_score = $2, times_judged = times_judged + 1 WHERE id = $1`,
		id, newAvg)
	if err != nil {
		return fmt.Errorf("update rolling judge score for %s: %w", id, err)
	}
	return nil
}
