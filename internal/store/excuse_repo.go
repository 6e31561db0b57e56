package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ExcuseRepo is the normalized, queryable system of record for content
// filter / timeout excuses. Debate.AnalysisMetadata carries a denormalized
// copy assembled at terminal state for cheap read access.
type ExcuseRepo struct{}

func (r *ExcuseRepo) Record(ctx context.Context, e *ContentFilterExcuse) error {
	_, err := GetPool().Exec(ctx, `
		INSERT INTO content_filter_excuses
			(id, debate_id, model_id, replacement_model_id, role, phase, provider, error_message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.DebateID, e.ModelID, e.ReplacementModelID, e.Role, e.Phase, e.Provider,
		e.ErrorMessage, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("record excuse for debate %s: %w", e.DebateID, err)
	}
	return nil
}

func (r *ExcuseRepo) ListForDebate(ctx context.Context, debateID uuid.UUID) ([]*ContentFilterExcuse, error) {
	rows, err := GetPool().Query(ctx, `
		SELECT id, debate_id, model_id, replacement_model_id, role, phase, provider, error_message, created_at
		FROM content_filter_excuses WHERE debate_id = $1 ORDER BY created_at ASC`, debateID)
	if err != nil {
		return nil, fmt.Errorf("list excuses for debate %s: %w", debateID, err)
	}
	defer rows.Close()

	var out []*ContentFilterExcuse
	for rows.Next() {
		e := &ContentFilterExcuse{}
		if err := rows.Scan(&e.ID, &e.DebateID, &e.ModelID, &e.ReplacementModelID, &e.Role,
			&e.Phase, &e.Provider, &e.ErrorMessage, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan excuse: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
