package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TranscriptRepo reads and appends TranscriptEntry rows.
type TranscriptRepo struct{}

// Append inserts one entry and assigns it the next sequence_order for its
// debate atomically (max(existing)+1, starting at 0).
func (r *TranscriptRepo) Append(ctx context.Context, e *TranscriptEntry) error {
	var metadataRaw []byte
	if e.AnalysisMetadata != nil {
		var err error
		metadataRaw, err = json.Marshal(e.AnalysisMetadata)
		if err != nil {
			return fmt.Errorf("marshal transcript metadata: %w", err)
		}
	}

	err := GetPool().QueryRow(ctx, `
		INSERT INTO transcript_entries
			(id, debate_id, phase, speaker_id, position, content, token_count, sequence_order,
			 input_tokens, output_tokens, latency_ms, cost_usd, analysis_metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,
		        COALESCE((SELECT MAX(sequence_order)+1 FROM transcript_entries WHERE debate_id=$2), 0),
		        $8,$9,$10,$11,$12)
		RETURNING sequence_order`,
		e.ID, e.DebateID, e.Phase, e.SpeakerID, e.Position, e.Content, e.TokenCount,
		e.InputTokens, e.OutputTokens, e.LatencyMs, e.CostUSD, metadataRaw,
	).Scan(&e.SequenceOrder)
	if err != nil {
		return fmt.Errorf("append transcript entry for debate %s: %w", e.DebateID, err)
	}
	return nil
}

// DeleteForDebate removes all entries for a debate, used by the bounded
// content-filter restart that rewrites the debate from scratch.
func (r *TranscriptRepo) DeleteForDebate(ctx context.Context, debateID uuid.UUID) error {
	_, err := GetPool().Exec(ctx, `DELETE FROM transcript_entries WHERE debate_id = $1`, debateID)
	if err != nil {
		return fmt.Errorf("delete transcript entries for debate %s: %w", debateID, err)
	}
	return nil
}

// PhaseEntryCounts returns, for the given debate, how many entries already
// exist per phase (excluding system notices, whose position is nil) — used
// by the orchestrator to decide where to resume after a crash.
func (r *TranscriptRepo) PhaseEntryCounts(ctx context.Context, debateID uuid.UUID) (map[DebatePhase]int, error) {
	rows, err := GetPool().Query(ctx, `
		SELECT phase, COUNT(*) FROM transcript_entries
		WHERE debate_id = $1 AND position IS NOT NULL
		GROUP BY phase`, debateID)
	if err != nil {
		return nil, fmt.Errorf("phase entry counts for debate %s: %w", debateID, err)
	}
	defer rows.Close()

	counts := make(map[DebatePhase]int)
	for rows.Next() {
		var phase DebatePhase
		var n int
		if err := rows.Scan(&phase, &n); err != nil {
			return nil, fmt.Errorf("scan phase count: %w", err)
		}
		counts[phase] = n
	}
	return counts, rows.Err()
}

func (r *TranscriptRepo) ListForDebate(ctx context.Context, debateID uuid.UUID) ([]*TranscriptEntry, error) {
	rows, err := GetPool().Query(ctx, `
		SELECT id, debate_id, phase, speaker_id, position, content, token_count, sequence_order,
		       created_at, input_tokens, output_tokens, latency_ms, cost_usd, analysis_metadata
		FROM transcript_entries WHERE debate_id = $1 ORDER BY sequence_order ASC`, debateID)
	if err != nil {
		return nil, fmt.Errorf("list transcript entries for debate %s: %w", debateID, err)
	}
	defer rows.Close()

	var out []*TranscriptEntry
	for rows.Next() {
		e := &TranscriptEntry{}
		var metadataRaw []byte
		if err := rows.Scan(&e.ID, &e.DebateID, &e.Phase, &e.SpeakerID, &e.Position, &e.Content,
			&e.TokenCount, &e.SequenceOrder, &e.CreatedAt, &e.InputTokens, &e.OutputTokens,
			&e.LatencyMs, &e.CostUSD, &metadataRaw); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		if len(metadataRaw) > 0 {
			_ = json.Unmarshal(metadataRaw, &e.AnalysisMetadata)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
