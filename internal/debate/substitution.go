package debate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/store"
)

// substituteDebater implements spec.md §4.2's mid-debate content-filter
// substitution: exclude the four current role holders plus any model
// already excused in this debate, pick the highest-Elo eligible
// replacement, record the excuse, rewrite the role pointer (never past
// history), and append a zero-telemetry system notice.
func (o *Orchestrator) substituteDebater(ctx context.Context, debate *store.Debate, role string, offending *store.Model, phase store.DebatePhase, cfErr *provider.ContentFilterError, excused map[uuid.UUID]bool) (*store.Model, error) {
	exclude := map[uuid.UUID]bool{
		debate.DebaterProID: true,
		debate.DebaterConID: true,
		debate.JudgeID:      true,
		debate.AuditorID:    true,
	}
	for id := range excused {
		exclude[id] = true
	}

	replacement, err := o.Selector.SelectReplacement(ctx, exclude)
	if err != nil {
		return nil, fmt.Errorf("select replacement for role %s: %w", role, err)
	}
	if replacement == nil {
		return nil, &provider.NoReplacementError{Role: role}
	}

	if err := o.Models.IncrementExcused(ctx, offending.ID); err != nil {
		return nil, err
	}
	excused[offending.ID] = true

	excuse := &store.ContentFilterExcuse{
		ID:                 uuid.New(),
		DebateID:            debate.ID,
		ModelID:             offending.ID,
		ReplacementModelID:  &replacement.ID,
		Role:                role,
		Phase:               &phase,
		Provider:            cfErr.Provider,
		ErrorMessage:        cfErr.Message,
		CreatedAt:           time.Now().UTC(),
	}
	if err := o.Excuses.Record(ctx, excuse); err != nil {
		return nil, err
	}
	o.recordedExcuses = append(o.recordedExcuses, excuse)

	if err := o.Debates.SubstituteRole(ctx, debate.ID, role, replacement.ID); err != nil {
		return nil, err
	}
	switch role {
	case "debater_pro":
		debate.DebaterProID = replacement.ID
	case "debater_con":
		debate.DebaterConID = replacement.ID
	}

	notice := &store.TranscriptEntry{
		ID:        uuid.New(),
		DebateID:  debate.ID,
		Phase:     phase,
		SpeakerID: replacement.ID,
		Position:  nil, // system notices carry no position
		Content: fmt.Sprintf("%s was excused after a content-filter rejection and replaced by %s.",
			offending.Name, replacement.Name),
	}
	if err := o.Transcripts.Append(ctx, notice); err != nil {
		return nil, err
	}

	return replacement, nil
}

func roleForPosition(pos store.DebatePosition) string {
	switch pos {
	case store.PositionPro:
		return "debater_pro"
	case store.PositionCon:
		return "debater_con"
	case store.PositionJudge:
		return "judge"
	default:
		return "auditor"
	}
}
