package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/store"
)

// substituteRole implements the judge/auditor conflict-of-interest
// substitution from spec.md §4.3: same protocol as the in-debate
// substitution, but the exclude set is role-specific and supplied by the
// caller (judge excludes pro/con/auditor; auditor excludes judge/pro/con).
func (s *Service) substituteRole(ctx context.Context, debate *store.Debate, role string, offending *store.Model, phase store.DebatePhase, cfErr *provider.ContentFilterError, exclude map[uuid.UUID]bool) (*store.Model, error) {
	replacement, err := s.Selector.SelectReplacement(ctx, exclude)
	if err != nil {
		return nil, fmt.Errorf("select replacement for role %s: %w", role, err)
	}
	if replacement == nil {
		return nil, &provider.NoReplacementError{Role: role}
	}

	if err := s.Models.IncrementExcused(ctx, offending.ID); err != nil {
		return nil, err
	}

	excuse := &store.ContentFilterExcuse{
		ID:                 uuid.New(),
		DebateID:           debate.ID,
		ModelID:            offending.ID,
		ReplacementModelID: &replacement.ID,
		Role:               role,
		Phase:              &phase,
		Provider:           cfErr.Provider,
		ErrorMessage:       cfErr.Message,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.Excuses.Record(ctx, excuse); err != nil {
		return nil, err
	}
	s.recordedExcuses = append(s.recordedExcuses, excuse)

	if err := s.Debates.SubstituteRole(ctx, debate.ID, role, replacement.ID); err != nil {
		return nil, err
	}
	switch role {
	case "judge":
		debate.JudgeID = replacement.ID
	case "auditor":
		debate.AuditorID = replacement.ID
	}

	position := store.PositionJudge
	if role == "auditor" {
		position = store.PositionAuditor
	}
	notice := &store.TranscriptEntry{
		ID:        uuid.New(),
		DebateID:  debate.ID,
		Phase:     phase,
		SpeakerID: replacement.ID,
		Position:  &position,
		Content: fmt.Sprintf("%s was excused after a content-filter rejection and replaced by %s as %s.",
			offending.Name, replacement.Name, role),
	}
	if err := s.Transcripts.Append(ctx, notice); err != nil {
		return nil, err
	}

	return replacement, nil
}
