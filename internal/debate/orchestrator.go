// Package debate drives one debate through its fixed phase sequence:
// spec.md §4.2.
package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/selector"
	"github.com/debatelab/engine/internal/store"
)

// ProviderResolver builds the Provider adapter for a given Model row.
type ProviderResolver func(m *store.Model) (provider.Provider, error)

// Orchestrator drives a single debate's Opening/Rebuttal/Cross-Examination/
// Closing phases. It owns neither topic nor quartet selection (the
// scheduler does) nor judgment/audit (the judge service does); its
// responsibility ends at the JUDGING transition.
type Orchestrator struct {
	Debates     *store.DebateRepo
	Transcripts *store.TranscriptRepo
	Models      *store.ModelRepo
	Excuses     *store.ExcuseRepo
	Selector    *selector.ModelSelector
	Resolve     ProviderResolver

	recordedExcuses []*store.ContentFilterExcuse
}

// Run drives debate through however many phases remain, resuming from the
// first incomplete phase if transcript entries already exist (the crash
// recovery path). excused carries the set of models already excused in
// prior attempts for this debate (the scheduler's restart-budget state);
// Run adds to it in place as new excuses occur. It returns every excuse
// recorded during this call.
func (o *Orchestrator) Run(ctx context.Context, debate *store.Debate, topicTitle string, excused map[uuid.UUID]bool) ([]*store.ContentFilterExcuse, error) {
	o.recordedExcuses = nil

	if debate.Status == store.DebateScheduled {
		now := time.Now().UTC()
		debate.StartedAt = &now
		if err := o.Debates.UpdateStatus(ctx, debate.ID, store.DebateInProgress); err != nil {
			return nil, err
		}
		debate.Status = store.DebateInProgress
	}

	counts, err := o.Transcripts.PhaseEntryCounts(ctx, debate.ID)
	if err != nil {
		return nil, fmt.Errorf("load phase entry counts: %w", err)
	}

	for _, phase := range store.PhaseOrder {
		if counts[phase] >= store.ExpectedEntryCount[phase] {
			continue // already complete from a prior attempt; durability invariant
		}
		if err := o.runPhase(ctx, debate, topicTitle, phase, excused); err != nil {
			return o.recordedExcuses, err
		}
	}

	if err := o.Debates.UpdateStatus(ctx, debate.ID, store.DebateJudging); err != nil {
		return o.recordedExcuses, err
	}
	debate.Status = store.DebateJudging

	return o.recordedExcuses, nil
}

func (o *Orchestrator) runPhase(ctx context.Context, debate *store.Debate, topicTitle string, phase store.DebatePhase, excused map[uuid.UUID]bool) error {
	for _, spec := range phaseTurns[phase] {
		if err := o.runTurn(ctx, debate, topicTitle, phase, spec, excused); err != nil {
			return err
		}
	}
	return nil
}

// runTurn executes one speaking turn, retrying up to maxEmptyResponseRetries
// times on empty/whitespace output and substituting the offending model on
// a ContentFilterError before retrying the same turn with the replacement.
func (o *Orchestrator) runTurn(ctx context.Context, debate *store.Debate, topicTitle string, phase store.DebatePhase, spec turnSpec, excused map[uuid.UUID]bool) error {
	role := roleForPosition(spec.Position)

	for {
		speakerID := debate.DebaterProID
		if spec.Position == store.PositionCon {
			speakerID = debate.DebaterConID
		}
		speaker, err := o.Models.GetByID(ctx, speakerID)
		if err != nil {
			return fmt.Errorf("load speaker for role %s: %w", role, err)
		}

		prov, err := o.Resolve(speaker)
		if err != nil {
			return fmt.Errorf("resolve provider for %s: %w", speaker.Name, err)
		}

		systemPrompt := buildSystemPrompt(topicTitle, spec.Position, phase, spec.Instruction)
		conversation, err := o.buildConversationForTurn(ctx, debate, phase, spec)
		if err != nil {
			return err
		}

		maxTokens := maxTokensForPhase(phase)
		var result provider.Result
		var genErr error
		for emptyAttempt := 0; emptyAttempt <= maxEmptyResponseRetries; emptyAttempt++ {
			result, genErr = prov.Complete(ctx, systemPrompt, conversation, maxTokens)
			if genErr != nil {
				break
			}
			if strings.TrimSpace(result.Text) != "" {
				break
			}
			if emptyAttempt == maxEmptyResponseRetries {
				genErr = fmt.Errorf("empty response from %s after %d retries", speaker.Name, maxEmptyResponseRetries)
			}
		}

		if genErr != nil {
			var cfErr *provider.ContentFilterError
			if errors.As(genErr, &cfErr) {
				replacement, subErr := o.substituteDebater(ctx, debate, role, speaker, phase, cfErr, excused)
				if subErr != nil {
					return subErr
				}
				_ = replacement
				continue // retry the same turn with the replacement
			}
			return genErr
		}

		entry := &store.TranscriptEntry{
			ID:           uuid.New(),
			DebateID:     debate.ID,
			Phase:        phase,
			SpeakerID:    speaker.ID,
			Position:     &spec.Position,
			Content:      result.Text,
			TokenCount:   result.OutputTokens,
			InputTokens:  &result.InputTokens,
			OutputTokens: &result.OutputTokens,
			LatencyMs:    &result.LatencyMs,
			CostUSD:      &result.CostUSD,
		}
		return o.Transcripts.Append(ctx, entry)
	}
}

func (o *Orchestrator) buildConversationForTurn(ctx context.Context, debate *store.Debate, phase store.DebatePhase, spec turnSpec) ([]provider.Turn, error) {
	if phase == store.PhaseOpening {
		return []provider.Turn{{Role: provider.RoleUser, Content: openingInstructionPrompt}}, nil
	}

	entries, err := o.Transcripts.ListForDebate(ctx, debate.ID)
	if err != nil {
		return nil, fmt.Errorf("load transcript for conversation: %w", err)
	}

	roleNames, err := o.roleNameIndex(ctx, debate)
	if err != nil {
		return nil, err
	}

	return buildConversation(entries, debate.IsBlinded, roleNames), nil
}

func (o *Orchestrator) roleNameIndex(ctx context.Context, debate *store.Debate) (map[string]string, error) {
	ids := []uuid.UUID{debate.DebaterProID, debate.DebaterConID, debate.JudgeID, debate.AuditorID}
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		m, err := o.Models.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		names[id.String()] = m.Name
	}
	return names, nil
}
