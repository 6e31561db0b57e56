package judge

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

const (
	judgeMaxTokens = 2500
	auditMaxTokens = 1500
)

// JudgmentResult is the parsed outcome of the judgment sub-phase.
type JudgmentResult struct {
	ProScore          int
	ConScore          int
	ProCategoryScores store.CategoryScores
	ConCategoryScores store.CategoryScores
	WinnerIsPro       bool
	Reasoning         string
	DegradedParse     bool // true if the model emitted the legacy flat-score shape
}

// AuditResult is the parsed outcome of the audit sub-phase.
type AuditResult struct {
	Scores  store.AuditScores
	Overall float64
	Notes   string
}

// ProviderResolver builds the Provider adapter for a given Model row.
type ProviderResolver func(m *store.Model) (provider.Provider, error)

// Service runs the judgment and audit sub-phases for one debate.
type Service struct {
	Debates     *store.DebateRepo
	Transcripts *store.TranscriptRepo
	Models      *store.ModelRepo
	Excuses     *store.ExcuseRepo
	Selector    *selector.ModelSelector
	Resolve     ProviderResolver
	Timeout     time.Duration // zero or negative means 120s (see callWithTimeout)

	recordedExcuses []*store.ContentFilterExcuse
}

// JudgeDebate runs the judgment sub-phase: present the transcript, require
// the JSON rubric, retry once on malformed JSON, substitute the judge on a
// content-filter rejection, and persist the result.
func (s *Service) JudgeDebate(ctx context.Context, debate *store.Debate, topicTitle string, excused map[uuid.UUID]bool) (JudgmentResult, error) {
	entries, err := s.Transcripts.ListForDebate(ctx, debate.ID)
	if err != nil {
		return JudgmentResult{}, fmt.Errorf("load transcript for judgment: %w", err)
	}
	pro, err := s.Models.GetByID(ctx, debate.DebaterProID)
	if err != nil {
		return JudgmentResult{}, err
	}
	con, err := s.Models.GetByID(ctx, debate.DebaterConID)
	if err != nil {
		return JudgmentResult{}, err
	}

	transcriptText := formatTranscriptForJudge(topicTitle, debate.IsBlinded, pro.Name, con.Name, entries)
	systemPrompt := judgeSystemPrompt(topicTitle)

	exclude := map[uuid.UUID]bool{debate.DebaterProID: true, debate.DebaterConID: true, debate.AuditorID: true}
	for id := range excused {
		exclude[id] = true
	}

	currentJudgeID := debate.JudgeID
	var response string
	for {
		judge, err := s.Models.GetByID(ctx, currentJudgeID)
		if err != nil {
			return JudgmentResult{}, err
		}
		prov, err := s.Resolve(judge)
		if err != nil {
			return JudgmentResult{}, err
		}

		response, err = s.callWithJSONRetry(ctx, prov, systemPrompt, transcriptText, judgeMaxTokens, judge, &judgmentPayload{})
		if err == nil {
			currentJudgeID = judge.ID
			break
		}

		var cfErr *provider.ContentFilterError
		if !errors.As(err, &cfErr) {
			return JudgmentResult{}, err
		}

		exclude[judge.ID] = true
		replacement, subErr := s.substituteRole(ctx, debate, "judge", judge, store.PhaseJudgment, cfErr, exclude)
		if subErr != nil {
			return JudgmentResult{}, subErr
		}
		exclude[replacement.ID] = true
		currentJudgeID = replacement.ID
	}

	var payload judgmentPayload
	if err := extractJSON(response, &payload); err != nil {
		return JudgmentResult{}, fmt.Errorf("unparseable judgment after retry: %w", err)
	}

	result, err := parseJudgment(payload)
	if err != nil {
		return JudgmentResult{}, err
	}

	entry := &store.TranscriptEntry{
		ID:         uuid.New(),
		DebateID:   debate.ID,
		Phase:      store.PhaseJudgment,
		SpeakerID:  currentJudgeID,
		Position:   positionPtr(store.PositionJudge),
		Content:    response,
		TokenCount: len(strings.Fields(response)),
	}
	if result.DegradedParse {
		entry.AnalysisMetadata = map[string]interface{}{"degraded_parse": true, "reason": "legacy flat pro_score/con_score fallback used"}
	}
	if err := s.Transcripts.Append(ctx, entry); err != nil {
		return JudgmentResult{}, err
	}

	winnerID := debate.DebaterConID
	if result.WinnerIsPro {
		winnerID = debate.DebaterProID
	}
	if err := s.Debates.SaveJudgment(ctx, debate.ID, winnerID, result.ProScore, result.ConScore,
		result.ProCategoryScores, result.ConCategoryScores); err != nil {
		return JudgmentResult{}, err
	}

	debate.JudgeID = currentJudgeID
	debate.WinnerID = &winnerID
	debate.ProScore = &result.ProScore
	debate.ConScore = &result.ConScore

	return result, nil
}

// AuditJudge runs the audit sub-phase: present the transcript plus the
// judgment, require the quality-metric JSON, substitute the auditor on a
// content-filter rejection, and append the audit transcript entry. It does
// not persist the audit scores or update the judge model's rolling average;
// the caller passes the returned result to elo.Service.CompleteDebate.
func (s *Service) AuditJudge(ctx context.Context, debate *store.Debate, topicTitle string, excused map[uuid.UUID]bool) (AuditResult, error) {
	if debate.ProScore == nil || debate.ConScore == nil {
		return AuditResult{}, fmt.Errorf("debate %s has not been judged yet", debate.ID)
	}

	entries, err := s.Transcripts.ListForDebate(ctx, debate.ID)
	if err != nil {
		return AuditResult{}, fmt.Errorf("load transcript for audit: %w", err)
	}
	pro, err := s.Models.GetByID(ctx, debate.DebaterProID)
	if err != nil {
		return AuditResult{}, err
	}
	con, err := s.Models.GetByID(ctx, debate.DebaterConID)
	if err != nil {
		return AuditResult{}, err
	}
	judge, err := s.Models.GetByID(ctx, debate.JudgeID)
	if err != nil {
		return AuditResult{}, err
	}

	var judgmentText string
	for _, e := range entries {
		if e.Phase == store.PhaseJudgment {
			judgmentText = e.Content
		}
	}
	winnerIsPro := debate.WinnerID != nil && *debate.WinnerID == debate.DebaterProID
	transcriptText := formatTranscriptForAuditor(topicTitle, debate.IsBlinded, pro.Name, con.Name, entries,
		judge.Name, *debate.ProScore, *debate.ConScore, winnerIsPro, judgmentText)
	systemPrompt := auditorSystemPrompt(topicTitle)

	exclude := map[uuid.UUID]bool{debate.JudgeID: true, debate.DebaterProID: true, debate.DebaterConID: true}
	for id := range excused {
		exclude[id] = true
	}

	currentAuditorID := debate.AuditorID
	var response string
	for {
		auditor, err := s.Models.GetByID(ctx, currentAuditorID)
		if err != nil {
			return AuditResult{}, err
		}
		prov, err := s.Resolve(auditor)
		if err != nil {
			return AuditResult{}, err
		}

		response, err = s.callWithJSONRetry(ctx, prov, systemPrompt, transcriptText, auditMaxTokens, auditor, &auditPayload{})
		if err == nil {
			currentAuditorID = auditor.ID
			break
		}

		var cfErr *provider.ContentFilterError
		if !errors.As(err, &cfErr) {
			return AuditResult{}, err
		}

		exclude[auditor.ID] = true
		replacement, subErr := s.substituteRole(ctx, debate, "auditor", auditor, store.PhaseAudit, cfErr, exclude)
		if subErr != nil {
			return AuditResult{}, subErr
		}
		exclude[replacement.ID] = true
		currentAuditorID = replacement.ID
	}

	var payload auditPayload
	if err := extractJSON(response, &payload); err != nil {
		return AuditResult{}, fmt.Errorf("unparseable audit after retry: %w", err)
	}
	result, err := parseAudit(payload)
	if err != nil {
		return AuditResult{}, err
	}

	entry := &store.TranscriptEntry{
		ID:         uuid.New(),
		DebateID:   debate.ID,
		Phase:      store.PhaseAudit,
		SpeakerID:  currentAuditorID,
		Position:   positionPtr(store.PositionAuditor),
		Content:    response,
		TokenCount: len(strings.Fields(response)),
	}
	if err := s.Transcripts.Append(ctx, entry); err != nil {
		return AuditResult{}, err
	}

	// The audit scores are not persisted here: the Debate's COMPLETED
	// transition, the Elo update, the judge's rolling average, and the
	// Topic's DEBATED transition must commit as one transaction (spec.md
	// §5), which elo.Service.CompleteDebate owns. The caller invokes it with
	// this result once AuditJudge returns successfully.
	debate.AuditorID = currentAuditorID

	return result, nil
}

// RecordedExcuses returns every content-filter excuse recorded across both
// sub-phases for this service instance.
func (s *Service) RecordedExcuses() []*store.ContentFilterExcuse {
	return s.recordedExcuses
}

// callWithJSONRetry calls the model once, and if the response fails JSON
// extraction, retries once with a nudge appended as a fresh user turn.
func (s *Service) callWithJSONRetry(ctx context.Context, prov provider.Provider, systemPrompt, userContent string, maxTokens int, model *store.Model, probe interface{}) (string, error) {
	conversation := []provider.Turn{{Role: provider.RoleUser, Content: userContent}}

	response, err := s.callWithTimeout(ctx, prov, systemPrompt, conversation, maxTokens, model)
	if err != nil {
		return "", err
	}
	if extractJSON(response, probe) == nil {
		return response, nil
	}

	retryConversation := append(conversation,
		provider.Turn{Role: provider.RoleAssistant, Content: response},
		provider.Turn{Role: provider.RoleUser, Content: jsonRetryPrompt},
	)
	return s.callWithTimeout(ctx, prov, systemPrompt, retryConversation, maxTokens, model)
}

// callWithTimeout wraps one completion call in the judge/auditor call
// ceiling (spec default 120s), converting a context deadline into a
// provider.TimeoutError the scheduler/watchdog can act on.
func (s *Service) callWithTimeout(ctx context.Context, prov provider.Provider, systemPrompt string, conversation []provider.Turn, maxTokens int, model *store.Model) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := prov.Complete(callCtx, systemPrompt, conversation, maxTokens)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", &provider.TimeoutError{Provider: model.Provider, ModelName: model.Name, Seconds: int(timeout.Seconds())}
		}
		return "", err
	}
	return result.Text, nil
}

func positionPtr(p store.DebatePosition) *store.DebatePosition { return &p }
