// Package scheduler fires debate attempts on a fixed cron schedule and owns
// the end-to-end pipeline: topic select -> model select -> orchestrate ->
// judge -> audit -> Elo -> status. See spec.md §4.5.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/config"
	"github.com/debatelab/engine/internal/debate"
	"github.com/debatelab/engine/internal/elo"
	"github.com/debatelab/engine/internal/judge"
	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/selector"
	"github.com/debatelab/engine/internal/store"
)

// ProviderResolver builds the Provider adapter for a given Model row. It is
// an unnamed-underlying-type match for both debate.ProviderResolver and
// judge.ProviderResolver, so the same function value wires into both.
type ProviderResolver = func(m *store.Model) (provider.Provider, error)

// Runner owns a single debate attempt from topic selection through Elo.
// Exactly one Runner per process; it is safe to call RunSingleDebate from
// multiple goroutines concurrently (each call constructs its own
// Orchestrator/Judge Service instances, which are not themselves
// reentrant).
type Runner struct {
	Config config.Config

	Topics      *store.TopicRepo
	Models      *store.ModelRepo
	Debates     *store.DebateRepo
	Transcripts *store.TranscriptRepo
	Excuses     *store.ExcuseRepo

	TopicSelector *selector.TopicSelector
	ModelSelector *selector.ModelSelector

	Resolve ProviderResolver
}

// excuseRecord is the shape persisted into Debate.analysis_metadata's
// content_filter_excuses array: spec.md §6.
type excuseRecord struct {
	ModelID      string `json:"model_id"`
	ModelName    string `json:"model_name"`
	Role         string `json:"role"`
	Provider     string `json:"provider"`
	Phase        string `json:"phase,omitempty"`
	ErrorMessage string `json:"error_message"`
	Attempt      int    `json:"attempt"`
	Reason       string `json:"reason,omitempty"`
}

// RunSingleDebate runs one debate attempt from topic selection to
// completion, implementing the bounded content-filter/timeout restart loop
// of spec.md §4.5. Returns the completed debate, or (nil, nil) if no topic
// is available, or (nil, err) on unrecoverable failure (the restart budget
// exhausted, or a fatal error that is not restart-eligible). excludeCategories
// carries the scheduler's daily-diversity set (spec.md §4.6) through to seed
// topic selection; pass nil outside of the cron-driven daily sequence (e.g.
// the manual-trigger HTTP path).
func (r *Runner) RunSingleDebate(ctx context.Context, excludeCategories []string) (*store.Debate, error) {
	topic, err := r.TopicSelector.SelectNext(ctx, r.Config.TopicSelectionMode, r.Config.MinUserVotes, excludeCategories)
	if err != nil {
		return nil, fmt.Errorf("select topic: %w", err)
	}
	if topic == nil {
		return nil, nil
	}

	excusedModelIDs := make(map[uuid.UUID]bool)
	var allExcuses []excuseRecord
	debateID := uuid.New()
	var dbt *store.Debate

	maxAttempts := r.Config.MaxContentFilterRestarts + 1
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		quartet, err := r.ModelSelector.SelectQuartet(ctx, excusedModelIDs, r.Config.MatchupCooldownDays)
		if err != nil {
			return nil, fmt.Errorf("select quartet: %w", err)
		}
		if quartet == nil {
			return nil, fmt.Errorf("not enough active models available for a debate (need at least 3)")
		}

		if dbt == nil {
			now := time.Now().UTC()
			dbt = &store.Debate{
				ID:           debateID,
				TopicID:      topic.ID,
				DebaterProID: quartet.Pro.ID,
				DebaterConID: quartet.Con.ID,
				JudgeID:      quartet.Judge.ID,
				AuditorID:    quartet.Auditor.ID,
				Status:       store.DebateScheduled,
				ScheduledAt:  now,
				CreatedAt:    now,
				IsBlinded:    rand.Intn(2) == 0,
			}
			if err := r.Debates.Create(ctx, dbt); err != nil {
				return nil, err
			}
			if err := r.Topics.MarkSelected(ctx, topic.ID); err != nil {
				return nil, err
			}
		} else {
			if err := r.Debates.UpdateQuartet(ctx, dbt.ID, quartet.Pro.ID, quartet.Con.ID, quartet.Judge.ID, quartet.Auditor.ID); err != nil {
				return nil, err
			}
			dbt.DebaterProID, dbt.DebaterConID = quartet.Pro.ID, quartet.Con.ID
			dbt.JudgeID, dbt.AuditorID = quartet.Judge.ID, quartet.Auditor.ID
			dbt.Status = store.DebateScheduled
		}

		excuses, runErr := r.runAttempt(ctx, dbt, topic.ID, topic.Title, excusedModelIDs)
		for _, e := range excuses {
			allExcuses = append(allExcuses, r.toExcuseRecord(ctx, e, attempt+1))
		}

		if runErr == nil {
			// The audit-completion transaction (elo.Service.CompleteDebate)
			// already marked the topic DEBATED atomically with the Debate's
			// COMPLETED transition and the Elo/rating updates: spec.md §5.
			if err := r.persistExcuseLog(ctx, dbt, allExcuses); err != nil {
				return nil, err
			}
			return dbt, nil
		}

		lastErr = runErr
		if !isRestartable(runErr) {
			return nil, runErr
		}

		for _, e := range excuses {
			excusedModelIDs[e.ModelID] = true
		}

		// A TimeoutError from the judge/auditor path is never recorded as an
		// excuse by the judge service itself (substitution there only fires
		// on ContentFilterError), so the scheduler identifies and excuses
		// the timed-out role holder directly: spec.md §4.5/§7.
		var toErr *provider.TimeoutError
		if errors.As(runErr, &toErr) {
			if excuse, err := r.excuseTimedOutRole(ctx, dbt, toErr, attempt+1); err != nil {
				return nil, err
			} else if excuse != nil {
				excusedModelIDs[excuse.ModelID] = true
				allExcuses = append(allExcuses, r.toExcuseRecord(ctx, excuse, attempt+1))
			}
		}

		if err := r.Transcripts.DeleteForDebate(ctx, dbt.ID); err != nil {
			return nil, err
		}
	}

	// Restart budget exhausted: spec.md §4.5 and scenario 6.
	if err := r.Topics.ResetToPending(ctx, topic.ID); err != nil {
		return nil, err
	}
	_ = r.persistExcuseLog(ctx, dbt, allExcuses)
	return nil, fmt.Errorf("debate %s: restart budget exhausted after %d attempts: %w", dbt.ID, maxAttempts, lastErr)
}

// runAttempt drives one full pass of the pipeline for an already-persisted
// debate row: orchestrate, judge, audit, apply Elo. It returns every
// content-filter excuse recorded during the attempt (whether or not the
// attempt ultimately succeeds) alongside any error.
func (r *Runner) runAttempt(ctx context.Context, dbt *store.Debate, topicID uuid.UUID, topicTitle string, excused map[uuid.UUID]bool) ([]*store.ContentFilterExcuse, error) {
	orch := &debate.Orchestrator{
		Debates:     r.Debates,
		Transcripts: r.Transcripts,
		Models:      r.Models,
		Excuses:     r.Excuses,
		Selector:    r.ModelSelector,
		Resolve:     r.Resolve,
	}

	excuses, err := orch.Run(ctx, dbt, topicTitle, excused)
	if err != nil {
		return excuses, fmt.Errorf("orchestrate: %w", err)
	}

	judgeSvc := &judge.Service{
		Debates:     r.Debates,
		Transcripts: r.Transcripts,
		Models:      r.Models,
		Excuses:     r.Excuses,
		Selector:    r.ModelSelector,
		Resolve:     r.Resolve,
		Timeout:     time.Duration(r.Config.JudgeAPITimeoutSeconds) * time.Second,
	}

	if _, err := judgeSvc.JudgeDebate(ctx, dbt, topicTitle, excused); err != nil {
		return append(excuses, judgeSvc.RecordedExcuses()...), fmt.Errorf("judge: %w", err)
	}
	auditResult, err := judgeSvc.AuditJudge(ctx, dbt, topicTitle, excused)
	if err != nil {
		return append(excuses, judgeSvc.RecordedExcuses()...), fmt.Errorf("audit: %w", err)
	}
	excuses = append(excuses, judgeSvc.RecordedExcuses()...)

	eloSvc := &elo.Service{Debates: r.Debates, Models: r.Models, Topics: r.Topics, K: r.Config.EloKFactor}
	completion := elo.CompletionInput{Scores: auditResult.Scores, Overall: auditResult.Overall, CompletedAt: time.Now().UTC()}
	if _, err := eloSvc.CompleteDebate(ctx, dbt, topicID, completion); err != nil {
		return excuses, fmt.Errorf("complete debate: %w", err)
	}

	return excuses, nil
}

// isRestartable reports whether an attempt's failure is eligible for the
// scheduler's bounded full-debate restart: a content-filter rejection or
// timeout that the in-debate/in-judging substitution logic could not
// absorb (it exhausted eligible replacements). Any other error is fatal
// for the whole attempt and propagates unchanged: spec.md §7.
func isRestartable(err error) bool {
	var cfErr *provider.ContentFilterError
	if errors.As(err, &cfErr) {
		return true
	}
	var toErr *provider.TimeoutError
	if errors.As(err, &toErr) {
		return true
	}
	var noReplacement *provider.NoReplacementError
	return errors.As(err, &noReplacement)
}

// excuseTimedOutRole identifies which of the judge/auditor role holders a
// judge/auditor-path TimeoutError refers to (by provider and name, the same
// heuristic the original source used for content-filter errors: spec.md
// §4.5's "identify offending model" step), records the excuse, and
// increments its times_excused counter. Returns nil if neither role holder
// matches, in which case the scheduler still restarts but cannot name the
// responsible model.
func (r *Runner) excuseTimedOutRole(ctx context.Context, dbt *store.Debate, toErr *provider.TimeoutError, attempt int) (*store.ContentFilterExcuse, error) {
	judge, err := r.Models.GetByID(ctx, dbt.JudgeID)
	if err != nil {
		return nil, err
	}
	auditor, err := r.Models.GetByID(ctx, dbt.AuditorID)
	if err != nil {
		return nil, err
	}

	var offending *store.Model
	var role string
	switch {
	case judge.Name == toErr.ModelName:
		offending, role = judge, "judge"
	case auditor.Name == toErr.ModelName:
		offending, role = auditor, "auditor"
	case judge.Provider == toErr.Provider:
		offending, role = judge, "judge"
	case auditor.Provider == toErr.Provider:
		offending, role = auditor, "auditor"
	default:
		return nil, nil
	}

	if err := r.Models.IncrementExcused(ctx, offending.ID); err != nil {
		return nil, err
	}

	excuse := &store.ContentFilterExcuse{
		ID:           uuid.New(),
		DebateID:     dbt.ID,
		ModelID:      offending.ID,
		Role:         role,
		Provider:     offending.Provider,
		ErrorMessage: toErr.Error(),
		Attempt:      attempt,
		Reason:       "timeout",
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.Excuses.Record(ctx, excuse); err != nil {
		return nil, err
	}
	return excuse, nil
}

// toExcuseRecord fills in the model's display name for the denormalized
// JSON log; a lookup failure (the model was hard-deleted, which never
// happens in practice since models are soft-inactive only) degrades to the
// raw ID rather than failing the whole attempt.
func (r *Runner) toExcuseRecord(ctx context.Context, e *store.ContentFilterExcuse, attempt int) excuseRecord {
	rec := excuseRecord{
		ModelID:      e.ModelID.String(),
		ModelName:    e.ModelID.String(),
		Role:         e.Role,
		Provider:     e.Provider,
		ErrorMessage: e.ErrorMessage,
		Attempt:      attempt,
		Reason:       e.Reason,
	}
	if m, err := r.Models.GetByID(ctx, e.ModelID); err == nil {
		rec.ModelName = m.Name
	}
	if e.Phase != nil {
		rec.Phase = string(*e.Phase)
	}
	return rec
}

func (r *Runner) persistExcuseLog(ctx context.Context, dbt *store.Debate, excuses []excuseRecord) error {
	if len(excuses) == 0 {
		return nil
	}
	items := make([]interface{}, 0, len(excuses))
	for _, e := range excuses {
		items = append(items, e)
	}
	metadata := dbt.AnalysisMetadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["content_filter_excuses"] = items
	if err := r.Debates.SaveAnalysisMetadata(ctx, dbt.ID, metadata); err != nil {
		return err
	}
	dbt.AnalysisMetadata = metadata
	return nil
}
