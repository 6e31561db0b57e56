// Package watchdog periodically sweeps for debates stuck in an
// intermediate state and resumes them from their last durable checkpoint:
// spec.md §4.7. It is the sole resume path for the judging stage; the
// scheduler's restart budget governs only the pre-judgment path.
package watchdog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/config"
	"github.com/debatelab/engine/internal/elo"
	"github.com/debatelab/engine/internal/judge"
	"github.com/debatelab/engine/internal/provider"
	"github.com/debatelab/engine/internal/selector"
	"github.com/debatelab/engine/internal/store"
)

// maxRecoveryAttempts bounds how many times the watchdog retries one stuck
// debate in a single sweep before abandoning it to the next sweep.
const maxRecoveryAttempts = 2

// ProviderResolver builds the Provider adapter for a given Model row.
type ProviderResolver = func(m *store.Model) (provider.Provider, error)

// Watchdog resumes debates stuck in JUDGING past a threshold.
type Watchdog struct {
	Config config.Config

	Debates     *store.DebateRepo
	Topics      *store.TopicRepo
	Models      *store.ModelRepo
	Transcripts *store.TranscriptRepo
	Excuses     *store.ExcuseRepo

	ModelSelector *selector.ModelSelector
	Resolve       ProviderResolver

	Logger *slog.Logger
}

func (w *Watchdog) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// Sweep finds every debate stuck in JUDGING past the configured threshold
// and attempts to recover each one. A failure recovering one debate never
// aborts the sweep for the others.
func (w *Watchdog) Sweep(ctx context.Context) {
	threshold := time.Duration(w.Config.StuckDebateThresholdMinutes) * time.Minute
	if threshold <= 0 {
		threshold = 5 * time.Minute
	}
	cutoff := time.Now().UTC().Add(-threshold)

	stuck, err := w.Debates.StuckInJudging(ctx, cutoff)
	if err != nil {
		w.logger().Error("watchdog sweep: failed to list stuck debates", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}
	w.logger().Info("watchdog sweep found stuck debates", "count", len(stuck))

	for _, dbt := range stuck {
		w.recover(ctx, dbt)
	}
}

// recover resumes one stuck debate. If judgment scores are already
// persisted it skips straight to audit; otherwise it runs judgment first.
// A timeout during audit swaps the auditor and retries, up to
// maxRecoveryAttempts total. Any other error abandons this debate for the
// current sweep; a later sweep will pick it up again.
func (w *Watchdog) recover(ctx context.Context, dbt *store.Debate) {
	topic, err := w.Topics.GetByID(ctx, dbt.TopicID)
	if err != nil {
		w.logger().Error("watchdog: failed to load topic for stuck debate", "debate_id", dbt.ID, "error", err)
		return
	}

	excused := make(map[uuid.UUID]bool)

	for attempt := 0; attempt < maxRecoveryAttempts; attempt++ {
		judgeSvc := &judge.Service{
			Debates:     w.Debates,
			Transcripts: w.Transcripts,
			Models:      w.Models,
			Excuses:     w.Excuses,
			Selector:    w.ModelSelector,
			Resolve:     w.Resolve,
			Timeout:     time.Duration(w.Config.JudgeAPITimeoutSeconds) * time.Second,
		}

		if dbt.ProScore == nil || dbt.ConScore == nil {
			if _, err := judgeSvc.JudgeDebate(ctx, dbt, topic.Title, excused); err != nil {
				w.logger().Error("watchdog: judgment resume failed", "debate_id", dbt.ID, "attempt", attempt+1, "error", err)
				return
			}
		} else {
			w.logger().Info("watchdog: judgment already persisted, resuming at audit", "debate_id", dbt.ID)
		}

		auditResult, err := judgeSvc.AuditJudge(ctx, dbt, topic.Title, excused)
		if err != nil {
			var toErr *provider.TimeoutError
			if errors.As(err, &toErr) {
				w.logger().Warn("watchdog: audit timed out, swapping auditor", "debate_id", dbt.ID, "attempt", attempt+1)
				if swapErr := w.swapAuditor(ctx, dbt, excused); swapErr != nil {
					w.logger().Error("watchdog: could not swap auditor", "debate_id", dbt.ID, "error", swapErr)
					return
				}
				continue
			}
			w.logger().Error("watchdog: audit resume failed", "debate_id", dbt.ID, "attempt", attempt+1, "error", err)
			return
		}

		eloSvc := &elo.Service{Debates: w.Debates, Models: w.Models, Topics: w.Topics, K: w.Config.EloKFactor}
		completion := elo.CompletionInput{Scores: auditResult.Scores, Overall: auditResult.Overall, CompletedAt: time.Now().UTC()}
		if _, err := eloSvc.CompleteDebate(ctx, dbt, topic.ID, completion); err != nil {
			w.logger().Error("watchdog: debate completion transaction failed", "debate_id", dbt.ID, "error", err)
			return
		}
		w.logger().Info("watchdog recovered stuck debate", "debate_id", dbt.ID, "attempts", attempt+1)
		return
	}

	w.logger().Error("watchdog: recovery attempts exhausted for stuck debate", "debate_id", dbt.ID, "attempts", maxRecoveryAttempts)
}

// swapAuditor replaces a timed-out auditor with an eligible active model
// obeying the same conflict-of-interest rule as the original auditor
// selection (distinct from the judge and both debaters): spec.md §4.3.
func (w *Watchdog) swapAuditor(ctx context.Context, dbt *store.Debate, excused map[uuid.UUID]bool) error {
	current, err := w.Models.GetByID(ctx, dbt.AuditorID)
	if err != nil {
		return err
	}

	exclude := map[uuid.UUID]bool{
		dbt.JudgeID:      true,
		dbt.DebaterProID: true,
		dbt.DebaterConID: true,
		dbt.AuditorID:    true,
	}
	for id := range excused {
		exclude[id] = true
	}

	replacement, err := w.ModelSelector.SelectReplacement(ctx, exclude)
	if err != nil {
		return fmt.Errorf("select replacement auditor: %w", err)
	}
	if replacement == nil {
		return &provider.NoReplacementError{Role: "auditor"}
	}

	if err := w.Models.IncrementExcused(ctx, current.ID); err != nil {
		return err
	}

	excuse := &store.ContentFilterExcuse{
		ID:                 uuid.New(),
		DebateID:           dbt.ID,
		ModelID:            current.ID,
		ReplacementModelID: &replacement.ID,
		Role:               "auditor",
		Phase:              phasePtr(store.PhaseAudit),
		Provider:           current.Provider,
		ErrorMessage:       fmt.Sprintf("%s exceeded the audit timeout", current.Name),
		Reason:             "timeout",
		CreatedAt:          time.Now().UTC(),
	}
	if err := w.Excuses.Record(ctx, excuse); err != nil {
		return err
	}

	if err := w.Debates.SubstituteRole(ctx, dbt.ID, "auditor", replacement.ID); err != nil {
		return err
	}
	dbt.AuditorID = replacement.ID
	excused[current.ID] = true

	return nil
}

func phasePtr(p store.DebatePhase) *store.DebatePhase { return &p }
