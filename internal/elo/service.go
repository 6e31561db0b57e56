package elo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/store"
)

// Service applies Elo updates to completed debates.
type Service struct {
	Debates *store.DebateRepo
	Models  *store.ModelRepo
	Topics  *store.TopicRepo
	K       int // spec default 32, see config.EloKFactor
}

// CompletionInput carries the audit sub-phase's output into CompleteDebate.
// It is a plain struct rather than judge.AuditResult so this package does
// not need to import the judge package for three fields.
type CompletionInput struct {
	Scores      store.AuditScores
	Overall     float64
	CompletedAt time.Time
}

// CompleteDebate runs the entire audit-completion step — persisting the
// audit scores, transitioning the Debate to COMPLETED, updating both
// debaters' Elo ratings and win/loss counters, updating the judge's rolling
// average, and marking the Topic DEBATED — as one database transaction.
// spec.md §5 requires this: "these updates must execute within the
// transaction that also transitions the Debate to its next status, so that
// rating and counter changes are atomic with the observable debate
// outcome." A crash or error partway through rolls back every write; no
// partial state (e.g. a COMPLETED debate with unset Elo snapshots) is ever
// observable.
//
// Both debaters' and the judge's rows are locked FOR UPDATE inside the
// transaction before their new values are computed, so two debates sharing
// a model serialize on that model's row instead of losing one update:
// spec.md §5's "row-level locking or serializable isolation" requirement.
func (s *Service) CompleteDebate(ctx context.Context, debate *store.Debate, topicID uuid.UUID, in CompletionInput) (Update, error) {
	if debate.WinnerID == nil {
		return Update{}, fmt.Errorf("debate %s has no winner", debate.ID)
	}

	k := s.K
	if k <= 0 {
		k = DefaultK
	}

	var update Update
	var proBefore, proAfter, conBefore, conAfter int

	err := store.WithTx(ctx, func(q store.Querier) error {
		pro, err := s.Models.GetByIDForUpdate(ctx, q, debate.DebaterProID)
		if err != nil {
			return err
		}
		con, err := s.Models.GetByIDForUpdate(ctx, q, debate.DebaterConID)
		if err != nil {
			return err
		}
		judge, err := s.Models.GetByIDForUpdate(ctx, q, debate.JudgeID)
		if err != nil {
			return err
		}

		proIsWinner := *debate.WinnerID == pro.ID
		proBefore, conBefore = pro.EloRating, con.EloRating

		if proIsWinner {
			update.WinnerOldElo, update.LoserOldElo = pro.EloRating, con.EloRating
			update.WinnerNewElo, update.LoserNewElo = Calculate(pro.EloRating, con.EloRating, k)
			proAfter, conAfter = update.WinnerNewElo, update.LoserNewElo
		} else {
			update.WinnerOldElo, update.LoserOldElo = con.EloRating, pro.EloRating
			update.WinnerNewElo, update.LoserNewElo = Calculate(con.EloRating, pro.EloRating, k)
			proAfter, conAfter = update.LoserNewElo, update.WinnerNewElo
		}

		if err := s.Debates.SaveAudit(ctx, q, debate.ID, in.Scores, in.Overall, in.CompletedAt); err != nil {
			return err
		}
		if err := s.Models.ApplyEloResult(ctx, q, pro.ID, proAfter, proIsWinner); err != nil {
			return err
		}
		if err := s.Models.ApplyEloResult(ctx, q, con.ID, conAfter, !proIsWinner); err != nil {
			return err
		}
		if err := s.Debates.ApplyEloSnapshots(ctx, q, debate.ID, proBefore, proAfter, conBefore, conAfter); err != nil {
			return err
		}

		newAvg := rollingAverage(judge.AvgJudgeScore, judge.TimesJudged, in.Overall)
		if err := s.Models.UpdateRollingJudgeScore(ctx, q, judge.ID, newAvg); err != nil {
			return err
		}

		return s.Topics.MarkDebated(ctx, q, topicID, in.CompletedAt)
	})
	if err != nil {
		return Update{}, err
	}

	debate.AuditScores = &in.Scores
	debate.JudgeScore = &in.Overall
	debate.Status = store.DebateCompleted
	debate.CompletedAt = &in.CompletedAt
	debate.ProEloBefore, debate.ProEloAfter = &proBefore, &proAfter
	debate.ConEloBefore, debate.ConEloAfter = &conBefore, &conAfter

	return update, nil
}

// rollingAverage computes a judge model's new avg_judge_score: an
// incremental running mean applied before times_judged increments, so the
// divisor is always the count including the new observation. Kept as a
// few lines of local arithmetic rather than an import, the same
// reasoning DESIGN.md gives for Calculate.
func rollingAverage(oldAvg *float64, timesJudged int, newScore float64) float64 {
	if oldAvg == nil {
		return newScore
	}
	return *oldAvg + (newScore-*oldAvg)/float64(timesJudged+1)
}
