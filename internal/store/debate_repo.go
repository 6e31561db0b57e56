package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DebateRepo reads and mutates Debate rows.
type DebateRepo struct{}

func (r *DebateRepo) Create(ctx context.Context, d *Debate) error {
	_, err := GetPool().Exec(ctx, `
		INSERT INTO debates (id, topic_id, debater_pro_id, debater_con_id, judge_id, auditor_id,
		                      status, scheduled_at, created_at, is_blinded)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		d.ID, d.TopicID, d.DebaterProID, d.DebaterConID, d.JudgeID, d.AuditorID,
		d.Status, d.ScheduledAt, d.CreatedAt, d.IsBlinded)
	if err != nil {
		return fmt.Errorf("create debate %s: %w", d.ID, err)
	}
	return nil
}

// UpdateQuartet rewrites all four role pointers on an existing debate and
// resets its status to SCHEDULED, for a whole-debate restart after a content
// filter or timeout (single-role substitution uses SubstituteRole). It never
// rewrites past transcript entries.
func (r *DebateRepo) UpdateQuartet(ctx context.Context, id uuid.UUID, pro, con, judge, auditor uuid.UUID) error {
	_, err := GetPool().Exec(ctx, `
		UPDATE debates SET debater_pro_id=$2, debater_con_id=$3, judge_id=$4, auditor_id=$5, status=$6
		WHERE id = $1`, id, pro, con, judge, auditor, DebateScheduled)
	if err != nil {
		return fmt.Errorf("update quartet for debate %s: %w", id, err)
	}
	return nil
}

// SubstituteRole rewrites a single role pointer without touching the
// others, used for an in-flight content-filter substitution.
func (r *DebateRepo) SubstituteRole(ctx context.Context, id uuid.UUID, role string, newModelID uuid.UUID) error {
	col, ok := roleColumn(role)
	if !ok {
		return fmt.Errorf("unknown role %q", role)
	}
	_, err := GetPool().Exec(ctx, fmt.Sprintf(`UPDATE debates SET %s = $2 WHERE id = $1`, col), id, newModelID)
	if err != nil {
		return fmt.Errorf("substitute role %s on debate %s: %w", role, id, err)
	}
	return nil
}

func roleColumn(role string) (string, bool) {
	switch role {
	case "debater_pro":
		return "debater_pro_id", true
	case "debater_con":
		return "debater_con_id", true
	case "judge":
		return "judge_id", true
	case "auditor":
		return "auditor_id", true
	}
	return "", false
}

func (r *DebateRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status DebateStatus) error {
	_, err := GetPool().Exec(ctx, `UPDATE debates SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update status for debate %s: %w", id, err)
	}
	return nil
}

// SaveJudgment persists the judgment rubric totals and category breakdown.
func (r *DebateRepo) SaveJudgment(ctx context.Context, id uuid.UUID, winner uuid.UUID, proScore, conScore int, proCat, conCat CategoryScores) error {
	_, err := GetPool().Exec(ctx, `
		UPDATE debates SET
			winner_id = $2, pro_score = $3, con_score = $4,
			pro_logical_consistency = $5, pro_evidence = $6, pro_persuasiveness = $7, pro_engagement = $8,
			con_logical_consistency = $9, con_evidence = $10, con_persuasiveness = $11, con_engagement = $12,
			status = $13
		WHERE id = $1`,
		id, winner, proScore, conScore,
		proCat.LogicalConsistency, proCat.Evidence, proCat.Persuasiveness, proCat.Engagement,
		conCat.LogicalConsistency, conCat.Evidence, conCat.Persuasiveness, conCat.Engagement,
		DebateJudging)
	if err != nil {
		return fmt.Errorf("save judgment for debate %s: %w", id, err)
	}
	return nil
}

// SaveAudit persists the audit sub-scores and overall, and completes the
// debate. q is the transaction that also applies the Elo/rating changes for
// this debate's outcome, so the COMPLETED transition is never observable
// without them: spec.md §5.
func (r *DebateRepo) SaveAudit(ctx context.Context, q Querier, id uuid.UUID, scores AuditScores, overall float64, completedAt time.Time) error {
	_, err := q.Exec(ctx, `
		UPDATE debates SET
			audit_accuracy=$2, audit_fairness=$3, audit_thoroughness=$4, audit_reasoning_quality=$5,
			judge_score=$6, status=$7, completed_at=$8
		WHERE id = $1`,
		id, scores.Accuracy, scores.Fairness, scores.Thoroughness, scores.ReasoningQuality,
		overall, DebateCompleted, completedAt)
	if err != nil {
		return fmt.Errorf("save audit for debate %s: %w", id, err)
	}
	return nil
}

// ApplyEloSnapshots records before/after elo on the debate row. q must be
// the same transaction as SaveAudit: spec.md §5.
func (r *DebateRepo) ApplyEloSnapshots(ctx context.Context, q Querier, id uuid.UUID, proBefore, proAfter, conBefore, conAfter int) error {
	_, err := q.Exec(ctx, `
		UPDATE debates SET pro_elo_before=$2, pro_elo_after=$3, con_elo_before=$4, con_elo_after=$5
		WHERE id = $1`, id, proBefore, proAfter, conBefore, conAfter)
	if err != nil {
		return fmt.Errorf("apply elo snapshots for debate %s: %w", id, err)
	}
	return nil
}

// SaveAnalysisMetadata overwrites the free-form metadata column (used to
// store the accumulated content-filter excuse log).
func (r *DebateRepo) SaveAnalysisMetadata(ctx context.Context, id uuid.UUID, metadata map[string]interface{}) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal analysis metadata for debate %s: %w", id, err)
	}
	_, err = GetPool().Exec(ctx, `UPDATE debates SET analysis_metadata = $2 WHERE id = $1`, id, raw)
	if err != nil {
		return fmt.Errorf("save analysis metadata for debate %s: %w", id, err)
	}
	return nil
}

func (r *DebateRepo) GetByID(ctx context.Context, id uuid.UUID) (*Debate, error) {
	d := &Debate{}
	var metadataRaw []byte
	var proLC, proEv, proPe, proEn *int
	var conLC, conEv, conPe, conEn *int
	var auAc, auFa, auTh, auRq *int

	err := GetPool().QueryRow(ctx, `
		SELECT id, topic_id, debater_pro_id, debater_con_id, judge_id, auditor_id, winner_id,
		       pro_score, con_score, judge_score,
		       pro_logical_consistency, pro_evidence, pro_persuasiveness, pro_engagement,
		       con_logical_consistency, con_evidence, con_persuasiveness, con_engagement,
		       audit_accuracy, audit_fairness, audit_thoroughness, audit_reasoning_quality,
		       pro_elo_before, pro_elo_after, con_elo_before, con_elo_after,
		       status, scheduled_at, started_at, completed_at, created_at, analysis_metadata, is_blinded
		FROM debates WHERE id = $1`, id).Scan(
		&d.ID, &d.TopicID, &d.DebaterProID, &d.DebaterConID, &d.JudgeID, &d.AuditorID, &d.WinnerID,
		&d.ProScore, &d.ConScore, &d.JudgeScore,
		&proLC, &proEv, &proPe, &proEn,
		&conLC, &conEv, &conPe, &conEn,
		&auAc, &auFa, &auTh, &auRq,
		&d.ProEloBefore, &d.ProEloAfter, &d.ConEloBefore, &d.ConEloAfter,
		&d.Status, &d.ScheduledAt, &d.StartedAt, &d.CompletedAt, &d.CreatedAt, &metadataRaw, &d.IsBlinded)
	if err != nil {
		return nil, fmt.Errorf("get debate %s: %w", id, err)
	}
	if len(metadataRaw) > 0 {
		_ = json.Unmarshal(metadataRaw, &d.AnalysisMetadata)
	}
	if proLC != nil {
		d.ProCategoryScores = &CategoryScores{*proLC, deref(proEv), deref(proPe), deref(proEn)}
	}
	if conLC != nil {
		d.ConCategoryScores = &CategoryScores{*conLC, deref(conEv), deref(conPe), deref(conEn)}
	}
	if auAc != nil {
		d.AuditScores = &AuditScores{*auAc, deref(auFa), deref(auTh), deref(auRq)}
	}
	return d, nil
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// StuckInJudging returns debates in JUDGING status whose started_at (or, if
// null, scheduled_at) is older than the given cutoff.
func (r *DebateRepo) StuckInJudging(ctx context.Context, cutoff time.Time) ([]*Debate, error) {
	rows, err := GetPool().Query(ctx, `
		SELECT id FROM debates
		WHERE status = $1 AND COALESCE(started_at, scheduled_at) < $2`, DebateJudging, cutoff)
	if err != nil {
		return nil, fmt.Errorf("stuck in judging: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stuck debate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*Debate, 0, len(ids))
	for _, id := range ids {
		d, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// RecentMatchups returns the set of (pro,con) unordered pairs used within
// the cutoff window, for the recency constraint.
func (r *DebateRepo) RecentMatchups(ctx context.Context, since time.Time) (map[[2]uuid.UUID]bool, error) {
	rows, err := GetPool().Query(ctx,
		`SELECT debater_pro_id, debater_con_id FROM debates WHERE created_at >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("recent matchups: %w", err)
	}
	defer rows.Close()

	matchups := make(map[[2]uuid.UUID]bool)
	for rows.Next() {
		var pro, con uuid.UUID
		if err := rows.Scan(&pro, &con); err != nil {
			return nil, fmt.Errorf("scan matchup: %w", err)
		}
		matchups[unorderedPair(pro, con)] = true
	}
	return matchups, rows.Err()
}

func unorderedPair(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() < b.String() {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}

