package selector

import (
	"testing"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/store"
)

func TestFilterAuditorCandidates_AllowsReuseWithThreeModels(t *testing.T) {
	pro := &store.Model{ID: uuid.New()}
	con := &store.Model{ID: uuid.New()}
	judge := &store.Model{ID: uuid.New()}
	pool := []*store.Model{pro, con, judge}

	candidates := filterAuditorCandidates(pool, pro, con, judge, true)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 auditor candidates with reuse allowed, got %d", len(candidates))
	}
}

func TestFilterAuditorCandidates_ExcludesDebatersWithoutReuse(t *testing.T) {
	pro := &store.Model{ID: uuid.New()}
	con := &store.Model{ID: uuid.New()}
	judge := &store.Model{ID: uuid.New()}
	fourth := &store.Model{ID: uuid.New()}
	pool := []*store.Model{pro, con, judge, fourth}

	candidates := filterAuditorCandidates(pool, pro, con, judge, false)
	if len(candidates) != 1 || candidates[0].ID != fourth.ID {
		t.Fatalf("expected only the fourth model as auditor candidate, got %v", candidates)
	}
}

func TestHighestAuditScore_NullsLast(t *testing.T) {
	withScore := 7.5
	a := &store.Model{ID: uuid.New(), AvgJudgeScore: nil}
	b := &store.Model{ID: uuid.New(), AvgJudgeScore: &withScore}

	best := highestAuditScore([]*store.Model{a, b})
	if best.ID != b.ID {
		t.Errorf("expected model with a score to win over a nil score")
	}
}

func TestUnorderedPair_SymmetricAcrossOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	if unorderedPair(a, b) != unorderedPair(b, a) {
		t.Error("unorderedPair should be order-independent")
	}
}
