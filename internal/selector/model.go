package selector

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/debatelab/engine/internal/store"
)

const maxShuffleAttempts = 50

// ModelSelector picks quartets and mid-debate replacements.
type ModelSelector struct {
	Models  *store.ModelRepo
	Debates *store.DebateRepo
}

// Quartet is the four role bindings for one debate.
type Quartet struct {
	Pro, Con, Judge, Auditor *store.Model
}

// SelectQuartet implements spec.md §4.6: all four roles distinct unless
// fewer than 4 models are available (auditor may then duplicate a
// debater, judge must still be distinct); the (pro,con) pair must not
// repeat a matchup from the last cooldownDays; auditor prefers the
// highest rolling audit score; up to 50 shuffle attempts before falling
// back to any valid combination.
func (s *ModelSelector) SelectQuartet(ctx context.Context, excludeIDs map[uuid.UUID]bool, cooldownDays int) (*Quartet, error) {
	models, err := s.Models.ListActive(ctx, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("list active models: %w", err)
	}
	if len(models) < 3 {
		return nil, nil
	}

	allowAuditorReuse := len(models) < 4

	cutoff := time.Now().UTC().AddDate(0, 0, -cooldownDays)
	recentMatchups, err := s.Debates.RecentMatchups(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent matchups: %w", err)
	}

	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		shuffled := make([]*store.Model, len(models))
		copy(shuffled, models)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		pro, con := shuffled[0], shuffled[1]
		if recentMatchups[unorderedPair(pro.ID, con.ID)] {
			continue
		}

		judgeCandidates := shuffled[2:]
		if len(judgeCandidates) == 0 {
			continue
		}
		judge := judgeCandidates[0]

		auditorCandidates := filterAuditorCandidates(shuffled, pro, con, judge, allowAuditorReuse)
		if len(auditorCandidates) == 0 {
			continue
		}
		auditor := highestAuditScore(auditorCandidates)

		return &Quartet{Pro: pro, Con: con, Judge: judge, Auditor: auditor}, nil
	}

	// Could not avoid recent matchups in the attempt budget; fall back to
	// any valid combination.
	shuffled := make([]*store.Model, len(models))
	copy(shuffled, models)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	if len(shuffled) >= 4 {
		return &Quartet{Pro: shuffled[0], Con: shuffled[1], Judge: shuffled[2], Auditor: shuffled[3]}, nil
	}
	return &Quartet{Pro: shuffled[0], Con: shuffled[1], Judge: shuffled[2], Auditor: shuffled[0]}, nil
}

func filterAuditorCandidates(pool []*store.Model, pro, con, judge *store.Model, allowReuse bool) []*store.Model {
	var out []*store.Model
	for _, m := range pool {
		if m.ID == judge.ID {
			continue
		}
		if !allowReuse && (m.ID == pro.ID || m.ID == con.ID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func highestAuditScore(candidates []*store.Model) *store.Model {
	sort.SliceStable(candidates, func(i, j int) bool {
		return score(candidates[i]) > score(candidates[j])
	})
	return candidates[0]
}

func score(m *store.Model) float64 {
	if m.AvgJudgeScore == nil {
		return -1
	}
	return *m.AvgJudgeScore
}

func unorderedPair(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() < b.String() {
		return [2]uuid.UUID{a, b}
	}
	return [2]uuid.UUID{b, a}
}

// SelectReplacement picks the highest-Elo active model not in exclude, for
// either a mid-debate content-filter substitution or a judge/auditor
// conflict-of-interest-constrained substitution. Returns nil if none
// exist.
func (s *ModelSelector) SelectReplacement(ctx context.Context, exclude map[uuid.UUID]bool) (*store.Model, error) {
	models, err := s.Models.ListActive(ctx, exclude)
	if err != nil {
		return nil, fmt.Errorf("list active models: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	sort.SliceStable(models, func(i, j int) bool { return models[i].EloRating > models[j].EloRating })
	return models[0], nil
}
