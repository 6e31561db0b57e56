// Package selector implements topic and model quartet selection: spec.md
// §4.6.
package selector

import (
	"context"

	"github.com/debatelab/engine/internal/config"
	"github.com/debatelab/engine/internal/store"
)

// TopicSelector picks the next topic for a scheduled debate attempt.
type TopicSelector struct {
	Topics *store.TopicRepo
}

// SelectNext implements hybrid/user_only/backlog_only topic selection.
// excludeCategories carries the scheduler's daily-diversity set (spec.md
// §4.6): seed topics already picked for today's earlier slots are excluded
// from a later slot's backlog pick so one domain doesn't dominate a day.
// It has no effect on the user-vote path, which is never category-filtered.
func (s *TopicSelector) SelectNext(ctx context.Context, mode config.TopicSelectionMode, minUserVotes int, excludeCategories []string) (*store.Topic, error) {
	switch mode {
	case config.ModeUserOnly:
		return s.Topics.TopVotedApprovedUserTopic(ctx, minUserVotes)
	case config.ModeBacklogOnly:
		return s.selectSeedWithFallback(ctx, excludeCategories)
	default: // hybrid
		if t, err := s.Topics.TopVotedApprovedUserTopic(ctx, minUserVotes); err != nil {
			return nil, err
		} else if t != nil {
			return t, nil
		}
		return s.selectSeedWithFallback(ctx, excludeCategories)
	}
}

// selectSeedWithFallback applies the exclusion set first and, if every seed
// topic's category is excluded, falls back to an unfiltered pick rather than
// returning none (diversity is a soft preference, not a hard constraint).
func (s *TopicSelector) selectSeedWithFallback(ctx context.Context, excludeCategories []string) (*store.Topic, error) {
	t, err := s.Topics.RandomPendingSeedTopic(ctx, excludeCategories)
	if err != nil {
		return nil, err
	}
	if t != nil || len(excludeCategories) == 0 {
		return t, nil
	}
	return s.Topics.RandomPendingSeedTopic(ctx, nil)
}
