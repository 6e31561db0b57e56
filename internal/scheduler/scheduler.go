package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/debatelab/engine/internal/config"
)

// Scheduler fires exactly one debate attempt at each configured UTC slot:
// spec.md §4.5. It replaces the source's module-level global with an
// explicit value whose lifetime is owned by the process (spec.md §9,
// "Global scheduler singleton").
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	logger *slog.Logger

	mu              sync.Mutex
	dailyDate       string // YYYY-MM-DD, UTC; reset point for categoriesToday
	categoriesToday []string
}

// New builds a Scheduler over the given Runner. The ctx later passed to
// Start is the root context threaded through every fired job; cancelling it
// lets an in-flight debate's suspension points observe shutdown, though per
// spec.md §5 an in-flight LLM call is allowed to finish since it is itself
// bounded.
func New(runner *Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		runner: runner,
		logger: logger,
	}
}

// Start registers one cron entry per configured slot and starts firing.
// Each entry's job spawns its own goroutine so that a slow debate never
// delays a later slot's firing; every debate owns its own connection
// checkouts and runs independently of any other in-flight debate.
func (s *Scheduler) Start(ctx context.Context, slots []config.SlotTime) error {
	for _, slot := range slots {
		spec := fmt.Sprintf("%d %d * * *", slot.Minute, slot.Hour)
		hour, minute := slot.Hour, slot.Minute
		if _, err := s.cron.AddFunc(spec, func() { s.fire(ctx, hour, minute) }); err != nil {
			return fmt.Errorf("schedule debate slot %02d:%02d: %w", hour, minute, err)
		}
		s.logger.Info("scheduled debate slot", "hour", hour, "minute", minute)
	}
	s.cron.Start()
	return nil
}

// Stop cancels future firings. Jobs already running are not interrupted;
// the caller's ctx governs their suspension points.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Scheduler) fire(ctx context.Context, hour, minute int) {
	s.logger.Info("firing scheduled debate attempt", "hour", hour, "minute", minute)

	exclude := s.categoriesForToday()
	d, err := s.runner.RunSingleDebate(ctx, exclude)
	if err != nil {
		s.logger.Error("scheduled debate attempt failed", "hour", hour, "minute", minute, "error", err)
		return
	}
	if d == nil {
		s.logger.Warn("no topic available for scheduled debate attempt", "hour", hour, "minute", minute)
		return
	}
	s.recordCategoryForToday(ctx, d.TopicID)
	s.logger.Info("scheduled debate attempt completed", "debate_id", d.ID, "topic_id", d.TopicID)
}

// categoriesForToday returns the categories already selected for today's
// earlier slots (UTC calendar day), resetting the tracked set across a day
// boundary: spec.md §4.6's "daily diversity" exclusion.
func (s *Scheduler) categoriesForToday() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := time.Now().UTC().Format("2006-01-02")
	if s.dailyDate != today {
		s.dailyDate = today
		s.categoriesToday = nil
	}
	out := make([]string, len(s.categoriesToday))
	copy(out, s.categoriesToday)
	return out
}

// recordCategoryForToday adds the just-selected topic's category to today's
// tracked set, so the next slot's selection excludes it. A lookup failure is
// logged and ignored: diversity tracking is a soft preference, never a
// reason to fail an otherwise-completed debate.
func (s *Scheduler) recordCategoryForToday(ctx context.Context, topicID uuid.UUID) {
	topic, err := s.runner.Topics.GetByID(ctx, topicID)
	if err != nil {
		s.logger.Warn("could not load topic to record daily category", "topic_id", topicID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoriesToday = append(s.categoriesToday, topic.Category)
}
