package watchdog

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/debatelab/engine/internal/config"
)

// Runner fires Watchdog.Sweep on a fixed cadence: a 10-minute baseline plus
// a tight check 5 minutes after each scheduled debate slot, matching
// spec.md §4.7.
type Runner struct {
	cron *cron.Cron
	wd   *Watchdog
}

// NewRunner builds a watchdog Runner over the given Watchdog.
func NewRunner(wd *Watchdog) *Runner {
	return &Runner{cron: cron.New(cron.WithLocation(time.UTC)), wd: wd}
}

// Start registers the baseline sweep and one post-slot sweep per
// configured debate slot, then starts firing.
func (r *Runner) Start(ctx context.Context, slots []config.SlotTime) error {
	if _, err := r.cron.AddFunc("*/10 * * * *", func() { r.wd.Sweep(ctx) }); err != nil {
		return fmt.Errorf("schedule baseline watchdog sweep: %w", err)
	}

	for _, slot := range slots {
		checkAt := time.Date(0, 1, 1, slot.Hour, slot.Minute, 0, 0, time.UTC).Add(5 * time.Minute)
		spec := fmt.Sprintf("%d %d * * *", checkAt.Minute(), checkAt.Hour())
		if _, err := r.cron.AddFunc(spec, func() { r.wd.Sweep(ctx) }); err != nil {
			return fmt.Errorf("schedule post-slot watchdog sweep for %02d:%02d: %w", slot.Hour, slot.Minute, err)
		}
	}

	r.cron.Start()
	return nil
}

// Stop cancels future sweeps, waiting for any in-flight sweep to finish.
func (r *Runner) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
}
