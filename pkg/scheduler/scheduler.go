// Package scheduler fires the daily check at a configured wall-clock
// time in a configured IANA timezone.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shelfwatch/shelfwatch/pkg/model"
)

// actionTimeout bounds a single firing of the scheduled action.
const actionTimeout = 2 * time.Minute

// Spec is the daily schedule: a time-of-day plus an IANA timezone.
// Immutable after process start.
type Spec struct {
	Hour     int
	Minute   int
	Second   int
	Timezone string
}

func (s Spec) validate() error {
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("hour %d out of range", s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("minute %d out of range", s.Minute)
	}
	if s.Second < 0 || s.Second > 59 {
		return fmt.Errorf("second %d out of range", s.Second)
	}
	return nil
}

// Action is the logical check the scheduler drives. The manual trigger
// surface invokes the same action; the two paths are indistinguishable
// to it, and the daily guard is what prevents double effects.
type Action func(ctx context.Context) (model.CheckResult, error)

// Scheduler runs an Action once per day. The cron engine handles DST
// transitions in the configured zone; a single tick never double-fires.
type Scheduler struct {
	cron   *cron.Cron
	action Action
	logger *slog.Logger
}

// New builds a scheduler from the spec. An invalid time-of-day or an
// unknown timezone is a configuration error.
func New(spec Spec, action Action, logger *slog.Logger) (*Scheduler, error) {
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("schedule spec: %w", err)
	}

	loc, err := time.LoadLocation(spec.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", spec.Timezone, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(
			cron.Second|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow,
		)),
	)

	s := &Scheduler{
		cron:   c,
		action: action,
		logger: logger,
	}

	// The CRON_TZ prefix pins the expression to the configured zone;
	// without it the parser binds the schedule to time.Local and
	// WithLocation has no effect on the firing time.
	expr := fmt.Sprintf("CRON_TZ=%s %d %d %d * * *", spec.Timezone, spec.Second, spec.Minute, spec.Hour)
	if _, err := c.AddFunc(expr, s.fire); err != nil {
		return nil, fmt.Errorf("register schedule: %w", err)
	}

	return s, nil
}

// Start begins the timer. Returns immediately; firings run on the cron
// goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "next_run", s.NextRun())
}

// Stop halts the timer and waits for an in-flight firing to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// NextRun returns the next scheduled firing time.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(time.Now())
}

func (s *Scheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	result, err := s.action(ctx)
	if err != nil {
		// Errors never crash the daemon; the next tick or a manual
		// trigger is the retry.
		s.logger.Error("scheduled check failed", "error", err)
		return
	}
	s.logger.Info("scheduled check complete", "result", string(result))
}
