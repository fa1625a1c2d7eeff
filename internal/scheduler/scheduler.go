package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// WakeFunc is invoked at every interval; it stands in for the push
// notification a hosted deployment would receive when new tariffs publish.
type WakeFunc func(ctx context.Context) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	AlignToStart bool
	StartupDelay time.Duration
}

// Scheduler periodically wakes the ingestion worker.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking wake at each interval until ctx is cancelled. With
// AlignToStart the ticks land on interval boundaries (an hourly interval
// fires on the hour).
func (s *Scheduler) Run(ctx context.Context, wake WakeFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	next := s.nextWake(time.Now().UTC())
	for {
		delay := time.Until(next)
		if delay < 0 {
			next = s.nextWake(time.Now().UTC())
			delay = time.Until(next)
		}

		timer := time.NewTimer(delay)
		s.logger.Debug().Time("next_wake", next).Msg("waiting for next wake")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}

		s.logger.Info().Time("wake", next).Msg("waking ingestion")
		if err := wake(ctx); err != nil {
			s.logger.Error().Err(err).Msg("wake failed")
		}

		next = next.Add(s.opts.Interval)
	}
}

func (s *Scheduler) nextWake(now time.Time) time.Time {
	if !s.opts.AlignToStart {
		return now.Add(s.opts.Interval)
	}
	aligned := now.Truncate(s.opts.Interval)
	if !aligned.After(now) {
		aligned = aligned.Add(s.opts.Interval)
	}
	return aligned
}
