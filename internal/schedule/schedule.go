// Package schedule runs a job on a cron expression until cancelled.
package schedule

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Parser accepts standard five-field expressions and descriptors like @hourly
var Parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Scheduler runs a Job on a cron schedule. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	spec   string
	job    Job
	logger zerolog.Logger
	runs   atomic.Int64
}

// New validates spec and returns a scheduler for job
func New(spec string, job Job, logger zerolog.Logger) (*Scheduler, error) {
	if _, err := Parser.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return &Scheduler{
		spec:   spec,
		job:    job,
		logger: logger.With().Str("component", "schedule").Str("cron", spec).Logger(),
	}, nil
}

// Runs returns how many times the job has started
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

// Run blocks until ctx is done, then waits for an in-flight job to finish
func (s *Scheduler) Run(ctx context.Context) error {
	adapter := cronLogger{s.logger}
	c := cron.New(
		cron.WithParser(Parser),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	id, err := c.AddFunc(s.spec, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	c.Start()
	s.logger.Info().Time("next", c.Entry(id).Next).Msg("scheduler started")

	<-ctx.Done()
	s.logger.Info().Msg("stopping scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n := s.runs.Add(1)
	log := s.logger.With().Int64("tick", n).Logger()
	log.Info().Msg("scheduled run starting")
	if err := s.job(ctx); err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
		return
	}
	log.Info().Msg("scheduled run finished")
}

// cronLogger routes cron's own logging through zerolog
type cronLogger struct {
	logger zerolog.Logger
}

// Info implements cron.Logger.
func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Error implements cron.Logger.
func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
