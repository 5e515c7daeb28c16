package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"songforge/internal/core/domain"
	"songforge/internal/core/ports"
)

const (
	// DefaultInterval is the pause between status checks.
	DefaultInterval = 10 * time.Second

	// DefaultMaxChecks bounds the attempt budget of one run.
	DefaultMaxChecks = 30
)

// Poller drives a remote task to a terminal classification. The loop state
// is nothing but the task id and kind, both persisted externally, so a
// killed process can reattach later: the poller observes job progress, it
// does not own it.
type Poller struct {
	client    ports.JobClient
	interval  time.Duration
	maxChecks int
	logger    zerolog.Logger
}

// NewPoller creates a Poller. Non-positive interval or maxChecks select the
// defaults. Both are caller-configurable because generation latency varies
// widely by model tier.
func NewPoller(client ports.JobClient, interval time.Duration, maxChecks int, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxChecks <= 0 {
		maxChecks = DefaultMaxChecks
	}
	return &Poller{
		client:    client,
		interval:  interval,
		maxChecks: maxChecks,
		logger:    logger.With().Str("component", "poller").Logger(),
	}
}

// Poll performs status checks until the task reaches a terminal state or
// the attempt budget is consumed.
//
// Transient query failures count against the budget but do not abort the
// loop; a permanent query failure terminates it immediately as failed.
// Exhaustion is a distinct outcome, not an error: the job may still finish,
// and the persisted task id allows a later run to resume. The returned
// error is non-nil only for context cancellation or programming mistakes.
func (p *Poller) Poll(ctx context.Context, kind domain.JobKind, taskID string) (*domain.PollResult, error) {
	log := p.logger.With().Str("kind", string(kind)).Str("task_id", taskID).Logger()

	checks := 0
	for checks < p.maxChecks {
		res, err := p.client.CheckStatus(ctx, kind, taskID)
		checks++
		log.Debug().Int("check", checks).Int("max_checks", p.maxChecks).Msg("status check")

		switch {
		case err == nil:
			if res.Status.Terminal() {
				if res.Status == domain.StatusSucceeded {
					log.Info().Int("checks", checks).Str("result_url", res.ResultURL).Msg("task succeeded")
					return &domain.PollResult{
						Outcome:   domain.OutcomeSucceeded,
						ResultURL: res.ResultURL,
						AudioID:   res.AudioID,
						Checks:    checks,
					}, nil
				}
				log.Warn().Int("checks", checks).Str("detail", res.ErrorDetail).Msg("task failed")
				return &domain.PollResult{
					Outcome:     domain.OutcomeFailed,
					ErrorDetail: res.ErrorDetail,
					Checks:      checks,
				}, nil
			}
			// Still pending, fall through to the wait.

		case domain.IsTransientQuery(err):
			// A wasted attempt: the budget still shrinks so total
			// wall-clock time stays bounded.
			log.Warn().Err(err).Int("check", checks).Msg("transient status check failure")

		default:
			if perm, ok := domain.AsPermanentQuery(err); ok {
				log.Error().Err(err).Int("checks", checks).Msg("task rejected by remote service")
				return &domain.PollResult{
					Outcome:     domain.OutcomeFailed,
					ErrorDetail: perm.Message,
					Checks:      checks,
				}, nil
			}
			return nil, err
		}

		if checks >= p.maxChecks {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	log.Warn().Int("checks", checks).Msg("attempt budget exhausted, task may still be processing")
	return &domain.PollResult{Outcome: domain.OutcomeExhausted, Checks: checks}, nil
}
