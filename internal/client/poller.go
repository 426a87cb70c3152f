package client

import (
	"context"
	"log/slog"
	"time"

	"podcast-orchestrator/internal/orchestrator"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultPollTimeout  = 15 * time.Minute
)

// Outcome is how a polling run ended.
type Outcome string

const (
	// OutcomeSucceeded means every scene is terminal and at least one completed.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means every scene is terminal and none completed.
	OutcomeFailed Outcome = "failed"
	// OutcomeTimedOut means the deadline passed before every scene was terminal.
	OutcomeTimedOut Outcome = "timed_out"
)

// StatusFetcher returns the current status report of a session.
type StatusFetcher interface {
	Status(ctx context.Context, sessionID string) (orchestrator.StatusReport, error)
}

// PollResult is the outcome of a polling run and the last report observed.
type PollResult struct {
	Outcome Outcome
	Report  orchestrator.StatusReport
}

// Poller repeatedly fetches a session's status until every scene is terminal
// or the timeout passes. Zero values for Interval and Timeout use the defaults.
type Poller struct {
	Fetcher  StatusFetcher
	Interval time.Duration
	Timeout  time.Duration
	Log      *slog.Logger
}

// NewPoller returns a Poller with default interval and timeout.
func NewPoller(fetcher StatusFetcher, log *slog.Logger) *Poller {
	return &Poller{Fetcher: fetcher, Interval: DefaultPollInterval, Timeout: DefaultPollTimeout, Log: log}
}

// Run polls immediately and then once per Interval. onUpdate (may be nil) is
// called with every successfully fetched report. Fetch errors are logged and
// retried on the next tick. Run returns ctx.Err() only when the caller's
// context is cancelled; the server keeps rendering either way.
func (p *Poller) Run(ctx context.Context, sessionID string, onUpdate func(orchestrator.StatusReport)) (PollResult, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	log := p.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last orchestrator.StatusReport
	for {
		report, err := p.Fetcher.Status(pollCtx, sessionID)
		if err != nil {
			if pollCtx.Err() == nil {
				log.Debug("status poll failed", slog.String("session_id", sessionID), slog.String("error", err.Error()))
			}
		} else {
			last = report
			if onUpdate != nil {
				onUpdate(report)
			}
			if orchestrator.AllTerminal(report.Videos) {
				outcome := OutcomeFailed
				if orchestrator.AnyCompleted(report.Videos) {
					outcome = OutcomeSucceeded
				}
				return PollResult{Outcome: outcome, Report: report}, nil
			}
		}

		select {
		case <-pollCtx.Done():
			if err := ctx.Err(); err != nil {
				return PollResult{Report: last}, err
			}
			log.Debug("status poll timed out", slog.String("session_id", sessionID), slog.Duration("timeout", timeout))
			return PollResult{Outcome: OutcomeTimedOut, Report: last}, nil
		case <-ticker.C:
		}
	}
}
