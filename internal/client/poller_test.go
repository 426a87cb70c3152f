package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"podcast-orchestrator/internal/orchestrator"
)

// scriptedFetcher returns the queued responses in order and repeats the last one.
type scriptedFetcher struct {
	mu        sync.Mutex
	responses []fetchResult
	calls     int
}

type fetchResult struct {
	report orchestrator.StatusReport
	err    error
}

func (f *scriptedFetcher) Status(context.Context, string) (orchestrator.StatusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	return f.responses[i].report, f.responses[i].err
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func report(statuses ...orchestrator.Status) orchestrator.StatusReport {
	records := make([]orchestrator.JobRecord, 0, len(statuses))
	for i, st := range statuses {
		rec := orchestrator.JobRecord{SceneID: i + 1, Status: st}
		if st == orchestrator.StatusCompleted {
			rec.Progress = 100
			rec.VideoURL = "https://cdn/v.mp4"
		}
		records = append(records, rec)
	}
	return orchestrator.StatusReport{Videos: records, Progress: orchestrator.Aggregate(records)}
}

func fastPoller(f StatusFetcher) *Poller {
	return &Poller{Fetcher: f, Interval: time.Millisecond, Timeout: 2 * time.Second}
}

const (
	pending    = orchestrator.StatusPending
	processing = orchestrator.StatusProcessing
	completed  = orchestrator.StatusCompleted
	failed     = orchestrator.StatusFailed
)

func TestPoller_succeeds_with_partial_failures(t *testing.T) {
	f := &scriptedFetcher{responses: []fetchResult{
		{report: report(pending, pending, pending, pending, pending)},
		{report: report(processing, processing, processing, processing, processing)},
		{report: report(completed, completed, failed, completed, failed)},
	}}

	var updates int
	res, err := fastPoller(f).Run(context.Background(), "s1", func(orchestrator.StatusReport) { updates++ })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeSucceeded {
		t.Errorf("expected succeeded, got %s", res.Outcome)
	}
	if res.Report.Progress.VideosCompleted != 3 || res.Report.Progress.VideosFailed != 2 {
		t.Errorf("unexpected final progress: %+v", res.Report.Progress)
	}
	if updates != 3 {
		t.Errorf("expected 3 updates, got %d", updates)
	}
}

func TestPoller_all_failed(t *testing.T) {
	f := &scriptedFetcher{responses: []fetchResult{
		{report: report(failed, failed)},
	}}
	res, err := fastPoller(f).Run(context.Background(), "s1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeFailed {
		t.Errorf("expected failed, got %s", res.Outcome)
	}
	if f.callCount() != 1 {
		t.Errorf("first poll is immediate and terminal, expected 1 call, got %d", f.callCount())
	}
}

func TestPoller_swallows_fetch_errors(t *testing.T) {
	f := &scriptedFetcher{responses: []fetchResult{
		{err: ErrNotFound},
		{err: errors.New("connection refused")},
		{report: report(completed)},
	}}
	var updates int
	res, err := fastPoller(f).Run(context.Background(), "s1", func(orchestrator.StatusReport) { updates++ })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeSucceeded {
		t.Errorf("expected succeeded, got %s", res.Outcome)
	}
	if updates != 1 {
		t.Errorf("errors must not reach onUpdate, got %d updates", updates)
	}
}

func TestPoller_times_out(t *testing.T) {
	f := &scriptedFetcher{responses: []fetchResult{
		{report: report(completed, processing)},
	}}
	p := &Poller{Fetcher: f, Interval: time.Millisecond, Timeout: 30 * time.Millisecond}

	res, err := p.Run(context.Background(), "s1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeTimedOut {
		t.Errorf("expected timed out, got %s", res.Outcome)
	}
	if res.Report.Progress.VideosCompleted != 1 {
		t.Errorf("last report should be kept, got %+v", res.Report.Progress)
	}
}

func TestPoller_empty_session_is_not_terminal(t *testing.T) {
	f := &scriptedFetcher{responses: []fetchResult{
		{report: orchestrator.StatusReport{}},
	}}
	p := &Poller{Fetcher: f, Interval: time.Millisecond, Timeout: 20 * time.Millisecond}
	res, err := p.Run(context.Background(), "s1", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != OutcomeTimedOut {
		t.Errorf("expected timed out for a session without records, got %s", res.Outcome)
	}
}

func TestPoller_parent_cancel(t *testing.T) {
	f := &scriptedFetcher{responses: []fetchResult{
		{report: report(processing)},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{Fetcher: f, Interval: time.Millisecond, Timeout: time.Minute}

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(ctx, "s1", nil)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
