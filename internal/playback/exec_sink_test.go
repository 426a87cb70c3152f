package playback

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestNewExecSink(t *testing.T) {
	if _, err := NewExecSink(nil, nil); err == nil {
		t.Error("expected error for empty command")
	}
	s, err := NewExecSink([]string{"mpv", "--really-quiet"}, nil)
	if err != nil {
		t.Fatalf("NewExecSink: %v", err)
	}
	if got := s.args[len(s.args)-1]; got != URLPlaceholder {
		t.Errorf("expected url placeholder appended, got %v", s.args)
	}
}

func TestExecSink_natural_exit_fires_ended(t *testing.T) {
	requireShell(t)
	s, err := NewExecSink([]string{"sh", "-c", "exit 0", "sh", URLPlaceholder}, nil)
	if err != nil {
		t.Fatalf("NewExecSink: %v", err)
	}
	ended := make(chan struct{}, 1)
	s.SetEndedHandler(func() { ended <- struct{}{} })

	ctx := context.Background()
	if err := s.Play(ctx); !errors.Is(err, ErrNothingLoaded) {
		t.Fatalf("expected ErrNothingLoaded, got %v", err)
	}
	if err := s.Load(ctx, "https://cdn.example/1.mp4"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}

	select {
	case <-ended:
	case <-time.After(5 * time.Second):
		t.Fatal("ended handler not called")
	}
}

func TestExecSink_pause_does_not_fire_ended(t *testing.T) {
	requireShell(t)
	s, err := NewExecSink([]string{"sh", "-c", "sleep 10", "sh", URLPlaceholder}, nil)
	if err != nil {
		t.Fatalf("NewExecSink: %v", err)
	}
	ended := make(chan struct{}, 1)
	s.SetEndedHandler(func() { ended <- struct{}{} })

	ctx := context.Background()
	_ = s.Load(ctx, "https://cdn.example/1.mp4")
	if err := s.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	s.Pause()

	select {
	case <-ended:
		t.Fatal("pause must not be reported as end of media")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestExecSink_start_failure(t *testing.T) {
	s, err := NewExecSink([]string{"/nonexistent/player-binary"}, nil)
	if err != nil {
		t.Fatalf("NewExecSink: %v", err)
	}
	ctx := context.Background()
	_ = s.Load(ctx, "https://cdn.example/1.mp4")
	if err := s.Play(ctx); err == nil {
		t.Fatal("expected start error")
	}
}

func TestExecSink_drives_player(t *testing.T) {
	requireShell(t)
	s, err := NewExecSink([]string{"sh", "-c", "exit 0", "sh", URLPlaceholder}, nil)
	if err != nil {
		t.Fatalf("NewExecSink: %v", err)
	}
	ctx := context.Background()
	p := NewPlayer(completedRecords(1, 2))
	done := make(chan struct{})
	p.OnPlaylistEnd(func() { close(done) })

	if err := p.Initialize(ctx, s); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := p.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("playlist did not finish")
	}
	if p.State() != StateIdle {
		t.Errorf("expected idle after end, got %s", p.State())
	}
}
