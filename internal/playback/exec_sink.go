package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// URLPlaceholder is replaced by the scene URL in ExecSink arguments.
const URLPlaceholder = "{url}"

// ErrNothingLoaded is returned by ExecSink.Play before any Load.
var ErrNothingLoaded = errors.New("no media loaded")

// ExecSink plays each scene by running an external player process, e.g.
// "mpv --really-quiet {url}". The process exiting on its own is the
// end-of-media event. Pause stops the process; Play starts the scene again.
type ExecSink struct {
	args []string
	log  *slog.Logger

	mu      sync.Mutex
	url     string
	cmd     *exec.Cmd
	gen     uint64
	onEnded func()
}

// NewExecSink returns a sink running args, with URLPlaceholder substituted.
// When no argument carries the placeholder the URL is appended.
func NewExecSink(args []string, log *slog.Logger) (*ExecSink, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, errors.New("player command is required")
	}
	args = append([]string(nil), args...)
	hasPlaceholder := false
	for _, a := range args {
		if strings.Contains(a, URLPlaceholder) {
			hasPlaceholder = true
			break
		}
	}
	if !hasPlaceholder {
		args = append(args, URLPlaceholder)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ExecSink{args: args, log: log}, nil
}

// SetEndedHandler implements Sink.
func (s *ExecSink) SetEndedHandler(fn func()) {
	s.mu.Lock()
	s.onEnded = fn
	s.mu.Unlock()
}

// Load stops any running scene and remembers url for the next Play.
func (s *ExecSink) Load(_ context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("empty media url")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.url = url
	return nil
}

// Play starts the player process for the loaded scene. It is a no-op while
// a process is already running.
func (s *ExecSink) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.url == "" {
		return ErrNothingLoaded
	}
	if s.cmd != nil {
		return nil
	}

	args := make([]string, len(s.args))
	for i, a := range s.args {
		args[i] = strings.ReplaceAll(a, URLPlaceholder, s.url)
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", args[0], err)
	}
	s.gen++
	s.cmd = cmd
	go s.wait(cmd, s.gen, s.url)
	return nil
}

// Pause stops the running process, if any.
func (s *ExecSink) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Close stops playback.
func (s *ExecSink) Close() error {
	s.Pause()
	return nil
}

func (s *ExecSink) stopLocked() {
	if s.cmd == nil {
		return
	}
	// Bumping gen marks the process as stopped by us so its exit is not
	// reported as end-of-media.
	s.gen++
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.cmd = nil
}

func (s *ExecSink) wait(cmd *exec.Cmd, gen uint64, url string) {
	err := cmd.Wait()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.cmd = nil
	fn := s.onEnded
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("player exited with error", slog.String("url", url), slog.String("error", err.Error()))
	}
	if fn != nil {
		fn()
	}
}
