package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"podcast-orchestrator/internal/platform/metrics"
	"podcast-orchestrator/internal/podcast"
)

// DefaultSceneDuration is the target length in seconds of each scene video.
const DefaultSceneDuration = 30

var (
	// ErrSessionIDRequired is returned when generation is requested without a session id.
	ErrSessionIDRequired = errors.New("session ID is required")

	// ErrNoScenes is returned when generation is requested with an empty scene list.
	ErrNoScenes = errors.New("scenes are required")

	// ErrDuplicateScene is returned when two scenes share an id.
	ErrDuplicateScene = errors.New("duplicate scene id")

	// ErrSessionNotFound is returned by read paths for an unknown session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrScriptWriterUnavailable is returned when no script collaborator is configured.
	ErrScriptWriterUnavailable = errors.New("script generation is not configured")
)

// ScriptWriter produces a podcast script for a topic.
type ScriptWriter interface {
	GenerateScript(ctx context.Context, req podcast.ScriptRequest) (podcast.Script, error)
}

// Ack is returned once a session has been seeded and its workers dispatched.
// It does not promise that any scene will succeed.
type Ack struct {
	SessionID   SessionID `json:"sessionId"`
	TotalScenes int       `json:"totalScenes"`
}

// Service coordinates script generation, scene dispatch and status reads.
type Service struct {
	repo    Repository
	worker  *Worker
	scripts ScriptWriter
	log     *slog.Logger
	metrics *metrics.Metrics
	baseCtx context.Context

	wg sync.WaitGroup
}

// Option customizes the Service.
type Option func(*Service)

// WithLogger sets the logger used by the service and its workers.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics enables metric recording. Nil disables it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithScriptWriter sets the script generation collaborator.
func WithScriptWriter(w ScriptWriter) Option {
	return func(s *Service) {
		s.scripts = w
	}
}

// WithSceneDuration overrides the target scene length in seconds.
func WithSceneDuration(seconds int) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.worker.durationSeconds = seconds
		}
	}
}

// WithBaseContext sets the context workers derive from. Cancelling it aborts
// in-flight renders, which is how the server stops work on shutdown.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Service) {
		if ctx != nil {
			s.baseCtx = ctx
		}
	}
}

// NewService returns a Service that stores state in repo and renders scenes
// with renderer.
func NewService(repo Repository, renderer Renderer, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		log:     slog.New(slog.DiscardHandler),
		baseCtx: context.Background(),
		worker: &Worker{
			repo:            repo,
			renderer:        renderer,
			durationSeconds: DefaultSceneDuration,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.worker.log = s.log
	s.worker.metrics = s.metrics
	return s
}

// GenerateScript validates req and asks the script collaborator for a
// script. The result is checked before it is returned: it must carry exactly
// podcast.SceneCount scenes, and scenes without an id are numbered by position.
func (s *Service) GenerateScript(ctx context.Context, req podcast.ScriptRequest) (podcast.Script, error) {
	if err := req.Validate(); err != nil {
		return podcast.Script{}, err
	}
	if s.scripts == nil {
		return podcast.Script{}, ErrScriptWriterUnavailable
	}

	req = req.Normalize()
	s.log.Info("generating script", slog.String("topic", req.Topic), slog.String("style", string(req.Style)))

	script, err := s.scripts.GenerateScript(ctx, req)
	if err != nil {
		return podcast.Script{}, fmt.Errorf("script generation failed: %w", err)
	}
	podcast.NumberScenes(script.Scenes)
	if err := script.Validate(); err != nil {
		return podcast.Script{}, fmt.Errorf("script generation failed: %w", err)
	}

	s.log.Info("script generated", slog.String("title", script.Title))
	return script, nil
}

// StartGeneration seeds one pending record per scene, in input order, and
// launches one worker per scene. It returns as soon as the workers are
// dispatched; progress is observable only through Status.
func (s *Service) StartGeneration(sessionID SessionID, scenes []podcast.Scene) (Ack, error) {
	sessionID = SessionID(strings.TrimSpace(string(sessionID)))
	if sessionID == "" {
		return Ack{}, ErrSessionIDRequired
	}
	if len(scenes) == 0 {
		return Ack{}, ErrNoScenes
	}

	scenes = append([]podcast.Scene(nil), scenes...)
	podcast.NumberScenes(scenes)

	seen := make(map[int]struct{}, len(scenes))
	records := make([]JobRecord, 0, len(scenes))
	for _, scene := range scenes {
		if _, dup := seen[scene.ID]; dup {
			return Ack{}, fmt.Errorf("%w: %d", ErrDuplicateScene, scene.ID)
		}
		seen[scene.ID] = struct{}{}
		records = append(records, JobRecord{SceneID: scene.ID, Status: StatusPending})
	}

	gen := s.repo.CreateSession(sessionID, records)
	s.log.Info("starting video generation",
		slog.String("session_id", string(sessionID)),
		slog.Int("scenes", len(scenes)))
	if s.metrics != nil {
		s.metrics.IncSessionsStarted()
	}

	s.dispatch(sessionID, gen, scenes)

	return Ack{SessionID: sessionID, TotalScenes: len(scenes)}, nil
}

// dispatch starts the scene workers and a watcher that logs the batch outcome.
func (s *Service) dispatch(sessionID SessionID, gen Generation, scenes []podcast.Scene) {
	// Workers are tied to the service lifetime, never to the request that
	// started them.
	ctx := s.baseCtx

	results := make([]Status, len(scenes))
	var batch sync.WaitGroup
	batch.Add(len(scenes))
	s.wg.Add(len(scenes) + 1)

	for i, scene := range scenes {
		go func() {
			defer s.wg.Done()
			defer batch.Done()
			results[i] = s.worker.Run(ctx, sessionID, gen, scene)
		}()
	}

	go func() {
		defer s.wg.Done()
		batch.Wait()
		completed, failed := 0, 0
		for _, st := range results {
			if st == StatusCompleted {
				completed++
			} else {
				failed++
			}
		}
		s.log.Info("all video generation tasks finished",
			slog.String("session_id", string(sessionID)),
			slog.Int("completed", completed),
			slog.Int("failed", failed))
	}()
}

// Status returns the records and aggregate progress of a session.
func (s *Service) Status(sessionID SessionID) (StatusReport, error) {
	records, ok := s.repo.GetSession(sessionID)
	if !ok {
		return StatusReport{}, ErrSessionNotFound
	}
	return StatusReport{Videos: records, Progress: Aggregate(records)}, nil
}

// DeleteSession removes one session from tracking. In-flight workers for it
// keep running; their updates become no-ops.
func (s *Service) DeleteSession(sessionID SessionID) error {
	if !s.repo.DeleteSession(sessionID) {
		return ErrSessionNotFound
	}
	s.log.Info("session deleted", slog.String("session_id", string(sessionID)))
	if s.metrics != nil {
		s.metrics.AddSessionsEvicted(1)
	}
	return nil
}

// ClearSessions removes every session and returns how many were removed.
func (s *Service) ClearSessions() int {
	n := s.repo.Clear()
	s.log.Info("sessions cleared", slog.Int("count", n))
	if s.metrics != nil {
		s.metrics.AddSessionsEvicted(n)
	}
	return n
}

// ActiveSessionCount returns the number of sessions still generating.
func (s *Service) ActiveSessionCount() int {
	return s.repo.ActiveSessionCount()
}

// Wait blocks until every dispatched worker has returned.
func (s *Service) Wait() {
	s.wg.Wait()
}
