package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podcast-orchestrator/internal/platform/metrics"
	"podcast-orchestrator/internal/podcast"
)

const (
	// startedProgress is reported as soon as a scene leaves pending.
	startedProgress = 25
	// renderingProgress is reported just before the render call so pollers
	// see movement during a long upstream request.
	renderingProgress = 50
)

// ErrEmptyVideoURL is recorded when the renderer succeeds without a locator.
var ErrEmptyVideoURL = errors.New("no video URL received from renderer")

// Renderer turns a composed scene prompt into a media locator.
type Renderer interface {
	GenerateVideo(ctx context.Context, prompt string, durationSeconds int) (string, error)
}

// Worker drives one scene's JobRecord from pending to a terminal state.
// Its only output is the repository; it never returns results to the caller
// that dispatched it.
type Worker struct {
	repo            Repository
	renderer        Renderer
	log             *slog.Logger
	metrics         *metrics.Metrics
	durationSeconds int
}

// Run renders scene and records every transition for the gen instance of
// sessionID. It returns the terminal status it attempted to write.
func (w *Worker) Run(ctx context.Context, sessionID SessionID, gen Generation, scene podcast.Scene) Status {
	log := w.log.With(slog.String("session_id", string(sessionID)), slog.Int("scene_id", scene.ID))
	start := time.Now()

	w.repo.UpdateScene(sessionID, gen, scene.ID, Processing(startedProgress))

	prompt := BuildVideoPrompt(scene, w.durationSeconds)
	log.Info("generating scene video", slog.String("title", scene.Title))

	w.repo.UpdateScene(sessionID, gen, scene.ID, Checkpoint(renderingProgress))

	videoURL, err := w.render(ctx, prompt)
	if err != nil {
		log.Warn("scene video failed", slog.String("error", err.Error()))
		w.repo.UpdateScene(sessionID, gen, scene.ID, Failed(err.Error()))
		if w.metrics != nil {
			w.metrics.ObserveSceneFailed(time.Since(start))
		}
		return StatusFailed
	}

	w.repo.UpdateScene(sessionID, gen, scene.ID, Completed(videoURL))
	log.Info("scene video completed", slog.Duration("elapsed", time.Since(start)))
	if w.metrics != nil {
		w.metrics.ObserveSceneCompleted(time.Since(start))
	}
	return StatusCompleted
}

// render calls the renderer and converts a panic into an error so that a
// misbehaving scene cannot affect its siblings.
func (w *Worker) render(ctx context.Context, prompt string) (videoURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()

	videoURL, err = w.renderer.GenerateVideo(ctx, prompt, w.durationSeconds)
	if err != nil {
		return "", err
	}
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return "", ErrEmptyVideoURL
	}
	return videoURL, nil
}
