package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"podcast-orchestrator/internal/podcast"
)

func testScenes(titles ...string) []podcast.Scene {
	scenes := make([]podcast.Scene, 0, len(titles))
	for i, title := range titles {
		scenes = append(scenes, podcast.Scene{
			ID:              i + 1,
			Title:           title,
			Dialogue:        "line",
			VisualDirection: "wide shot",
		})
	}
	return scenes
}

// titleRenderer fails any scene whose title starts with "fail".
func titleRenderer() Renderer {
	return renderFunc(func(_ context.Context, prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "Scene Title: fail") {
			return "", errors.New("render rejected")
		}
		return "https://cdn.example/" + fmt.Sprint(len(prompt)) + ".mp4", nil
	})
}

type fakeScriptWriter struct {
	script podcast.Script
	err    error
	got    podcast.ScriptRequest
}

func (f *fakeScriptWriter) GenerateScript(_ context.Context, req podcast.ScriptRequest) (podcast.Script, error) {
	f.got = req
	return f.script, f.err
}

func TestService_StartGeneration_validation(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, titleRenderer())

	if _, err := svc.StartGeneration("", testScenes("a")); !errors.Is(err, ErrSessionIDRequired) {
		t.Errorf("expected ErrSessionIDRequired, got %v", err)
	}
	if _, err := svc.StartGeneration("s1", nil); !errors.Is(err, ErrNoScenes) {
		t.Errorf("expected ErrNoScenes, got %v", err)
	}

	dup := testScenes("a", "b")
	dup[1].ID = 1
	if _, err := svc.StartGeneration("s1", dup); !errors.Is(err, ErrDuplicateScene) {
		t.Errorf("expected ErrDuplicateScene, got %v", err)
	}

	if _, ok := repo.GetSession("s1"); ok {
		t.Error("no session may be created when validation fails")
	}

	ack, err := svc.StartGeneration("  s2 ", testScenes("a"))
	if err != nil || ack.SessionID != "s2" {
		t.Fatalf("expected trimmed session id, got %+v %v", ack, err)
	}
	if _, ok := repo.GetSession("s2"); !ok {
		t.Error("session should be stored under the trimmed id")
	}
	svc.Wait()
}

func TestService_StartGeneration_returns_before_rendering(t *testing.T) {
	repo := NewInMemoryRepository()
	release := make(chan struct{})
	var started atomic.Int32
	svc := NewService(repo, renderFunc(func(ctx context.Context, _ string, _ int) (string, error) {
		started.Add(1)
		<-release
		return "https://cdn/v.mp4", nil
	}))

	ack, err := svc.StartGeneration("s1", testScenes("a", "b", "c"))
	if err != nil {
		t.Fatalf("StartGeneration: %v", err)
	}
	if ack.SessionID != "s1" || ack.TotalScenes != 3 {
		t.Errorf("unexpected ack: %+v", ack)
	}

	report, err := svc.Status("s1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.Progress.TotalVideos != 3 || report.Progress.VideosCompleted != 0 {
		t.Errorf("nothing should be complete yet: %+v", report.Progress)
	}

	// All scenes run concurrently: every worker reaches the renderer while
	// none of them has been released.
	deadline := time.Now().Add(2 * time.Second)
	for started.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if started.Load() != 3 {
		t.Fatalf("expected 3 concurrent renders, got %d", started.Load())
	}

	close(release)
	svc.Wait()

	report, _ = svc.Status("s1")
	if report.Progress.VideosCompleted != 3 || report.Progress.OverallProgress != 100 {
		t.Errorf("expected all completed, got %+v", report.Progress)
	}
}

func TestService_partial_failure_is_isolated(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, titleRenderer())

	_, err := svc.StartGeneration("s1", testScenes("one", "two", "fail three", "four", "fail five"))
	if err != nil {
		t.Fatalf("StartGeneration: %v", err)
	}
	svc.Wait()

	report, err := svc.Status("s1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	p := report.Progress
	if p.TotalVideos != 5 || p.VideosCompleted != 3 || p.VideosFailed != 2 || p.VideosInProgress != 0 || p.OverallProgress != 60 {
		t.Errorf("unexpected progress: %+v", p)
	}
	for _, rec := range report.Videos {
		failing := rec.SceneID == 3 || rec.SceneID == 5
		if failing && (rec.Status != StatusFailed || rec.Error == "") {
			t.Errorf("scene %d should have failed: %+v", rec.SceneID, rec)
		}
		if !failing && (rec.Status != StatusCompleted || rec.VideoURL == "") {
			t.Errorf("scene %d should have completed: %+v", rec.SceneID, rec)
		}
	}
}

func TestService_StartGeneration_numbers_missing_ids(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, titleRenderer())

	scenes := testScenes("a", "b")
	scenes[0].ID, scenes[1].ID = 0, 0
	if _, err := svc.StartGeneration("s1", scenes); err != nil {
		t.Fatalf("StartGeneration: %v", err)
	}
	svc.Wait()

	if scenes[0].ID != 0 {
		t.Error("caller's scenes must not be mutated")
	}
	got, _ := repo.GetSession("s1")
	if got[0].SceneID != 1 || got[1].SceneID != 2 {
		t.Errorf("expected ids 1,2, got %v", got)
	}
}

func TestService_Status_not_found(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), titleRenderer())
	if _, err := svc.Status("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestService_totalVideos_stable(t *testing.T) {
	repo := NewInMemoryRepository()
	release := make(chan struct{})
	svc := NewService(repo, renderFunc(func(context.Context, string, int) (string, error) {
		<-release
		return "u", nil
	}))
	_, _ = svc.StartGeneration("s1", testScenes("a", "b", "c", "d"))

	for i := 0; i < 5; i++ {
		report, _ := svc.Status("s1")
		if report.Progress.TotalVideos != 4 {
			t.Fatalf("totalVideos changed to %d", report.Progress.TotalVideos)
		}
	}
	close(release)
	svc.Wait()
	report, _ := svc.Status("s1")
	if report.Progress.TotalVideos != 4 {
		t.Errorf("totalVideos changed to %d after completion", report.Progress.TotalVideos)
	}
}

func TestService_GenerateScript(t *testing.T) {
	script := podcast.Script{Title: "Deep Sea"}
	for i := 0; i < podcast.SceneCount; i++ {
		script.Scenes = append(script.Scenes, podcast.Scene{Title: "s", VisualDirection: "v"})
	}
	writer := &fakeScriptWriter{script: script}
	svc := NewService(NewInMemoryRepository(), titleRenderer(), WithScriptWriter(writer))

	got, err := svc.GenerateScript(context.Background(), podcast.ScriptRequest{Topic: " oceans "})
	if err != nil {
		t.Fatalf("GenerateScript: %v", err)
	}
	if writer.got.Topic != "oceans" || writer.got.Style != podcast.StyleEducational {
		t.Errorf("request should be normalized, got %+v", writer.got)
	}
	for i, scene := range got.Scenes {
		if scene.ID != i+1 {
			t.Errorf("scene %d: expected id %d, got %d", i, i+1, scene.ID)
		}
	}
}

func TestService_GenerateScript_errors(t *testing.T) {
	t.Run("validation_before_upstream", func(t *testing.T) {
		writer := &fakeScriptWriter{}
		svc := NewService(NewInMemoryRepository(), titleRenderer(), WithScriptWriter(writer))
		if _, err := svc.GenerateScript(context.Background(), podcast.ScriptRequest{}); !errors.Is(err, podcast.ErrTopicRequired) {
			t.Errorf("expected ErrTopicRequired, got %v", err)
		}
		if writer.got.Topic != "" {
			t.Error("upstream must not be called on invalid input")
		}
	})

	t.Run("not_configured", func(t *testing.T) {
		svc := NewService(NewInMemoryRepository(), titleRenderer())
		if _, err := svc.GenerateScript(context.Background(), podcast.ScriptRequest{Topic: "x"}); !errors.Is(err, ErrScriptWriterUnavailable) {
			t.Errorf("expected ErrScriptWriterUnavailable, got %v", err)
		}
	})

	t.Run("wrong_scene_count", func(t *testing.T) {
		writer := &fakeScriptWriter{script: podcast.Script{Scenes: []podcast.Scene{{Title: "only", VisualDirection: "v"}}}}
		svc := NewService(NewInMemoryRepository(), titleRenderer(), WithScriptWriter(writer))
		if _, err := svc.GenerateScript(context.Background(), podcast.ScriptRequest{Topic: "x"}); !errors.Is(err, podcast.ErrSceneCount) {
			t.Errorf("expected ErrSceneCount, got %v", err)
		}
	})
}

func TestService_DeleteAndClear(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), titleRenderer())
	_, _ = svc.StartGeneration("a", testScenes("x"))
	_, _ = svc.StartGeneration("b", testScenes("y"))
	svc.Wait()

	if err := svc.DeleteSession("a"); err != nil {
		t.Errorf("DeleteSession: %v", err)
	}
	if err := svc.DeleteSession("a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if n := svc.ClearSessions(); n != 1 {
		t.Errorf("ClearSessions: expected 1, got %d", n)
	}
}

func TestService_EvictFinished(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), titleRenderer())
	_, _ = svc.StartGeneration("a", testScenes("x"))
	svc.Wait()

	if n := svc.EvictFinished(time.Hour); n != 0 {
		t.Errorf("fresh session should be kept, evicted %d", n)
	}
	if n := svc.EvictFinished(-time.Second); n != 1 {
		t.Errorf("expected eviction with a cutoff in the future, got %d", n)
	}
}

func TestService_RunRetention_stops_on_cancel(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), titleRenderer())
	_, _ = svc.StartGeneration("a", testScenes("x"))
	svc.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunRetention(ctx, time.Nanosecond, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := svc.Status("a"); errors.Is(err, ErrSessionNotFound) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := svc.Status("a"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("retention loop should evict the finished session")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunRetention did not return after cancel")
	}
}

// notifyingRepo reports every terminal write after it has been applied.
type notifyingRepo struct {
	*InMemoryRepository
	terminal chan Generation
}

func (r *notifyingRepo) UpdateScene(id SessionID, gen Generation, sceneID int, update JobUpdate) {
	r.InMemoryRepository.UpdateScene(id, gen, sceneID, update)
	if update.Status != nil && update.Status.Terminal() {
		r.terminal <- gen
	}
}

func TestService_reused_session_id_ignores_replaced_batch(t *testing.T) {
	repo := &notifyingRepo{InMemoryRepository: NewInMemoryRepository(), terminal: make(chan Generation, 4)}
	releaseOld := make(chan struct{})
	releaseNew := make(chan struct{})
	svc := NewService(repo, renderFunc(func(_ context.Context, prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "Scene Title: old") {
			<-releaseOld
			return "https://old/batch1.mp4", nil
		}
		<-releaseNew
		return "https://new/batch2.mp4", nil
	}))

	if _, err := svc.StartGeneration("s", testScenes("old")); err != nil {
		t.Fatalf("first StartGeneration: %v", err)
	}
	if _, err := svc.StartGeneration("s", testScenes("new")); err != nil {
		t.Fatalf("second StartGeneration: %v", err)
	}

	close(releaseOld)
	select {
	case <-repo.terminal:
	case <-time.After(2 * time.Second):
		t.Fatal("replaced batch never finished")
	}

	report, _ := svc.Status("s")
	if rec := report.Videos[0]; rec.Status.Terminal() || rec.VideoURL != "" {
		t.Fatalf("replaced batch wrote into the new session: %+v", rec)
	}

	close(releaseNew)
	svc.Wait()

	report, _ = svc.Status("s")
	if rec := report.Videos[0]; rec.Status != StatusCompleted || rec.VideoURL != "https://new/batch2.mp4" {
		t.Errorf("expected the new batch's result, got %+v", rec)
	}
}
