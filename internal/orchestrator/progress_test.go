package orchestrator

import "testing"

func TestAggregate_empty(t *testing.T) {
	p := Aggregate(nil)
	if p.TotalVideos != 0 || p.OverallProgress != 0 || p.CurrentScene != nil {
		t.Errorf("unexpected empty aggregate: %+v", p)
	}
	if !p.ScriptGenerated {
		t.Error("scriptGenerated should always be true on a status read")
	}
}

func TestAggregate_mixed_terminal(t *testing.T) {
	records := []JobRecord{
		{SceneID: 1, Status: StatusCompleted, Progress: 100, VideoURL: "u1"},
		{SceneID: 2, Status: StatusCompleted, Progress: 100, VideoURL: "u2"},
		{SceneID: 3, Status: StatusFailed, Error: "x"},
		{SceneID: 4, Status: StatusCompleted, Progress: 100, VideoURL: "u4"},
		{SceneID: 5, Status: StatusFailed, Error: "y"},
	}
	p := Aggregate(records)

	if p.TotalVideos != 5 || p.VideosCompleted != 3 || p.VideosFailed != 2 || p.VideosInProgress != 0 {
		t.Errorf("unexpected counts: %+v", p)
	}
	if p.OverallProgress != 60 {
		t.Errorf("expected overall 60, got %d", p.OverallProgress)
	}
	if p.CurrentScene != nil {
		t.Errorf("no scene is processing, got current %d", *p.CurrentScene)
	}
	if !AllTerminal(records) || !AnyCompleted(records) {
		t.Error("expected all terminal with at least one completed")
	}
}

func TestAggregate_weighted_processing(t *testing.T) {
	records := []JobRecord{
		{SceneID: 4, Status: StatusProcessing, Progress: 50},
		{SceneID: 2, Status: StatusProcessing, Progress: 25},
		{SceneID: 1, Status: StatusCompleted, Progress: 100},
		{SceneID: 3, Status: StatusPending, Progress: 80}, // pending progress is ignored
	}
	p := Aggregate(records)

	// (100 + 50 + 25) / 4 = 43.75 -> 44
	if p.OverallProgress != 44 {
		t.Errorf("expected 44, got %d", p.OverallProgress)
	}
	if p.VideosInProgress != 2 {
		t.Errorf("expected 2 in progress, got %d", p.VideosInProgress)
	}
	if p.CurrentScene == nil || *p.CurrentScene != 2 {
		t.Errorf("current scene should be the lowest processing id (2), got %v", p.CurrentScene)
	}
	if AllTerminal(records) {
		t.Error("not all records are terminal")
	}
}

func TestAggregate_monotonic_on_success_path(t *testing.T) {
	records := seedRecords(1, 2, 3)
	last := -1
	check := func() {
		t.Helper()
		p := Aggregate(records)
		if p.OverallProgress < last {
			t.Fatalf("overall progress regressed from %d to %d", last, p.OverallProgress)
		}
		last = p.OverallProgress
	}

	steps := []struct {
		idx int
		upd JobUpdate
	}{
		{0, Processing(25)}, {1, Processing(25)}, {0, Checkpoint(50)},
		{2, Processing(25)}, {1, Checkpoint(50)}, {0, Completed("a")},
		{2, Checkpoint(50)}, {1, Completed("b")}, {2, Completed("c")},
	}
	check()
	for _, st := range steps {
		st.upd.apply(&records[st.idx])
		check()
	}
	if last != 100 {
		t.Errorf("expected 100 at the end, got %d", last)
	}
}

func TestAllTerminal_zero_records(t *testing.T) {
	if AllTerminal(nil) {
		t.Error("zero records must not count as finished")
	}
}
