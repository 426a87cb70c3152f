package orchestrator

import "math"

// Progress is the aggregate view of a session's records. It is derived on
// every read and never stored.
type Progress struct {
	ScriptGenerated  bool `json:"scriptGenerated"`
	TotalVideos      int  `json:"totalVideos"`
	VideosCompleted  int  `json:"videosCompleted"`
	VideosFailed     int  `json:"videosFailed"`
	VideosInProgress int  `json:"videosInProgress"`
	OverallProgress  int  `json:"overallProgress"`
	CurrentScene     *int `json:"currentScene,omitempty"`
}

// StatusReport pairs the raw records with their aggregate.
// This matches the data payload of the status endpoints.
type StatusReport struct {
	Videos   []JobRecord `json:"videos"`
	Progress Progress    `json:"progress"`
}

// Aggregate computes the Progress for records.
// Completed records weigh 100, processing records weigh their own progress,
// pending and failed records weigh 0. The weighted mean is rounded and
// clamped to [0, 100]; an empty slice yields 0.
func Aggregate(records []JobRecord) Progress {
	p := Progress{
		ScriptGenerated: true,
		TotalVideos:     len(records),
	}

	weight := 0
	for _, rec := range records {
		switch rec.Status {
		case StatusCompleted:
			p.VideosCompleted++
			weight += 100
		case StatusFailed:
			p.VideosFailed++
		case StatusProcessing:
			p.VideosInProgress++
			weight += clampPercent(rec.Progress)
			if p.CurrentScene == nil || rec.SceneID < *p.CurrentScene {
				id := rec.SceneID
				p.CurrentScene = &id
			}
		}
	}

	if p.TotalVideos > 0 {
		p.OverallProgress = clampPercent(int(math.Round(float64(weight) / float64(p.TotalVideos))))
	}
	return p
}

// AllTerminal reports whether records is non-empty and every record has
// finished. Zero records are never considered finished so pollers keep
// waiting for a session that is still being seeded.
func AllTerminal(records []JobRecord) bool {
	if len(records) == 0 {
		return false
	}
	for _, rec := range records {
		if !rec.Status.Terminal() {
			return false
		}
	}
	return true
}

// AnyCompleted reports whether at least one record completed.
func AnyCompleted(records []JobRecord) bool {
	for _, rec := range records {
		if rec.Status == StatusCompleted {
			return true
		}
	}
	return false
}
