package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"podcast-orchestrator/internal/orchestrator"
)

var (
	// ErrNotInitialized is returned when the player has no sink bound.
	ErrNotInitialized = errors.New("player not initialized")

	// ErrEmptyPlaylist is returned when there is nothing to play.
	ErrEmptyPlaylist = errors.New("playlist is empty")
)

// State is the playback state of a Player.
type State string

const (
	StateIdle    State = "idle"
	StateLoaded  State = "loaded"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Sink is the media output a Player drives. The ended handler fires when the
// loaded media finishes on its own and must not be invoked synchronously from
// Load or Play.
type Sink interface {
	Load(ctx context.Context, url string) error
	Play(ctx context.Context) error
	Pause()
	SetEndedHandler(fn func())
}

// Entry is one playable scene.
type Entry struct {
	Index    int    `json:"index"`
	SceneID  int    `json:"sceneId"`
	VideoURL string `json:"videoUrl"`
}

// Info describes the playlist and cursor.
type Info struct {
	CurrentIndex int     `json:"currentIndex"`
	TotalScenes  int     `json:"totalScenes"`
	Scenes       []Entry `json:"scenes"`
}

// Option customizes a Player.
type Option func(*Player)

// WithLogger sets the logger used for auto-advance failures.
func WithLogger(log *slog.Logger) Option {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

// Player plays completed scenes back to back through a Sink, advancing
// automatically when a scene ends.
type Player struct {
	mu      sync.Mutex
	entries []Entry
	index   int
	state   State
	sink    Sink
	ctx     context.Context
	log     *slog.Logger

	onSceneChange func(Entry)
	onEnd         func()
	onError       func(error)
}

// NewPlayer builds a playlist from the completed records, ordered by scene id.
func NewPlayer(records []orchestrator.JobRecord, opts ...Option) *Player {
	p := &Player{
		entries: buildEntries(records),
		state:   StateIdle,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func buildEntries(records []orchestrator.JobRecord) []Entry {
	var entries []Entry
	for _, rec := range records {
		if rec.Status != orchestrator.StatusCompleted || rec.VideoURL == "" {
			continue
		}
		entries = append(entries, Entry{SceneID: rec.SceneID, VideoURL: rec.VideoURL})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int { return a.SceneID - b.SceneID })
	for i := range entries {
		entries[i].Index = i
	}
	return entries
}

// OnSceneChange registers fn to be called whenever a new scene is loaded.
// A later registration replaces the previous one.
func (p *Player) OnSceneChange(fn func(Entry)) {
	p.mu.Lock()
	p.onSceneChange = fn
	p.mu.Unlock()
}

// OnPlaylistEnd registers fn to be called when playback runs past the last scene.
// A later registration replaces the previous one.
func (p *Player) OnPlaylistEnd(fn func()) {
	p.mu.Lock()
	p.onEnd = fn
	p.mu.Unlock()
}

// OnAdvanceError registers fn to be called when advancing to the next scene
// after one ended on its own fails. The player is left Loaded or Idle.
// A later registration replaces the previous one.
func (p *Player) OnAdvanceError(fn func(error)) {
	p.mu.Lock()
	p.onError = fn
	p.mu.Unlock()
}

// Initialize binds the player to sink and loads the first scene, if any.
// ctx is kept for loads triggered by the sink's end-of-media events.
func (p *Player) Initialize(ctx context.Context, sink Sink) error {
	if sink == nil {
		return errors.New("sink is required")
	}
	sink.SetEndedHandler(p.handleEnded)

	p.mu.Lock()
	p.sink = sink
	p.ctx = ctx
	p.index = 0
	p.state = StateIdle
	if len(p.entries) == 0 {
		p.mu.Unlock()
		return nil
	}
	notify, err := p.loadLocked(ctx, 0)
	p.mu.Unlock()
	notify()
	return err
}

// Play starts or resumes the current scene.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	if p.sink == nil {
		p.mu.Unlock()
		return ErrNotInitialized
	}
	if len(p.entries) == 0 {
		p.mu.Unlock()
		return ErrEmptyPlaylist
	}
	notify := func() {}
	if p.state == StateIdle {
		var err error
		if notify, err = p.loadLocked(ctx, p.index); err != nil {
			p.mu.Unlock()
			return err
		}
	}
	err := p.playLocked(ctx)
	p.mu.Unlock()
	notify()
	return err
}

// Pause pauses the current scene. It is a no-op unless playing.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePlaying {
		return
	}
	p.sink.Pause()
	p.state = StatePaused
}

// PlayNext loads and plays the next scene. Past the last scene it stops,
// rewinds to the first scene and fires the playlist-end callback.
func (p *Player) PlayNext(ctx context.Context) error {
	p.mu.Lock()
	if p.sink == nil {
		p.mu.Unlock()
		return ErrNotInitialized
	}
	notify, err := p.nextLocked(ctx)
	p.mu.Unlock()
	notify()
	return err
}

// PlayPrevious loads and plays the previous scene. It is a no-op on the first scene.
func (p *Player) PlayPrevious(ctx context.Context) error {
	p.mu.Lock()
	if p.sink == nil {
		p.mu.Unlock()
		return ErrNotInitialized
	}
	if p.index <= 0 {
		p.mu.Unlock()
		return nil
	}
	notify, err := p.seekLocked(ctx, p.index-1)
	p.mu.Unlock()
	notify()
	return err
}

// JumpToScene loads and plays the scene at index. Out of range indices are ignored.
func (p *Player) JumpToScene(ctx context.Context, index int) error {
	p.mu.Lock()
	if p.sink == nil {
		p.mu.Unlock()
		return ErrNotInitialized
	}
	if index < 0 || index >= len(p.entries) {
		p.mu.Unlock()
		return nil
	}
	notify, err := p.seekLocked(ctx, index)
	p.mu.Unlock()
	notify()
	return err
}

// Current returns the scene under the cursor.
func (p *Player) Current() (Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index < 0 || p.index >= len(p.entries) {
		return Entry{}, false
	}
	return p.entries[p.index], true
}

// Info returns a snapshot of the playlist.
func (p *Player) Info() Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Info{
		CurrentIndex: p.index,
		TotalScenes:  len(p.entries),
		Scenes:       slices.Clone(p.entries),
	}
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Update rebuilds the playlist from records when the completed set changed.
// The cursor stays on the current scene if it is still present.
func (p *Player) Update(records []orchestrator.JobRecord) {
	entries := buildEntries(records)

	p.mu.Lock()
	if sameEntries(p.entries, entries) {
		p.mu.Unlock()
		return
	}
	wasEmpty := len(p.entries) == 0
	var currentID int
	if p.index >= 0 && p.index < len(p.entries) {
		currentID = p.entries[p.index].SceneID
	}
	p.entries = entries

	p.index = 0
	found := false
	for i, e := range entries {
		if e.SceneID == currentID {
			p.index = i
			found = true
			break
		}
	}
	if !found && p.state != StateIdle {
		if p.state == StatePlaying || p.state == StatePaused {
			p.sink.Pause()
		}
		p.state = StateIdle
	}

	notify := func() {}
	if wasEmpty && p.sink != nil && len(entries) > 0 {
		var err error
		if notify, err = p.loadLocked(p.ctx, 0); err != nil {
			p.log.Warn("load after playlist update failed", slog.String("error", err.Error()))
		}
	}
	p.mu.Unlock()
	notify()
}

func sameEntries(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].SceneID != b[i].SceneID || a[i].VideoURL != b[i].VideoURL {
			return false
		}
	}
	return true
}

func (p *Player) handleEnded() {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	notify, err := p.nextLocked(p.ctx)
	onError := p.onError
	p.mu.Unlock()
	notify()
	if err != nil {
		p.log.Warn("auto-advance failed", slog.String("error", err.Error()))
		if onError != nil {
			onError(err)
		}
	}
}

// The *Locked helpers require p.mu held. They return a notification to be
// run after the lock is released; it is never nil.

func (p *Player) nextLocked(ctx context.Context) (func(), error) {
	if p.index < len(p.entries)-1 {
		return p.seekLocked(ctx, p.index+1)
	}
	return p.endLocked(), nil
}

func (p *Player) seekLocked(ctx context.Context, index int) (func(), error) {
	notify, err := p.loadLocked(ctx, index)
	if err != nil {
		return notify, err
	}
	return notify, p.playLocked(ctx)
}

func (p *Player) loadLocked(ctx context.Context, index int) (func(), error) {
	entry := p.entries[index]
	if err := p.sink.Load(ctx, entry.VideoURL); err != nil {
		return func() {}, fmt.Errorf("load scene %d: %w", entry.SceneID, err)
	}
	p.index = index
	p.state = StateLoaded
	cb := p.onSceneChange
	return func() {
		if cb != nil {
			cb(entry)
		}
	}, nil
}

func (p *Player) playLocked(ctx context.Context) error {
	if err := p.sink.Play(ctx); err != nil {
		return fmt.Errorf("play scene %d: %w", p.entries[p.index].SceneID, err)
	}
	p.state = StatePlaying
	return nil
}

func (p *Player) endLocked() func() {
	if p.state == StatePlaying || p.state == StatePaused {
		p.sink.Pause()
	}
	p.index = 0
	p.state = StateIdle
	cb := p.onEnd
	return func() {
		if cb != nil {
			cb()
		}
	}
}
