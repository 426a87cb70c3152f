package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"podcast-orchestrator/internal/orchestrator"
	"podcast-orchestrator/internal/playback"

	"github.com/spf13/cobra"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var scene int

	cmd := &cobra.Command{
		Use:   "play <session-id>",
		Short: "Play the finished scenes of a session back to back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			report, err := api.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return playSession(cmd, ctx, report.Videos, scene)
		},
	}
	cmd.Flags().IntVar(&scene, "from", 0, "Start at this playlist position (0 based)")
	return cmd
}

// playSession plays the completed records through the configured external
// player and returns when the playlist ends or playback stops.
func playSession(cmd *cobra.Command, ctx *commandContext, records []orchestrator.JobRecord, start int) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	sink, err := playback.NewExecSink(strings.Fields(cfg.PlayerCommand), ctx.logger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer sink.Close()

	return playRecords(cmd, ctx, sink, records, start)
}

func playRecords(cmd *cobra.Command, ctx *commandContext, sink playback.Sink, records []orchestrator.JobRecord, start int) error {
	log := ctx.logger(cmd.ErrOrStderr())
	player := playback.NewPlayer(records, playback.WithLogger(log))
	info := player.Info()
	if info.TotalScenes == 0 {
		return errors.New("nothing to play: no completed scenes")
	}
	if start < 0 || start >= info.TotalScenes {
		return fmt.Errorf("--from %d out of range: %d scenes available", start, info.TotalScenes)
	}

	// Scene changes are reported from the sink's goroutine.
	var outMu sync.Mutex
	out := ctx.messages(cmd)
	printf := func(format string, a ...any) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, format, a...)
	}

	done := make(chan struct{})
	var endOnce sync.Once
	advanceErr := make(chan error, 1)
	player.OnSceneChange(func(e playback.Entry) {
		printf("Now playing scene %d (%d/%d)\n", e.SceneID, e.Index+1, info.TotalScenes)
	})
	player.OnPlaylistEnd(func() { endOnce.Do(func() { close(done) }) })
	player.OnAdvanceError(func(err error) {
		select {
		case advanceErr <- err:
		default:
		}
	})

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := player.Initialize(runCtx, sink); err != nil {
		return err
	}
	var err error
	if start > 0 {
		err = player.JumpToScene(runCtx, start)
	} else {
		err = player.Play(runCtx)
	}
	if err != nil {
		return err
	}

	select {
	case <-done:
		printf("Playlist finished\n")
		return nil
	case err := <-advanceErr:
		return fmt.Errorf("playback stopped: %w", err)
	case <-runCtx.Done():
		player.Pause()
		return runCtx.Err()
	}
}
