package main

import (
	"fmt"

	"podcast-orchestrator/internal/client"
	"podcast-orchestrator/internal/orchestrator"

	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var play bool

	cmd := &cobra.Command{
		Use:   "watch <session-id>",
		Short: "Follow a session until every scene finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := watchSession(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if play {
				return playSession(cmd, ctx, result.Report.Videos, 0)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&play, "play", false, "Play the finished scenes afterwards")
	return cmd
}

// watchSession polls the session, printing a progress line per update, and
// fails unless at least one scene completed.
func watchSession(cmd *cobra.Command, ctx *commandContext, sessionID string) (client.PollResult, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return client.PollResult{}, err
	}
	api, err := ctx.client()
	if err != nil {
		return client.PollResult{}, err
	}

	out := cmd.OutOrStdout()
	inPlace := isTerminal(out) && !ctx.jsonOutput()
	poller := &client.Poller{
		Fetcher:  api,
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
		Log:      ctx.logger(cmd.ErrOrStderr()),
	}

	var last string
	result, err := poller.Run(cmd.Context(), sessionID, func(report orchestrator.StatusReport) {
		if ctx.jsonOutput() {
			return
		}
		line := progressLine(report.Progress)
		switch {
		case inPlace:
			fmt.Fprintf(out, "\r\033[K%s", line)
		case line != last:
			fmt.Fprintln(out, line)
		}
		last = line
	})
	if inPlace {
		fmt.Fprintln(out)
	}
	if err != nil {
		return result, err
	}

	if ctx.jsonOutput() {
		if err := writeJSON(cmd, result.Report); err != nil {
			return result, err
		}
	} else {
		fmt.Fprint(out, renderStatus(result.Report))
	}

	switch result.Outcome {
	case client.OutcomeSucceeded:
		return result, nil
	case client.OutcomeFailed:
		return result, fmt.Errorf("session %s: every scene failed", sessionID)
	default:
		return result, fmt.Errorf("session %s: still rendering after %s", sessionID, poller.Timeout)
	}
}
