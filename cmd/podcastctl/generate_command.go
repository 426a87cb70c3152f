package main

import (
	"errors"
	"fmt"
	"strings"

	"podcast-orchestrator/internal/podcast"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var scriptPath, topic, sessionID string
	var watch, play bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Start rendering one video per scene",
		Long: "Start rendering one video per scene of a script. The script is read from --script " +
			"or written on the fly from --topic. The command returns once the service accepted " +
			"the scenes unless --watch or --play is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}

			var script podcast.Script
			switch {
			case scriptPath != "":
				if script, err = readScriptFile(scriptPath); err != nil {
					return err
				}
			case strings.TrimSpace(topic) != "":
				if script, err = api.GenerateScript(cmd.Context(), podcast.ScriptRequest{Topic: topic}); err != nil {
					return err
				}
			default:
				return errors.New("either --script or --topic is required")
			}

			if sessionID == "" {
				sessionID = "session_" + uuid.NewString()
			}
			ack, err := api.StartGeneration(cmd.Context(), sessionID, script.Scenes)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() && !watch && !play {
				return writeJSON(cmd, ack)
			}
			fmt.Fprintf(ctx.messages(cmd), "Session %s: %d scenes queued\n", ack.SessionID, ack.TotalScenes)
			if !watch && !play {
				return nil
			}

			result, err := watchSession(cmd, ctx, string(ack.SessionID))
			if err != nil {
				return err
			}
			if play {
				return playSession(cmd, ctx, result.Report.Videos, 0)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Script JSON file (as written by `podcastctl script --out`)")
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Write a script about this topic first")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id (default: a new random id)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow progress until every scene finished")
	cmd.Flags().BoolVar(&play, "play", false, "Watch, then play the finished scenes")
	return cmd
}
