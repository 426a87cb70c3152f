package main

import (
	"encoding/json"
	"fmt"
	"os"

	"podcast-orchestrator/internal/podcast"

	"github.com/spf13/cobra"
)

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var req podcast.ScriptRequest
	var style, length, out string

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Write a five scene podcast script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			req.Style = podcast.Style(style)
			req.Duration = podcast.Length(length)
			if err := req.Normalize().Validate(); err != nil {
				return err
			}

			script, err := api.GenerateScript(cmd.Context(), req)
			if err != nil {
				return err
			}

			if out != "" {
				data, err := json.MarshalIndent(script, "", "  ")
				if err != nil {
					return fmt.Errorf("encode script: %w", err)
				}
				if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("write script: %w", err)
				}
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, script)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderScript(script))
			if out != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Script saved to %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Topic, "topic", "t", "", "Episode topic")
	cmd.Flags().StringVar(&style, "style", string(podcast.StyleEducational), "educational, conversational, news or entertainment")
	cmd.Flags().StringVar(&length, "length", string(podcast.LengthMedium), "short, medium or long")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the script JSON to this file")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func readScriptFile(path string) (podcast.Script, error) {
	var script podcast.Script
	data, err := os.ReadFile(path)
	if err != nil {
		return script, fmt.Errorf("read script: %w", err)
	}
	if err := json.Unmarshal(data, &script); err != nil {
		return script, fmt.Errorf("parse script %s: %w", path, err)
	}
	if len(script.Scenes) == 0 {
		return script, fmt.Errorf("script %s has no scenes", path)
	}
	return script, nil
}
