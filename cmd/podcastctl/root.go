package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var opts rootOptions

	ctx := newCommandContext(&opts)

	rootCmd := &cobra.Command{
		Use:           "podcastctl",
		Short:         "Generate and play podcast scene videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", "", "Orchestrator base URL (overrides server_url)")
	rootCmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print machine readable JSON")

	rootCmd.AddCommand(newScriptCommand(ctx))
	rootCmd.AddCommand(newGenerateCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newPlayCommand(ctx))
	rootCmd.AddCommand(newSessionsCommand(ctx))

	return rootCmd
}
