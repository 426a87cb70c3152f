package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"podcast-orchestrator/internal/client"
	"podcast-orchestrator/internal/platform/config"
	"podcast-orchestrator/internal/platform/logger"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	server  string
	config  string
	verbose bool
	json    bool
}

type commandContext struct {
	opts *rootOptions

	configOnce sync.Once
	config     config.ClientConfig
	configErr  error
}

func newCommandContext(opts *rootOptions) *commandContext {
	return &commandContext{opts: opts}
}

func (c *commandContext) ensureConfig() (config.ClientConfig, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.LoadClientConfig(strings.TrimSpace(c.opts.config))
		if err != nil {
			c.configErr = err
			return
		}
		if s := strings.TrimSpace(c.opts.server); s != "" {
			cfg.ServerURL = strings.TrimRight(s, "/")
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) client() (*client.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return client.New(cfg.ServerURL), nil
}

func (c *commandContext) logger(stderr io.Writer) *slog.Logger {
	level := "warn"
	if c.opts.verbose {
		level = "debug"
	}
	return logger.NewWithWriter(stderr, level, "text")
}

func (c *commandContext) jsonOutput() bool {
	return c.opts.json
}

// messages is where human-readable notices go. With --json, stdout carries
// only the JSON document.
func (c *commandContext) messages(cmd *cobra.Command) io.Writer {
	if c.jsonOutput() {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
