package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const defaultClientConfigPath = "~/.config/podcastctl/config.toml"

// ClientConfig holds the podcastctl settings.
type ClientConfig struct {
	ServerURL     string
	PollInterval  time.Duration
	PollTimeout   time.Duration
	PlayerCommand string
}

type clientFile struct {
	ServerURL     string `toml:"server_url"`
	PollInterval  string `toml:"poll_interval"`
	PollTimeout   string `toml:"poll_timeout"`
	PlayerCommand string `toml:"player_command"`
}

// DefaultClientConfig returns the settings used when no file is present.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL:     "http://localhost:8080",
		PollInterval:  3 * time.Second,
		PollTimeout:   15 * time.Minute,
		PlayerCommand: "mpv --really-quiet {url}",
	}
}

// DefaultClientConfigPath returns the absolute path of the default client config file.
func DefaultClientConfigPath() (string, error) {
	return ExpandPath(defaultClientConfigPath)
}

// LoadClientConfig reads the TOML file at path (the default location when
// empty) over the defaults. A missing file is not an error; the returned bool
// reports whether one was read.
func LoadClientConfig(path string) (ClientConfig, string, bool, error) {
	cfg := DefaultClientConfig()
	if strings.TrimSpace(path) == "" {
		path = defaultClientConfigPath
	}
	resolved, err := ExpandPath(path)
	if err != nil {
		return cfg, "", false, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, resolved, false, nil
		}
		return cfg, resolved, false, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var raw clientFile
	if err := toml.NewDecoder(file).Decode(&raw); err != nil {
		return cfg, resolved, false, fmt.Errorf("parse config: %w", err)
	}
	if err := raw.apply(&cfg); err != nil {
		return cfg, resolved, true, err
	}
	return cfg, resolved, true, nil
}

func (f clientFile) apply(cfg *ClientConfig) error {
	if s := strings.TrimSpace(f.ServerURL); s != "" {
		cfg.ServerURL = strings.TrimRight(s, "/")
	}
	if s := strings.TrimSpace(f.PlayerCommand); s != "" {
		cfg.PlayerCommand = s
	}
	if s := strings.TrimSpace(f.PollInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return fmt.Errorf("poll_interval: invalid duration %q", s)
		}
		cfg.PollInterval = d
	}
	if s := strings.TrimSpace(f.PollTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return fmt.Errorf("poll_timeout: invalid duration %q", s)
		}
		cfg.PollTimeout = d
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
