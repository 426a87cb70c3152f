// Command podcastctl drives the podcast orchestrator service from a terminal:
// it writes scripts, starts video generation, follows progress and plays the
// finished scenes back to back through an external media player.
//
// Settings come from ~/.config/podcastctl/config.toml (server_url,
// poll_interval, poll_timeout, player_command) and can be overridden with
// --server and --config.
package main
