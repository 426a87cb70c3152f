// Package ai talks to the OpenAI-compatible chat completion endpoint that
// backs both podcast script writing and per-scene video rendering.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.GenerateScript: ask the script model for a five scene script.
// Client.GenerateVideo: render one scene prompt and return the media URL.
// Client.HealthCheck: verify the endpoint and script model are usable.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, network timeouts and empty
// completions with exponential backoff (base 1s, max 10s, 3 attempts by
// default). Retry-After headers are honoured. Context cancellation aborts
// retries immediately.
package ai
