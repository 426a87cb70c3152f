package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds the orchestrator server settings read from the
// environment.
type ServerConfig struct {
	Port          string
	LogLevel      string
	LogFormat     string
	SceneSeconds  int
	SessionTTL    time.Duration
	SweepInterval time.Duration
	CORSOrigins   []string

	AIAPIKey         string
	AIBaseURL        string
	AICustomerID     string
	AIScriptModel    string
	AIVideoModel     string
	AITimeoutSeconds int
}

// LoadServerConfig reads .env (if present) and then the process environment.
// Unset or malformed values fall back to defaults; AI fields left empty are
// defaulted by the AI client.
func LoadServerConfig(sceneSecondsDefault int) ServerConfig {
	_ = Load()
	return ServerConfig{
		Port:          GetEnv("PORT", "8080"),
		LogLevel:      GetEnv("LOG_LEVEL", "info"),
		LogFormat:     GetEnv("LOG_FORMAT", "json"),
		SceneSeconds:  GetEnvInt("SCENE_DURATION_SECONDS", sceneSecondsDefault),
		SessionTTL:    GetEnvDuration("SESSION_TTL", time.Hour),
		SweepInterval: GetEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		CORSOrigins:   GetEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		AIAPIKey:         GetEnv("AI_API_KEY", ""),
		AIBaseURL:        GetEnv("AI_BASE_URL", ""),
		AICustomerID:     GetEnv("AI_CUSTOMER_ID", ""),
		AIScriptModel:    GetEnv("AI_SCRIPT_MODEL", ""),
		AIVideoModel:     GetEnv("AI_VIDEO_MODEL", ""),
		AITimeoutSeconds: GetEnvInt("AI_TIMEOUT_SECONDS", 0),
	}
}

// Load sets environment variables from the given dotenv files, ".env" when
// none are named. A missing file is reported as an error the caller may ignore.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of key, or fallback if it is unset or empty.
func GetEnv(key, fallback string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt is GetEnv for integers. Values that do not parse yield fallback.
func GetEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

// GetEnvDuration is GetEnv for durations such as "90s" or "1h".
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(GetEnv(key, "")); err == nil {
		return d
	}
	return fallback
}

// GetEnvList splits a comma separated value, dropping blank items. An unset
// or all-blank value yields fallback.
func GetEnvList(key string, fallback []string) []string {
	var out []string
	for _, part := range strings.Split(GetEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
