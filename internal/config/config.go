// Package config reads settings for both binaries from the environment.
//
// SOURCES, IN ORDER:
//  1. a .env file in the working directory, if there is one (godotenv never
//     overrides variables that are already set)
//  2. the process environment
//  3. the defaults below
//
// Config is read once at startup and treated as immutable afterwards.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the collaborator address used when HEALTH_API_URL is unset.
const DefaultAPIURL = "http://localhost:8000/api"

// Client holds settings for cmd/healthctl.
type Client struct {
	// APIURL is the collaborator base address, including the /api prefix.
	APIURL string
	// LogFile receives the client log; the terminal belongs to the UI.
	LogFile  string
	LogLevel string
	// HistoryLimit is how many past recommendations the history view asks for.
	HistoryLimit int
}

// Server holds settings for cmd/healthd.
type Server struct {
	Port      int
	DBPath    string
	LogLevel  string
	LogFormat string

	// Gemini. Recommendations are disabled when GeminiAPIKey is empty.
	GeminiAPIKey string
	GeminiModel  string

	CORSAllowedOrigin string

	// Per-user limit on POST /recommendations/{user_id}.
	RecommendPerMinute int
	RecommendBurst     int

	ShutdownTimeout time.Duration
}

// LoadDotEnv loads the given .env files (default ".env"). A missing file is
// not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadClient reads the client configuration.
func LoadClient() (*Client, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Client{
		APIURL:       strings.TrimRight(getEnvString("HEALTH_API_URL", DefaultAPIURL), "/"),
		LogFile:      getEnvString("HEALTH_LOG_FILE", "healthctl.log"),
		LogLevel:     getEnvString("LOG_LEVEL", "info"),
		HistoryLimit: getEnvInt("HEALTH_HISTORY_LIMIT", 5),
	}
	return cfg, nil
}

// LoadServer reads the collaborator configuration. An unparseable PORT is
// an error; every other malformed value falls back to its default.
func LoadServer() (*Server, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Server{Port: 8000}
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("config: invalid PORT value %q", portStr)
		}
		cfg.Port = port
	}

	cfg.DBPath = getEnvString("DB_PATH", "data/health.db")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.LogFormat = getEnvString("LOG_FORMAT", "text")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvString("GEMINI_MODEL", "gemini-2.5-flash")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.RecommendPerMinute = getEnvInt("RECOMMEND_RATE_PER_MINUTE", 6)
	cfg.RecommendBurst = getEnvInt("RECOMMEND_BURST", 3)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
