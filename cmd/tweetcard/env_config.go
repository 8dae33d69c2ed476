package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-tweetcard/internal/config"
)

// ErrInvalidEnv is returned when a TWEETCARD_* variable cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

const envPrefix = "TWEETCARD_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // TWEETCARD_CONFIG: config file name or path
	Addr       string        // TWEETCARD_ADDR: server listen address
	Engine     string        // TWEETCARD_ENGINE: chrome or canvas
	Scale      int           // TWEETCARD_SCALE: device scale factor
	Timeout    time.Duration // TWEETCARD_TIMEOUT: render timeout
	BrowserBin string        // TWEETCARD_BROWSER_BIN: Chrome binary
	NoSandbox  *bool         // TWEETCARD_NO_SANDBOX: disable the Chrome sandbox
	LogLevel   string        // TWEETCARD_LOG_LEVEL: debug, info, warn, error
	LogFormat  string        // TWEETCARD_LOG_FORMAT: text or json
	LogFile    string        // TWEETCARD_LOG_FILE: rotating log file
	AssetPath  string        // TWEETCARD_ASSET_PATH: template override directory
}

// knownEnvVars lists valid TWEETCARD_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TWEETCARD_CONFIG":      true,
	"TWEETCARD_ADDR":        true,
	"TWEETCARD_ENGINE":      true,
	"TWEETCARD_SCALE":       true,
	"TWEETCARD_TIMEOUT":     true,
	"TWEETCARD_BROWSER_BIN": true,
	"TWEETCARD_NO_SANDBOX":  true,
	"TWEETCARD_LOG_LEVEL":   true,
	"TWEETCARD_LOG_FORMAT":  true,
	"TWEETCARD_LOG_FILE":    true,
	"TWEETCARD_ASSET_PATH":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers, durations and booleans are errors rather than
// silently ignored.
func loadEnvConfig(getenv func(string) string) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: getenv("TWEETCARD_CONFIG"),
		Addr:       getenv("TWEETCARD_ADDR"),
		Engine:     strings.ToLower(getenv("TWEETCARD_ENGINE")),
		BrowserBin: getenv("TWEETCARD_BROWSER_BIN"),
		LogLevel:   getenv("TWEETCARD_LOG_LEVEL"),
		LogFormat:  getenv("TWEETCARD_LOG_FORMAT"),
		LogFile:    getenv("TWEETCARD_LOG_FILE"),
		AssetPath:  getenv("TWEETCARD_ASSET_PATH"),
	}

	if v := getenv("TWEETCARD_SCALE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < config.MinScale || n > config.MaxScale {
			return nil, fmt.Errorf("%w: TWEETCARD_SCALE=%q (must be %d-%d)", ErrInvalidEnv, v, config.MinScale, config.MaxScale)
		}
		cfg.Scale = n
	}

	if v := getenv("TWEETCARD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: TWEETCARD_TIMEOUT=%q (must be a positive duration like 30s)", ErrInvalidEnv, v)
		}
		cfg.Timeout = d
	}

	if v := getenv("TWEETCARD_NO_SANDBOX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: TWEETCARD_NO_SANDBOX=%q (must be true or false)", ErrInvalidEnv, v)
		}
		cfg.NoSandbox = &b
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized TWEETCARD_* variables.
// Helps catch typos like TWEETCARD_SCALLE.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// A set variable overrides the file value, giving:
// CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Engine != "" {
		cfg.Render.Engine = env.Engine
	}
	if env.Scale != 0 {
		cfg.Render.Scale = env.Scale
	}
	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout.String()
	}
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.NoSandbox != nil {
		cfg.Browser.NoSandbox = *env.NoSandbox
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
}
