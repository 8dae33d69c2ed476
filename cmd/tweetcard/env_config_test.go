package main

// Notes:
// - loadEnvConfig takes a getenv function, so these tests use maps instead
//   of t.Setenv and can run in parallel.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-tweetcard/internal/config"
)

func mapGetenv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Parsing TWEETCARD_* variables
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("all variables", func(t *testing.T) {
		t.Parallel()

		got, err := loadEnvConfig(mapGetenv(map[string]string{
			"TWEETCARD_CONFIG":      "prod",
			"TWEETCARD_ADDR":        ":8080",
			"TWEETCARD_ENGINE":      "Canvas",
			"TWEETCARD_SCALE":       "2",
			"TWEETCARD_TIMEOUT":     "45s",
			"TWEETCARD_BROWSER_BIN": "/usr/bin/chromium",
			"TWEETCARD_NO_SANDBOX":  "true",
			"TWEETCARD_LOG_LEVEL":   "debug",
			"TWEETCARD_LOG_FORMAT":  "json",
			"TWEETCARD_LOG_FILE":    "/var/log/tweetcard.log",
			"TWEETCARD_ASSET_PATH":  "/srv/card",
		}))
		if err != nil {
			t.Fatalf("loadEnvConfig: %v", err)
		}

		if got.ConfigPath != "prod" || got.Addr != ":8080" {
			t.Errorf("ConfigPath/Addr = %q/%q", got.ConfigPath, got.Addr)
		}
		if got.Engine != "canvas" {
			t.Errorf("Engine = %q, want lowercased canvas", got.Engine)
		}
		if got.Scale != 2 {
			t.Errorf("Scale = %d, want 2", got.Scale)
		}
		if got.Timeout != 45*time.Second {
			t.Errorf("Timeout = %v, want 45s", got.Timeout)
		}
		if got.NoSandbox == nil || !*got.NoSandbox {
			t.Errorf("NoSandbox = %v, want true", got.NoSandbox)
		}
		if got.BrowserBin != "/usr/bin/chromium" || got.AssetPath != "/srv/card" {
			t.Errorf("BrowserBin/AssetPath = %q/%q", got.BrowserBin, got.AssetPath)
		}
		if got.LogLevel != "debug" || got.LogFormat != "json" || got.LogFile != "/var/log/tweetcard.log" {
			t.Errorf("log = %q/%q/%q", got.LogLevel, got.LogFormat, got.LogFile)
		}
	})

	t.Run("empty environment", func(t *testing.T) {
		t.Parallel()

		got, err := loadEnvConfig(mapGetenv(nil))
		if err != nil {
			t.Fatalf("loadEnvConfig: %v", err)
		}
		if *got != (envConfig{}) {
			t.Errorf("got %+v, want zero value", got)
		}
	})

	invalid := []struct {
		name, key, value string
	}{
		{"scale not a number", "TWEETCARD_SCALE", "two"},
		{"scale out of range", "TWEETCARD_SCALE", "4"},
		{"scale zero", "TWEETCARD_SCALE", "0"},
		{"timeout unparsable", "TWEETCARD_TIMEOUT", "soon"},
		{"timeout negative", "TWEETCARD_TIMEOUT", "-5s"},
		{"no sandbox not a bool", "TWEETCARD_NO_SANDBOX", "maybe"},
	}
	for _, tt := range invalid {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loadEnvConfig(mapGetenv(map[string]string{tt.key: tt.value}))
			if !errors.Is(err, ErrInvalidEnv) {
				t.Fatalf("error = %v, want ErrInvalidEnv", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q should name %s", err, tt.key)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"TWEETCARD_SCALE=2",
		"TWEETCARD_SCALLE=2",
		"TWEETCARD_ENGIN=canvas",
		"HOME=/root",
		"ROD_NO_SANDBOX=1",
	})

	out := buf.String()
	for _, want := range []string{"TWEETCARD_SCALLE", "TWEETCARD_ENGIN"} {
		if !strings.Contains(out, "unknown environment variable "+want) {
			t.Errorf("output %q should warn about %s", out, want)
		}
	}
	for _, unwanted := range []string{"TWEETCARD_SCALE ", "HOME", "ROD_NO_SANDBOX"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("output %q should not mention %s", out, unwanted)
		}
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Environment overrides the file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("set values override file values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Server.Addr = ":9000"
		cfg.Render.Engine = config.EngineChrome
		cfg.Browser.NoSandbox = true

		off := false
		applyEnvConfig(&envConfig{
			Addr:       ":8080",
			Engine:     config.EngineCanvas,
			Scale:      2,
			Timeout:    time.Minute,
			BrowserBin: "/opt/chrome",
			NoSandbox:  &off,
			LogLevel:   "warn",
			LogFormat:  "json",
			LogFile:    "card.log",
			AssetPath:  "/srv/card",
		}, cfg)

		if cfg.Server.Addr != ":8080" {
			t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
		}
		if cfg.Render.Engine != config.EngineCanvas || cfg.Render.Scale != 2 {
			t.Errorf("Render = %+v", cfg.Render)
		}
		if cfg.RenderTimeout() != time.Minute {
			t.Errorf("RenderTimeout() = %v, want 1m", cfg.RenderTimeout())
		}
		if cfg.Browser.Bin != "/opt/chrome" || cfg.Browser.NoSandbox {
			t.Errorf("Browser = %+v", cfg.Browser)
		}
		if cfg.Log.Level != "warn" || cfg.Log.Format != "json" || cfg.Log.File != "card.log" {
			t.Errorf("Log = %+v", cfg.Log)
		}
		if cfg.Assets.BasePath != "/srv/card" {
			t.Errorf("Assets.BasePath = %q", cfg.Assets.BasePath)
		}
	})

	t.Run("unset values keep file values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Server.Addr = ":9000"
		cfg.Browser.NoSandbox = true
		want := *cfg

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Server.Addr != want.Server.Addr || cfg.Browser != want.Browser || cfg.Render != want.Render {
			t.Errorf("config changed: got %+v, want %+v", cfg, want)
		}
	})
}
