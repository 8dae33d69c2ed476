// Package config loads and validates the YAML configuration shared by the
// render CLI and the HTTP server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-tweetcard/internal/fileutil"
	"github.com/alnah/go-tweetcard/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
)

// Engine names.
const (
	EngineChrome = "chrome"
	EngineCanvas = "canvas"
)

// Bounds and defaults.
const (
	MinScale = 1
	MaxScale = 3

	DefaultAddr         = ":3000"
	DefaultReadTimeout  = "15s"
	DefaultWriteTimeout = "90s"
	DefaultRenderTime   = "30s"
	DefaultMaxBodyBytes = 16 << 20

	MaxPathLength   = 4096
	MaxCSSLength    = 64 << 10
	MaxOriginLength = 2048
)

// configDirName is the directory under os.UserConfigDir searched for configs.
const configDirName = "go-tweetcard"

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config holds all configuration for rendering and serving.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Render  RenderConfig  `yaml:"render"`
	Browser BrowserConfig `yaml:"browser"`
	Theme   ThemeConfig   `yaml:"theme"`
	Assets  AssetsConfig  `yaml:"assets"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr         string     `yaml:"addr"`
	ReadTimeout  string     `yaml:"readTimeout"`  // Go duration, e.g. "15s"
	WriteTimeout string     `yaml:"writeTimeout"` // must exceed render.timeout
	MaxBodyBytes int64      `yaml:"maxBodyBytes"` // request body cap (data URIs are large)
	CORS         CORSConfig `yaml:"cors"`
}

// CORSConfig mirrors gin-contrib/cors options.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"` // empty = CORS middleware disabled
	MaxAge         int      `yaml:"maxAge"`         // seconds
}

// RenderConfig selects and tunes the rasterizer.
type RenderConfig struct {
	Engine       string `yaml:"engine"`       // "chrome" or "canvas"
	Scale        int    `yaml:"scale"`        // 1-3, 0 = engine default
	Timeout      string `yaml:"timeout"`      // asset load + capture budget
	StrictAssets bool   `yaml:"strictAssets"` // fail instead of falling back
}

// BrowserConfig configures headless Chrome.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`       // empty = ROD_BROWSER_BIN or rod-managed Chromium
	NoSandbox bool   `yaml:"noSandbox"` // required in most containers
}

// ThemeConfig overrides card colors and geometry. Zero values keep defaults.
type ThemeConfig struct {
	Background   string  `yaml:"background"`
	Card         string  `yaml:"card"`
	Text         string  `yaml:"text"`
	Muted        string  `yaml:"muted"`
	CornerRadius float64 `yaml:"cornerRadius"`
}

// AssetsConfig defines template overrides.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
	ExtraCSS string `yaml:"extraCSS"` // appended to the card style
}

// LogConfig defines logging output.
type LogConfig struct {
	Level     string `yaml:"level"`  // debug, info, warn, error
	Format    string `yaml:"format"` // text, json
	File      string `yaml:"file"`   // empty = stdout
	MaxSizeMB int    `yaml:"maxSizeMB"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Render: RenderConfig{
			Engine:  EngineChrome,
			Timeout: DefaultRenderTime,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// RenderTimeout returns the parsed render timeout, or the default when unset.
// Call Validate first; an unparsable value falls back to the default.
func (c *Config) RenderTimeout() time.Duration {
	return durationOr(c.Render.Timeout, DefaultRenderTime)
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return durationOr(c.Server.ReadTimeout, DefaultReadTimeout)
}

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return durationOr(c.Server.WriteTimeout, DefaultWriteTimeout)
}

func durationOr(value, fallback string) time.Duration {
	if value == "" {
		value = fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// Validate checks enums, bounds and field lengths.
// Called automatically by LoadConfig, but available for configs built in code.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := c.validateTheme(); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.extraCSS", c.Assets.ExtraCSS, MaxCSSLength); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateServer() error {
	for _, d := range []struct{ name, value string }{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
	} {
		if err := validateDuration(d.name, d.value); err != nil {
			return err
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("%w: server.maxBodyBytes must be positive, got %d", ErrInvalidConfig, c.Server.MaxBodyBytes)
	}
	for i, origin := range c.Server.CORS.AllowedOrigins {
		if err := validateFieldLength(fmt.Sprintf("server.cors.allowedOrigins[%d]", i), origin, MaxOriginLength); err != nil {
			return err
		}
	}
	if c.Server.CORS.MaxAge < 0 {
		return fmt.Errorf("%w: server.cors.maxAge must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateRender() error {
	switch strings.ToLower(c.Render.Engine) {
	case "", EngineChrome, EngineCanvas:
	default:
		return fmt.Errorf("%w: render.engine %q (must be chrome or canvas)", ErrInvalidConfig, c.Render.Engine)
	}
	if c.Render.Scale != 0 && (c.Render.Scale < MinScale || c.Render.Scale > MaxScale) {
		return fmt.Errorf("%w: render.scale must be between %d and %d, got %d", ErrInvalidConfig, MinScale, MaxScale, c.Render.Scale)
	}
	return validateDuration("render.timeout", c.Render.Timeout)
}

func (c *Config) validateTheme() error {
	for _, col := range []struct{ name, value string }{
		{"theme.background", c.Theme.Background},
		{"theme.card", c.Theme.Card},
		{"theme.text", c.Theme.Text},
		{"theme.muted", c.Theme.Muted},
	} {
		if col.value != "" && !hexColorPattern.MatchString(col.value) {
			return fmt.Errorf("%w: %s %q (must be #rgb or #rrggbb)", ErrInvalidConfig, col.name, col.value)
		}
	}
	if c.Theme.CornerRadius < 0 || c.Theme.CornerRadius > 64 {
		return fmt.Errorf("%w: theme.cornerRadius must be between 0 and 64, got %.1f", ErrInvalidConfig, c.Theme.CornerRadius)
	}
	return nil
}

func (c *Config) validateLog() error {
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidConfig, c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 {
		return fmt.Errorf("%w: log.maxSizeMB must not be negative", ErrInvalidConfig)
	}
	return validateFieldLength("log.file", c.Log.File, MaxPathLength)
}

func validateDuration(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, name, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, name, value)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Missing keys keep the values from DefaultConfig.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the locations LoadConfig tries for a config name.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
