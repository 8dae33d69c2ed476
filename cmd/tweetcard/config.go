package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tweetcard"
	"github.com/alnah/go-tweetcard/internal/config"
	"github.com/alnah/go-tweetcard/internal/hints"
	"github.com/alnah/go-tweetcard/internal/logger"
)

// resolveConfig loads the config file named by --config or TWEETCARD_CONFIG,
// then applies the environment. Flags are merged by the caller.
func resolveConfig(common commonFlags, env *Environment) (*config.Config, error) {
	envCfg, err := loadEnvConfig(env.Getenv)
	if err != nil {
		return nil, err
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeEngineFlags applies explicitly set engine flags over cfg.
func mergeEngineFlags(f engineFlags, cfg *config.Config) {
	if f.engine != "" {
		cfg.Render.Engine = strings.ToLower(f.engine)
	}
	if f.scale != 0 {
		cfg.Render.Scale = f.scale
	}
	if f.timeout != "" {
		cfg.Render.Timeout = f.timeout
	}
	if f.strictAssets {
		cfg.Render.StrictAssets = true
	}
	if f.noSandbox {
		cfg.Browser.NoSandbox = true
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
}

// newLogger builds the command logger. Console output goes to stderr so
// stdout stays clean for results; quiet and verbose override the level.
func newLogger(cfg *config.Config, common commonFlags, stderr io.Writer) (*logrus.Logger, io.Closer, error) {
	level := cfg.Log.Level
	switch {
	case common.verbose:
		level = "debug"
	case common.quiet:
		level = "error"
	}

	log, closer, err := logger.New(logger.Options{
		Level:     level,
		Format:    cfg.Log.Format,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Log.File == "" {
		log.SetOutput(stderr)
	}
	return log, closer, nil
}

// generatorOptions maps a validated config onto generator options.
func generatorOptions(cfg *config.Config, log logrus.FieldLogger) []tweetcard.Option {
	engine := tweetcard.Engine(strings.ToLower(cfg.Render.Engine))
	if engine == "" {
		engine = tweetcard.EngineChrome
	}

	opts := []tweetcard.Option{
		tweetcard.WithEngine(engine),
		tweetcard.WithScale(cfg.Render.Scale),
		tweetcard.WithTimeout(cfg.RenderTimeout()),
		tweetcard.WithTheme(themeFromConfig(cfg.Theme)),
		tweetcard.WithBrowserBin(cfg.Browser.Bin),
		tweetcard.WithNoSandbox(cfg.Browser.NoSandbox),
		tweetcard.WithLogger(log),
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, tweetcard.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Assets.ExtraCSS != "" {
		opts = append(opts, tweetcard.WithExtraCSS(cfg.Assets.ExtraCSS))
	}
	if cfg.Render.StrictAssets {
		opts = append(opts, tweetcard.WithAssetPolicy(tweetcard.AssetStrict))
	}
	return opts
}

// themeFromConfig overlays the configured colors on the default theme.
// Text colors both the name and the body.
func themeFromConfig(tc config.ThemeConfig) tweetcard.Theme {
	t := tweetcard.DefaultTheme()
	if tc.Background != "" {
		t.Background = tc.Background
	}
	if tc.Card != "" {
		t.Card = tc.Card
	}
	if tc.Text != "" {
		t.NameColor = tc.Text
		t.BodyColor = tc.Text
	}
	if tc.Muted != "" {
		t.MutedColor = tc.Muted
	}
	if tc.CornerRadius > 0 {
		t.CornerRadius = tc.CornerRadius
	}
	return t
}
