package main

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tweetcard/internal/config"
	"github.com/alnah/go-tweetcard/internal/server"
)

// runServe runs the HTTP server until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, err := parseServeFlags(args)
	if err != nil {
		if errors.Is(err, errHelp) {
			printServeUsage(env.Stdout)
			return nil
		}
		return err
	}

	cfg, err := resolveConfig(f.common, env)
	if err != nil {
		return err
	}
	mergeEngineFlags(f.engine, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := newLogger(cfg, f.common, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	if !f.common.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	gen, err := env.NewGenerator(generatorOptions(cfg, log)...)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()

	srv, err := server.New(gen, serverConfig(cfg, log))
	if err != nil {
		return err
	}

	log.WithField("engine", cfg.Render.Engine).Info("starting tweet card server")
	return srv.Run(ctx)
}

// serverConfig maps the file config onto the server's.
func serverConfig(cfg *config.Config, log logrus.FieldLogger) server.Config {
	return server.Config{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    cfg.ReadTimeout(),
		WriteTimeout:   cfg.WriteTimeout(),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		CORSMaxAge:     time.Duration(cfg.Server.CORS.MaxAge) * time.Second,
		Logger:         log,
	}
}
