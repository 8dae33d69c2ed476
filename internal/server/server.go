package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tweetcard"
	"github.com/alnah/go-tweetcard/internal/logger"
)

// Defaults applied by New to zero Config fields.
const (
	DefaultAddr            = ":3000"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 90 * time.Second
	DefaultMaxBodyBytes    = 16 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Generator renders cards. *tweetcard.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, f tweetcard.Fields) (*tweetcard.Result, error)
}

// Compile-time interface check.
var _ Generator = (*tweetcard.Generator)(nil)

// Config configures a Server. Zero values take defaults.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	AllowedOrigins  []string // empty disables CORS; "*" allows any origin
	CORSMaxAge      time.Duration
	Logger          logrus.FieldLogger
}

// Server is the HTTP transport around a Generator.
type Server struct {
	cfg    Config
	gen    Generator
	router *gin.Engine
	logger logrus.FieldLogger
}

// New builds the router. It does not listen.
func New(gen Generator, cfg Config) (*Server, error) {
	if gen == nil {
		return nil, errors.New("server: nil generator")
	}
	if cfg.MaxBodyBytes < 0 {
		return nil, fmt.Errorf("server: negative max body size %d", cfg.MaxBodyBytes)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	s := &Server{cfg: cfg, gen: gen, logger: cfg.Logger}
	s.router = s.routes()
	return s, nil
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s.logger))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(s.cfg.AllowedOrigins, s.cfg.CORSMaxAge)))
	}

	r.GET("/health", status)
	api := r.Group("/api")
	{
		api.GET("/generate-tweet", status)
		api.POST("/generate-tweet", s.generate)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	})
	return r
}

// corsConfig allows the card endpoints to be called from browsers.
func corsConfig(origins []string, maxAge time.Duration) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", requestIDHeader},
		MaxAge:        maxAge,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully, waiting up to the shutdown timeout for in-flight renders.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
