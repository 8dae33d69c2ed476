// Package logger builds the logrus logger used by the server and the CLI.
//
// Output goes to stdout by default. When a file is configured, entries are
// written through lumberjack, which rotates the file once it reaches MaxSizeMB.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrInvalidLevel is returned for unknown level names.
var ErrInvalidLevel = errors.New("invalid log level")

// Rotation defaults for file output.
const (
	DefaultMaxSizeMB = 20
	maxBackups       = 3
	maxAgeDays       = 28
)

// Options configures New.
type Options struct {
	Level     string // debug, info, warn, error (default info)
	Format    string // text or json (default text)
	File      string // empty = stdout
	MaxSizeMB int    // rotation threshold for File
}

// New returns a configured logger and a closer that flushes the rotating
// file, if any. The closer is never nil.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return log, nopCloser{}, nil
	}

	size := opts.MaxSizeMB
	if size <= 0 {
		size = DefaultMaxSizeMB
	}
	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    size,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	log.SetOutput(lj)
	return log, lj, nil
}

// ParseLevel maps a level name to a logrus level. Empty means info.
func ParseLevel(s string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Discard returns a logger that drops every entry. Used as the library default.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
