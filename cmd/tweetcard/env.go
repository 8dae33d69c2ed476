package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-tweetcard"
)

// cardGenerator is the part of *tweetcard.Generator the commands use.
type cardGenerator interface {
	Generate(ctx context.Context, f tweetcard.Fields) (*tweetcard.Result, error)
	Compose(f tweetcard.Fields) (*tweetcard.Document, error)
	Close() error
}

// Compile-time interface implementation check.
var _ cardGenerator = (*tweetcard.Generator)(nil)

// Environment holds injectable dependencies for testability.
// Covers I/O streams, the clock, the process environment and the generator factory.
type Environment struct {
	Context      context.Context
	Now          func() time.Time
	Stdin        io.Reader
	Stdout       io.Writer
	Stderr       io.Writer
	Getenv       func(string) string
	Environ      func() []string
	NewGenerator func(opts ...tweetcard.Option) (cardGenerator, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Context: context.Background(),
		Now:     time.Now,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewGenerator: func(opts ...tweetcard.Option) (cardGenerator, error) {
			return tweetcard.NewGenerator(opts...)
		},
	}
}
