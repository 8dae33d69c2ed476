package main

// Notes:
// - Shared test infrastructure for the CLI: a mock generator and an
//   Environment with buffered streams, a fixed clock and a map-backed
//   process environment, so tests never touch os.Getenv.
// - DefaultEnv: we only check every dependency is wired.

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-tweetcard"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock generator and environment
// ---------------------------------------------------------------------------

type mockGenerator struct {
	mu         sync.Mutex
	result     *tweetcard.Result
	err        error
	doc        *tweetcard.Document
	composeErr error
	fields     []tweetcard.Fields
	closed     bool
}

func (m *mockGenerator) Generate(_ context.Context, f tweetcard.Fields) (*tweetcard.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields = append(m.fields, f)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockGenerator) Compose(f tweetcard.Fields) (*tweetcard.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields = append(m.fields, f)
	if m.composeErr != nil {
		return nil, m.composeErr
	}
	return m.doc, nil
}

func (m *mockGenerator) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockGenerator) lastFields(t *testing.T) tweetcard.Fields {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.fields) == 0 {
		t.Fatal("generator was not called")
	}
	return m.fields[len(m.fields)-1]
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	vars    map[string]string
	gen     *mockGenerator
	genOpts int
}

var testNow = time.UnixMilli(1700000000123)

// newTestEnv returns an environment whose generator factory yields gen.
// A nil gen makes the factory build a real generator from the options.
func newTestEnv(gen *mockGenerator, vars map[string]string) *testEnv {
	if vars == nil {
		vars = map[string]string{}
	}
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		vars:   vars,
		gen:    gen,
	}
	te.Environment = &Environment{
		Context: context.Background(),
		Now:     func() time.Time { return testNow },
		Stdin:   strings.NewReader(""),
		Stdout:  te.stdout,
		Stderr:  te.stderr,
		Getenv:  func(k string) string { return te.vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(te.vars))
			for k, v := range te.vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewGenerator: func(opts ...tweetcard.Option) (cardGenerator, error) {
			te.genOpts = len(opts)
			if te.gen == nil {
				return tweetcard.NewGenerator(opts...)
			}
			return te.gen, nil
		},
	}
	return te
}

func okGenerator() *mockGenerator {
	return &mockGenerator{
		result: &tweetcard.Result{
			PNG:      []byte("\x89PNG fake"),
			Filename: tweetcard.Filename(testNow),
			Width:    1500,
			Height:   1500,
			Engine:   tweetcard.EngineCanvas,
		},
		doc: &tweetcard.Document{HTML: "<!DOCTYPE html><html><body>card</body></html>"},
	}
}

// ---------------------------------------------------------------------------
// TestDefaultEnv - Production wiring
// ---------------------------------------------------------------------------

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()

	if env.Context == nil {
		t.Error("Context is nil")
	}
	if env.Now == nil || env.Getenv == nil || env.Environ == nil {
		t.Error("clock or environment accessors are nil")
	}
	if env.Stdin == nil || env.Stdout == nil || env.Stderr == nil {
		t.Error("streams are nil")
	}
	if env.NewGenerator == nil {
		t.Fatal("NewGenerator is nil")
	}

	gen, err := env.NewGenerator(tweetcard.WithEngine(tweetcard.EngineCanvas))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	_ = gen.Close()
}
