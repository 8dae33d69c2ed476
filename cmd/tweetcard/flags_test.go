package main

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestParseRenderFlags - Render command flags
// ---------------------------------------------------------------------------

func TestParseRenderFlags(t *testing.T) {
	t.Parallel()

	t.Run("all flags", func(t *testing.T) {
		t.Parallel()

		f, err := parseRenderFlags([]string{
			"--name", "Random Tweets", "--handle", "@irtph", "--body", "hello",
			"--avatar", "me.png", "--background", "https://example.com/bg.jpg",
			"--markdown", "-e", "canvas", "--scale", "2", "-t", "10s",
			"--strict-assets", "--no-sandbox", "--asset-path", "./card",
			"-o", "out.png", "--html-only", "-c", "prod", "-q", "-v",
		})
		if err != nil {
			t.Fatalf("parseRenderFlags: %v", err)
		}

		if f.card.name != "Random Tweets" || f.card.handle != "@irtph" || f.card.body != "hello" {
			t.Errorf("card = %+v", f.card)
		}
		if f.card.avatar != "me.png" || f.card.background != "https://example.com/bg.jpg" || !f.card.markdown {
			t.Errorf("card images/markdown = %+v", f.card)
		}
		want := engineFlags{engine: "canvas", scale: 2, timeout: "10s", strictAssets: true, noSandbox: true, assetPath: "./card"}
		if f.engine != want {
			t.Errorf("engine = %+v, want %+v", f.engine, want)
		}
		if f.output.path != "out.png" || !f.output.htmlOnly {
			t.Errorf("output = %+v", f.output)
		}
		if f.common.config != "prod" || !f.common.quiet || !f.common.verbose {
			t.Errorf("common = %+v", f.common)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		f, err := parseRenderFlags(nil)
		if err != nil {
			t.Fatalf("parseRenderFlags: %v", err)
		}
		if f.engine != (engineFlags{}) || f.output != (outputFlags{}) || f.card != (cardFlags{}) {
			t.Errorf("non-zero defaults: %+v", f)
		}
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		_, err := parseRenderFlags([]string{"--help"})
		if !errors.Is(err, errHelp) {
			t.Errorf("error = %v, want errHelp", err)
		}
	})

	usageErrors := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"bad scale", []string{"--scale", "big"}},
		{"missing value", []string{"--name"}},
		{"positional argument", []string{"tweet.txt"}},
		{"body and body file", []string{"--body", "x", "--body-file", "b.txt"}},
	}
	for _, tt := range usageErrors {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseRenderFlags(tt.args)
			if !errors.Is(err, ErrUsage) {
				t.Errorf("error = %v, want ErrUsage", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParseServeFlags - Serve command flags
// ---------------------------------------------------------------------------

func TestParseServeFlags(t *testing.T) {
	t.Parallel()

	t.Run("addr and engine", func(t *testing.T) {
		t.Parallel()

		f, err := parseServeFlags([]string{"-a", "127.0.0.1:8080", "--engine", "chrome", "--no-sandbox"})
		if err != nil {
			t.Fatalf("parseServeFlags: %v", err)
		}
		if f.addr != "127.0.0.1:8080" {
			t.Errorf("addr = %q", f.addr)
		}
		if f.engine.engine != "chrome" || !f.engine.noSandbox {
			t.Errorf("engine = %+v", f.engine)
		}
	})

	t.Run("card flags are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := parseServeFlags([]string{"--name", "x"})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})

	t.Run("positional argument", func(t *testing.T) {
		t.Parallel()

		_, err := parseServeFlags([]string{":3000"})
		if !errors.Is(err, ErrUsage) {
			t.Errorf("error = %v, want ErrUsage", err)
		}
	})
}
