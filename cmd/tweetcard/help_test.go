package main

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPrintUsage - Main usage
// ---------------------------------------------------------------------------

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)

	for _, cmd := range []string{"render", "serve", "doctor", "version", "help"} {
		if !strings.Contains(buf.String(), "  "+cmd) {
			t.Errorf("usage missing command %q", cmd)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantStdout string
		wantStderr string
	}{
		{"no args", nil, "Usage: tweetcard <command>", ""},
		{"render", []string{"render"}, "--body-file", ""},
		{"serve", []string{"serve"}, "--addr", ""},
		{"doctor", []string{"doctor"}, "--json", ""},
		{"version", []string{"version"}, "Show version information.", ""},
		{"help", []string{"help"}, "Usage: tweetcard help [command]", ""},
		{"unknown", []string{"paint"}, "", "Unknown command: paint"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(nil, nil)
			runHelp(tt.args, env.Environment)

			if tt.wantStdout != "" && !strings.Contains(env.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", env.stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(env.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", env.stderr.String(), tt.wantStderr)
			}
		})
	}
}
