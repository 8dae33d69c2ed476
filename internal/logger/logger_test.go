package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{"", logrus.InfoLevel, false},
		{"info", logrus.InfoLevel, false},
		{"DEBUG", logrus.DebugLevel, false},
		{"warn", logrus.WarnLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"verbose", logrus.InfoLevel, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("error = %v, want ErrInvalidLevel", err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_Stdout(t *testing.T) {
	t.Parallel()

	log, closer, err := New(Options{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer closer.Close()

	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter = %T, want *logrus.JSONFormatter", log.Formatter)
	}
}

func TestNew_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tweetcard.log")
	log, closer, err := New(Options{File: path, Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.WithField("request_id", "abc").Info("rendered")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"request_id":"abc"`) {
		t.Errorf("log file missing field, got %s", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, _, err := New(Options{Level: "loud"}); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("New() error = %v, want ErrInvalidLevel", err)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	log := Discard()
	log.Error("dropped")
	if log.IsLevelEnabled(logrus.ErrorLevel) {
		t.Error("Discard logger should not enable error level")
	}
}
