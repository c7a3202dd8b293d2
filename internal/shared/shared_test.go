package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  log.Level
	}{
		{name: "empty defaults to info", input: "", want: log.InfoLevel},
		{name: "debug", input: "debug", want: log.DebugLevel},
		{name: "warn", input: "warn", want: log.WarnLevel},
		{name: "garbage defaults to info", input: "loud", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "component=test") {
			t.Errorf("expected component field in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "app.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written")
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if !IsValidID(a) {
		t.Errorf("expected %q to be a valid ID", a)
	}
	if IsValidID("not-an-id") {
		t.Error("expected not-an-id to be rejected")
	}
}
