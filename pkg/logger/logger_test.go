package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit(t *testing.T) {
	if err := Init("debug", ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Log == nil {
		t.Fatal("expected global logger to be set")
	}
	if Named("sync") == nil {
		t.Fatal("expected named logger")
	}
}

func TestNamedBeforeInit(t *testing.T) {
	old := Log
	Log = nil
	defer func() { Log = old }()

	if Named("sync") == nil {
		t.Fatal("expected no-op logger before Init")
	}
}
