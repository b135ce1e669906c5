package logging

import (
	"testing"

	"github.com/mikey/llm-review-triage/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{" warn ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitLogger(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("logging.level", "warn")
	v.Set("logging.format", "json")

	logger, err := InitLogger(config.NewFromViper(v))
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestInitLoggerDefaultsToInfo(t *testing.T) {
	logger, err := InitLogger(config.NewFromViper(config.NewEmptyViper()))
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled by default")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be enabled by default")
	}
}
