package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"ERROR", zapcore.ErrorLevel, false},
		{"loud", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseLevel(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("level = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud", Console: true}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNewNop(t *testing.T) {
	log, err := New(Config{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without outputs should be a no-op")
	}
}

func TestConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Console: true, ConsoleWriter: &buf})
	if err != nil {
		t.Fatal(err)
	}

	log.Info("hidden")
	log.Warn("normal matrix fallback", zap.String("element", "cube"))
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, "normal matrix fallback") || !strings.Contains(out, "cube") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.log")
	cfg := DefaultFileConfig(path)
	cfg.Compress = false

	log, err := New(Config{Level: "debug", File: cfg})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("frame rendered", zap.Int("shown", 12))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "DEBUG") || !strings.Contains(line, "frame rendered") {
		t.Errorf("log file = %q", line)
	}
}
