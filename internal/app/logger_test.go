package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/nihongo-dict/internal/config"
	"github.com/heartmarshall/nihongo-dict/pkg/ctxutil"
)

func TestNewLogger_SetsDefault(t *testing.T) {
	cfg := config.LogConfig{Level: "info", Format: "json"}
	logger := NewLogger(cfg)

	def := slog.Default()
	if def.Handler() != logger.Handler() {
		t.Error("NewLogger should set the returned logger as slog default")
	}
}

func TestNewLoggerTo_Levels(t *testing.T) {
	tests := []struct {
		level    string
		wantSlog slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerTo(&buf, config.LogConfig{Level: tt.level, Format: "text"})

			logger.Log(context.TODO(), tt.wantSlog, "should appear")
			if buf.Len() == 0 {
				t.Errorf("expected log output at level %v", tt.wantSlog)
			}

			buf.Reset()
			belowLevel := tt.wantSlog - 1
			logger.Log(context.TODO(), belowLevel, "should be suppressed")
			if buf.Len() != 0 {
				t.Errorf("level %v should suppress level %v, but got output: %s",
					tt.wantSlog, belowLevel, buf.String())
			}
		})
	}
}

func TestNewLoggerTo_TextAddSource_JSONNoSource(t *testing.T) {
	var textBuf, jsonBuf bytes.Buffer

	NewLoggerTo(&textBuf, config.LogConfig{Level: "info", Format: "text"}).Info("hello")
	NewLoggerTo(&jsonBuf, config.LogConfig{Level: "info", Format: "json"}).Info("hello")

	if !strings.Contains(textBuf.String(), "source=") {
		t.Error("text format should include source")
	}

	var m map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := m["source"]; ok {
		t.Error("json format should not include source")
	}
}

func TestNewLoggerTo_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LogConfig{Level: "info", Format: "json"}).With("component", "test")

	id := uuid.New()
	ctx := ctxutil.WithPhase(ctxutil.WithRunID(context.Background(), id), "kanjidic")
	logger.InfoContext(ctx, "phase started")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["run_id"] != id.String() {
		t.Errorf("run_id = %v, want %s", m["run_id"], id)
	}
	if m["phase"] != "kanjidic" {
		t.Errorf("phase = %v, want kanjidic", m["phase"])
	}
	if m["component"] != "test" {
		t.Errorf("component attr lost through With: %v", m)
	}

	buf.Reset()
	logger.Info("no context")
	if strings.Contains(buf.String(), "run_id") {
		t.Error("run_id should only appear when present in context")
	}
}
