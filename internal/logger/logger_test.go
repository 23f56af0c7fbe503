package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fd1az/swapquote/internal/logger"
)

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "swapquote", func(context.Context) string { return "abc123" })

	log.Info(context.Background(), "quote computed", "pair", "KAR/KUSD")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}

	for key, want := range map[string]string{
		"msg":      "quote computed",
		"service":  "swapquote",
		"pair":     "KAR/KUSD",
		"trace_id": "abc123",
		"level":    "INFO",
	} {
		if got, _ := entry[key].(string); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if _, ok := entry["file"]; !ok {
		t.Error("expected caller file attribute")
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelWarn, "swapquote", nil)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	log.Warn(context.Background(), "shown")
	if buf.Len() == 0 {
		t.Error("expected warn output")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]logger.Level{
		"debug":   logger.LevelDebug,
		"INFO":    logger.LevelInfo,
		"warn":    logger.LevelWarn,
		"warning": logger.LevelWarn,
		"error":   logger.LevelError,
		"":        logger.LevelInfo,
		"verbose": logger.LevelInfo,
	}
	for in, want := range tests {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
