package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "default config",
			config: DefaultConfig(),
		},
		{
			name:   "empty config",
			config: Config{},
		},
		{
			name:   "invalid log level defaults to info",
			config: Config{LogLevel: "invalid", OutputPath: "stderr"},
		},
		{
			name:    "unwritable file",
			config:  Config{OutputPath: filepath.Join(t.TempDir(), "missing", "out.log")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if logger == nil && !tt.wantErr {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"invalid", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter_StructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{LogLevel: "debug"}, &buf)

	logger.WithRequestID("req-123").Debug("request sent", zap.String("method", "GET"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["service"] != "ctfd-admin" {
		t.Errorf("service = %v", entry["service"])
	}
	if entry["level"] != "debug" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(DefaultConfig(), &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{LogLevel: "info"}, &buf)

	if logger.WithContext(context.Background()) != logger.Logger {
		t.Error("WithContext() without a span should return the base logger")
	}

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.WithContext(ctx).Info("traced")
	if !strings.Contains(buf.String(), spanCtx.TraceID().String()) {
		t.Errorf("trace_id missing from %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("discarded")
	if err := logger.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}

func TestGetOutputWriter(t *testing.T) {
	writer, err := getOutputWriter("stdout")
	if err != nil || writer != os.Stdout {
		t.Errorf("getOutputWriter(\"stdout\") = %v, %v", writer, err)
	}

	writer, err = getOutputWriter("stderr")
	if err != nil || writer != os.Stderr {
		t.Errorf("getOutputWriter(\"stderr\") = %v, %v", writer, err)
	}

	path := filepath.Join(t.TempDir(), "ctfd-admin.log")
	writer, err = getOutputWriter(path)
	if err != nil {
		t.Fatalf("getOutputWriter(file) error = %v", err)
	}
	writer.(*os.File).Close()
}
