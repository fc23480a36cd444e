package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: component,
		Handler:   slog.NewJSONHandler(&buf, nil),
	})
	return logger, &buf
}

func decodeRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v (raw %q)", err, buf.String())
	}
	return record
}

func TestLoggerAddsComponent(t *testing.T) {
	logger, buf := newBufferLogger(ComponentWorker)
	logger.Info("Processing batch", "batch_size", 10)

	record := decodeRecord(t, buf)
	if record["component"] != ComponentWorker {
		t.Errorf("component = %v, want %v", record["component"], ComponentWorker)
	}
	if record["msg"] != "Processing batch" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["batch_size"] != float64(10) {
		t.Errorf("batch_size = %v, want 10", record["batch_size"])
	}
}

func TestWithComponent(t *testing.T) {
	logger, buf := newBufferLogger(ComponentApp)
	scoped := logger.WithComponent(ComponentAMQP)

	if scoped.Component() != ComponentAMQP {
		t.Fatalf("Component() = %q, want %q", scoped.Component(), ComponentAMQP)
	}

	scoped.Warn("Channel closed")
	record := decodeRecord(t, buf)
	if record["component"] != ComponentAMQP {
		t.Errorf("component = %v, want %v", record["component"], ComponentAMQP)
	}
}

func TestWithCarriesAttributes(t *testing.T) {
	logger, buf := newBufferLogger(ComponentStorage)
	logger.With("user_id", int64(7)).Error("Query failed")

	record := decodeRecord(t, buf)
	if record["user_id"] != float64(7) {
		t.Errorf("user_id = %v, want 7", record["user_id"])
	}
	if record["component"] != ComponentStorage {
		t.Errorf("component = %v, want %v", record["component"], ComponentStorage)
	}
}
