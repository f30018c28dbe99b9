package logx

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewJSONWithService(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Service: "scribe-test"})
	logger.Info().Int64("visit_id", 42).Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["service"] != "scribe-test" || entry["message"] != "hello" || entry["visit_id"] != float64(42) {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestNewLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	info := New(&buf, Config{})
	info.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level: %q", buf.String())
	}

	debug := New(&buf, Config{Debug: true})
	debug.Debug().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("debug must be written when Debug is set")
	}
}
