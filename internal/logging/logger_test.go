package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_JSONLevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Out: &buf})
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := WithComponent("engine")
	l.Info().Msg("hidden")
	l.Warn().Str("claimId", "a").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %v", err)
	}
	if entry["component"] != "engine" {
		t.Errorf("Expected component engine, got %v", entry["component"])
	}
	if entry["claimId"] != "a" {
		t.Errorf("Expected claimId a, got %v", entry["claimId"])
	}
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "chatty", Format: "json", Out: &buf})

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %s", zerolog.GlobalLevel())
	}
}
