package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   logrus.Level
		wantErr bool
	}{
		{"defaults", Config{}, logrus.InfoLevel, false},
		{"debug text", Config{Level: "debug", Format: "text"}, logrus.DebugLevel, false},
		{"warn json", Config{Level: "warn", Format: "JSON"}, logrus.WarnLevel, false},
		{"bad level", Config{Level: "loud"}, 0, true},
		{"bad format", Config{Format: "xml"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if Logger.GetLevel() != tt.level {
				t.Errorf("level = %v, want %v", Logger.GetLevel(), tt.level)
			}
		})
	}
}

func TestChainReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: "debug", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer Init(Config{})

	r := NewChainReporter(logrus.Fields{"request_id": "abc"})
	r.Attempt("whois", 2, "whois-cli")
	r.Warn("whois whois: connection refused")
	r.Detail("whois-cli: failed in 12ms")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %s", len(lines), buf.String())
	}

	var attempt map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &attempt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if attempt["source"] != "whois-cli" || attempt["tier"] != float64(2) || attempt["request_id"] != "abc" {
		t.Errorf("attempt entry = %v", attempt)
	}
	if attempt["level"] != "debug" {
		t.Errorf("level = %v, want debug", attempt["level"])
	}

	var warn map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &warn); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if warn["level"] != "warning" || warn["msg"] != "whois whois: connection refused" {
		t.Errorf("warn entry = %v", warn)
	}

	var detail map[string]any
	if err := json.Unmarshal([]byte(lines[2]), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail["level"] != "debug" || detail["msg"] != "whois-cli: failed in 12ms" {
		t.Errorf("detail entry = %v", detail)
	}
}
