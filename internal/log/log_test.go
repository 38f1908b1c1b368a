package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, true},
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if got != tt.want || (err == nil) != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v, ok=%v", tt.in, got, err, tt.want, tt.ok)
		}
	}
}

func TestJSONLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	saved := Logger
	defer func() {
		Logger = saved
		initComponentLoggers()
	}()

	Logger = NewJSONLogger(&buf, "debug")
	initComponentLoggers()
	Rebased.Info().Str("tx", "abc").Msg("submitted")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if rec["component"] != "rebased" || rec["tx"] != "abc" || rec["message"] != "submitted" {
		t.Errorf("record = %v", rec)
	}
}

func TestJSONLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, "warn")
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}
	nl := WithNetwork(l, "testnet")
	nl.Warn().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte(`"network":"testnet"`)) {
		t.Errorf("missing network field: %s", buf.String())
	}
}

func TestInit_BadLevel(t *testing.T) {
	if err := Init("chatty", false, ""); err == nil {
		t.Error("Init with unknown level should fail")
	}
}

func TestInit_ReopensLogFile(t *testing.T) {
	defer Disable()
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	if err := Init("info", true, first); err != nil {
		t.Fatalf("Init(first): %v", err)
	}
	prev := logFile
	if prev == nil {
		t.Fatal("log file handle not kept")
	}
	if err := Init("info", true, second); err != nil {
		t.Fatalf("Init(second): %v", err)
	}
	if err := prev.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("previous log file still open: Close() = %v", err)
	}

	Wallet.Info().Msg("to second")
	data, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("to second")) {
		t.Errorf("second log = %q", data)
	}

	if err := Init("info", true, ""); err != nil {
		t.Fatalf("Init(no file): %v", err)
	}
	if logFile != nil {
		t.Error("log file handle kept after Init without a file")
	}
}
