package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("New returned nil logger")
	}

	if err := l.Init("debug"); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if !l.Log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}

	if err := l.Init("Info"); err != nil {
		t.Fatalf("Init is case-insensitive, got error: %v", err)
	}
	if l.Log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be disabled at info")
	}
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	err := l.Init("loud")
	if err == nil {
		t.Fatal("expected error for unknown level")
	}
	if !strings.Contains(err.Error(), `"loud"`) {
		t.Errorf("error should name the level, got %q", err)
	}
	if l.Log.Core().Enabled(zapcore.FatalLevel) {
		t.Error("logger must stay a no-op after a failed Init; report the error elsewhere")
	}
}
