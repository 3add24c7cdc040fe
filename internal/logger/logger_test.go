package logger

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLogger_LevelGating(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := captureLog(t)
			l := New(tt.level)
			if l.IsDebug() != tt.wantDebug || l.IsInfo() != tt.wantInfo {
				t.Errorf("IsDebug=%v IsInfo=%v", l.IsDebug(), l.IsInfo())
			}
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")

			out := buf.String()
			if got := strings.Contains(out, "[DEBUG] d"); got != tt.wantDebug {
				t.Errorf("debug printed=%v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "[INFO] i"); got != tt.wantInfo {
				t.Errorf("info printed=%v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "[WARN] w"); got != tt.wantWarn {
				t.Errorf("warn printed=%v, want %v", got, tt.wantWarn)
			}
			if !strings.Contains(out, "[ERROR] e") {
				t.Error("error must always print")
			}
		})
	}
}

func TestLogger_WithPrefix(t *testing.T) {
	buf := captureLog(t)
	l := New("info").With("store=uk").With("run=42")
	l.Info("published %d rows", 3)

	want := "[INFO] [store=uk run=42] published 3 rows"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected %q in %q", want, buf.String())
	}
}
