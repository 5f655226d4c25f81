package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: level, Colorize: false, ShowTime: false, Output: &buf})
	return l, &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(WARN)

	l.Debugf("debug line")
	l.Infof("info line")
	l.Warnf("warn line")
	l.Errorf("error line")

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Errorf("suppressed levels leaked:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] warn line") || !strings.Contains(out, "[ERROR] error line") {
		t.Errorf("expected levels missing:\n%s", out)
	}
}

func TestSetLevel(t *testing.T) {
	l, buf := newTestLogger(ERROR)
	l.Debugf("hidden")
	l.SetLevel(DEBUG)
	l.Debugf("now visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("message below level was logged")
	}
	if !strings.Contains(out, "now visible") {
		t.Error("SetLevel did not take effect")
	}
}

func TestColorlessOutput(t *testing.T) {
	l, buf := newTestLogger(INFO)
	l.Infof("plain %d", 42)
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("ANSI codes in colorless output: %q", buf.String())
	}
	if got := buf.String(); got != "[INFO] plain 42\n" {
		t.Errorf("got %q", got)
	}
}

func TestColorizedOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: DEBUG, Colorize: true, ShowTime: false, Output: &buf})
	l.Errorf("boom")
	if !strings.Contains(buf.String(), colorRed) {
		t.Errorf("error not colorized: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"bogus", INFO},
		{"", INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if DEBUG.String() != "DEBUG" || ERROR.String() != "ERROR" {
		t.Error("level names wrong")
	}
	if LogLevel(42).String() != "UNKNOWN" {
		t.Error("out-of-range level should stringify as UNKNOWN")
	}
}
