package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.raw), "ParseLevel(%q)", tt.raw)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LevelWarn)

	l.Debug("[test] hidden %d", 1)
	l.Info("[test] hidden %d", 2)
	l.Warn("[test] shown %d", 3)
	l.Error("[test] shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[test] shown 3")
	assert.Contains(t, out, "[test] shown 4")
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LevelInfo)

	l.Debug("before")
	l.SetLevel(LevelDebug)
	l.Debug("after")

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestNilLoggerIsSilent(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("nothing") })
}
