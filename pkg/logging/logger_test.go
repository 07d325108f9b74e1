package logging

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, false)

	l.Info("resolved %d strategies", 3)
	l.Warn("keyring locked")
	l.Error("no credential found")
	l.Debug("should be suppressed")

	out := buf.String()
	assert.Contains(t, out, "resolved 3 strategies")
	assert.Contains(t, out, "keyring locked")
	assert.Contains(t, out, "no credential found")
	assert.NotContains(t, out, "suppressed")
}

func TestLoggerDebugEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, true)

	l.Debug("strategy %s not applicable", "ambient")
	assert.Contains(t, buf.String(), "[DEBUG] strategy ambient not applicable")
}

func TestSecretNeverFormats(t *testing.T) {
	t.Parallel()

	s := Secret("ya29.super-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		secrets []string
		want    string
	}{
		{
			name:    "single occurrence",
			in:      "token ya29.abcdef used",
			secrets: []string{"ya29.abcdef"},
			want:    "token [REDACTED] used",
		},
		{
			name:    "short values left alone",
			in:      "key ab used",
			secrets: []string{"ab"},
			want:    "key ab used",
		},
		{
			name:    "multiple secrets",
			in:      "first=aaaa second=bbbb",
			secrets: []string{"aaaa", "bbbb"},
			want:    "first=[REDACTED] second=[REDACTED]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Redact(tt.in, tt.secrets))
		})
	}
}
