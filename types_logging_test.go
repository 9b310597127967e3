package security_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	security "github.com/goliatone/go-security-jwt"
)

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := security.NewZapLogger(zap.New(core).Sugar())

	logger.Debug("debug %s", "one")
	logger.Info("info %d", 2)
	logger.Warn("warn %v", true)
	logger.Error("error %s", "four")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "debug one", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "info 2", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "warn true", entries[2].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "error four", entries[3].Message)
}

func TestZapLoggerNil(t *testing.T) {
	logger := security.NewZapLogger(nil)
	assert.NotPanics(t, func() {
		logger.Info("dropped %s", "message")
	})
	assert.NoError(t, logger.Sync())
}

func TestNormalizeLogger(t *testing.T) {
	assert.Equal(t, security.DefaultLogger(), security.NormalizeLogger(nil))

	custom := nopLogger{}
	assert.Equal(t, custom, security.NormalizeLogger(custom))
}

func TestDefaultLoggerOutput(t *testing.T) {
	out := captureStdout(t, func() {
		logger := security.DefaultLogger()
		logger.Info("issued token for %s", "john")
		logger.Error("failed\n")
	})

	assert.Equal(t, "[INF] SECURITY issued token for john\n[ERR] SECURITY failed\n", out)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	fn()
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestAPIKeyMatches(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		supplied   string
		expected   bool
	}{
		{name: "exact", configured: "key-1", supplied: "key-1", expected: true},
		{name: "trimmed", configured: " key-1\n", supplied: "\tkey-1 ", expected: true},
		{name: "case sensitive", configured: "Key-1", supplied: "key-1", expected: false},
		{name: "different", configured: "key-1", supplied: "key-2", expected: false},
		{name: "empty supplied", configured: "key-1", supplied: "", expected: false},
		{name: "empty configured", configured: "", supplied: "key-1", expected: false},
		{name: "both empty", configured: " ", supplied: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, security.APIKeyMatches(tt.configured, tt.supplied))
		})
	}
}
