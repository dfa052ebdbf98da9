package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpuwatch-project/gpuwatch/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{"info", INFO},
		{"warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"fatal", FATAL},
		{"bogus", INFO},
		{"", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "INFO", INFO.String())
	assert.Equal(t, "WARN", WARN.String())
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "FATAL", FATAL.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestLoggerFileOutput(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLogger(&config.LogConfig{
		Level:     "info",
		Format:    "text",
		Output:    "file",
		Directory: dir,
	})
	require.NoError(t, err)
	defer l.Close()

	l.Infof("backend selected: %s", "mock")
	l.WithField("device", 0).Warn("fan speed unavailable")

	logFile := filepath.Join(dir, "gpuwatch-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "backend selected: mock")
	assert.Contains(t, content, "device=0")
	assert.Contains(t, content, "WARN")
}

func TestLoggerLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLogger(&config.LogConfig{
		Level:     "error",
		Format:    "text",
		Output:    "file",
		Directory: dir,
	})
	require.NoError(t, err)
	defer l.Close()

	l.Debugf("should be filtered")
	l.Infof("should be filtered too")
	l.Errorf("should appear")

	logFile := filepath.Join(dir, "gpuwatch-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	content := string(data)
	assert.NotContains(t, content, "filtered")
	assert.Contains(t, content, "should appear")
}

func TestLoggerJSONFormat(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLogger(&config.LogConfig{
		Level:     "info",
		Format:    "json",
		Output:    "file",
		Directory: dir,
	})
	require.NoError(t, err)
	defer l.Close()

	l.WithField("backend", "hardware").Info("initialized")

	logFile := filepath.Join(dir, "gpuwatch-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"level":"INFO"`)
	assert.Contains(t, line, `"backend":"hardware"`)
}
