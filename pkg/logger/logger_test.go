package logger

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/fatflowers/travelpay/pkg/config"
)

func TestNew_WritesRotatingFile(t *testing.T) {
    dir := t.TempDir()
    l, err := New(&config.Config{Log: config.LogConfig{Level: "info", Path: dir}})
    require.NoError(t, err)

    l.Infow("logger_test_event", "k", "v")
    _ = l.Sync()

    data, err := os.ReadFile(filepath.Join(dir, logFileName))
    require.NoError(t, err)
    require.Contains(t, string(data), "logger_test_event")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
    _, err := New(&config.Config{Log: config.LogConfig{Level: "loud"}})
    require.Error(t, err)
}
