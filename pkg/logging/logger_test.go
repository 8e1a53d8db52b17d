/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for logger configuration, formatting and log file retention.
*/

package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.MaxFiles = 0
	assert.Error(t, cfg.Validate())
}

func TestCustomFormatter(t *testing.T) {
	f := &CustomFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.WarnLevel,
		Message: "field a is null",
		Data: logrus.Fields{
			"run_id": "0123456789abcdef",
			"path":   "RootMessage.a",
			"count":  2,
			"err":    errors.New("bad input"),
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "WARNING [01234567] field a is null count=2 err=\"bad input\" path=RootMessage.a\n", string(out))
}

func TestCustomFormatterColorsAndTimestamp(t *testing.T) {
	f := &CustomFormatter{Timestamp: true, Colors: true}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Message: "done",
		Data:    logrus.Fields{},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\033[36m2024-01-02 03:04:05.000\033[0m")
	assert.Contains(t, string(out), "\033[32mINFO\033[0m done\n")
}

func TestLoggerConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = LogLevelInfo
	cfg.Timestamp = false

	l, err := NewLoggerTo(cfg, &buf)
	require.NoError(t, err)
	defer l.Close()

	l.LogRun("run-1", "stdin", map[string]interface{}{"package": "acme"})
	l.LogWarnings("run-1", []string{"field RootMessage.a is null"})
	l.GetLogger().Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "INFO [run-1] Generation started package=acme source=stdin")
	assert.Contains(t, out, "WARNING [run-1] field RootMessage.a is null")
	assert.NotContains(t, out, "hidden")
	assert.Empty(t, l.FilePath())
}

func TestLoggerFileOutputAndRetention(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"protoinfer_old1.log", "protoinfer_old2.log", "protoinfer_old3.log"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))
		stamp := time.Now().Add(-time.Duration(10-i) * time.Hour)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = LogLevelInfo
	cfg.Format = LogFormatJSON
	cfg.OutputDir = dir
	cfg.MaxFiles = 2

	l, err := NewLoggerTo(cfg, &buf)
	require.NoError(t, err)
	l.LogResult("run-2", 3, 1, "out.proto")
	path := l.FilePath()
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Generation finished"`)
	assert.Contains(t, buf.String(), `"run_id":"run-2"`)

	files, err := LogFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "protoinfer_old3.log"), files[0])
	assert.Equal(t, path, files[1])
}

func TestNewLoggerRejectsInvalidConfig(t *testing.T) {
	_, err := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "yaml"})
	assert.Error(t, err)
}
