/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Structured logging for protoinfer. Wraps logrus with JSON, text and custom
formats, writes to stderr so generated schemas on stdout stay clean, and optionally mirrors
every entry into a timestamped log file with retention cleanup.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

const logFilePrefix = "protoinfer_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level" mapstructure:"level"`
	Format    LogFormat `json:"format" mapstructure:"format"`
	OutputDir string    `json:"output_dir" mapstructure:"output_dir"` // Empty disables file output
	MaxFiles  int       `json:"max_files" mapstructure:"max_files"`
	Timestamp bool      `json:"timestamp" mapstructure:"timestamp"`
	Caller    bool      `json:"caller" mapstructure:"caller"`
	Colors    bool      `json:"colors" mapstructure:"colors"`
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelWarning,
		Format:    LogFormatCustom,
		MaxFiles:  10,
		Timestamp: true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
// Returns an error if the config is invalid, or nil if valid.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive when output_dir is set")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
		// ok
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		// ok
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger provides structured logging for CLI runs
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time
}

// NewLogger creates a logger writing to stderr and, when configured, a log file
func NewLogger(config *LoggerConfig) (*Logger, error) {
	return NewLoggerTo(config, os.Stderr)
}

// NewLoggerTo creates a logger whose console output goes to the given writer
func NewLoggerTo(config *LoggerConfig, console io.Writer) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	l.logger.SetOutput(console)

	if err := l.setup(console); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup(console io.Writer) error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.WarnLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}
	return l.setupFileOutput(console)
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	prettyCaller := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			DisableTimestamp: !l.config.Timestamp,
			CallerPrettyfier: prettyCaller,
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			DisableTimestamp: !l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: prettyCaller,
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}

	return nil
}

// setupFileOutput mirrors console output into a timestamped log file
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := l.startTime.Format("2006-01-02_15-04-05")
	l.filePath = filepath.Join(l.config.OutputDir, fmt.Sprintf("%s%s.log", logFilePrefix, timestamp))

	file, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"log_file": l.filePath,
		"level":    l.config.Level,
		"format":   l.config.Format,
	}).Debug("File logging initialized")

	return nil
}

// LogRun records the start of a generation run
func (l *Logger) LogRun(runID, source string, opts map[string]interface{}) {
	fields := logrus.Fields{"run_id": runID, "source": source}
	for k, v := range opts {
		fields[k] = v
	}
	l.logger.WithFields(fields).Info("Generation started")
}

// LogWarnings records every inference warning of a run
func (l *Logger) LogWarnings(runID string, warnings []string) {
	for _, w := range warnings {
		l.logger.WithField("run_id", runID).Warn(w)
	}
}

// LogResult records the outcome of a successful run
func (l *Logger) LogResult(runID string, messages, warnings int, output string) {
	l.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"messages": messages,
		"warnings": warnings,
		"output":   output,
		"duration": time.Since(l.startTime),
	}).Info("Generation finished")
}

// FilePath returns the active log file, or "" when file output is disabled
func (l *Logger) FilePath() string {
	return l.filePath
}

// Close closes the log file and removes logs beyond the retention limit
func (l *Logger) Close() error {
	if l.fileHandle == nil {
		return nil
	}
	if err := l.fileHandle.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.fileHandle = nil

	if err := CleanupOldLogs(l.config.OutputDir, l.config.MaxFiles); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}
