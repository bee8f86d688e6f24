// Package logutil builds the structured loggers used for capture sessions.
package logutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures log destination, format and file rotation.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or a file path
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions returns rotation settings suitable for long captures.
func DefaultOptions(path string) Options {
	return Options{
		Level:      "info",
		Format:     "json",
		Output:     path,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// New creates a zap logger from opts. File outputs rotate via lumberjack.
func New(opts Options) (*zap.Logger, error) {
	writeSyncer, err := newWriteSyncer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}

	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	core := zapcore.NewCore(newEncoder(opts.Format), writeSyncer, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func newEncoder(format string) zapcore.Encoder {
	config := zap.NewProductionEncoderConfig()
	config.TimeKey = "timestamp"
	config.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	config.LevelKey = "level"
	config.EncodeLevel = zapcore.LowercaseLevelEncoder
	config.MessageKey = "message"

	if format == "console" {
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		return zapcore.NewConsoleEncoder(config)
	}
	return zapcore.NewJSONEncoder(config)
}

func newWriteSyncer(opts Options) (zapcore.WriteSyncer, error) {
	switch opts.Output {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		logDir := filepath.Dir(opts.Output)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		lumber := &lumberjack.Logger{
			Filename:   opts.Output,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		return zapcore.AddSync(lumber), nil
	}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// SessionLogger annotates every entry with the identity of one capture session.
type SessionLogger struct {
	*zap.Logger
	port      string
	startTime time.Time
}

// NewSessionLogger creates a logger scoped to a single port session.
func NewSessionLogger(base *zap.Logger, port string, baudRate int) *SessionLogger {
	logger := base.With(
		zap.String("port", port),
		zap.Int("baud_rate", baudRate),
		zap.String("component", "capture"),
	)

	return &SessionLogger{
		Logger:    logger,
		port:      port,
		startTime: time.Now(),
	}
}

// LogStart logs the beginning of a capture session.
func (sl *SessionLogger) LogStart(outputPath string) {
	sl.Info("Capture started",
		zap.String("output_file", outputPath),
		zap.Time("start_time", sl.startTime),
	)
}

// LogChunk logs a received data chunk at debug level.
func (sl *SessionLogger) LogChunk(n int, total int64) {
	sl.Debug("Data received",
		zap.Int("chunk_bytes", n),
		zap.Int64("total_bytes", total),
	)
}

// LogReadError logs a failed read with session context.
func (sl *SessionLogger) LogReadError(err error, total int64) {
	sl.Error("Read failed",
		zap.Error(err),
		zap.Int64("total_bytes", total),
		zap.Duration("elapsed", time.Since(sl.startTime)),
	)
}

// LogEnd logs the session summary.
func (sl *SessionLogger) LogEnd(total int64) {
	sl.Info("Capture finished",
		zap.Int64("total_bytes", total),
		zap.Duration("duration", time.Since(sl.startTime)),
	)
}

// Close flushes any buffered log entries.
func Close(logger *zap.Logger) error {
	return logger.Sync()
}
