package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gardenvision/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log files served by the /logs endpoints, one per level.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Logger provides leveled logging (info/warning/error) to rotated files and stdout/stderr.
type Logger struct {
	zap    *zap.Logger
	sugar  *zap.SugaredLogger
	logDir string
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(cfg *config.Config) *Logger {
	if err := os.MkdirAll(cfg.LogDirectory, 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Printf("Unknown log level %q, using info", cfg.LogLevel)
	}

	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(consoleConfig)

	only := func(lvl zapcore.Level) zap.LevelEnablerFunc {
		return func(l zapcore.Level) bool { return l == lvl && level.Enabled(l) }
	}
	atLeast := func(lvl zapcore.Level) zap.LevelEnablerFunc {
		return func(l zapcore.Level) bool { return l >= lvl && level.Enabled(l) }
	}
	below := func(lvl zapcore.Level) zap.LevelEnablerFunc {
		return func(l zapcore.Level) bool { return l < lvl && level.Enabled(l) }
	}

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, rotating(cfg.LogDirectory, InfoFile), only(zapcore.InfoLevel)),
		zapcore.NewCore(fileEncoder, rotating(cfg.LogDirectory, WarningFile), only(zapcore.WarnLevel)),
		zapcore.NewCore(fileEncoder, rotating(cfg.LogDirectory, ErrorFile), atLeast(zapcore.ErrorLevel)),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), below(zapcore.ErrorLevel)),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), atLeast(zapcore.ErrorLevel)),
	)

	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{
		zap:    z,
		sugar:  z.Sugar(),
		logDir: cfg.LogDirectory,
	}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	z := zap.NewNop()
	return &Logger{zap: z, sugar: z.Sugar()}
}

func rotating(dir, name string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     28,
	})
}

// Zap exposes the structured logger for callers that log fields.
func (l *Logger) Zap() *zap.Logger {
	return l.zap.WithOptions(zap.AddCallerSkip(-1))
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	if l.logDir == "" {
		return nil
	}
	switch fileName {
	case InfoFile, WarningFile, ErrorFile:
	default:
		return fmt.Errorf("unknown log file %q", fileName)
	}

	filePath := filepath.Join(l.logDir, fileName)
	if err := os.Truncate(filePath, 0); err != nil && !os.IsNotExist(err) {
		l.Error("Error truncating %s: %v", fileName, err)
		return err
	}

	l.Info("File content has been cleared: %s", fileName)
	return nil
}
