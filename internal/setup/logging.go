package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLoggers creates the main and database loggers. Both write to stdout
// and to a session directory under logDir so past runs stay inspectable.
func newLoggers(level string, logDir string) (*zap.Logger, *zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	sessionDir := filepath.Join(logDir, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(sessionDir, os.ModePerm); err != nil {
		// Fall back to stdout-only logging
		sessionDir = ""
	}

	mainLogger, err := newLogger(zapLevel, sessionDir, "main.log")
	if err != nil {
		return nil, nil, err
	}

	dbLogger, err := newLogger(zapLevel, sessionDir, "database.log")
	if err != nil {
		return nil, nil, err
	}

	return mainLogger, dbLogger, nil
}

// newLogger builds a console-encoded logger writing to stdout plus an
// optional log file.
func newLogger(level zapcore.Level, sessionDir, filename string) (*zap.Logger, error) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	if sessionDir != "" {
		path := filepath.Join(sessionDir, filename)

		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
		}

		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), level))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}
