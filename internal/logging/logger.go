// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger, adding a Security level that flags
// entries distinctly from ordinary application logs.
type Logger struct {
	*zap.SugaredLogger
}

// Security logs at Warn level tagged so deployments can route it to a
// separate sink (e.g. a SIEM) without touching the rest of the log stream.
func (l *Logger) Security(args ...interface{}) {
	l.SugaredLogger.Warn(append([]interface{}{"[security] "}, args...)...)
}

func (l *Logger) Desugar() *zap.Logger {
	return l.SugaredLogger.Desugar()
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.ErrorLevel
	}
	return l
}

// NewLogger builds a Logger writing JSON-encoded entries at the given level
// to both stderr and logFile (when non-empty).
func NewLogger(level, logFile string) *Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	outputs := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}

	if logFile != "" {
		if f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
			outputs = append(outputs, zapcore.AddSync(f))
		}
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.NewMultiWriteSyncer(outputs...),
		parseLevel(level),
	)

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &Logger{SugaredLogger: zl.Sugar()}
}
