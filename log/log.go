// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package log defines the logger interface shared by the depscan packages.
// Libraries log through the static functions below; binaries swap the backend
// with SetLogger, e.g. for the zap logger returned by NewZapLogger.
package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the depscan logging interface.
type Logger interface {
	// Logs in different log levels, either formatted or unformatted.
	Errorf(format string, args ...any)
	Error(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Debugf(format string, args ...any)
	Debug(args ...any)
}

var logger Logger = &DefaultLogger{}

// SetLogger replaces the logger used by the static logging functions.
func SetLogger(l Logger) { logger = l }

// Errorf logs a formatted error.
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }

// Warnf logs a formatted warning.
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }

// Infof logs a formatted info message.
func Infof(format string, args ...any) { logger.Infof(format, args...) }

// Debugf logs a formatted debug message.
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }

// Error logs an error.
func Error(args ...any) { logger.Error(args...) }

// Warn logs a warning.
func Warn(args ...any) { logger.Warn(args...) }

// Info logs an info message.
func Info(args ...any) { logger.Info(args...) }

// Debug logs a debug message.
func Debug(args ...any) { logger.Debug(args...) }

// DefaultLogger is in place until SetLogger is called. It writes leveled,
// human-readable lines to Out, or to stderr when Out is nil.
type DefaultLogger struct {
	// Whether debug logs should be shown.
	Verbose bool
	Out     io.Writer

	once sync.Once
	s    *zap.SugaredLogger
}

func (l *DefaultLogger) sugar() *zap.SugaredLogger {
	l.once.Do(func() {
		var out io.Writer = os.Stderr
		if l.Out != nil {
			out = l.Out
		}
		level := zapcore.InfoLevel
		if l.Verbose {
			level = zapcore.DebugLevel
		}
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		enc.CallerKey = ""
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(out)), level)
		l.s = zap.New(core).Sugar()
	})
	return l.s
}

// Errorf implements Logger.
func (l *DefaultLogger) Errorf(format string, args ...any) { l.sugar().Errorf(format, args...) }

// Warnf implements Logger.
func (l *DefaultLogger) Warnf(format string, args ...any) { l.sugar().Warnf(format, args...) }

// Infof implements Logger.
func (l *DefaultLogger) Infof(format string, args ...any) { l.sugar().Infof(format, args...) }

// Debugf implements Logger.
func (l *DefaultLogger) Debugf(format string, args ...any) { l.sugar().Debugf(format, args...) }

// Error implements Logger.
func (l *DefaultLogger) Error(args ...any) { l.sugar().Error(args...) }

// Warn implements Logger.
func (l *DefaultLogger) Warn(args ...any) { l.sugar().Warn(args...) }

// Info implements Logger.
func (l *DefaultLogger) Info(args ...any) { l.sugar().Info(args...) }

// Debug implements Logger.
func (l *DefaultLogger) Debug(args ...any) { l.sugar().Debug(args...) }
