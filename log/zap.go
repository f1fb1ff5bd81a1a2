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

package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger builds a production zap logger writing to stderr. format is
// either "console" or "json". Debug messages are only emitted when verbose.
func NewZapLogger(format string, verbose bool) (*ZapLogger, error) {
	if format == "" {
		format = "console"
	}
	if format != "console" && format != "json" {
		return nil, fmt.Errorf("unsupported log format %q, want console or json", format)
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = format
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}
	return &ZapLogger{s: l.Sugar()}, nil
}

// NewZapLoggerFrom wraps an existing zap logger.
func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	return &ZapLogger{s: l.Sugar()}
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error { return z.s.Sync() }

// Errorf logs at error level.
func (z *ZapLogger) Errorf(format string, args ...any) { z.s.Errorf(format, args...) }

// Error logs at error level.
func (z *ZapLogger) Error(args ...any) { z.s.Error(args...) }

// Warnf logs at warning level.
func (z *ZapLogger) Warnf(format string, args ...any) { z.s.Warnf(format, args...) }

// Warn logs at warning level.
func (z *ZapLogger) Warn(args ...any) { z.s.Warn(args...) }

// Infof logs at info level.
func (z *ZapLogger) Infof(format string, args ...any) { z.s.Infof(format, args...) }

// Info logs at info level.
func (z *ZapLogger) Info(args ...any) { z.s.Info(args...) }

// Debugf logs at debug level.
func (z *ZapLogger) Debugf(format string, args ...any) { z.s.Debugf(format, args...) }

// Debug logs at debug level.
func (z *ZapLogger) Debug(args ...any) { z.s.Debug(args...) }
