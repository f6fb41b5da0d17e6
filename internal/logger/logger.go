// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package logger wraps zerolog for go-deck-sync.
//
// The server logs JSON to stdout. The client owns the terminal with its
// status view, so it logs to a size-rotated file instead. Request- and
// pass-scoped loggers travel in context.Context and are recovered with
// FromContext or FromRequest.
package logger

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultClientLogName = "client.log"

// Logger embeds zerolog.Logger, so Info, Warn, Err and friends are called
// on it directly.
type Logger struct {
	zerolog.Logger
}

// NewLogger returns a JSON logger on stdout tagged with role.
func NewLogger(role string) *Logger {
	return newLogger(role, os.Stdout)
}

// NewClientLogger returns a logger writing to the rotated file described by
// cfg. An empty cfg.File means client.log next to the executable.
func NewClientLogger(role string, cfg config.Log) *Logger {
	return newLogger(role, rotatingFile(cfg))
}

func newLogger(role string, w io.Writer) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerFieldName = "func"
	zerolog.CallerMarshalFunc = func(pc uintptr, _ string, _ int) string {
		return runtime.FuncForPC(pc).Name()
	}

	return &Logger{
		zerolog.New(w).With().
			Str("role", role).
			Timestamp().
			Caller().
			Logger(),
	}
}

func rotatingFile(cfg config.Log) io.Writer {
	path := cfg.File
	if path == "" {
		exe, _ := os.Executable()
		path = filepath.Join(filepath.Dir(exe), defaultClientLogName)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
}

// Nop discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a copy that can take extra fields without touching
// the receiver.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.Logger.With().Logger()}
}

// WithField returns a child logger carrying key=value on every entry.
func (l *Logger) WithField(key, value string) *Logger {
	return &Logger{l.Logger.With().Str(key, value).Logger()}
}

// FromRequest returns the logger attached to r's context.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}

// FromContext returns the logger attached to ctx, or zerolog's global
// logger when there is none. It never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}
