// Copyright 2026 The Webroute Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rlog is the router's small structured-logging wrapper: a
// slog.Logger factory with service metadata baked in, plus a context helper
// that enriches log lines with the OpenTelemetry trace/span IDs of the
// request being routed.
package rlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// HandlerType selects the slog.Handler a Logger's output is formatted with.
type HandlerType string

const (
	JSONHandler HandlerType = "json"
	TextHandler HandlerType = "text"
)

// Config configures a Logger. The zero value is a sane default: JSON output
// to stdout at info level.
type Config struct {
	Handler     HandlerType
	Output      io.Writer
	Level       slog.Leveler
	ServiceName string
	AddSource   bool
}

// New builds a slog.Logger from cfg, annotated with service_name when set.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Level == nil {
		cfg.Level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var h slog.Handler
	switch cfg.Handler {
	case TextHandler:
		h = slog.NewTextHandler(cfg.Output, opts)
	default:
		h = slog.NewJSONHandler(cfg.Output, opts)
	}

	l := slog.New(h)
	if cfg.ServiceName != "" {
		l = l.With("service_name", cfg.ServiceName)
	}
	return l
}

// discard is the package-level no-op logger, used by router.New as its
// zero-configuration default so routing never forces a logging dependency on
// callers that don't want one.
var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Discard returns the singleton no-op logger.
func Discard() *slog.Logger { return discard }

// fieldTraceID and fieldSpanID are the semantic-convention-ish attribute
// names used to correlate a log line with the active OpenTelemetry span.
const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// FromContext returns base enriched with the trace and span IDs of ctx's
// active OpenTelemetry span, if any. Safe to call with a context carrying no
// span: base is returned unchanged.
func FromContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return base
	}
	return base.With(fieldTraceID, sc.TraceID().String(), fieldSpanID, sc.SpanID().String())
}
