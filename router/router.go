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

// Package router is a generic, composable web routing engine: it matches an
// HTTP (or WebSocket) exchange against path, method, content-negotiation,
// authority and scheme criteria to select the best registered handler, or -
// for the client-side Interceptor variant - an ordered chain of them.
//
// The package never touches wire bytes. It is deliberately silent about
// HTTP/1.x, HTTP/2, TLS, JOSE/JWK, service discovery and configuration
// loading; callers that need those bring their own transport and feed it
// request data through the minimal link.Exchange contract.
package router

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"webroute.dev/router/link"
	"webroute.dev/router/rlog"
)

// Router dispatches exchanges to a handler of type H. The zero value is not
// usable; construct one with New.
//
// Router is safe for concurrent use: reads (Resolve, Routes) never block and
// never observe a partially-mutated tree, because every write replaces the
// root with a freshly copy-on-write built tree (spec.md §5). Writes
// (RouteManager.Handler, Route.Enable/Disable/Remove) serialize on an
// internal mutex; only one writer proceeds at a time, but it never blocks a
// concurrent reader.
type Router[H any] struct {
	root    atomic.Pointer[link.Node[H]]
	writeMu sync.Mutex
	nextReg atomic.Uint64

	logger      *slog.Logger
	tracer      trace.Tracer
	meter       metric.Meter
	diagnostics DiagnosticSink

	resolveTotal   metric.Int64Counter
	resolveMatched metric.Int64Counter
}

// Option configures a Router at construction time.
type Option[H any] func(*Router[H])

// WithLogger sets the structured logger the default diagnostic sink writes
// ambiguous-path warnings to; it is unused when WithDiagnosticSink supplies
// another sink. Defaults to rlog's no-op discard logger.
func WithLogger[H any](l *slog.Logger) Option[H] {
	return func(r *Router[H]) { r.logger = l }
}

// WithTracer overrides the OpenTelemetry tracer used to span Resolve calls.
// Defaults to the tracer obtained from the global TracerProvider, which is a
// no-op until the host application installs one.
func WithTracer[H any](t trace.Tracer) Option[H] {
	return func(r *Router[H]) { r.tracer = t }
}

// WithMeter overrides the OpenTelemetry meter used to record resolve
// counters. Defaults to the meter obtained from the global MeterProvider.
func WithMeter[H any](m metric.Meter) Option[H] {
	return func(r *Router[H]) { r.meter = m }
}

// WithDiagnosticSink overrides where non-fatal routing diagnostics (currently
// just ambiguous-registration warnings) are reported. Defaults to a sink that
// logs through the configured logger.
func WithDiagnosticSink[H any](s DiagnosticSink) Option[H] {
	return func(r *Router[H]) { r.diagnostics = s }
}

// DiagnosticSink receives non-fatal routing diagnostics as they occur, so a
// host application can route them to metrics or alerts instead of (or in
// addition to) logs.
type DiagnosticSink interface {
	// RouteConflict reports that two or more distinct path templates under
	// the same authority/scheme rank as equally specific, so neither has a
	// well-defined priority over the other.
	RouteConflict(templates []string)
}

type slogDiagnosticSink struct{ logger *slog.Logger }

func (s slogDiagnosticSink) RouteConflict(templates []string) {
	s.logger.Warn("router: ambiguous path specificity", "templates", templates)
}

// New creates an empty Router.
func New[H any](opts ...Option[H]) *Router[H] {
	r := &Router[H]{
		logger: rlog.Discard(),
		tracer: otel.Tracer("webroute.dev/router"),
		meter:  otel.Meter("webroute.dev/router"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.diagnostics == nil {
		r.diagnostics = slogDiagnosticSink{logger: r.logger}
	}
	r.root.Store(link.NewRoot[H]())
	r.resolveTotal, _ = r.meter.Int64Counter("webroute.router.resolve.count")
	r.resolveMatched, _ = r.meter.Int64Counter("webroute.router.resolve.matched")
	return r
}

// NewRoute starts a fluent registration for one or more routes, committed by
// a terminal call to RouteManager.Handler.
func (r *Router[H]) NewRoute() *RouteManager[H] {
	return newRouteManager(r)
}

// ResolveResult is the outcome of a single Resolve call.
type ResolveResult[H any] struct {
	Matched            bool
	Handler            H
	Bindings           link.Bindings
	NegotiatedProduce  string
	NegotiatedLanguage string
	Err                error
}

// Resolve matches ex against the registered routes and returns the single
// best handler, per spec.md §4.4's total order. ctx parents the
// OpenTelemetry span and is passed to the resolve counters; resolution itself
// never blocks.
func (r *Router[H]) Resolve(ctx context.Context, ex link.Exchange) ResolveResult[H] {
	ctx, span := r.tracer.Start(ctx, "router.resolve", trace.WithAttributes(
		attribute.String("http.method", ex.Method()),
		attribute.String("http.path", ex.Path()),
	))
	defer span.End()

	root := r.root.Load()
	out := link.Resolve(root, ex)

	r.resolveTotal.Add(ctx, 1)
	if out.Matched {
		r.resolveMatched.Add(ctx, 1)
	}

	res := ResolveResult[H]{
		Matched:            out.Matched,
		Bindings:           out.Bindings,
		NegotiatedProduce:  out.NegotiatedProduce,
		NegotiatedLanguage: out.NegotiatedLanguage,
	}
	if out.Matched {
		res.Handler = out.Resource
		if binder, ok := ex.(link.ParameterBinder); ok {
			for _, b := range out.Bindings {
				binder.BindPathParameter(b.Name, b.Value)
			}
		}
		span.SetAttributes(attribute.Bool("router.matched", true))
		return res
	}

	span.SetAttributes(attribute.Bool("router.matched", false))
	switch out.Failure {
	case link.FailureMethodNotAllowed:
		res.Err = &MethodNotAllowedError{Allowed: out.AllowedMethods}
	case link.FailureUnsupportedMediaType:
		res.Err = &UnsupportedMediaTypeError{Supported: out.SupportedConsume}
	case link.FailureNotAcceptable:
		res.Err = &NotAcceptableError{Producible: out.ProducibleTypes}
	case link.FailureDisabled:
		res.Err = ErrDisabled
	default:
		res.Err = ErrNotFound
	}
	return res
}

// RouteInfo is a flattened, read-only view of one registered route, for
// introspection and diagnostics.
type RouteInfo struct {
	Authority string
	Scheme    string
	Path      string
	Method    string
	Consume   string
	Produce   string
	Language  string
	Enabled   bool
}

// Routes returns a snapshot of every currently registered route.
func (r *Router[H]) Routes() []RouteInfo {
	snaps := link.Extract(r.root.Load())
	out := make([]RouteInfo, 0, len(snaps))
	for _, s := range snaps {
		if !s.HasResource {
			continue
		}
		out = append(out, RouteInfo{
			Authority: s.Criteria.Authority,
			Scheme:    s.Criteria.Scheme,
			Path:      s.Criteria.Path,
			Method:    s.Criteria.Method,
			Consume:   s.Criteria.Consume,
			Produce:   s.Criteria.Produce,
			Language:  s.Criteria.Language,
			Enabled:   s.Enabled,
		})
	}
	return out
}
