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

// Package nethttp is a thin binding from net/http to a
// router.Router[http.Handler]: it implements link.Exchange over an
// *http.Request and provides a ServeMux-shaped entry point. The router core
// packages (link, pathpattern, mediarange, router) do not import net/http -
// the router core has no opinion on wire transport.
package nethttp

import (
	"context"
	"net/http"
	"strings"

	"webroute.dev/router/link"
	"webroute.dev/router/router"
)

// Exchange adapts an *http.Request to link.Exchange. It holds no response
// writer; Handler stores resolved path parameters in the request context.
type Exchange struct {
	Request *http.Request
}

var _ link.Exchange = Exchange{}

func (e Exchange) Method() string { return e.Request.Method }
func (e Exchange) Path() string   { return e.Request.URL.Path }
func (e Exchange) Header(name string) string {
	return strings.Join(e.Request.Header.Values(name), ", ")
}
func (e Exchange) Authority() string {
	if e.Request.URL.Host != "" {
		return e.Request.URL.Host
	}
	return e.Request.Host
}
func (e Exchange) Scheme() string {
	if e.Request.URL.Scheme != "" {
		return e.Request.URL.Scheme
	}
	if e.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// bindingsKey is the context.Context key path parameters are stored under.
type bindingsKey struct{}

// Bindings returns the path parameters resolve bound onto req's context.
func Bindings(req *http.Request) link.Bindings {
	b, _ := req.Context().Value(bindingsKey{}).(link.Bindings)
	return b
}

func contextWithBindings(ctx context.Context, b link.Bindings) context.Context {
	return context.WithValue(ctx, bindingsKey{}, b)
}

// Handler adapts a router.Router[http.Handler] into an http.Handler: it
// resolves the request, binds path parameters into the request context, and
// delegates to the matched handler. onError is invoked with the resolution
// error (router.ErrNotFound, *router.MethodNotAllowedError, etc.) when
// nothing matched; a nil onError falls back to a plain text 404, 405, 415 or
// 406.
func Handler(r *router.Router[http.Handler], onError func(http.ResponseWriter, *http.Request, error)) http.Handler {
	if onError == nil {
		onError = defaultOnError
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ex := Exchange{Request: req}
		result := r.Resolve(req.Context(), ex)
		if !result.Matched {
			onError(w, req, result.Err)
			return
		}
		ctx := req.Context()
		if len(result.Bindings) > 0 {
			ctx = contextWithBindings(ctx, result.Bindings)
		}
		result.Handler.ServeHTTP(w, req.WithContext(ctx))
	})
}

func defaultOnError(w http.ResponseWriter, _ *http.Request, err error) {
	status := http.StatusNotFound
	switch err.(type) {
	case *router.MethodNotAllowedError:
		status = http.StatusMethodNotAllowed
	case *router.UnsupportedMediaTypeError:
		status = http.StatusUnsupportedMediaType
	case *router.NotAcceptableError:
		status = http.StatusNotAcceptable
	}
	http.Error(w, err.Error(), status)
}
