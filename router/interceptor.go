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

package router

import (
	"sync"
	"sync/atomic"

	"webroute.dev/router/link"
)

// InterceptorRouter is the client-side counterpart to Router: instead of
// selecting one best handler, it collects every matching registration's
// interceptors into a single ordered chain (spec.md §4.6), most specific
// match first. Multiple routes registered against overlapping criteria (e.g.
// "/api/**" and "/api/users/{id}") all contribute, letting callers build
// prefix-style interception by registering a multi-segment wildcard path.
type InterceptorRouter[I any] struct {
	root    atomic.Pointer[link.Node[I]]
	writeMu sync.Mutex
	nextReg atomic.Uint64
}

// NewInterceptorRouter creates an empty InterceptorRouter.
func NewInterceptorRouter[I any]() *InterceptorRouter[I] {
	ir := &InterceptorRouter[I]{}
	ir.root.Store(link.NewRoot[I]())
	return ir
}

// NewRoute starts a fluent registration, committed by a terminal call to
// Interceptors.
func (ir *InterceptorRouter[I]) NewRoute() *InterceptorManager[I] {
	return &InterceptorManager[I]{router: ir}
}

// Resolve returns the ordered interceptor chain for ex: every registration
// whose criteria match, most specific first, ties broken by registration
// order.
func (ir *InterceptorRouter[I]) Resolve(ex link.Exchange) []I {
	return link.ResolveInterceptors(ir.root.Load(), ex)
}

// InterceptorManager is RouteManager's counterpart for InterceptorRouter.
type InterceptorManager[I any] struct {
	router *InterceptorRouter[I]

	authorities        []string
	schemes            []string
	paths              []string
	methods            []string
	consumes           []string
	produces           []string
	languages          []string
	lenient            bool
	matchTrailingSlash bool
}

func (m *InterceptorManager[I]) Authority(v ...string) *InterceptorManager[I] {
	m.authorities = v
	return m
}

func (m *InterceptorManager[I]) Scheme(v ...string) *InterceptorManager[I] {
	m.schemes = v
	return m
}

func (m *InterceptorManager[I]) Path(v ...string) *InterceptorManager[I] {
	m.paths = v
	return m
}

func (m *InterceptorManager[I]) Method(v ...string) *InterceptorManager[I] {
	m.methods = v
	return m
}

func (m *InterceptorManager[I]) Consumes(v ...string) *InterceptorManager[I] {
	m.consumes = v
	return m
}

func (m *InterceptorManager[I]) Produces(v ...string) *InterceptorManager[I] {
	m.produces = v
	return m
}

func (m *InterceptorManager[I]) Language(v ...string) *InterceptorManager[I] {
	m.languages = v
	return m
}

func (m *InterceptorManager[I]) Lenient() *InterceptorManager[I] {
	m.lenient = true
	return m
}

// MatchTrailingSlash opts this registration into matching both the
// with- and without-trailing-slash form of each path template, as
// RouteManager.MatchTrailingSlash does for server-side routes.
func (m *InterceptorManager[I]) MatchTrailingSlash() *InterceptorManager[I] {
	m.matchTrailingSlash = true
	return m
}

// Interceptors commits the accumulated criteria, appending i to the
// interceptor vector of every terminal in the cartesian product.
func (m *InterceptorManager[I]) Interceptors(i I) error {
	if len(m.paths) == 0 {
		return &MissingRequiredParameterError{Name: "path"}
	}

	ir := m.router
	ir.writeMu.Lock()
	defer ir.writeMu.Unlock()

	root := ir.root.Load()
	regIndex := ir.nextReg.Add(1)

	paths := m.paths
	if m.matchTrailingSlash {
		paths = expandTrailingSlashVariants(paths)
	}

	for _, a := range orUnconstrained(m.authorities) {
		for _, s := range orUnconstrained(m.schemes) {
			for _, p := range paths {
				for _, meth := range orUnconstrained(m.methods) {
					for _, c := range orUnconstrained(m.consumes) {
						for _, pr := range orUnconstrained(m.produces) {
							for _, l := range orUnconstrained(m.languages) {
								crit := link.Criteria{
									Authority: a, Scheme: s, Path: p, Method: meth,
									Consume: c, Produce: pr, Language: l, Lenient: m.lenient,
								}
								newRoot, err := link.Insert(root, crit, i, regIndex, true)
								if err != nil {
									return err
								}
								root = newRoot
							}
						}
					}
				}
			}
		}
	}

	ir.root.Store(root)
	return nil
}
