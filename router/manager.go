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
	"fmt"
	"strings"

	"webroute.dev/router/link"
	"webroute.dev/router/pathpattern"
)

// RouteManager accumulates criteria for one or more routes via a fluent
// interface, then commits them with a terminal call to Handler. Supplying
// more than one value for a criterion (e.g. two methods) registers the
// cartesian product of every accumulated criterion, per spec.md §3.
//
// A RouteManager is not safe for concurrent use; build and commit it from a
// single goroutine (typically once, at startup).
type RouteManager[H any] struct {
	router *Router[H]

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

func newRouteManager[H any](r *Router[H]) *RouteManager[H] {
	return &RouteManager[H]{router: r}
}

// Authority constrains the registration to one or more request authorities
// (literal or "*"-wildcarded). Client-side routing only; omit for
// server-side routes.
func (m *RouteManager[H]) Authority(values ...string) *RouteManager[H] {
	m.authorities = values
	return m
}

// Scheme constrains the registration to one or more request schemes.
// Client-side routing only; omit for server-side routes.
func (m *RouteManager[H]) Scheme(values ...string) *RouteManager[H] {
	m.schemes = values
	return m
}

// Path sets one or more path templates (spec.md §2's grammar). Required;
// Handler returns an error if no path was set.
func (m *RouteManager[H]) Path(templates ...string) *RouteManager[H] {
	m.paths = templates
	return m
}

// Method constrains the registration to one or more HTTP methods. Omit to
// match any method.
func (m *RouteManager[H]) Method(values ...string) *RouteManager[H] {
	m.methods = values
	return m
}

// Consumes constrains the registration to one or more request Content-Type
// media ranges. Omit to accept any request body.
func (m *RouteManager[H]) Consumes(values ...string) *RouteManager[H] {
	m.consumes = values
	return m
}

// Produces constrains the registration to one or more response media types,
// negotiated against the request's Accept header. Omit to skip produce
// negotiation.
func (m *RouteManager[H]) Produces(values ...string) *RouteManager[H] {
	m.produces = values
	return m
}

// Language constrains the registration to one or more response languages,
// negotiated against Accept-Language. Omit to skip language negotiation.
func (m *RouteManager[H]) Language(values ...string) *RouteManager[H] {
	m.languages = values
	return m
}

// Lenient marks this registration's consume/produce/language links as
// falling through to the next link in the chain on no match, instead of
// failing resolution outright (spec.md §4.3). The default is strict.
func (m *RouteManager[H]) Lenient() *RouteManager[H] {
	m.lenient = true
	return m
}

// MatchTrailingSlash opts this registration into matching both the
// with- and without-trailing-slash form of each path template (spec.md §3):
// "/a/" also registers "/a", and "/a" also registers "/a/". Without this
// call, a template matches only the literal form given. The default is off.
func (m *RouteManager[H]) MatchTrailingSlash() *RouteManager[H] {
	m.matchTrailingSlash = true
	return m
}

func orUnconstrained(values []string) []string {
	if len(values) == 0 {
		return []string{""}
	}
	return values
}

// trailingSlashVariant returns the other trailing-slash form of path - with
// the slash added if absent, stripped if present - or ok=false if path is
// the root or already covers both forms.
func trailingSlashVariant(path string) (variant string, ok bool) {
	if path == "" || path == "/" {
		return "", false
	}
	if strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/"), true
	}
	return path + "/", true
}

// expandTrailingSlashVariants returns paths plus, for each entry, its other
// trailing-slash form, deduplicated and order-preserving.
func expandTrailingSlashVariants(paths []string) []string {
	out := make([]string, 0, len(paths)*2)
	seen := make(map[string]bool, len(paths)*2)
	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, p := range paths {
		add(p)
		if variant, ok := trailingSlashVariant(p); ok {
			add(variant)
		}
	}
	return out
}

// Handler commits the accumulated criteria, registering h against the
// cartesian product of every multi-valued criterion, and returns a Route
// handle that can later enable, disable, or remove the (first) registration.
func (m *RouteManager[H]) Handler(h H) (*Route[H], error) {
	if len(m.paths) == 0 {
		return nil, &pathpattern.InvalidPatternError{Reason: "at least one Path is required"}
	}

	r := m.router
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	root := r.root.Load()
	regIndex := r.nextReg.Add(1)

	paths := m.paths
	if m.matchTrailingSlash {
		paths = expandTrailingSlashVariants(paths)
	}

	var first link.Criteria
	haveFirst := false

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
								newRoot, err := link.Insert(root, crit, h, regIndex, false)
								if err != nil {
									return nil, err
								}
								root = newRoot
								if !haveFirst {
									first = crit
									haveFirst = true
								}
							}
						}
					}
				}
			}
		}
	}

	r.root.Store(root)
	warnPathAmbiguities(r, root)

	return &Route[H]{router: r, criteria: first, regIndex: regIndex}, nil
}

// Route is a handle to a (possibly cartesian-expanded) registration,
// returned by RouteManager.Handler.
type Route[H any] struct {
	router   *Router[H]
	criteria link.Criteria
	regIndex uint64
}

// Enable re-enables a previously disabled route.
func (rt *Route[H]) Enable() error { return rt.setEnabled(true) }

// Disable marks the route disabled: it no longer participates as a
// resolvable match, but a request that would otherwise have matched nothing
// else reports FailureDisabled instead of NotFound (spec.md §4.5).
func (rt *Route[H]) Disable() error { return rt.setEnabled(false) }

func (rt *Route[H]) setEnabled(enabled bool) error {
	r := rt.router
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	newRoot, ok := link.SetEnabled(r.root.Load(), rt.criteria, enabled)
	if !ok {
		return ErrRouteNotFound
	}
	r.root.Store(newRoot)
	return nil
}

// Remove deletes the route from the router.
func (rt *Route[H]) Remove() error {
	r := rt.router
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	newRoot, ok := link.Remove(r.root.Load(), rt.criteria, false)
	if !ok {
		return ErrRouteNotFound
	}
	r.root.Store(newRoot)
	return nil
}

// warnPathAmbiguities reports (does not fail) when two distinct path
// templates under the same authority/scheme rank as equally specific (equal
// Specificity apart from the template text): such routes have no
// well-defined priority against each other, and their relative order falls
// to the lexicographic comparison of the template text that ends
// pathpattern.Less (spec.md §4.5's conflict detection surfaced as a
// diagnostic, not a hard failure).
func warnPathAmbiguities[H any](r *Router[H], root *link.Node[H]) {
	snaps := link.Extract(root)
	type key struct{ authority, scheme string }
	bySurface := map[key]map[string][]string{}

	for _, s := range snaps {
		k := key{s.Criteria.Authority, s.Criteria.Scheme}
		if bySurface[k] == nil {
			bySurface[k] = map[string][]string{}
		}
		pat, err := pathpattern.Compile(s.Criteria.Path)
		if err != nil {
			continue
		}
		rank := pat.Specificity()
		rank.Template = ""
		spec := fmt.Sprintf("%+v", rank)
		bySurface[k][spec] = append(bySurface[k][spec], s.Criteria.Path)
	}

	for _, bySpec := range bySurface {
		for _, paths := range bySpec {
			distinct := map[string]bool{}
			for _, p := range paths {
				distinct[p] = true
			}
			if len(distinct) > 1 {
				templates := make([]string, 0, len(distinct))
				for p := range distinct {
					templates = append(templates, p)
				}
				r.diagnostics.RouteConflict(templates)
			}
		}
	}
}
