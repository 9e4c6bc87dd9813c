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

package link

import (
	"sort"

	"webroute.dev/router/mediarange"
	"webroute.dev/router/pathpattern"
)

// Candidate is one terminal reached during resolution, carrying the total-
// order tie-break tuple from spec.md §4.4.
type Candidate[H any] struct {
	Node             *Node[H]
	LanguageScore    float64
	ProduceScore     float64
	ConsumeScore     float64
	PathSpecificity  pathpattern.Specificity
	MethodExact      bool
	RegIndex         uint64
	NegotiatedProduce  string
	NegotiatedLanguage string
}

// better reports whether a should be preferred over b, applying spec.md
// §4.4's fixed tie-break order: language score, produce score, consume
// score, path specificity, method exactness, then earliest registration.
func better[H any](a, b Candidate[H]) bool {
	if a.LanguageScore != b.LanguageScore {
		return a.LanguageScore > b.LanguageScore
	}
	if a.ProduceScore != b.ProduceScore {
		return a.ProduceScore > b.ProduceScore
	}
	if a.ConsumeScore != b.ConsumeScore {
		return a.ConsumeScore > b.ConsumeScore
	}
	if !(a.PathSpecificity == b.PathSpecificity) {
		return pathpattern.More(a.PathSpecificity, b.PathSpecificity)
	}
	if a.MethodExact != b.MethodExact {
		return a.MethodExact
	}
	return a.RegIndex < b.RegIndex
}

// Bindings is re-exported so callers of Outcome need not import pathpattern
// directly just to read path parameters.
type Bindings = pathpattern.Bindings

// FailureKind explains why Resolve found no enabled match, per spec.md §7's
// resolution-error kinds. The zero value means resolution succeeded.
type FailureKind uint8

const (
	FailureNone FailureKind = iota
	FailureNotFound
	FailureMethodNotAllowed
	FailureUnsupportedMediaType
	FailureNotAcceptable
	FailureDisabled
)

// Outcome is the result of a single Resolve call.
type Outcome[H any] struct {
	Matched  bool
	Resource H

	Bindings           Bindings
	NegotiatedProduce  string
	NegotiatedLanguage string

	Failure          FailureKind
	AllowedMethods   []string
	SupportedConsume []string
	ProducibleTypes  []string

	// DisabledCandidate is set when Failure == FailureDisabled: the best
	// match existed but was disabled, so a caller that wants the shape of
	// the route anyway (diagnostics, 404 vs 403 policy) can still see it.
	DisabledCandidate *Candidate[H]
}

// stageResult carries either a set of surviving candidates or, if empty,
// which fixed-order stage rejected every branch and what it can report.
type stageResult[H any] struct {
	candidates []Candidate[H]

	failKind         Kind
	allowedMethods   []string
	supportedConsume []string
	producibleTypes  []string
}

func mergeStage[H any](results []stageResult[H]) stageResult[H] {
	var cands []Candidate[H]
	for _, r := range results {
		cands = append(cands, r.candidates...)
	}
	if len(cands) > 0 {
		return stageResult[H]{candidates: cands}
	}

	// Prefer the deepest-progress failure: a sibling that stalled at
	// Consume matched strictly less of the request than one that made it
	// to Produce or Language, so its failKind should not mask the other's.
	var best Kind
	for _, r := range results {
		if r.failKind > best {
			best = r.failKind
		}
	}
	merged := stageResult[H]{failKind: best}
	for _, r := range results {
		if r.failKind != best {
			continue
		}
		merged.allowedMethods = append(merged.allowedMethods, r.allowedMethods...)
		merged.supportedConsume = append(merged.supportedConsume, r.supportedConsume...)
		merged.producibleTypes = append(merged.producibleTypes, r.producibleTypes...)
	}
	return merged
}

// Resolve walks root against ex and returns the single best match, or
// explains why none was found.
func Resolve[H any](root *Node[H], ex Exchange) Outcome[H] {
	aNode := matchGlobOrAny(root, ex.Authority())
	if aNode == nil {
		return Outcome[H]{Failure: FailureNotFound}
	}
	sNode := matchGlobOrAny(aNode, ex.Scheme())
	if sNode == nil {
		return Outcome[H]{Failure: FailureNotFound}
	}
	pNode, bindings, spec, ok := matchPath(sNode, ex.Path())
	if !ok {
		return Outcome[H]{Failure: FailureNotFound}
	}

	result := resolveMethod(pNode, ex, spec)
	return buildOutcome(result, bindings, false)
}

// ResolveInterceptors walks root against ex and collects the interceptor
// vectors of every terminal whose path is a prefix match (spec.md §4.6) -
// unlike Resolve, which picks the single best-matching path, every path
// template that matches ex.Path() contributes its interceptors. The result
// is ordered by path specificity, then registration order.
func ResolveInterceptors[H any](root *Node[H], ex Exchange) []H {
	aNode := matchGlobOrAny(root, ex.Authority())
	if aNode == nil {
		return nil
	}
	sNode := matchGlobOrAny(aNode, ex.Scheme())
	if sNode == nil {
		return nil
	}
	matches := matchAllPaths(sNode, ex.Path())
	if len(matches) == 0 {
		return nil
	}

	var cands []Candidate[H]
	for _, m := range matches {
		result := resolveMethod(m.node, ex, m.spec)
		cands = append(cands, result.candidates...)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return interceptorBetter(cands[i], cands[j])
	})
	var out []H
	for _, c := range cands {
		out = append(out, c.Node.interceptors...)
	}
	return out
}

// interceptorBetter orders interceptor candidates by spec.md §4.6's
// two-key tie-break: path specificity, then registration order. Unlike
// better, it ignores content-negotiation scores - those stages only gate
// whether a terminal is collected at all, not where it sorts.
func interceptorBetter[H any](a, b Candidate[H]) bool {
	if !(a.PathSpecificity == b.PathSpecificity) {
		return pathpattern.More(a.PathSpecificity, b.PathSpecificity)
	}
	return a.RegIndex < b.RegIndex
}

func buildOutcome[H any](result stageResult[H], bindings pathpattern.Bindings, _ bool) Outcome[H] {
	if len(result.candidates) == 0 {
		return mapFailure[H](result, bindings)
	}

	enabled := make([]Candidate[H], 0, len(result.candidates))
	disabled := make([]Candidate[H], 0)
	for _, c := range result.candidates {
		if !c.Node.hasResource {
			continue
		}
		if c.Node.enabled {
			enabled = append(enabled, c)
		} else {
			disabled = append(disabled, c)
		}
	}

	if len(enabled) > 0 {
		best := pickBest(enabled)
		return Outcome[H]{
			Matched:            true,
			Resource:           best.Node.resource,
			Bindings:           bindings,
			NegotiatedProduce:  best.NegotiatedProduce,
			NegotiatedLanguage: best.NegotiatedLanguage,
		}
	}
	if len(disabled) > 0 {
		best := pickBest(disabled)
		return Outcome[H]{Failure: FailureDisabled, Bindings: bindings, DisabledCandidate: &best}
	}
	return mapFailure[H](result, bindings)
}

func mapFailure[H any](result stageResult[H], bindings pathpattern.Bindings) Outcome[H] {
	out := Outcome[H]{Bindings: bindings}
	switch result.failKind {
	case KindMethod:
		out.Failure = FailureMethodNotAllowed
		out.AllowedMethods = dedupSorted(result.allowedMethods)
	case KindConsume:
		if len(result.supportedConsume) == 0 {
			out.Failure = FailureNotFound
			break
		}
		out.Failure = FailureUnsupportedMediaType
		out.SupportedConsume = dedupSorted(result.supportedConsume)
	case KindProduce, KindLanguage:
		if len(result.producibleTypes) == 0 {
			out.Failure = FailureNotFound
			break
		}
		out.Failure = FailureNotAcceptable
		out.ProducibleTypes = dedupSorted(result.producibleTypes)
	default:
		out.Failure = FailureNotFound
	}
	return out
}

func dedupSorted(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func pickBest[H any](cands []Candidate[H]) Candidate[H] {
	best := cands[0]
	for _, c := range cands[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best
}

func matchGlobOrAny[H any](n *Node[H], value string) *Node[H] {
	if n == nil {
		return nil
	}
	for _, gc := range n.globChildren {
		if gc.pattern.match(value) {
			return gc.node
		}
	}
	return n.any
}

func matchPath[H any](n *Node[H], path string) (*Node[H], pathpattern.Bindings, pathpattern.Specificity, bool) {
	if n == nil {
		return nil, nil, pathpattern.Specificity{}, false
	}
	if lc, ok := n.literalChildren[path]; ok {
		return lc.node, nil, lc.pattern.Specificity(), true
	}
	for _, pc := range n.patternChildren {
		if b, ok := pc.pattern.Match(path); ok {
			return pc.node, b, pc.pattern.Specificity(), true
		}
	}
	return nil, nil, pathpattern.Specificity{}, false
}

// pathMatch is one path child that matched during a multi-match walk.
type pathMatch[H any] struct {
	node *Node[H]
	spec pathpattern.Specificity
}

// matchAllPaths returns every literal or pattern child of n whose template
// matches path, unlike matchPath which stops at the first (most specific)
// one. Used by ResolveInterceptors, which must gather across every matching
// path rather than pick a single winner.
func matchAllPaths[H any](n *Node[H], path string) []pathMatch[H] {
	if n == nil {
		return nil
	}
	var out []pathMatch[H]
	if lc, ok := n.literalChildren[path]; ok {
		out = append(out, pathMatch[H]{node: lc.node, spec: lc.pattern.Specificity()})
	}
	for _, pc := range n.patternChildren {
		if _, ok := pc.pattern.Match(path); ok {
			out = append(out, pathMatch[H]{node: pc.node, spec: pc.pattern.Specificity()})
		}
	}
	return out
}

func resolveMethod[H any](n *Node[H], ex Exchange, spec pathpattern.Specificity) stageResult[H] {
	if n == nil {
		return stageResult[H]{failKind: KindMethod}
	}
	method := ex.Method()
	var branches []stageResult[H]
	if child, ok := n.methodChildren[method]; ok {
		branches = append(branches, resolveConsume(child, ex, true, spec))
	}
	if n.any != nil {
		branches = append(branches, resolveConsume(n.any, ex, false, spec))
	}
	if len(branches) == 0 {
		allowed := make([]string, 0, len(n.methodChildren))
		for m := range n.methodChildren {
			allowed = append(allowed, m)
		}
		return stageResult[H]{failKind: KindMethod, allowedMethods: allowed}
	}
	return mergeStage(branches)
}

func resolveConsume[H any](n *Node[H], ex Exchange, methodExact bool, spec pathpattern.Specificity) stageResult[H] {
	if n == nil {
		return stageResult[H]{failKind: KindConsume}
	}
	offer, err := mediarange.Parse(contentTypeOrWildcard(ex.Header("Content-Type")))
	if err != nil {
		offer = mediarange.Range{Type: "*", Subtype: "*"}
	}

	var branches []stageResult[H]
	for _, mc := range n.mediaChildren {
		q, _, ok := mediarange.Match([]mediarange.Range{mc.rng}, offer.Type, offer.Subtype, offer.Params)
		if !ok || q <= 0 {
			continue
		}
		sub := resolveProduce(mc.node, ex, methodExact, spec)
		branches = append(branches, stampConsume(sub, q))
	}
	if n.any != nil {
		branches = append(branches, resolveProduce(n.any, ex, methodExact, spec))
	}
	if len(branches) == 0 {
		if len(n.mediaChildren) > 0 && !n.lenient {
			supported := make([]string, 0, len(n.mediaChildren))
			for _, mc := range n.mediaChildren {
				supported = append(supported, mc.rng.String())
			}
			return stageResult[H]{failKind: KindConsume, supportedConsume: supported}
		}
		return stageResult[H]{failKind: KindConsume}
	}
	return mergeStage(branches)
}

func contentTypeOrWildcard(ct string) string {
	if ct == "" {
		return "*/*"
	}
	return ct
}

func stampConsume[H any](r stageResult[H], q float64) stageResult[H] {
	for i := range r.candidates {
		r.candidates[i].ConsumeScore = q
	}
	return r
}

func resolveProduce[H any](n *Node[H], ex Exchange, methodExact bool, spec pathpattern.Specificity) stageResult[H] {
	if n == nil {
		return stageResult[H]{failKind: KindProduce}
	}
	accept, err := mediarange.ParseAcceptHeader(ex.Header("Accept"))
	if err != nil {
		accept = []mediarange.Range{{Type: "*", Subtype: "*", Q: 1}}
	}

	var branches []stageResult[H]
	for _, mc := range n.mediaChildren {
		q, _, ok := mediarange.Match(accept, mc.rng.Type, mc.rng.Subtype, mc.rng.Params)
		if !ok || q <= 0 {
			continue
		}
		sub := resolveLanguage(mc.node, ex, methodExact, spec)
		branches = append(branches, stampProduce(sub, q, mc.rng.String()))
	}
	if n.any != nil {
		branches = append(branches, resolveLanguage(n.any, ex, methodExact, spec))
	}
	if len(branches) == 0 {
		if len(n.mediaChildren) > 0 && !n.lenient {
			producible := make([]string, 0, len(n.mediaChildren))
			for _, mc := range n.mediaChildren {
				producible = append(producible, mc.rng.String())
			}
			return stageResult[H]{failKind: KindProduce, producibleTypes: producible}
		}
		return stageResult[H]{failKind: KindProduce}
	}
	return mergeStage(branches)
}

func stampProduce[H any](r stageResult[H], q float64, negotiated string) stageResult[H] {
	for i := range r.candidates {
		r.candidates[i].ProduceScore = q
		if r.candidates[i].NegotiatedProduce == "" {
			r.candidates[i].NegotiatedProduce = negotiated
		}
	}
	return r
}

func resolveLanguage[H any](n *Node[H], ex Exchange, methodExact bool, spec pathpattern.Specificity) stageResult[H] {
	if n == nil {
		return stageResult[H]{failKind: KindLanguage}
	}
	accept, err := mediarange.ParseAcceptLanguageHeader(ex.Header("Accept-Language"))
	if err != nil {
		accept = []mediarange.LanguageRange{{Primary: "*", Q: 1}}
	}

	var branches []stageResult[H]
	for _, lc := range n.languageChildren {
		q, ok := mediarange.MatchLanguage(accept, lc.rng)
		if !ok || q <= 0 {
			continue
		}
		cand := resolveHandler(lc.node, methodExact, spec)
		branches = append(branches, stampLanguage(cand, q, lc.rng.String()))
	}
	if n.any != nil {
		branches = append(branches, resolveHandler(n.any, methodExact, spec))
	}
	if len(branches) == 0 {
		if len(n.languageChildren) > 0 && !n.lenient {
			return stageResult[H]{failKind: KindLanguage, producibleTypes: languageStrings(n.languageChildren)}
		}
		return stageResult[H]{failKind: KindLanguage}
	}
	return mergeStage(branches)
}

func languageStrings[H any](children []languageChild[H]) []string {
	out := make([]string, 0, len(children))
	for _, lc := range children {
		out = append(out, lc.rng.String())
	}
	return out
}

func stampLanguage[H any](r stageResult[H], q float64, negotiated string) stageResult[H] {
	for i := range r.candidates {
		r.candidates[i].LanguageScore = q
		r.candidates[i].NegotiatedLanguage = negotiated
	}
	return r
}

func resolveHandler[H any](n *Node[H], methodExact bool, spec pathpattern.Specificity) stageResult[H] {
	if n == nil || (!n.hasResource && len(n.interceptors) == 0) {
		return stageResult[H]{failKind: KindHandler}
	}
	return stageResult[H]{candidates: []Candidate[H]{{
		Node:            n,
		PathSpecificity: spec,
		MethodExact:     methodExact,
		RegIndex:        n.regIndex,
	}}}
}
