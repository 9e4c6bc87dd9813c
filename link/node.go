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
	"fmt"
	"sort"

	"webroute.dev/router/mediarange"
	"webroute.dev/router/pathpattern"
)

// Kind tags a Node's position in the fixed dispatch order from spec.md
// §4.4. There is one Node type for every Kind (a tagged union, per
// spec.md §9's design note on re-architecting the source's link class
// hierarchy); insert/remove/resolve/extract all switch on Kind instead of
// dispatching through per-kind interfaces.
type Kind uint8

const (
	KindAuthority Kind = iota
	KindScheme
	KindPath
	KindMethod
	KindConsume
	KindProduce
	KindLanguage
	KindHandler
)

func (k Kind) String() string {
	switch k {
	case KindAuthority:
		return "authority"
	case KindScheme:
		return "scheme"
	case KindPath:
		return "path"
	case KindMethod:
		return "method"
	case KindConsume:
		return "consume"
	case KindProduce:
		return "produce"
	case KindLanguage:
		return "language"
	case KindHandler:
		return "handler"
	default:
		return "unknown"
	}
}

type globChild[H any] struct {
	pattern *globPattern
	node    *Node[H]
}

type literalPathChild[H any] struct {
	pattern *pathpattern.Pattern
	node    *Node[H]
}

type patternChild[H any] struct {
	pattern *pathpattern.Pattern
	node    *Node[H]
}

type mediaChild[H any] struct {
	rng  mediarange.Range
	node *Node[H]
}

type languageChild[H any] struct {
	rng  mediarange.LanguageRange
	node *Node[H]
}

// Node is one link in the routing tree. Exactly one of the per-kind
// children collections is populated, selected by kind.
type Node[H any] struct {
	kind Kind

	// any is the child reached when a route does not constrain this
	// criterion at all; it always matches (spec.md §3's "catch-all"
	// invariant, generalized per-level).
	any *Node[H]

	// KindAuthority / KindScheme
	globChildren []globChild[H]

	// KindPath
	literalChildren map[string]literalPathChild[H]
	patternChildren []patternChild[H]

	// KindMethod
	methodChildren map[string]*Node[H]

	// KindConsume / KindProduce
	mediaChildren []mediaChild[H]
	lenient       bool

	// KindLanguage
	languageChildren []languageChild[H]

	// KindHandler (terminal)
	resource     H
	hasResource  bool
	enabled      bool
	interceptors []H
	regIndex     uint64
}

func newNode[H any](kind Kind) *Node[H] {
	return &Node[H]{kind: kind}
}

// NewRoot creates an empty Authority-level root node.
func NewRoot[H any]() *Node[H] {
	return newNode[H](KindAuthority)
}

// cloneShallow copies n's own fields into a new Node. Slice/map headers are
// re-allocated so the clone's own mutations never alias the original, but
// child *Node[H] pointers are shared until the specific child on the
// mutation path is itself cloned — the persistent-tree "path copy"
// discipline required by spec.md §5.
func (n *Node[H]) cloneShallow() *Node[H] {
	if n == nil {
		return nil
	}
	c := *n
	if n.globChildren != nil {
		c.globChildren = append([]globChild[H]{}, n.globChildren...)
	}
	if n.literalChildren != nil {
		c.literalChildren = make(map[string]literalPathChild[H], len(n.literalChildren))
		for k, v := range n.literalChildren {
			c.literalChildren[k] = v
		}
	}
	if n.patternChildren != nil {
		c.patternChildren = append([]patternChild[H]{}, n.patternChildren...)
	}
	if n.methodChildren != nil {
		c.methodChildren = make(map[string]*Node[H], len(n.methodChildren))
		for k, v := range n.methodChildren {
			c.methodChildren[k] = v
		}
	}
	if n.mediaChildren != nil {
		c.mediaChildren = append([]mediaChild[H]{}, n.mediaChildren...)
	}
	if n.languageChildren != nil {
		c.languageChildren = append([]languageChild[H]{}, n.languageChildren...)
	}
	if n.interceptors != nil {
		c.interceptors = append([]H{}, n.interceptors...)
	}
	return &c
}

// Criteria is the full set of match criteria for one Route, after the
// RouteManager's cartesian-product expansion (spec.md §3).
type Criteria struct {
	Authority string
	Scheme    string
	Path      string
	Method    string
	Consume   string
	Produce   string
	Language  string
	Lenient   bool
}

func (c Criteria) key() string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%s\x00%s\x00%s", c.Authority, c.Scheme, c.Path, c.Method, c.Consume, c.Produce, c.Language)
}

// Insert returns a new root with route added (copy-on-write: root and every
// node on the path to the new/changed leaf are cloned; everything else is
// shared with the previous tree). interceptor selects whether resource is
// appended to the terminal's interceptor vector (client-side variant) or
// replaces its single handler (server-side variant).
func Insert[H any](root *Node[H], c Criteria, resource H, regIndex uint64, interceptor bool) (*Node[H], error) {
	if c.Path == "" {
		return nil, &InvalidRouteError{Reason: "path is required"}
	}
	if root == nil {
		root = NewRoot[H]()
	}
	return insertAt(root, KindAuthority, &c, resource, regIndex, interceptor)
}

func insertAt[H any](n *Node[H], kind Kind, c *Criteria, resource H, regIndex uint64, interceptor bool) (*Node[H], error) {
	if n == nil {
		n = newNode[H](kind)
	}
	clone := n.cloneShallow()

	switch kind {
	case KindAuthority:
		return insertGlob(clone, c.Authority, KindScheme, c, resource, regIndex, interceptor)
	case KindScheme:
		return insertGlob(clone, c.Scheme, KindPath, c, resource, regIndex, interceptor)
	case KindPath:
		return insertPath(clone, c, resource, regIndex, interceptor)
	case KindMethod:
		return insertMethod(clone, c, resource, regIndex, interceptor)
	case KindConsume:
		return insertMedia(clone, c.Consume, KindProduce, c, resource, regIndex, interceptor)
	case KindProduce:
		return insertMedia(clone, c.Produce, KindLanguage, c, resource, regIndex, interceptor)
	case KindLanguage:
		return insertLanguage(clone, c, resource, regIndex, interceptor)
	case KindHandler:
		if interceptor {
			clone.interceptors = append(clone.interceptors, resource)
		} else {
			clone.resource = resource
			clone.hasResource = true
		}
		clone.enabled = true
		clone.regIndex = regIndex
		return clone, nil
	}
	return clone, nil
}

func insertGlob[H any](clone *Node[H], value string, next Kind, c *Criteria, resource H, regIndex uint64, interceptor bool) (*Node[H], error) {
	if value == "" {
		child, err := insertAt(clone.any, next, c, resource, regIndex, interceptor)
		if err != nil {
			return nil, err
		}
		clone.any = child
		return clone, nil
	}
	for i, gc := range clone.globChildren {
		if gc.pattern.source == value {
			child, err := insertAt(gc.node, next, c, resource, regIndex, interceptor)
			if err != nil {
				return nil, err
			}
			clone.globChildren[i].node = child
			return clone, nil
		}
	}
	g := compileGlob(value)
	child, err := insertAt(nil, next, c, resource, regIndex, interceptor)
	if err != nil {
		return nil, err
	}
	clone.globChildren = append(clone.globChildren, globChild[H]{pattern: g, node: child})
	sortGlobChildren(clone.globChildren)
	return clone, nil
}

func sortGlobChildren[H any](children []globChild[H]) {
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].pattern.specificity() > children[j].pattern.specificity()
	})
}

func insertPath[H any](clone *Node[H], c *Criteria, resource H, regIndex uint64, interceptor bool) (*Node[H], error) {
	pat, err := pathpattern.Compile(c.Path)
	if err != nil {
		return nil, err
	}

	if pat.IsLiteral() {
		if clone.literalChildren == nil {
			clone.literalChildren = map[string]literalPathChild[H]{}
		}
		existing, ok := clone.literalChildren[c.Path]
		var base *Node[H]
		if ok {
			base = existing.node
		}
		child, err := insertAt(base, KindMethod, c, resource, regIndex, interceptor)
		if err != nil {
			return nil, err
		}
		clone.literalChildren[c.Path] = literalPathChild[H]{pattern: pat, node: child}
		return clone, nil
	}

	for i, pc := range clone.patternChildren {
		if pc.pattern.Source() == c.Path {
			child, err := insertAt(pc.node, KindMethod, c, resource, regIndex, interceptor)
			if err != nil {
				return nil, err
			}
			clone.patternChildren[i].node = child
			return clone, nil
		}
	}
	child, err := insertAt(nil, KindMethod, c, resource, regIndex, interceptor)
	if err != nil {
		return nil, err
	}
	clone.patternChildren = append(clone.patternChildren, patternChild[H]{pattern: pat, node: child})
	sortPatternChildren(clone.patternChildren)
	return clone, nil
}

func sortPatternChildren[H any](children []patternChild[H]) {
	sort.SliceStable(children, func(i, j int) bool {
		return pathpattern.More(children[i].pattern.Specificity(), children[j].pattern.Specificity())
	})
}

func insertMethod[H any](clone *Node[H], c *Criteria, resource H, regIndex uint64, interceptor bool) (*Node[H], error) {
	if c.Method == "" {
		child, err := insertAt(clone.any, KindConsume, c, resource, regIndex, interceptor)
		if err != nil {
			return nil, err
		}
		clone.any = child
		return clone, nil
	}
	if clone.methodChildren == nil {
		clone.methodChildren = map[string]*Node[H]{}
	}
	child, err := insertAt(clone.methodChildren[c.Method], KindConsume, c, resource, regIndex, interceptor)
	if err != nil {
		return nil, err
	}
	clone.methodChildren[c.Method] = child
	return clone, nil
}

func insertMedia[H any](clone *Node[H], value string, next Kind, c *Criteria, resource H, regIndex uint64, interceptor bool) (*Node[H], error) {
	clone.lenient = c.Lenient
	if value == "" {
		child, err := insertAt(clone.any, next, c, resource, regIndex, interceptor)
		if err != nil {
			return nil, err
		}
		clone.any = child
		return clone, nil
	}
	rng, err := mediarange.Parse(value)
	if err != nil {
		return nil, &InvalidRouteError{Reason: err.Error()}
	}
	for i, mc := range clone.mediaChildren {
		if mc.rng.Type == rng.Type && mc.rng.Subtype == rng.Subtype && paramsEqual(mc.rng.Params, rng.Params) {
			child, err := insertAt(mc.node, next, c, resource, regIndex, interceptor)
			if err != nil {
				return nil, err
			}
			clone.mediaChildren[i].node = child
			return clone, nil
		}
	}
	child, err := insertAt(nil, next, c, resource, regIndex, interceptor)
	if err != nil {
		return nil, err
	}
	clone.mediaChildren = append(clone.mediaChildren, mediaChild[H]{rng: rng, node: child})
	return clone, nil
}

func paramsEqual(a, b []mediarange.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func insertLanguage[H any](clone *Node[H], c *Criteria, resource H, regIndex uint64, interceptor bool) (*Node[H], error) {
	clone.lenient = c.Lenient
	if c.Language == "" {
		child, err := insertAt(clone.any, KindHandler, c, resource, regIndex, interceptor)
		if err != nil {
			return nil, err
		}
		clone.any = child
		return clone, nil
	}
	lr, err := mediarange.ParseLanguageRange(c.Language)
	if err != nil {
		return nil, &InvalidRouteError{Reason: err.Error()}
	}
	for i, lc := range clone.languageChildren {
		if lc.rng.Primary == lr.Primary && equalSubtags(lc.rng.Subtags, lr.Subtags) {
			child, err := insertAt(lc.node, KindHandler, c, resource, regIndex, interceptor)
			if err != nil {
				return nil, err
			}
			clone.languageChildren[i].node = child
			return clone, nil
		}
	}
	child, err := insertAt(nil, KindHandler, c, resource, regIndex, interceptor)
	if err != nil {
		return nil, err
	}
	clone.languageChildren = append(clone.languageChildren, languageChild[H]{rng: lr, node: child})
	return clone, nil
}

func equalSubtags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// InvalidRouteError reports a malformed registration: a missing path, or a
// consume/produce/language criterion that fails to parse. A malformed path
// template (spec.md §7's InvalidPattern/DuplicatePathParameter kinds) is
// returned as the *pathpattern.InvalidPatternError from pathpattern.Compile.
type InvalidRouteError struct {
	Reason string
}

func (e *InvalidRouteError) Error() string { return "link: invalid route: " + e.Reason }
