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

// RouteSnapshot is a flattened view of one registered terminal, produced by
// Extract for introspection and conflict detection at the router layer.
type RouteSnapshot[H any] struct {
	Criteria     Criteria
	Resource     H
	HasResource  bool
	Enabled      bool
	Interceptors []H
	RegIndex     uint64
}

// Extract walks the whole tree and returns one snapshot per registered
// terminal (spec.md §4.5's "list routes" introspection need, also used to
// detect distinct path templates that rank as equally specific before they
// surface as a resolution-time surprise).
func Extract[H any](root *Node[H]) []RouteSnapshot[H] {
	var out []RouteSnapshot[H]
	walkExtract(root, KindAuthority, Criteria{}, &out)
	return out
}

func walkExtract[H any](n *Node[H], kind Kind, acc Criteria, out *[]RouteSnapshot[H]) {
	if n == nil {
		return
	}
	if kind == KindHandler {
		if n.hasResource || len(n.interceptors) > 0 {
			*out = append(*out, RouteSnapshot[H]{
				Criteria:     acc,
				Resource:     n.resource,
				HasResource:  n.hasResource,
				Enabled:      n.enabled,
				Interceptors: append([]H{}, n.interceptors...),
				RegIndex:     n.regIndex,
			})
		}
		return
	}

	switch kind {
	case KindAuthority:
		walkExtract(n.any, KindScheme, acc, out)
		for _, gc := range n.globChildren {
			c2 := acc
			c2.Authority = gc.pattern.source
			walkExtract(gc.node, KindScheme, c2, out)
		}
	case KindScheme:
		walkExtract(n.any, KindPath, acc, out)
		for _, gc := range n.globChildren {
			c2 := acc
			c2.Scheme = gc.pattern.source
			walkExtract(gc.node, KindPath, c2, out)
		}
	case KindPath:
		for path, lc := range n.literalChildren {
			c2 := acc
			c2.Path = path
			walkExtract(lc.node, KindMethod, c2, out)
		}
		for _, pc := range n.patternChildren {
			c2 := acc
			c2.Path = pc.pattern.Source()
			walkExtract(pc.node, KindMethod, c2, out)
		}
	case KindMethod:
		walkExtract(n.any, KindConsume, acc, out)
		for m, child := range n.methodChildren {
			c2 := acc
			c2.Method = m
			walkExtract(child, KindConsume, c2, out)
		}
	case KindConsume:
		walkExtract(n.any, KindProduce, acc, out)
		for _, mc := range n.mediaChildren {
			c2 := acc
			c2.Consume = mc.rng.String()
			c2.Lenient = n.lenient
			walkExtract(mc.node, KindProduce, c2, out)
		}
	case KindProduce:
		walkExtract(n.any, KindLanguage, acc, out)
		for _, mc := range n.mediaChildren {
			c2 := acc
			c2.Produce = mc.rng.String()
			c2.Lenient = n.lenient
			walkExtract(mc.node, KindLanguage, c2, out)
		}
	case KindLanguage:
		walkExtract(n.any, KindHandler, acc, out)
		for _, lc := range n.languageChildren {
			c2 := acc
			c2.Language = lc.rng.String()
			c2.Lenient = n.lenient
			walkExtract(lc.node, KindHandler, c2, out)
		}
	}
}
