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

import "webroute.dev/router/mediarange"

// Remove drops the route registered under c (spec.md §4.5's remove, the
// mirror image of Insert). For the interceptor variant it clears the whole
// interceptor vector registered at that exact criteria tuple. Empty nodes
// are pruned on the way back up. Reports whether anything was removed.
func Remove[H any](root *Node[H], c Criteria, interceptor bool) (*Node[H], bool) {
	visit := func(n *Node[H]) (*Node[H], bool) {
		if !n.hasResource && len(n.interceptors) == 0 {
			return n, false
		}
		clone := n.cloneShallow()
		if interceptor {
			clone.interceptors = nil
		} else {
			var zero H
			clone.resource = zero
			clone.hasResource = false
		}
		clone.enabled = false
		return clone, true
	}
	newRoot, found, empty := mutateAt(root, KindAuthority, &c, visit)
	if empty {
		return NewRoot[H](), found
	}
	return newRoot, found
}

// SetEnabled flips the enabled flag on the terminal registered under c
// (spec.md §4.5's enable/disable). Reports whether a route was found.
func SetEnabled[H any](root *Node[H], c Criteria, enabled bool) (*Node[H], bool) {
	visit := func(n *Node[H]) (*Node[H], bool) {
		if !n.hasResource {
			return n, false
		}
		clone := n.cloneShallow()
		clone.enabled = enabled
		return clone, true
	}
	newRoot, found, _ := mutateAt(root, KindAuthority, &c, visit)
	return newRoot, found
}

// mutateAt navigates the exact criteria path c describes (no creation,
// unlike insertAt) and applies visit at the terminal. It returns the
// (possibly unchanged) node, whether visit found something, and whether the
// node is now empty and should be pruned from its parent.
func mutateAt[H any](n *Node[H], kind Kind, c *Criteria, visit func(*Node[H]) (*Node[H], bool)) (*Node[H], bool, bool) {
	if n == nil {
		return nil, false, true
	}
	if kind == KindHandler {
		newN, found := visit(n)
		return newN, found, isEmptyNode(newN)
	}

	clone := n.cloneShallow()
	switch kind {
	case KindAuthority:
		return mutateGlob(clone, c.Authority, KindScheme, c, visit)
	case KindScheme:
		return mutateGlob(clone, c.Scheme, KindPath, c, visit)
	case KindPath:
		return mutatePath(clone, c, visit)
	case KindMethod:
		return mutateMethod(clone, c, visit)
	case KindConsume:
		return mutateMedia(clone, c.Consume, KindProduce, c, visit)
	case KindProduce:
		return mutateMedia(clone, c.Produce, KindLanguage, c, visit)
	case KindLanguage:
		return mutateLanguage(clone, c, visit)
	}
	return clone, false, isEmptyNode(clone)
}

func isEmptyNode[H any](n *Node[H]) bool {
	if n == nil {
		return true
	}
	switch n.kind {
	case KindAuthority, KindScheme:
		return n.any == nil && len(n.globChildren) == 0
	case KindPath:
		return len(n.literalChildren) == 0 && len(n.patternChildren) == 0
	case KindMethod:
		return n.any == nil && len(n.methodChildren) == 0
	case KindConsume, KindProduce:
		return n.any == nil && len(n.mediaChildren) == 0
	case KindLanguage:
		return n.any == nil && len(n.languageChildren) == 0
	case KindHandler:
		return !n.hasResource && len(n.interceptors) == 0
	}
	return true
}

func mutateGlob[H any](clone *Node[H], value string, next Kind, c *Criteria, visit func(*Node[H]) (*Node[H], bool)) (*Node[H], bool, bool) {
	if value == "" {
		if clone.any == nil {
			return clone, false, isEmptyNode(clone)
		}
		newChild, found, childEmpty := mutateAt(clone.any, next, c, visit)
		if childEmpty {
			clone.any = nil
		} else {
			clone.any = newChild
		}
		return clone, found, isEmptyNode(clone)
	}
	for i, gc := range clone.globChildren {
		if gc.pattern.source != value {
			continue
		}
		newChild, found, childEmpty := mutateAt(gc.node, next, c, visit)
		if childEmpty {
			clone.globChildren = append(append([]globChild[H]{}, clone.globChildren[:i]...), clone.globChildren[i+1:]...)
		} else {
			clone.globChildren[i].node = newChild
		}
		return clone, found, isEmptyNode(clone)
	}
	return clone, false, isEmptyNode(clone)
}

func mutatePath[H any](clone *Node[H], c *Criteria, visit func(*Node[H]) (*Node[H], bool)) (*Node[H], bool, bool) {
	if lc, ok := clone.literalChildren[c.Path]; ok {
		newChild, found, childEmpty := mutateAt(lc.node, KindMethod, c, visit)
		if childEmpty {
			delete(clone.literalChildren, c.Path)
		} else {
			clone.literalChildren[c.Path] = literalPathChild[H]{pattern: lc.pattern, node: newChild}
		}
		return clone, found, isEmptyNode(clone)
	}
	for i, pc := range clone.patternChildren {
		if pc.pattern.Source() != c.Path {
			continue
		}
		newChild, found, childEmpty := mutateAt(pc.node, KindMethod, c, visit)
		if childEmpty {
			clone.patternChildren = append(append([]patternChild[H]{}, clone.patternChildren[:i]...), clone.patternChildren[i+1:]...)
		} else {
			clone.patternChildren[i].node = newChild
		}
		return clone, found, isEmptyNode(clone)
	}
	return clone, false, isEmptyNode(clone)
}

func mutateMethod[H any](clone *Node[H], c *Criteria, visit func(*Node[H]) (*Node[H], bool)) (*Node[H], bool, bool) {
	if c.Method == "" {
		if clone.any == nil {
			return clone, false, isEmptyNode(clone)
		}
		newChild, found, childEmpty := mutateAt(clone.any, KindConsume, c, visit)
		if childEmpty {
			clone.any = nil
		} else {
			clone.any = newChild
		}
		return clone, found, isEmptyNode(clone)
	}
	child, ok := clone.methodChildren[c.Method]
	if !ok {
		return clone, false, isEmptyNode(clone)
	}
	newChild, found, childEmpty := mutateAt(child, KindConsume, c, visit)
	if childEmpty {
		delete(clone.methodChildren, c.Method)
	} else {
		clone.methodChildren[c.Method] = newChild
	}
	return clone, found, isEmptyNode(clone)
}

func mutateMedia[H any](clone *Node[H], value string, next Kind, c *Criteria, visit func(*Node[H]) (*Node[H], bool)) (*Node[H], bool, bool) {
	if value == "" {
		if clone.any == nil {
			return clone, false, isEmptyNode(clone)
		}
		newChild, found, childEmpty := mutateAt(clone.any, next, c, visit)
		if childEmpty {
			clone.any = nil
		} else {
			clone.any = newChild
		}
		return clone, found, isEmptyNode(clone)
	}
	idx, ok := findMediaChild(clone.mediaChildren, value)
	if !ok {
		return clone, false, isEmptyNode(clone)
	}
	newChild, found, childEmpty := mutateAt(clone.mediaChildren[idx].node, next, c, visit)
	if childEmpty {
		clone.mediaChildren = append(append([]mediaChild[H]{}, clone.mediaChildren[:idx]...), clone.mediaChildren[idx+1:]...)
	} else {
		clone.mediaChildren[idx].node = newChild
	}
	return clone, found, isEmptyNode(clone)
}

func findMediaChild[H any](children []mediaChild[H], value string) (int, bool) {
	rng, err := mediarange.Parse(value)
	if err != nil {
		return 0, false
	}
	for i, mc := range children {
		if mc.rng.Type == rng.Type && mc.rng.Subtype == rng.Subtype && paramsEqual(mc.rng.Params, rng.Params) {
			return i, true
		}
	}
	return 0, false
}

func mutateLanguage[H any](clone *Node[H], c *Criteria, visit func(*Node[H]) (*Node[H], bool)) (*Node[H], bool, bool) {
	if c.Language == "" {
		if clone.any == nil {
			return clone, false, isEmptyNode(clone)
		}
		newChild, found, childEmpty := mutateAt(clone.any, KindHandler, c, visit)
		if childEmpty {
			clone.any = nil
		} else {
			clone.any = newChild
		}
		return clone, found, isEmptyNode(clone)
	}
	lr, err := mediarange.ParseLanguageRange(c.Language)
	if err != nil {
		return clone, false, isEmptyNode(clone)
	}
	for i, lc := range clone.languageChildren {
		if lc.rng.Primary != lr.Primary || !equalSubtags(lc.rng.Subtags, lr.Subtags) {
			continue
		}
		newChild, found, childEmpty := mutateAt(lc.node, KindHandler, c, visit)
		if childEmpty {
			clone.languageChildren = append(append([]languageChild[H]{}, clone.languageChildren[:i]...), clone.languageChildren[i+1:]...)
		} else {
			clone.languageChildren[i].node = newChild
		}
		return clone, found, isEmptyNode(clone)
	}
	return clone, false, isEmptyNode(clone)
}
