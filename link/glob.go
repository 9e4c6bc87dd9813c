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
	"regexp"
	"strings"
)

// globPattern is the small literal-or-"*"-wildcarded matcher used for
// authority and scheme criteria (spec.md §4.4 items 1-2), distinct from the
// path grammar in package pathpattern since authority/scheme tokens have no
// segment structure.
type globPattern struct {
	source string
	exact  bool
	re     *regexp.Regexp
}

func compileGlob(s string) *globPattern {
	if !strings.Contains(s, "*") {
		return &globPattern{source: s, exact: true}
	}
	var b strings.Builder
	b.WriteByte('^')
	for _, part := range strings.Split(s, "*") {
		b.WriteString(regexp.QuoteMeta(part))
		b.WriteString(".*")
	}
	src := strings.TrimSuffix(b.String(), ".*") + "$"
	return &globPattern{source: s, re: regexp.MustCompile(src)}
}

func (g *globPattern) match(s string) bool {
	if g.exact {
		return strings.EqualFold(g.source, s)
	}
	return g.re.MatchString(strings.ToLower(s))
}

// specificity: literal byte count, wildcards compare as least specific.
func (g *globPattern) specificity() int {
	if g.exact {
		return len(g.source)*2 + 1
	}
	return len(strings.ReplaceAll(g.source, "*", ""))
}
