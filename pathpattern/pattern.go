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

// Package pathpattern compiles path templates such as "/users/{id:[0-9]+}"
// or "/files/{rest:**}" into matchers that bind named path parameters and
// rank templates by specificity for tie-break resolution.
//
// The grammar is:
//
//	literal bytes  - matched exactly, caller must already percent-decode
//	{name}         - single path segment, default constraint [^/]+
//	{name:regex}   - single path segment (or more, if regex spans "/")
//	{name:**}, **  - zero or more segments including separators (reluctant)
//	?              - exactly one byte except "/"
//	*              - zero or more bytes except "/"
//
// Only one multi-segment token ("**" or "{name:**}") is allowed per
// template, and parameter names must be unique within a template.
package pathpattern

import (
	"fmt"
	"regexp"
	"strings"
)

// InvalidPatternError reports a malformed path template.
type InvalidPatternError struct {
	Template string
	Reason   string
	Position int
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("pathpattern: invalid pattern %q at byte %d: %s", e.Template, e.Position, e.Reason)
}

// tokenKind distinguishes the pieces a template compiles into.
type tokenKind int

const (
	tokenLiteral tokenKind = iota
	tokenParam             // {name} or {name:regex}, single segment by default
	tokenMulti             // {name:**} or bare **, spans segments, reluctant
	tokenQMark             // ? - one byte except /
	tokenStar              // * - zero or more bytes except /
)

type token struct {
	kind    tokenKind
	literal string // tokenLiteral
	name    string // tokenParam, tokenMulti (may be empty: unnamed capture)
	regex   string // tokenParam user-supplied constraint (default [^/]+)
}

// Binding is one captured path parameter, in the order it appears in the
// template.
type Binding struct {
	Name  string
	Value string
}

// Bindings is an ordered set of captured parameters.
type Bindings []Binding

// Get returns the value bound to name and whether it was present.
func (b Bindings) Get(name string) (string, bool) {
	for _, kv := range b {
		if kv.Name == name {
			return kv.Value, true
		}
	}
	return "", false
}

// Pattern is a compiled path template.
type Pattern struct {
	source    string
	tokens    []token
	re        *regexp.Regexp
	literal   string // non-empty (and isLiteral true) when the template has no params/wildcards
	isLiteral bool

	specLiteralBytes int
	specParamCount   int
	specHasMulti     bool
}

// Source returns the original template string.
func (p *Pattern) Source() string { return p.source }

// IsLiteral reports whether the template has no parameters or wildcards,
// allowing callers to use a plain hash-map lookup instead of regex matching
// (spec.md §4.4's "literal-path map (hashed)").
func (p *Pattern) IsLiteral() bool { return p.isLiteral }

// Literal returns the literal path when IsLiteral is true.
func (p *Pattern) Literal() string { return p.literal }

// Compile parses template into a Pattern. template must begin with "/".
func Compile(template string) (*Pattern, error) {
	if template == "" {
		return nil, &InvalidPatternError{Template: template, Reason: "empty pattern", Position: 0}
	}
	if !strings.HasPrefix(template, "/") {
		return nil, &InvalidPatternError{Template: template, Reason: "path must be absolute (start with '/')", Position: 0}
	}

	tokens, err := tokenize(template)
	if err != nil {
		return nil, err
	}

	if err := validateTokens(template, tokens); err != nil {
		return nil, err
	}

	p := &Pattern{source: template, tokens: tokens}
	p.computeSpecificity()

	if p.isPureLiteral() {
		p.isLiteral = true
		p.literal = template
		return p, nil
	}

	reSrc, err := buildRegex(tokens)
	if err != nil {
		return nil, &InvalidPatternError{Template: template, Reason: err.Error(), Position: 0}
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return nil, &InvalidPatternError{Template: template, Reason: "compiled regex rejected: " + err.Error(), Position: 0}
	}
	p.re = re
	return p, nil
}

// MustCompile is like Compile but panics on error, for package-level route tables.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) isPureLiteral() bool {
	for _, t := range p.tokens {
		if t.kind != tokenLiteral {
			return false
		}
	}
	return true
}

// tokenize scans template into a token sequence.
func tokenize(template string) ([]token, error) {
	var tokens []token
	i := 0
	n := len(template)
	var lit strings.Builder

	flushLiteral := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	for i < n {
		c := template[i]
		switch c {
		case '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, &InvalidPatternError{Template: template, Reason: "unterminated '{'", Position: i}
			}
			end += i
			body := template[i+1 : end]
			flushLiteral()

			name, regexOrMulti, hasColon := body, "", false
			if idx := strings.IndexByte(body, ':'); idx >= 0 {
				name = body[:idx]
				regexOrMulti = body[idx+1:]
				hasColon = true
			}
			if strings.ContainsAny(name, "{}/") {
				return nil, &InvalidPatternError{Template: template, Reason: "invalid parameter name", Position: i}
			}

			if hasColon && regexOrMulti == "**" {
				tokens = append(tokens, token{kind: tokenMulti, name: name})
			} else if hasColon {
				tokens = append(tokens, token{kind: tokenParam, name: name, regex: regexOrMulti})
			} else {
				tokens = append(tokens, token{kind: tokenParam, name: name, regex: "[^/]+"})
			}
			i = end + 1
		case '*':
			flushLiteral()
			if i+1 < n && template[i+1] == '*' {
				tokens = append(tokens, token{kind: tokenMulti})
				i += 2
			} else {
				tokens = append(tokens, token{kind: tokenStar})
				i++
			}
		case '?':
			flushLiteral()
			tokens = append(tokens, token{kind: tokenQMark})
			i++
		case '}':
			return nil, &InvalidPatternError{Template: template, Reason: "unmatched '}'", Position: i}
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flushLiteral()
	return tokens, nil
}

func validateTokens(template string, tokens []token) error {
	seenNames := map[string]bool{}
	multiCount := 0
	for _, t := range tokens {
		switch t.kind {
		case tokenParam:
			if t.name != "" {
				if seenNames[t.name] {
					return &InvalidPatternError{Template: template, Reason: fmt.Sprintf("duplicate parameter name %q", t.name), Position: 0}
				}
				seenNames[t.name] = true
			}
		case tokenMulti:
			multiCount++
			if t.name != "" {
				if seenNames[t.name] {
					return &InvalidPatternError{Template: template, Reason: fmt.Sprintf("duplicate parameter name %q", t.name), Position: 0}
				}
				seenNames[t.name] = true
			}
		}
	}
	if multiCount > 1 {
		return &InvalidPatternError{Template: template, Reason: "more than one multi-segment token", Position: 0}
	}
	return nil
}

// buildRegex assembles a single anchored regex from the token sequence.
// Every token becomes exactly one capturing group (synthetic names for
// unnamed tokens) so Match can recover both the named Bindings and the
// full per-token capture list needed for Expand's round trip.
func buildRegex(tokens []token) (string, error) {
	var b strings.Builder
	b.WriteByte('^')
	for i, t := range tokens {
		group := fmt.Sprintf("_t%d", i)
		switch t.kind {
		case tokenLiteral:
			b.WriteString(regexp.QuoteMeta(t.literal))
		case tokenParam:
			fmt.Fprintf(&b, "(?P<%s>%s)", group, t.regex)
		case tokenMulti:
			fmt.Fprintf(&b, "(?P<%s>.*?)", group)
		case tokenQMark:
			fmt.Fprintf(&b, "(?P<%s>[^/])", group)
		case tokenStar:
			fmt.Fprintf(&b, "(?P<%s>[^/]*)", group)
		}
	}
	b.WriteByte('$')
	return b.String(), nil
}

// Match attempts to match path against the pattern, returning the named
// parameter bindings in template order.
func (p *Pattern) Match(path string) (Bindings, bool) {
	if p.isLiteral {
		if path == p.literal {
			return nil, true
		}
		return nil, false
	}

	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	var out Bindings
	names := p.re.SubexpNames()
	tokenIdx := 0
	for gi := 1; gi < len(m); gi++ {
		_ = names[gi]
		for tokenIdx < len(p.tokens) && p.tokens[tokenIdx].kind == tokenLiteral {
			tokenIdx++
		}
		if tokenIdx >= len(p.tokens) {
			break
		}
		t := p.tokens[tokenIdx]
		if (t.kind == tokenParam || t.kind == tokenMulti) && t.name != "" {
			out = append(out, Binding{Name: t.name, Value: m[gi]})
		}
		tokenIdx++
	}
	return out, true
}

// Expand rebuilds the concrete path for path, the exact round trip required
// by spec.md §8: matching path then expanding its own capture set always
// reproduces path, regardless of whether individual tokens are named.
func (p *Pattern) Expand(path string) (string, bool) {
	if p.isLiteral {
		if path == p.literal {
			return path, true
		}
		return "", false
	}
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	var b strings.Builder
	gi := 1
	for _, t := range p.tokens {
		switch t.kind {
		case tokenLiteral:
			b.WriteString(t.literal)
		default:
			b.WriteString(m[gi])
			gi++
		}
	}
	return b.String(), true
}

func (p *Pattern) computeSpecificity() {
	for _, t := range p.tokens {
		switch t.kind {
		case tokenLiteral:
			p.specLiteralBytes += len(t.literal)
		case tokenParam, tokenQMark, tokenStar:
			p.specParamCount++
		case tokenMulti:
			p.specHasMulti = true
		}
	}
}

// Specificity is the total-order key from spec.md §4.1: higher compares
// more specific. Two patterns with an equal key are ordered by lexicographic
// comparison of their original templates, guaranteeing a total order.
type Specificity struct {
	LiteralBytes int
	ParamCount   int
	NoMulti      int // 1 when the template has no multi-segment token, else 0
	TemplateLen  int
	Template     string
}

// Specificity returns p's ordering key.
func (p *Pattern) Specificity() Specificity {
	noMulti := 1
	if p.specHasMulti {
		noMulti = 0
	}
	return Specificity{
		LiteralBytes: p.specLiteralBytes,
		ParamCount:   p.specParamCount,
		NoMulti:      noMulti,
		TemplateLen:  len(p.source),
		Template:     p.source,
	}
}

// Less reports whether a is strictly less specific than b (so sorting
// ascending by Less puts the catch-all patterns first and the most specific
// patterns last).
func Less(a, b Specificity) bool {
	if a.LiteralBytes != b.LiteralBytes {
		return a.LiteralBytes < b.LiteralBytes
	}
	if a.ParamCount != b.ParamCount {
		return a.ParamCount < b.ParamCount
	}
	if a.NoMulti != b.NoMulti {
		return a.NoMulti < b.NoMulti
	}
	if a.TemplateLen != b.TemplateLen {
		return a.TemplateLen < b.TemplateLen
	}
	return a.Template < b.Template
}

// More reports whether a is strictly more specific than b.
func More(a, b Specificity) bool { return Less(b, a) }
