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

package mediarange

import (
	"strconv"
	"strings"
)

// wildcardEpsilon is the combined-quality value given to a registered
// wildcard ("*") language offer: per spec.md §4.4, the registered wildcard
// always participates in negotiation, but loses to any concrete match. It
// must be strictly greater than zero so it still beats "no candidate
// matched at all" (which is reported as ok=false, not a zero score).
const wildcardEpsilon = 1e-9

// LanguageRange is a parsed Accept-Language entry, or a registered route's
// language criterion, e.g. "fr-CA" (Primary "fr", Subtags ["CA"]) or the
// wildcard "*".
type LanguageRange struct {
	Primary string
	Subtags []string
	Q       float64
}

// IsWildcard reports whether this is the "*" range.
func (l LanguageRange) IsWildcard() bool { return l.Primary == "*" }

// String renders the range back to BCP 47-ish wire format (without q).
func (l LanguageRange) String() string {
	if l.Primary == "*" {
		return "*"
	}
	if len(l.Subtags) == 0 {
		return l.Primary
	}
	return l.Primary + "-" + strings.Join(l.Subtags, "-")
}

// ParseLanguageRange parses a single Accept-Language token such as
// "fr-CA;q=0.8" or "*".
func ParseLanguageRange(tok string) (LanguageRange, error) {
	parts := strings.Split(tok, ";")
	tag := strings.TrimSpace(parts[0])
	lr := LanguageRange{Q: 1.0}

	if tag == "*" {
		lr.Primary = "*"
	} else {
		segs := strings.Split(tag, "-")
		lr.Primary = strings.ToLower(segs[0])
		if len(segs) > 1 {
			lr.Subtags = segs[1:]
		}
	}

	for _, raw := range parts[1:] {
		raw = strings.TrimSpace(raw)
		if name, value, ok := strings.Cut(raw, "="); ok && strings.EqualFold(name, "q") {
			if q, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				lr.Q = clampQ(q)
			}
		}
	}
	return lr, nil
}

// ParseAcceptLanguageHeader parses a full Accept-Language header. An empty
// header is treated as "*;q=1", mirroring the empty-Accept boundary rule in
// spec.md §8.
func ParseAcceptLanguageHeader(header string) ([]LanguageRange, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return []LanguageRange{{Primary: "*", Q: 1}}, nil
	}
	toks := splitTopLevelComma(header)
	out := make([]LanguageRange, 0, len(toks))
	for _, tok := range toks {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		lr, _ := ParseLanguageRange(tok)
		out = append(out, lr)
	}
	if len(out) == 0 {
		return []LanguageRange{{Primary: "*", Q: 1}}, nil
	}
	return out, nil
}

// subtagsArePrefixOf reports whether rangeSubtags is an RFC 4647 basic-
// filtering prefix of tagSubtags: every element of rangeSubtags must equal,
// case-insensitively, the tag's subtag at the same position, and the range
// may not be longer than the tag.
func subtagsArePrefixOf(rangeSubtags, tagSubtags []string) bool {
	if len(rangeSubtags) > len(tagSubtags) {
		return false
	}
	for i, rs := range rangeSubtags {
		if !strings.EqualFold(rs, tagSubtags[i]) {
			return false
		}
	}
	return true
}

// MatchLanguage scores how well an Accept-Language header (accept) likes a
// concrete registered language offer. The registered wildcard offer always
// participates (ok=true) with a score that loses to any concrete match.
func MatchLanguage(accept []LanguageRange, offer LanguageRange) (quality float64, ok bool) {
	if offer.IsWildcard() {
		return wildcardEpsilon, true
	}

	best := -1.0
	matched := false
	for _, r := range accept {
		var score float64
		switch {
		case r.IsWildcard():
			score = 10
		case strings.EqualFold(r.Primary, offer.Primary):
			if subtagsArePrefixOf(r.Subtags, offer.Subtags) {
				score = 1000
			} else {
				continue // primary matches but range demands subtags the offer lacks
			}
		default:
			continue
		}
		combined := r.Q * score
		matched = true
		if combined > best {
			best = combined
		}
	}
	if !matched {
		return 0, false
	}
	return best, true
}

// BestLanguageOffer selects the best-scoring offer among offers against
// accept, iterating in registration order and keeping the first offer at
// the maximum quality (stable tie-break, spec.md §4.4).
func BestLanguageOffer(accept []LanguageRange, offers []LanguageRange) (index int, ok bool) {
	bestQ := -1.0
	bestIdx := -1
	for i, offer := range offers {
		q, matched := MatchLanguage(accept, offer)
		if !matched || q <= 0 {
			continue
		}
		if q > bestQ {
			bestQ = q
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}
