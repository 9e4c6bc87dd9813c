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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	r, err := Parse("application/json;q=0.8;version=2")
	require.NoError(t, err)
	assert.Equal(t, "application", r.Type)
	assert.Equal(t, "json", r.Subtype)
	assert.Equal(t, 0.8, r.Q)
	assert.Equal(t, []Param{{Name: "version", Value: "2"}}, r.Params)
}

func TestParse_CharsetCaseFolding(t *testing.T) {
	r, err := Parse("text/html;charset=UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", r.Params[0].Value)
}

func TestParseAcceptHeader_Empty(t *testing.T) {
	rs, err := ParseAcceptHeader("")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "*", rs[0].Type)
	assert.Equal(t, "*", rs[0].Subtype)
	assert.Equal(t, 1.0, rs[0].Q)
}

func TestBestOffer_QualityWins(t *testing.T) {
	accept, err := ParseAcceptHeader("application/xml;q=0.9, application/json;q=0.8")
	require.NoError(t, err)

	idx, ok := BestOffer(accept, []string{"application/json", "application/xml"})
	require.True(t, ok)
	assert.Equal(t, 1, idx) // xml, higher q
}

func TestBestOffer_NoMatch(t *testing.T) {
	accept, err := ParseAcceptHeader("text/plain")
	require.NoError(t, err)

	_, ok := BestOffer(accept, []string{"application/json", "application/xml"})
	assert.False(t, ok)
}

func TestMatch_ParamMismatchZeroScore(t *testing.T) {
	accept, _ := ParseAcceptHeader("application/json;version=1")
	q, _, ok := Match(accept, "application", "json", []Param{{Name: "version", Value: "2"}})
	assert.False(t, ok)
	assert.Zero(t, q)
}

func TestMatch_QZeroEliminates(t *testing.T) {
	accept, _ := ParseAcceptHeader("application/json;q=0")
	q, _, ok := Match(accept, "application", "json", nil)
	require.True(t, ok) // the range did match type/subtype...
	assert.Zero(t, q)   // ...but contributes zero quality, so BestOffer will never pick it
}

func TestLanguage_WildcardLosesToConcrete(t *testing.T) {
	accept, err := ParseAcceptLanguageHeader("fr-CA,fr;q=0.8")
	require.NoError(t, err)

	offers := []LanguageRange{
		{Primary: "en"},
		{Primary: "fr"},
		{Primary: "*"},
	}
	idx, ok := BestLanguageOffer(accept, offers)
	require.True(t, ok)
	assert.Equal(t, 1, idx) // fr offer beats the wildcard catch-all
}

func TestLanguage_WildcardCatchAll(t *testing.T) {
	accept, err := ParseAcceptLanguageHeader("de")
	require.NoError(t, err)

	offers := []LanguageRange{
		{Primary: "en"},
		{Primary: "fr"},
		{Primary: "*"},
	}
	idx, ok := BestLanguageOffer(accept, offers)
	require.True(t, ok)
	assert.Equal(t, 2, idx) // nothing concrete matches "de"; the wildcard still participates
}

func TestLanguage_RangeMoreSpecificThanTagDoesNotMatch(t *testing.T) {
	accept, err := ParseAcceptLanguageHeader("fr-CA")
	require.NoError(t, err)

	q, ok := MatchLanguage(accept, LanguageRange{Primary: "fr"})
	assert.False(t, ok)
	assert.Zero(t, q)
}
