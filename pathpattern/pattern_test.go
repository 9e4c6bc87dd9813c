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

package pathpattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Literal(t *testing.T) {
	p, err := Compile("/ping")
	require.NoError(t, err)
	assert.True(t, p.IsLiteral())
	assert.Equal(t, "/ping", p.Literal())

	b, ok := p.Match("/ping")
	assert.True(t, ok)
	assert.Empty(t, b)

	_, ok = p.Match("/pong")
	assert.False(t, ok)
}

func TestCompile_ParamCapture(t *testing.T) {
	p, err := Compile("/users/{id}/profile")
	require.NoError(t, err)
	assert.False(t, p.IsLiteral())

	b, ok := p.Match("/users/42/profile")
	require.True(t, ok)
	v, ok := b.Get("id")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	_, ok = p.Match("/users/42/profile/extra")
	assert.False(t, ok)
}

func TestCompile_RegexConstraint(t *testing.T) {
	p, err := Compile("/users/{id:[0-9]+}")
	require.NoError(t, err)

	_, ok := p.Match("/users/42")
	assert.True(t, ok)
	_, ok = p.Match("/users/abc")
	assert.False(t, ok)
}

func TestCompile_MultiSegmentReluctant(t *testing.T) {
	p, err := Compile("/files/{rest:**}")
	require.NoError(t, err)

	b, ok := p.Match("/files/a/b/c")
	require.True(t, ok)
	v, _ := b.Get("rest")
	assert.Equal(t, "a/b/c", v)
}

func TestCompile_BareDoubleStar(t *testing.T) {
	p, err := Compile("/static/**")
	require.NoError(t, err)

	_, ok := p.Match("/static/js/app.js")
	assert.True(t, ok)
	_, ok = p.Match("/static")
	assert.False(t, ok)
}

func TestCompile_Errors(t *testing.T) {
	cases := []string{
		"",
		"users/{id}",          // not absolute
		"/users/{id",          // unterminated brace
		"/users/{id}/{id}",    // duplicate name
		"/a/{x:**}/{y:**}",    // two multi-segment tokens
		"/a}",                 // unmatched close
	}
	for _, c := range cases {
		_, err := Compile(c)
		assert.Error(t, err, "expected error for %q", c)
		var ipe *InvalidPatternError
		assert.ErrorAs(t, err, &ipe)
	}
}

func TestSpecificity_Ordering(t *testing.T) {
	literal := MustCompile("/files/index.html")
	wildcard := MustCompile("/files/{p:**}")

	assert.True(t, More(literal.Specificity(), wildcard.Specificity()))
}

func TestSpecificity_TotalOrder(t *testing.T) {
	a := MustCompile("/a/{x}")
	b := MustCompile("/b/{y}")
	// Equal specificity keys except for template text; must have a total order.
	less := Less(a.Specificity(), b.Specificity())
	more := Less(b.Specificity(), a.Specificity())
	assert.NotEqual(t, less, more)
}

func TestRoundTrip(t *testing.T) {
	templates := []string{
		"/users/{id}/profile",
		"/users/{id:[0-9]+}/orders/{orderId}",
		"/files/{rest:**}",
		"/a/?/b",
		"/a/*/b",
	}
	paths := []string{
		"/users/42/profile",
		"/users/7/orders/99",
		"/files/a/b/c",
		"/a/x/b",
		"/a/xyz/b",
	}
	for i, tmpl := range templates {
		p := MustCompile(tmpl)
		out, ok := p.Expand(paths[i])
		require.True(t, ok, tmpl)
		assert.Equal(t, paths[i], out)
	}
}

func TestMatch_UnnamedCapture(t *testing.T) {
	p := MustCompile("/a/{:[0-9]+}/b")
	b, ok := p.Match("/a/42/b")
	require.True(t, ok)
	assert.Empty(t, b) // unnamed capture isn't surfaced as a binding
}
