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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExchange struct {
	method, path, authority, scheme string
	headers                         map[string]string
}

func (e fakeExchange) Method() string    { return e.method }
func (e fakeExchange) Path() string      { return e.path }
func (e fakeExchange) Authority() string { return e.authority }
func (e fakeExchange) Scheme() string    { return e.scheme }
func (e fakeExchange) Header(name string) string {
	if e.headers == nil {
		return ""
	}
	return e.headers[name]
}

func TestResolve_LiteralDispatch(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/health", Method: "GET"}, "health-handler", 1, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{method: "GET", path: "/health"})
	require.True(t, out.Matched)
	assert.Equal(t, "health-handler", out.Resource)
}

func TestResolve_PathParameterCapture(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/users/{id}", Method: "GET"}, "get-user", 1, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{method: "GET", path: "/users/42"})
	require.True(t, out.Matched)
	v, ok := out.Bindings.Get("id")
	require.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestResolve_LiteralBeatsPattern(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/users/{id}", Method: "GET"}, "get-user", 1, false)
	require.NoError(t, err)
	root, err = Insert[string](root, Criteria{Path: "/users/me", Method: "GET"}, "get-me", 2, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{method: "GET", path: "/users/me"})
	require.True(t, out.Matched)
	assert.Equal(t, "get-me", out.Resource)
}

func TestResolve_NotFound(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/health", Method: "GET"}, "h", 1, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{method: "GET", path: "/missing"})
	assert.False(t, out.Matched)
	assert.Equal(t, FailureNotFound, out.Failure)
}

func TestResolve_MethodNotAllowed(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/widgets", Method: "GET"}, "list", 1, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{method: "POST", path: "/widgets"})
	assert.False(t, out.Matched)
	assert.Equal(t, FailureMethodNotAllowed, out.Failure)
	assert.Equal(t, []string{"GET"}, out.AllowedMethods)
}

func TestResolve_ProduceNegotiation(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/widgets", Method: "GET", Produce: "application/json"}, "json", 1, false)
	require.NoError(t, err)
	root, err = Insert[string](root, Criteria{Path: "/widgets", Method: "GET", Produce: "application/xml"}, "xml", 2, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{
		method: "GET", path: "/widgets",
		headers: map[string]string{"Accept": "application/xml;q=0.9, application/json;q=0.8"},
	})
	require.True(t, out.Matched)
	assert.Equal(t, "xml", out.Resource)
}

func TestResolve_NotAcceptable(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/widgets", Method: "GET", Produce: "application/json"}, "json", 1, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{
		method: "GET", path: "/widgets",
		headers: map[string]string{"Accept": "text/plain"},
	})
	assert.False(t, out.Matched)
	assert.Equal(t, FailureNotAcceptable, out.Failure)
	assert.Equal(t, []string{"application/json"}, out.ProducibleTypes)
}

func TestResolve_LanguageNegotiation(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/greet", Method: "GET", Language: "en"}, "en", 1, false)
	require.NoError(t, err)
	root, err = Insert[string](root, Criteria{Path: "/greet", Method: "GET", Language: "fr"}, "fr", 2, false)
	require.NoError(t, err)
	root, err = Insert[string](root, Criteria{Path: "/greet", Method: "GET", Language: "*"}, "wild", 3, false)
	require.NoError(t, err)

	out := Resolve[string](root, fakeExchange{
		method: "GET", path: "/greet",
		headers: map[string]string{"Accept-Language": "fr-CA,fr;q=0.8"},
	})
	require.True(t, out.Matched)
	assert.Equal(t, "fr", out.Resource)

	out2 := Resolve[string](root, fakeExchange{
		method: "GET", path: "/greet",
		headers: map[string]string{"Accept-Language": "de"},
	})
	require.True(t, out2.Matched)
	assert.Equal(t, "wild", out2.Resource)
}

func TestResolve_DisabledOnlyMatchReportsDisabled(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/widgets", Method: "GET"}, "only", 1, false)
	require.NoError(t, err)
	root, ok := SetEnabled[string](root, Criteria{Path: "/widgets", Method: "GET"}, false)
	require.True(t, ok)

	out := Resolve[string](root, fakeExchange{method: "GET", path: "/widgets"})
	assert.False(t, out.Matched)
	assert.Equal(t, FailureDisabled, out.Failure)
}

func TestResolve_DisabledFallsBackToOtherEnabledMatch(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/widgets", Method: "GET", Produce: "application/json"}, "json", 1, false)
	require.NoError(t, err)
	root, err = Insert[string](root, Criteria{Path: "/widgets", Method: "GET", Produce: "application/xml"}, "xml", 2, false)
	require.NoError(t, err)
	root, ok := SetEnabled[string](root, Criteria{Path: "/widgets", Method: "GET", Produce: "application/json"}, false)
	require.True(t, ok)

	out := Resolve[string](root, fakeExchange{
		method: "GET", path: "/widgets",
		headers: map[string]string{"Accept": "*/*"},
	})
	require.True(t, out.Matched)
	assert.Equal(t, "xml", out.Resource)
}

func TestRemove_IsInverseOfInsert(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/widgets", Method: "GET"}, "h", 1, false)
	require.NoError(t, err)

	root, ok := Remove[string](root, Criteria{Path: "/widgets", Method: "GET"}, false)
	require.True(t, ok)

	out := Resolve[string](root, fakeExchange{method: "GET", path: "/widgets"})
	assert.False(t, out.Matched)
	assert.Equal(t, FailureNotFound, out.Failure)
}

func TestExtract_ReportsRegisteredRoutes(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/a", Method: "GET"}, "a", 1, false)
	require.NoError(t, err)
	root, err = Insert[string](root, Criteria{Path: "/b", Method: "POST"}, "b", 2, false)
	require.NoError(t, err)

	snaps := Extract[string](root)
	require.Len(t, snaps, 2)
}

func TestResolve_ConcurrentReadsDuringInsertSeeConsistentSnapshot(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/widgets", Method: "GET"}, "v1", 1, false)
	require.NoError(t, err)

	newRoot, err := Insert[string](root, Criteria{Path: "/widgets", Method: "POST"}, "v2", 2, false)
	require.NoError(t, err)

	// root (the old snapshot) must be unaffected by the later insert: this is
	// the copy-on-write guarantee readers of an old root pointer rely on.
	out := Resolve[string](root, fakeExchange{method: "POST", path: "/widgets"})
	assert.False(t, out.Matched)

	out2 := Resolve[string](newRoot, fakeExchange{method: "POST", path: "/widgets"})
	assert.True(t, out2.Matched)
}

func TestResolveInterceptors_OrdersBySpecificity(t *testing.T) {
	root, err := Insert[string](nil, Criteria{Path: "/api/**"}, "wide", 1, true)
	require.NoError(t, err)
	root, err = Insert[string](root, Criteria{Path: "/api/users/{id}"}, "narrow", 2, true)
	require.NoError(t, err)

	out := ResolveInterceptors[string](root, fakeExchange{method: "GET", path: "/api/users/42"})
	require.Len(t, out, 2)
	assert.Equal(t, "narrow", out[0])
	assert.Equal(t, "wide", out[1])
}
