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

package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testExchange struct {
	method, path string
	headers      map[string]string
}

func (e testExchange) Method() string    { return e.method }
func (e testExchange) Path() string      { return e.path }
func (e testExchange) Authority() string { return "" }
func (e testExchange) Scheme() string    { return "" }
func (e testExchange) Header(name string) string {
	if e.headers == nil {
		return ""
	}
	return e.headers[name]
}

func TestRouter_BasicDispatch(t *testing.T) {
	r := New[string]()
	_, err := r.NewRoute().Path("/users/{id}").Method("GET").Handler("get-user")
	require.NoError(t, err)

	res := r.Resolve(context.Background(), testExchange{method: "GET", path: "/users/42"})
	require.True(t, res.Matched)
	assert.Equal(t, "get-user", res.Handler)
	v, ok := res.Bindings.Get("id")
	require.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := New[string]()
	_, err := r.NewRoute().Path("/widgets").Method("GET").Handler("list")
	require.NoError(t, err)

	res := r.Resolve(context.Background(), testExchange{method: "DELETE", path: "/widgets"})
	require.False(t, res.Matched)
	var target *MethodNotAllowedError
	require.ErrorAs(t, res.Err, &target)
	assert.Equal(t, []string{"GET"}, target.Allowed)
}

func TestRouter_CartesianExpansion(t *testing.T) {
	r := New[string]()
	_, err := r.NewRoute().Path("/widgets").Method("GET", "HEAD").Handler("list")
	require.NoError(t, err)

	for _, m := range []string{"GET", "HEAD"} {
		res := r.Resolve(context.Background(), testExchange{method: m, path: "/widgets"})
		require.True(t, res.Matched, "method %s", m)
	}
}

func TestRoute_DisableThenEnable(t *testing.T) {
	r := New[string]()
	rt, err := r.NewRoute().Path("/widgets").Method("GET").Handler("list")
	require.NoError(t, err)

	require.NoError(t, rt.Disable())
	res := r.Resolve(context.Background(), testExchange{method: "GET", path: "/widgets"})
	assert.False(t, res.Matched)
	assert.ErrorIs(t, res.Err, ErrDisabled)

	require.NoError(t, rt.Enable())
	res = r.Resolve(context.Background(), testExchange{method: "GET", path: "/widgets"})
	assert.True(t, res.Matched)
}

func TestRoute_Remove(t *testing.T) {
	r := New[string]()
	rt, err := r.NewRoute().Path("/widgets").Method("GET").Handler("list")
	require.NoError(t, err)

	require.NoError(t, rt.Remove())
	res := r.Resolve(context.Background(), testExchange{method: "GET", path: "/widgets"})
	assert.False(t, res.Matched)
	assert.ErrorIs(t, res.Err, ErrNotFound)

	assert.ErrorIs(t, rt.Remove(), ErrRouteNotFound)
}

func TestRouter_Routes_Introspection(t *testing.T) {
	r := New[string]()
	_, err := r.NewRoute().Path("/a").Method("GET").Handler("a")
	require.NoError(t, err)
	_, err = r.NewRoute().Path("/b").Method("POST").Handler("b")
	require.NoError(t, err)

	routes := r.Routes()
	require.Len(t, routes, 2)
	for _, rt := range routes {
		assert.True(t, rt.Enabled)
	}
}

func TestRouter_MatchTrailingSlash(t *testing.T) {
	r := New[string]()
	_, err := r.NewRoute().Path("/a/").Method("GET").MatchTrailingSlash().Handler("a")
	require.NoError(t, err)

	for _, p := range []string{"/a", "/a/"} {
		res := r.Resolve(context.Background(), testExchange{method: "GET", path: p})
		assert.True(t, res.Matched, "path %s", p)
	}
}

func TestRouter_TrailingSlashNotOptedIn(t *testing.T) {
	r := New[string]()
	_, err := r.NewRoute().Path("/a/").Method("GET").Handler("a")
	require.NoError(t, err)

	res := r.Resolve(context.Background(), testExchange{method: "GET", path: "/a/"})
	assert.True(t, res.Matched)

	res = r.Resolve(context.Background(), testExchange{method: "GET", path: "/a"})
	assert.False(t, res.Matched, "literal-only registration must not match the trailing-slash-stripped form")
}

func TestRouter_ProduceNegotiation(t *testing.T) {
	r := New[string]()
	_, err := r.NewRoute().Path("/widgets").Method("GET").Produces("application/json").Handler("json")
	require.NoError(t, err)
	_, err = r.NewRoute().Path("/widgets").Method("GET").Produces("application/xml").Handler("xml")
	require.NoError(t, err)

	res := r.Resolve(context.Background(), testExchange{
		method: "GET", path: "/widgets",
		headers: map[string]string{"Accept": "application/xml"},
	})
	require.True(t, res.Matched)
	assert.Equal(t, "xml", res.Handler)
}
