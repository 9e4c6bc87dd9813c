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
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no registered route matches the exchange at
// all (no path in the tree matched the request path).
var ErrNotFound = errors.New("router: no matching route")

// ErrDisabled is returned when the best-ranked match exists but is disabled.
var ErrDisabled = errors.New("router: matched route is disabled")

// ErrRouteNotFound is returned by Route.Enable/Disable/Remove when the
// route's criteria no longer resolve to any terminal (it was already
// removed).
var ErrRouteNotFound = errors.New("router: route no longer registered")

// MethodNotAllowedError reports that the path matched but no handler
// accepts the request method.
type MethodNotAllowedError struct {
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("router: method not allowed (allowed: %s)", strings.Join(e.Allowed, ", "))
}

// UnsupportedMediaTypeError reports that no handler accepts the request's
// Content-Type.
type UnsupportedMediaTypeError struct {
	Supported []string
}

func (e *UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("router: unsupported media type (supported: %s)", strings.Join(e.Supported, ", "))
}

// NotAcceptableError reports that no handler can produce a representation
// satisfying the request's Accept (or Accept-Language) header.
type NotAcceptableError struct {
	Producible []string
}

func (e *NotAcceptableError) Error() string {
	return fmt.Sprintf("router: not acceptable (producible: %s)", strings.Join(e.Producible, ", "))
}

// RouteConflictError reports that a registration could not be disambiguated
// from an existing one (spec.md §4.5's conflict detection).
type RouteConflictError struct {
	Reason string
}

func (e *RouteConflictError) Error() string { return "router: route conflict: " + e.Reason }

// MissingRequiredParameterError reports that a required registration
// parameter was not supplied: InterceptorManager.Interceptors returns it with
// Name "path" when no path template was set.
type MissingRequiredParameterError struct {
	Name string
}

func (e *MissingRequiredParameterError) Error() string {
	return fmt.Sprintf("router: missing required path parameter %q", e.Name)
}
