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

// Package problem formats router resolution failures as RFC 9457 Problem
// Details (application/problem+json), the wire-level face of the errors
// produced by router.Router.Resolve. It sits outside the resolve path
// itself - the router never imports it - so callers that don't speak HTTP
// can ignore it entirely.
package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"webroute.dev/router/router"
)

// Detail is an RFC 9457 problem detail document.
type Detail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	ErrorID    string         `json:"error_id,omitempty"`
	Extensions map[string]any `json:"-"`
}

// MarshalJSON merges Extensions inline with the standard fields, protecting
// the reserved field names from being overwritten by an extension key.
func (d Detail) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   d.Type,
		"title":  d.Title,
		"status": d.Status,
	}
	if d.Detail != "" {
		m["detail"] = d.Detail
	}
	if d.Instance != "" {
		m["instance"] = d.Instance
	}
	if d.ErrorID != "" {
		m["error_id"] = d.ErrorID
	}
	for k, v := range d.Extensions {
		switch k {
		case "type", "title", "status", "detail", "instance", "error_id":
			continue // reserved; extensions may not shadow them
		default:
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// Formatter turns a router resolution error into a Detail. BaseURL prefixes
// every Type slug, e.g. "https://api.example.com/problems" +
// "/method-not-allowed".
type Formatter struct {
	BaseURL        string
	Instance       func() string // optional, e.g. the request path
	DisableErrorID bool
}

// ContentType is the media type every Detail this package produces should be
// served with.
const ContentType = "application/problem+json"

// Format maps err - expected to be one of the sentinel/typed errors
// returned by router.Router.Resolve - to a Detail and its HTTP status.
// Unrecognized errors map to a generic 500.
func (f Formatter) Format(err error) (Detail, int) {
	d := Detail{}
	if !f.DisableErrorID {
		d.ErrorID = uuid.NewString()
	}
	if f.Instance != nil {
		d.Instance = f.Instance()
	}

	var status int
	var slug, title, detail string

	switch e := err.(type) {
	case *router.MethodNotAllowedError:
		status, slug, title = http.StatusMethodNotAllowed, "method-not-allowed", "Method Not Allowed"
		detail = fmt.Sprintf("allowed methods: %v", e.Allowed)
		d.Extensions = map[string]any{"allowed": e.Allowed}
	case *router.UnsupportedMediaTypeError:
		status, slug, title = http.StatusUnsupportedMediaType, "unsupported-media-type", "Unsupported Media Type"
		detail = fmt.Sprintf("supported media types: %v", e.Supported)
		d.Extensions = map[string]any{"supported": e.Supported}
	case *router.NotAcceptableError:
		status, slug, title = http.StatusNotAcceptable, "not-acceptable", "Not Acceptable"
		detail = fmt.Sprintf("producible media types: %v", e.Producible)
		d.Extensions = map[string]any{"producible": e.Producible}
	case *router.RouteConflictError:
		status, slug, title = http.StatusInternalServerError, "route-conflict", "Route Conflict"
		detail = e.Reason
	case *router.MissingRequiredParameterError:
		status, slug, title = http.StatusBadRequest, "missing-parameter", "Missing Required Parameter"
		detail = e.Error()
	default:
		switch err {
		case router.ErrDisabled:
			status, slug, title = http.StatusNotFound, "route-disabled", "Not Found"
		case router.ErrNotFound:
			status, slug, title = http.StatusNotFound, "not-found", "Not Found"
		default:
			status, slug, title = http.StatusInternalServerError, "internal-error", "Internal Server Error"
			detail = err.Error()
		}
	}

	d.Status = status
	d.Title = title
	d.Detail = detail
	d.Type = f.BaseURL + "/" + slug
	return d, status
}

// WriteTo serializes d to w using status, setting the problem+json content
// type.
func WriteTo(w http.ResponseWriter, d Detail, status int) error {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(d)
}
