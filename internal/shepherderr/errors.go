/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 Shepherd Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package shepherderr defines the typed error kinds shared across the
// reconciliation engine, so that callers can classify a failure
// (config, transport, decode, conversion, API, git, io) without string
// matching.
package shepherderr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure into one of the categories the reconciler
// and its collaborators need to branch on (retry, abort process,
// demote to per-object failure).
type Kind string

const (
	KindConfig      Kind = "config"
	KindTransport   Kind = "transport"
	KindDecode      Kind = "decode"
	KindConversion  Kind = "conversion"
	KindAPI         Kind = "api"
	KindGit         Kind = "git"
	KindIO          Kind = "io"
	KindUnexpected  Kind = "unexpected"
)

// APISubkind further classifies a KindAPI error by the HTTP status that
// produced it.
type APISubkind string

const (
	APIUnauthorized     APISubkind = "unauthorized"
	APIForbidden        APISubkind = "forbidden"
	APINotFound         APISubkind = "not_found"
	APIConflict         APISubkind = "conflict"
	APIBadRequest       APISubkind = "bad_request"
	APITransportOrDecode APISubkind = "transport_or_decode"
	APIUnexpected       APISubkind = "unexpected"
)

// Error is the concrete error type carried through the system. Field
// is set only for KindConversion, and Status/Body only for KindAPI.
type Error struct {
	Kind    Kind
	Sub     APISubkind
	Field   string
	Status  int
	Body    string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindConversion && e.Field != "":
		return fmt.Sprintf("%s: conversion error on field %q: %v", e.Op, e.Field, e.Err)
	case e.Kind == KindAPI:
		return fmt.Sprintf("%s: api error (%s, status=%d): %v", e.Op, e.Sub, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on Kind by comparing against a sentinel
// constructed with Kind-only fields (no Err).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Sub != "" && t.Sub != e.Sub {
		return false
	}
	return true
}

func newErr(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func Config(op string, err error) error    { return newErr(op, KindConfig, err) }
func Transport(op string, err error) error { return newErr(op, KindTransport, err) }
func Decode(op string, err error) error    { return newErr(op, KindDecode, err) }
func Git(op string, err error) error       { return newErr(op, KindGit, err) }
func IO(op string, err error) error        { return newErr(op, KindIO, err) }

// Conversion builds an error for a failed wire<->canonical mapping,
// naming the offending field per spec invariant.
func Conversion(op, field string, err error) error {
	return &Error{Op: op, Kind: KindConversion, Field: field, Err: err}
}

// API builds an error classified by HTTP status code per the gateway's
// status-to-kind mapping.
func API(op string, status int, body string, err error) error {
	return &Error{Op: op, Kind: KindAPI, Sub: subkindForStatus(status), Status: status, Body: body, Err: err}
}

func subkindForStatus(status int) APISubkind {
	switch status {
	case http.StatusUnauthorized:
		return APIUnauthorized
	case http.StatusForbidden:
		return APIForbidden
	case http.StatusNotFound:
		return APINotFound
	case http.StatusConflict:
		return APIConflict
	case http.StatusBadRequest:
		return APIBadRequest
	default:
		return APIUnexpected
	}
}

// IsNotFound reports whether err is an API error produced by a 404
// response, matching the readiness-poll predicate in spec §4.6.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindAPI && e.Sub == APINotFound
	}
	return false
}

// IsConflict reports whether err is an API error produced by a 409
// response.
func IsConflict(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindAPI && e.Sub == APIConflict
	}
	return false
}

// IsServerError reports whether err is an API error with a 5xx status,
// used by the PRTB creation retry predicate (spec §4.6).
func IsServerError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindAPI && e.Status >= 500
	}
	return false
}
