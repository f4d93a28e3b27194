// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is returned when an indexer answers a broadcast with an
	// error payload.
	ErrRejected = errors.New("transaction rejected")

	// ErrNoEndpoint is returned when the endpoint pool has no endpoint
	// left to select.
	ErrNoEndpoint = errors.New("no endpoint available")

	// ErrEmptyResult is returned when a broadcast is answered without a
	// transaction id.
	ErrEmptyResult = errors.New("empty result")
)

// NetworkError reports a failed request to an indexer endpoint.
type NetworkError struct {
	// Endpoint is the base URL the request was sent to.
	Endpoint string

	// Op names the request, e.g. "address", "tx" or "sendtx".
	Op string

	// StatusCode is the HTTP status of the response. It is zero when no
	// response was received.
	StatusCode int

	// Body holds the start of the response body for non-2xx responses.
	Body string

	// Err is the underlying cause.
	Err error
}

// Error returns a human readable description of the failure.
func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("%s request to %s failed", e.Op, e.Endpoint)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Body != "" {
		msg += fmt.Sprintf(" (body: %q)", e.Body)
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *NetworkError) Unwrap() error {
	return e.Err
}
