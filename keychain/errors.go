// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keychain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingExtendedKey is returned when a private derivation is
	// requested without an extended private key. This is a programming
	// error on the caller's side and is reported before any other work is
	// done.
	ErrMissingExtendedKey = errors.New("extended private key is empty")

	// ErrHardenedIndex is returned when a leaf index falls in the hardened
	// range.
	ErrHardenedIndex = errors.New("leaf index must not be hardened")

	// ErrNotPublicKey is returned when a private extended key is given
	// where a public one is expected.
	ErrNotPublicKey = errors.New("expected an extended public key")

	// ErrNotPrivateKey is returned when a public extended key is given
	// where a private one is expected.
	ErrNotPrivateKey = errors.New("expected an extended private key")

	// ErrWrongNetwork is returned when key material belongs to another
	// network.
	ErrWrongNetwork = errors.New("key is for a different network")

	// ErrNotCashAddr is returned by address validation for anything that
	// is not a CashAddr address.
	ErrNotCashAddr = errors.New("only bitcoin cash style addresses " +
		"accepted (ex. bitcoincash:qrcz...f0jc)")
)

// ValidationError reports malformed key or address input.
type ValidationError struct {
	// Input names the rejected input, e.g. "xpub" or "address".
	Input string

	// Err is the underlying cause.
	Err error
}

// Error returns a human readable description of the failure.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Input, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// newValidationError wraps err as a ValidationError for the named input.
func newValidationError(input string, err error) error {
	return &ValidationError{Input: input, Err: err}
}
