// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sweep

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
)

var (
	// ErrEmptyInputs is returned when a sweep is built without any UTXO
	// to spend.
	ErrEmptyInputs = errors.New("no UTXOs to sweep")

	// ErrKeyMismatch is returned when the derived signing key does not
	// control one of the inputs.
	ErrKeyMismatch = errors.New("signing key does not control input")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNilTx is returned when a nil transaction is broadcast.
	ErrNilTx = errors.New("nil sweep transaction")
)

// InsufficientFundsError is returned when the swept value would not cover
// the fee at least once more after paying it.
type InsufficientFundsError struct {
	// Total is the sum of the input values.
	Total btcutil.Amount

	// Fee is the fee the sweep would pay.
	Fee btcutil.Amount
}

// Error returns a human readable description of the failure.
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("balance too small to sweep: total %v, fee %v",
		e.Total, e.Fee)
}

// BroadcastError reports that a transaction was rejected by both the primary
// and the fallback endpoint.
type BroadcastError struct {
	// Primary is the failure of the primary endpoint.
	Primary error

	// PrimaryEndpoint is the endpoint tried first. It is empty when no
	// endpoint could be selected at all.
	PrimaryEndpoint string

	// Fallback is the failure of the fallback attempt. It is an
	// endpoint selection error when no distinct fallback exists.
	Fallback error

	// FallbackEndpoint is the endpoint tried second. It is empty when no
	// fallback could be selected.
	FallbackEndpoint string
}

// Error returns a human readable description of both failures.
func (e *BroadcastError) Error() string {
	msg := fmt.Sprintf("broadcast failed on primary %q: %v",
		e.PrimaryEndpoint, e.Primary)
	if e.Fallback != nil {
		msg += fmt.Sprintf("; fallback %q: %v", e.FallbackEndpoint,
			e.Fallback)
	}

	return msg
}

// Unwrap returns the failures of both attempts.
func (e *BroadcastError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Fallback != nil {
		errs = append(errs, e.Fallback)
	}

	return errs
}
