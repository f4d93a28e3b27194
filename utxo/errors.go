// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTx is returned when an indexer reports a transaction
	// whose ids or scripts cannot be decoded.
	ErrMalformedTx = errors.New("malformed transaction")
)

// AggregationError reports a failed aggregation. No partial result is
// returned alongside it.
type AggregationError struct {
	// Address is the address being aggregated.
	Address string

	// TxID is the transaction whose fetch failed. It is empty when the
	// history lookup itself failed.
	TxID string

	// Err is the underlying cause.
	Err error
}

// Error returns a human readable description of the failure.
func (e *AggregationError) Error() string {
	if e.TxID == "" {
		return fmt.Sprintf("unable to fetch history of %s: %v",
			e.Address, e.Err)
	}

	return fmt.Sprintf("unable to fetch tx %s of %s: %v", e.TxID,
		e.Address, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AggregationError) Unwrap() error {
	return e.Err
}
