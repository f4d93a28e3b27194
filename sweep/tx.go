// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sweep

import (
	"encoding/hex"

	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// Status is the broadcast state of a sweep transaction.
type Status uint8

const (
	// StatusPending is the state of a signed transaction that has not
	// been broadcast.
	StatusPending Status = iota

	// StatusBroadcast is the state of a transaction accepted by an
	// endpoint.
	StatusBroadcast

	// StatusFailed is the state of a transaction rejected by every
	// endpoint tried.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"

	case StatusBroadcast:
		return "broadcast"

	case StatusFailed:
		return "failed"

	default:
		return "unknown"
	}
}

// Tx is a signed sweep transaction. A Tx is never modified after it is
// built; status changes produce a copy. Callers must not modify the slices
// or the MsgTx it references.
type Tx struct {
	// Inputs are the UTXOs spent, in input order.
	Inputs []utxo.UTXO

	// Destination is the legacy encoding of the address swept to.
	Destination string

	// Output is the value paid to Destination.
	Output btcutil.Amount

	// Fee is the fee paid.
	Fee btcutil.Amount

	// MsgTx is the signed transaction.
	MsgTx *wire.MsgTx

	// Raw is the serialized transaction.
	Raw []byte

	// TxID is the transaction id.
	TxID string

	// Status is the broadcast state.
	Status Status

	// Endpoint is the endpoint that accepted the transaction. It is only
	// set when Status is StatusBroadcast.
	Endpoint string
}

// Broadcasted reports whether an endpoint accepted the transaction.
func (t *Tx) Broadcasted() bool {
	return t.Status == StatusBroadcast
}

// Hex returns the serialized transaction as a hex string.
func (t *Tx) Hex() string {
	return hex.EncodeToString(t.Raw)
}

// withStatus returns a copy of the transaction with the given status and
// accepting endpoint.
// FeeRate returns the rate the fee pays over the signed size.
func (t *Tx) FeeRate() bchunit.SatPerKByte {
	return bchunit.NewSatPerKByte(t.Fee, uint64(len(t.Raw)))
}

func (t *Tx) withStatus(status Status, endpoint string) *Tx {
	cp := *t
	cp.Status = status
	cp.Endpoint = endpoint

	return &cp
}
