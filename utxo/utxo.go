// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package utxo

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// UTXO is an unspent output paying to a deposit address.
type UTXO struct {
	// OutPoint identifies the output.
	OutPoint wire.OutPoint

	// PkScript is the locking script of the output.
	PkScript []byte

	// Address is the legacy encoding of the address the output pays to.
	Address string

	// Value is the value of the output.
	Value btcutil.Amount
}

// String returns the outpoint and value of the output.
func (u *UTXO) String() string {
	return fmt.Sprintf("%v (%v)", u.OutPoint, u.Value)
}

// Total returns the sum of the values of utxos.
func Total(utxos []UTXO) btcutil.Amount {
	var total btcutil.Amount
	for _, u := range utxos {
		total += u.Value
	}

	return total
}

// Sort orders utxos by transaction id and then output index.
func Sort(utxos []UTXO) {
	slices.SortFunc(utxos, func(a, b UTXO) int {
		return compareOutPoints(a.OutPoint, b.OutPoint)
	})
}

// compareOutPoints orders outpoints by the byte order of their hashes and
// then by index.
func compareOutPoints(a, b wire.OutPoint) int {
	if c := bytes.Compare(a.Hash[:], b.Hash[:]); c != 0 {
		return c
	}

	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	default:
		return 0
	}
}
