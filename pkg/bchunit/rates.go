// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bchunit provides fee rate types and transaction size estimation for
// Bitcoin Cash. Bitcoin Cash has no segregated witness, so all sizes are plain
// serialized bytes.
package bchunit

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcwallet/wallet/txrules"
)

const (
	// kilo is a generic multiplier for kilo units.
	kilo = 1000
)

var (
	// DefaultSatPerByte is the fee rate used when none is configured.
	DefaultSatPerByte = SatPerByte(1)

	// DefaultMinRelayFee is the smallest absolute fee a sweep will pay. It
	// equals the default relay fee of a one kilobyte transaction.
	DefaultMinRelayFee = txrules.DefaultRelayFeePerKb
)

// SatPerByte represents a fee rate in sat/byte.
type SatPerByte btcutil.Amount

// FeeForSize calculates the fee resulting from this fee rate and the given
// size in bytes.
func (s SatPerByte) FeeForSize(size uint64) btcutil.Amount {
	return btcutil.Amount(s) * btcutil.Amount(size)
}

// FeePerKByte converts the current fee rate from sat/byte to sat/kb.
func (s SatPerByte) FeePerKByte() SatPerKByte {
	return SatPerKByte(s * kilo)
}

// String returns a human-readable string of the fee rate.
func (s SatPerByte) String() string {
	return fmt.Sprintf("%v sat/byte", int64(s))
}

// SatPerKByte represents a fee rate in sat/kb.
type SatPerKByte btcutil.Amount

// NewSatPerKByte creates a new fee rate in sat/kb from a fee paid for a
// transaction of the given size in bytes.
func NewSatPerKByte(fee btcutil.Amount, size uint64) SatPerKByte {
	if size == 0 {
		return 0
	}

	return SatPerKByte(fee.MulF64(kilo / float64(size)))
}

// FeeForSize calculates the fee resulting from this fee rate and the given
// size in bytes. The resulting fee is rounded down.
func (s SatPerKByte) FeeForSize(size uint64) btcutil.Amount {
	return btcutil.Amount(s) * btcutil.Amount(size) / kilo
}

// FeePerByte converts the current fee rate from sat/kb to sat/byte. Rates
// below one sat/byte round up to one so that a configured non-zero rate
// never becomes free.
func (s SatPerKByte) FeePerByte() SatPerByte {
	if s <= 0 {
		return 0
	}

	return SatPerByte((s + kilo - 1) / kilo)
}

// String returns a human-readable string of the fee rate.
func (s SatPerKByte) String() string {
	return fmt.Sprintf("%v sat/kb", int64(s))
}
