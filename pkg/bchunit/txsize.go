// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bchunit

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// The byte counts below describe a version, input count, input, output
// count, output and lock time layout. Input sizes bracket a P2PKH spend whose
// DER signature varies by a couple of bytes; output sizes bracket P2PKH and
// P2SH outputs.
const (
	// versionSize is the size of the tx version field.
	versionSize = 4

	// lockTimeSize is the size of the tx lock time field.
	lockTimeSize = 4

	// outputCountSize is the size of the output count varint. Sweeps have
	// far fewer than 253 outputs.
	outputCountSize = 1

	// markerFlagSize is the marker and flag overhead of the witness
	// serialization used by the weighted model.
	markerFlagSize = 2

	// minOutputSize and maxOutputSize bracket a single output.
	minOutputSize = 31
	maxOutputSize = 33

	// minInputSize and maxInputSize bracket a P2PKH input in the flat
	// model.
	minInputSize = 146
	maxInputSize = 148

	// strippedInputSize is the size of an input without its unlocking
	// data in the weighted model.
	strippedInputSize = 59

	// minWitnessSize and maxWitnessSize bracket the unlocking data of an
	// input in the weighted model.
	minWitnessSize = 106
	maxWitnessSize = 108

	// witnessDiscount is the weight of non-witness bytes relative to
	// witness bytes in the weighted model.
	witnessDiscount = 3
)

// TxSizeEstimate bounds the serialized size in bytes of a transaction that is
// not yet signed.
type TxSizeEstimate struct {
	// Min is the smallest expected size.
	Min float64

	// Max is the largest expected size.
	Max float64
}

// Mean returns the midpoint of the bounds rounded up to a whole byte.
func (e TxSizeEstimate) Mean() uint64 {
	return uint64(math.Ceil((e.Min + e.Max) / 2))
}

// String returns the string representation of the size bounds.
func (e TxSizeEstimate) String() string {
	return fmt.Sprintf("%v-%v bytes", e.Min, e.Max)
}

// EstimateTxSize estimates the size bounds of a transaction spending
// inputCount P2PKH inputs into outputCount outputs.
//
// When weighted is true the estimate blends a stripped and a full
// serialization at a ratio of 3:1, which approximates a discounted witness
// byte model and yields a smaller figure than the flat model.
func EstimateTxSize(inputCount, outputCount int, weighted bool) TxSizeEstimate {
	if inputCount < 0 {
		inputCount = 0
	}
	if outputCount < 0 {
		outputCount = 0
	}

	in := float64(inputCount)
	out := float64(outputCount)
	varint := float64(wire.VarIntSerializeSize(uint64(inputCount)))

	if !weighted {
		return TxSizeEstimate{
			Min: varint + versionSize + minInputSize*in +
				outputCountSize + minOutputSize*out + lockTimeSize,
			Max: varint + versionSize + maxInputSize*in +
				outputCountSize + maxOutputSize*out + lockTimeSize,
		}
	}

	base := varint + versionSize + markerFlagSize + strippedInputSize*in +
		outputCountSize + lockTimeSize

	minStripped := base + minOutputSize*out
	maxStripped := base + maxOutputSize*out
	minFull := minStripped + minWitnessSize*in
	maxFull := maxStripped + maxWitnessSize*in

	return TxSizeEstimate{
		Min: (minStripped*witnessDiscount + minFull) /
			(witnessDiscount + 1),
		Max: (maxStripped*witnessDiscount + maxFull) /
			(witnessDiscount + 1),
	}
}

// EstimateTxFee returns the fee for a transaction of the given shape at the
// given rate. The exact signed size is unknown before signing, so the fee is
// charged on the rounded up midpoint of the size bounds.
func EstimateTxFee(rate SatPerByte, inputCount, outputCount int,
	weighted bool) btcutil.Amount {

	size := EstimateTxSize(inputCount, outputCount, weighted)

	return rate.FeeForSize(size.Mean())
}
