// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sweep

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/btcsuite/bchsweep/cashaddr"
	"github.com/btcsuite/bchsweep/keychain"
	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/davecgh/go-spew/spew"
)

const (
	// txVersion is the version of sweep transactions.
	txVersion = 2

	// SigHashForkID marks a signature as committing to the Bitcoin Cash
	// replay protected digest.
	SigHashForkID txscript.SigHashType = 0x40

	// sigHashType is the hash type of every sweep signature.
	sigHashType = txscript.SigHashAll | SigHashForkID
)

// Builder assembles and signs sweep transactions. Building is a pure
// computation and performs no network access.
type Builder struct {
	keys        *keychain.Service
	feePerByte  bchunit.SatPerByte
	minRelayFee btcutil.Amount
}

// NewBuilder creates a builder that signs with keys derived by keys. A zero
// feePerByte or minRelayFee selects the package defaults.
func NewBuilder(keys *keychain.Service, feePerByte bchunit.SatPerByte,
	minRelayFee btcutil.Amount) *Builder {

	if feePerByte == 0 {
		feePerByte = bchunit.DefaultSatPerByte
	}
	if minRelayFee == 0 {
		minRelayFee = bchunit.DefaultMinRelayFee
	}

	return &Builder{
		keys:        keys,
		feePerByte:  feePerByte,
		minRelayFee: minRelayFee,
	}
}

// Fee returns the fee a sweep of inputCount inputs pays at rate. A zero rate
// selects the builder's default rate.
func (b *Builder) Fee(inputCount int, rate bchunit.SatPerByte) btcutil.Amount {
	if rate == 0 {
		rate = b.feePerByte
	}

	fee := bchunit.EstimateTxFee(rate, inputCount, 1, true)

	return max(fee, b.minRelayFee)
}

// Build creates a transaction that spends every UTXO into a single output to
// destination, signed with the key derived from xprv at index. The
// destination may be given in CashAddr or legacy form.
func (b *Builder) Build(xprv string, index uint32, destination string,
	utxos []utxo.UTXO, rate bchunit.SatPerByte) (*Tx, error) {

	if xprv == "" {
		return nil, keychain.ErrMissingExtendedKey
	}
	if len(utxos) == 0 {
		return nil, ErrEmptyInputs
	}

	total := utxo.Total(utxos)
	fee := b.Fee(len(utxos), rate)
	if total-fee < fee {
		return nil, &InsufficientFundsError{Total: total, Fee: fee}
	}

	params := b.keys.Params()
	dest, err := cashaddr.DecodeAny(destination, params)
	if err != nil {
		return nil, &keychain.ValidationError{
			Input: "destination",
			Err:   err,
		}
	}
	destScript, err := txscript.PayToAddrScript(dest)
	if err != nil {
		return nil, &keychain.ValidationError{
			Input: "destination",
			Err:   err,
		}
	}

	wif, err := b.keys.SigningKey(xprv, index)
	if err != nil {
		return nil, err
	}

	inputs := slices.Clone(utxos)
	utxo.Sort(inputs)

	msgTx := wire.NewMsgTx(txVersion)
	for _, u := range inputs {
		msgTx.AddTxIn(wire.NewTxIn(&u.OutPoint, nil, nil))
	}

	output := wire.NewTxOut(int64(total-fee), destScript)
	if err := txrules.CheckOutput(
		output, txrules.DefaultRelayFeePerKb,
	); err != nil {
		return nil, fmt.Errorf("sweep output: %w", err)
	}
	msgTx.AddTxOut(output)

	if err := signInputs(msgTx, inputs, wif.PrivKey); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(msgTx.SerializeSize())
	if err := msgTx.Serialize(&buf); err != nil {
		return nil, err
	}

	tx := &Tx{
		Inputs:      inputs,
		Destination: dest.EncodeAddress(),
		Output:      total - fee,
		Fee:         fee,
		MsgTx:       msgTx,
		Raw:         buf.Bytes(),
		TxID:        msgTx.TxHash().String(),
		Status:      StatusPending,
	}

	log.Infof("Built sweep %v of %d inputs: %v to %v, fee %v (%v)",
		tx.TxID, len(inputs), tx.Output, tx.Destination, fee,
		tx.FeeRate())
	log.Debugf("Sweep transaction: %v", newLogClosure(func() string {
		return spew.Sdump(msgTx)
	}))

	return tx, nil
}

// signInputs signs every input of msgTx with privKey. The digest is the
// BIP143 style digest with the fork id flag, which commits to the value of
// the spent output.
func signInputs(msgTx *wire.MsgTx, inputs []utxo.UTXO,
	privKey *btcec.PrivateKey) error {

	pubKey := privKey.PubKey().SerializeCompressed()
	expected, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(pubKey)).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		return err
	}

	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(inputs))
	for _, u := range inputs {
		prevOuts[u.OutPoint] = wire.NewTxOut(int64(u.Value), u.PkScript)
	}
	sigHashes := txscript.NewTxSigHashes(
		msgTx, txscript.NewMultiPrevOutFetcher(prevOuts),
	)

	for i, u := range inputs {
		if !bytes.Equal(u.PkScript, expected) {
			return fmt.Errorf("%w: %v", ErrKeyMismatch, u.OutPoint)
		}

		digest, err := txscript.CalcWitnessSigHash(
			u.PkScript, sigHashes, sigHashType, msgTx, i,
			int64(u.Value),
		)
		if err != nil {
			return fmt.Errorf("sighash of input %d: %w", i, err)
		}

		sig := ecdsa.Sign(privKey, digest).Serialize()
		sig = append(sig, byte(sigHashType))

		sigScript, err := txscript.NewScriptBuilder().
			AddData(sig).
			AddData(pubKey).
			Script()
		if err != nil {
			return err
		}

		msgTx.TxIn[i].SignatureScript = sigScript
	}

	return nil
}
