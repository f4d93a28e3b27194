// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cashaddr

import (
	"errors"
	"fmt"

	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/btcd/btcutil"
)

var (
	// ErrWrongNetwork is returned when an address belongs to a different
	// network than the one requested.
	ErrWrongNetwork = errors.New("address is for a different network")

	// ErrUnsupportedAddress is returned when a legacy address is neither
	// P2PKH nor P2SH.
	ErrUnsupportedAddress = errors.New("unsupported address type")
)

// IsCashAddr reports whether addr is a well formed CashAddr address on the
// given network. The prefix may be omitted from addr.
func IsCashAddr(addr string, params *netparams.Params) bool {
	_, err := decodeForNet(addr, params)
	return err == nil
}

// ToLegacy converts a CashAddr address into its legacy Base58Check form.
func ToLegacy(addr string, params *netparams.Params) (string, error) {
	a, err := decodeForNet(addr, params)
	if err != nil {
		return "", err
	}

	legacy, err := a.toBtcutil(params)
	if err != nil {
		return "", err
	}

	return legacy.EncodeAddress(), nil
}

// FromLegacy converts a legacy Base58Check address into a CashAddr address.
// The result carries no prefix, matching the form produced by key derivation.
func FromLegacy(legacy string, params *netparams.Params) (string, error) {
	decoded, err := decodeLegacy(legacy, params)
	if err != nil {
		return "", err
	}

	var addrType AddrType
	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash:
		addrType = PubKeyHash

	case *btcutil.AddressScriptHash:
		addrType = ScriptHash
	}

	encoded, err := Encode(
		params.CashAddrPrefix, addrType, decoded.ScriptAddress(),
	)
	if err != nil {
		return "", err
	}

	return StripPrefix(encoded), nil
}

// DecodeAny decodes an address given in either CashAddr or legacy encoding
// and returns the equivalent btcutil address.
func DecodeAny(addr string, params *netparams.Params) (btcutil.Address,
	error) {

	a, cashErr := decodeForNet(addr, params)
	if cashErr == nil {
		return a.toBtcutil(params)
	}

	// A well formed CashAddr for the wrong network is reported as such
	// rather than being retried as a legacy address.
	if errors.Is(cashErr, ErrWrongNetwork) {
		return nil, cashErr
	}

	decoded, err := decodeLegacy(addr, params)
	if err != nil {
		return nil, fmt.Errorf("not a cashaddr (%v) nor a legacy "+
			"address: %w", cashErr, err)
	}

	return decoded, nil
}

// PubKeyHashAddress encodes a hash160 as a prefix-less P2PKH CashAddr.
func PubKeyHashAddress(hash []byte, params *netparams.Params) (string,
	error) {

	encoded, err := Encode(params.CashAddrPrefix, PubKeyHash, hash)
	if err != nil {
		return "", err
	}

	return StripPrefix(encoded), nil
}

// decodeForNet decodes a CashAddr address and checks its prefix against the
// network.
func decodeForNet(addr string, params *netparams.Params) (*Address, error) {
	a, err := Decode(addr, params.CashAddrPrefix)
	if err != nil {
		return nil, err
	}
	if a.Prefix != params.CashAddrPrefix {
		return nil, fmt.Errorf("%w: prefix %q, want %q",
			ErrWrongNetwork, a.Prefix, params.CashAddrPrefix)
	}

	return a, nil
}

// decodeLegacy decodes a Base58Check P2PKH or P2SH address for the network.
func decodeLegacy(legacy string, params *netparams.Params) (btcutil.Address,
	error) {

	decoded, err := btcutil.DecodeAddress(legacy, params.Params)
	if err != nil {
		return nil, err
	}
	if !decoded.IsForNet(params.Params) {
		return nil, fmt.Errorf("%w: %s", ErrWrongNetwork, legacy)
	}

	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash, *btcutil.AddressScriptHash:
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedAddress, decoded)
	}
}

// toBtcutil returns the legacy btcutil address committing to the same hash.
func (a *Address) toBtcutil(params *netparams.Params) (btcutil.Address,
	error) {

	switch a.Type {
	case PubKeyHash:
		return btcutil.NewAddressPubKeyHash(a.Hash[:], params.Params)

	case ScriptHash:
		return btcutil.NewAddressScriptHashFromHash(
			a.Hash[:], params.Params,
		)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedAddress, a.Type)
	}
}
