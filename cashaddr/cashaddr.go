// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cashaddr handles the CashAddr address format used by Bitcoin Cash,
// and the conversion between CashAddr and legacy Base58Check addresses. Both
// encodings carry the same hash160, so conversion is lossless. The CashAddr
// codec itself is bchutil's; this package only exchanges hashes with it and
// hands btcutil addresses to the rest of the module.
package cashaddr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/bchsweep/netparams"
	"github.com/gcash/bchutil"
)

const (
	// hashLen is the only hash size accepted, 160 bits.
	hashLen = 20

	// separator splits the prefix from the payload.
	separator = ':'
)

// AddrType is the type nibble stored in the CashAddr version byte.
type AddrType byte

const (
	// PubKeyHash denotes a P2PKH address.
	PubKeyHash AddrType = 0

	// ScriptHash denotes a P2SH address.
	ScriptHash AddrType = 1
)

// String returns a human readable name of the address type.
func (t AddrType) String() string {
	switch t {
	case PubKeyHash:
		return "p2pkh"

	case ScriptHash:
		return "p2sh"

	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

var (
	// ErrMixedCase is returned when an address mixes upper and lower case
	// characters.
	ErrMixedCase = errors.New("mixed case address")

	// ErrMissingPrefix is returned when an address has no prefix and no
	// default prefix was provided.
	ErrMissingPrefix = errors.New("missing address prefix")

	// ErrUnknownPrefix is returned when the prefix names no supported
	// network.
	ErrUnknownPrefix = errors.New("unknown address prefix")

	// ErrInvalidAddress is returned when the payload does not decode: a
	// character outside the base32 alphabet, a failed checksum or a
	// malformed version byte.
	ErrInvalidAddress = errors.New("invalid cashaddr payload")

	// ErrInvalidLength is returned when a hash to encode is not 160 bits.
	ErrInvalidLength = errors.New("invalid length")

	// ErrInvalidVersion is returned when an address type to encode is
	// neither P2PKH nor P2SH.
	ErrInvalidVersion = errors.New("invalid version byte")
)

// Address is a decoded CashAddr address.
type Address struct {
	// Prefix is the network prefix, always lower case.
	Prefix string

	// Type is the address type.
	Type AddrType

	// Hash is the 20-byte hash160 the address commits to.
	Hash [hashLen]byte
}

// String returns the full, prefixed encoding of the address.
func (a *Address) String() string {
	encoded, err := Encode(a.Prefix, a.Type, a.Hash[:])
	if err != nil {
		return ""
	}

	return encoded
}

// Payload returns the encoding of the address without the prefix and the
// separator.
func (a *Address) Payload() string {
	return StripPrefix(a.String())
}

// Encode encodes the hash as a CashAddr string of the given type under the
// given prefix. The returned string includes the prefix.
func Encode(prefix string, addrType AddrType, hash []byte) (string, error) {
	params, err := paramsForPrefix(prefix)
	if err != nil {
		return "", err
	}
	if len(hash) != hashLen {
		return "", fmt.Errorf("%w: hash of %d bytes", ErrInvalidLength,
			len(hash))
	}

	var addr bchutil.Address
	switch addrType {
	case PubKeyHash:
		addr, err = bchutil.NewAddressPubKeyHash(hash, params.CashParams)

	case ScriptHash:
		addr, err = bchutil.NewAddressScriptHashFromHash(
			hash, params.CashParams,
		)

	default:
		return "", fmt.Errorf("%w: type %v", ErrInvalidVersion, addrType)
	}
	if err != nil {
		return "", err
	}

	return params.CashAddrPrefix + string(separator) +
		StripPrefix(addr.EncodeAddress()), nil
}

// Decode decodes a CashAddr address. The prefix is optional in the input; when
// it is missing, defaultPrefix is used to verify the checksum.
func Decode(addr, defaultPrefix string) (*Address, error) {
	if strings.ToLower(addr) != addr && strings.ToUpper(addr) != addr {
		return nil, ErrMixedCase
	}
	addr = strings.ToLower(addr)

	prefix := defaultPrefix
	payload := addr
	if idx := strings.LastIndexByte(addr, separator); idx >= 0 {
		prefix = addr[:idx]
		payload = addr[idx+1:]
	}

	params, err := paramsForPrefix(prefix)
	if err != nil {
		return nil, err
	}

	decoded, err := bchutil.DecodeAddress(
		params.CashAddrPrefix+string(separator)+payload,
		params.CashParams,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	a := &Address{Prefix: params.CashAddrPrefix}
	switch decoded.(type) {
	case *bchutil.AddressPubKeyHash:
		a.Type = PubKeyHash

	case *bchutil.AddressScriptHash:
		a.Type = ScriptHash

	default:
		return nil, fmt.Errorf("%w: %T is not a cashaddr",
			ErrInvalidAddress, decoded)
	}

	hash := decoded.ScriptAddress()
	if len(hash) != hashLen {
		return nil, fmt.Errorf("%w: hash of %d bytes",
			ErrInvalidAddress, len(hash))
	}
	copy(a.Hash[:], hash)

	return a, nil
}

// StripPrefix removes the prefix and separator from a CashAddr string, if
// present.
func StripPrefix(addr string) string {
	if idx := strings.LastIndexByte(addr, separator); idx >= 0 {
		return addr[idx+1:]
	}

	return addr
}

// paramsForPrefix resolves a CashAddr prefix to its network.
func paramsForPrefix(prefix string) (*netparams.Params, error) {
	if prefix == "" {
		return nil, ErrMissingPrefix
	}

	params, err := netparams.ByCashAddrPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}

	return params, nil
}
