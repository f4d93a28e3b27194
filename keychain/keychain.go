// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keychain derives Bitcoin Cash deposit keys and addresses from
// BIP32 extended keys.
//
// Deposit keys live under the fixed account node m/44'/145'/0'/0. The
// extended public key handed out for address generation is the neutered
// account node, and deposit address i is found at <account>/0/i. The private
// key for the same address is therefore found at m/44'/145'/0'/0/0/i from the
// root extended private key.
package keychain

import (
	"fmt"

	"github.com/btcsuite/bchsweep/cashaddr"
	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// purpose is the BIP44 purpose field.
	purpose uint32 = 44

	// account is the only account used for deposits.
	account uint32 = 0

	// externalBranch is the external chain of the account.
	externalBranch uint32 = 0

	// depositBranch is the branch below the account node that holds the
	// deposit keys.
	depositBranch uint32 = 0
)

// accountPath is the hardened path from the root key to the account node,
// followed by the external branch.
var accountPath = []uint32{
	hdkeychain.HardenedKeyStart + purpose,
	hdkeychain.HardenedKeyStart + netparams.CoinTypeBCH,
	hdkeychain.HardenedKeyStart + account,
	externalBranch,
}

// KeyPair holds a root extended private key together with the account level
// extended public key used to derive deposit addresses.
type KeyPair struct {
	// ExtendedPrivate is the root extended private key.
	ExtendedPrivate string

	// ExtendedPublic is the neutered account node.
	ExtendedPublic string
}

// AddressValidation is the result of validating a user supplied address.
type AddressValidation struct {
	// Valid is true if the address is a CashAddr for the network.
	Valid bool

	// Network is the name of the network the address was validated
	// against.
	Network string

	// Error describes why the address was rejected. It is empty when the
	// address is valid.
	Error string
}

// Service derives keys and addresses for a single network. It holds no key
// material; every call derives what it needs from its arguments.
type Service struct {
	params *netparams.Params
}

// New creates a derivation service for the given network.
func New(params *netparams.Params) *Service {
	return &Service{params: params}
}

// Params returns the network the service derives for.
func (s *Service) Params() *netparams.Params {
	return s.params
}

// DeriveAddress derives the deposit address at index from the account level
// extended public key. The address is returned in CashAddr form without the
// network prefix.
func (s *Service) DeriveAddress(xpub string, index uint32) (string, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return "", newValidationError("index", ErrHardenedIndex)
	}

	accountKey, err := s.parseKey(xpub, "xpub")
	if err != nil {
		return "", err
	}
	if accountKey.IsPrivate() {
		return "", newValidationError("xpub", ErrNotPublicKey)
	}

	child, err := deriveChildren(accountKey, depositBranch, index)
	if err != nil {
		return "", newValidationError("xpub", err)
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return "", newValidationError("xpub", err)
	}

	addr, err := cashaddr.PubKeyHashAddress(
		btcutil.Hash160(pubKey.SerializeCompressed()), s.params,
	)
	if err != nil {
		return "", err
	}

	log.Tracef("Derived deposit address %v at index %d", addr, index)

	return addr, nil
}

// SigningKey derives the private key of the deposit address at index from
// the root extended private key.
func (s *Service) SigningKey(xprv string, index uint32) (*btcutil.WIF,
	error) {

	if xprv == "" {
		return nil, ErrMissingExtendedKey
	}
	if index >= hdkeychain.HardenedKeyStart {
		return nil, newValidationError("index", ErrHardenedIndex)
	}

	root, err := s.parseKey(xprv, "xprv")
	if err != nil {
		return nil, err
	}
	if !root.IsPrivate() {
		return nil, newValidationError("xprv", ErrNotPrivateKey)
	}

	path := make([]uint32, 0, len(accountPath)+2)
	path = append(path, accountPath...)
	path = append(path, depositBranch, index)

	child, err := deriveChildren(root, path...)
	if err != nil {
		return nil, newValidationError("xprv", err)
	}

	privKey, err := child.ECPrivKey()
	if err != nil {
		return nil, newValidationError("xprv", err)
	}

	return btcutil.NewWIF(privKey, s.params.Params, true)
}

// DerivePrivateKey derives the private key of the deposit address at index
// and returns it in wallet import format.
func (s *Service) DerivePrivateKey(xprv string, index uint32) (string,
	error) {

	wif, err := s.SigningKey(xprv, index)
	if err != nil {
		return "", err
	}

	return wif.String(), nil
}

// DerivePublicFromPrivate returns the CashAddr address, without prefix, that
// is controlled by the WIF encoded private key.
func (s *Service) DerivePublicFromPrivate(privateKey string) (string,
	error) {

	wif, err := btcutil.DecodeWIF(privateKey)
	if err != nil {
		return "", newValidationError("private key", err)
	}
	if !wif.IsForNet(s.params.Params) {
		return "", newValidationError("private key", ErrWrongNetwork)
	}

	return cashaddr.PubKeyHashAddress(
		btcutil.Hash160(wif.SerializePubKey()), s.params,
	)
}

// StandardizeAddress converts a CashAddr address into its legacy form. The
// network prefix is optional.
func (s *Service) StandardizeAddress(addr string) (string, error) {
	legacy, err := cashaddr.ToLegacy(addr, s.params)
	if err != nil {
		return "", newValidationError("address", err)
	}

	return legacy, nil
}

// ToCashAddress converts a legacy address into CashAddr form without the
// network prefix. It is the inverse of StandardizeAddress.
func (s *Service) ToCashAddress(legacy string) (string, error) {
	addr, err := cashaddr.FromLegacy(legacy, s.params)
	if err != nil {
		return "", newValidationError("address", err)
	}

	return addr, nil
}

// ValidateAddress reports whether addr is acceptable as a destination.
// Only CashAddr addresses for the service's network are accepted; legacy
// addresses are rejected even though they are convertible.
func (s *Service) ValidateAddress(addr string) AddressValidation {
	result := AddressValidation{
		Valid:   cashaddr.IsCashAddr(addr, s.params),
		Network: s.params.Name,
	}
	if !result.Valid {
		result.Error = ErrNotCashAddr.Error()
	}

	return result
}

// GenerateKeyPair creates a root key from the given entropy and returns it
// together with the matching account level extended public key. The result
// is a pure function of the entropy. No minimum entropy strength is enforced
// beyond the seed length limits of BIP32.
func (s *Service) GenerateKeyPair(entropy []byte) (*KeyPair, error) {
	root, err := hdkeychain.NewMaster(entropy, s.params.Params)
	if err != nil {
		return nil, newValidationError("entropy", err)
	}

	xprv := root.String()
	xpub, err := s.AccountXpub(xprv)
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		ExtendedPrivate: xprv,
		ExtendedPublic:  xpub,
	}, nil
}

// AccountXpub returns the neutered account node m/44'/145'/0'/0 of the root
// extended private key.
func (s *Service) AccountXpub(xprv string) (string, error) {
	if xprv == "" {
		return "", ErrMissingExtendedKey
	}

	root, err := s.parseKey(xprv, "xprv")
	if err != nil {
		return "", err
	}
	if !root.IsPrivate() {
		return "", newValidationError("xprv", ErrNotPrivateKey)
	}

	accountKey, err := deriveChildren(root, accountPath...)
	if err != nil {
		return "", newValidationError("xprv", err)
	}

	pub, err := accountKey.Neuter()
	if err != nil {
		return "", newValidationError("xprv", err)
	}

	return pub.String(), nil
}

// parseKey decodes an extended key and verifies that it belongs to the
// service's network.
func (s *Service) parseKey(key, input string) (*hdkeychain.ExtendedKey,
	error) {

	extKey, err := hdkeychain.NewKeyFromString(key)
	if err != nil {
		return nil, newValidationError(input, err)
	}
	if !extKey.IsForNet(s.params.Params) {
		return nil, newValidationError(input, fmt.Errorf("%w: want %v",
			ErrWrongNetwork, s.params.Name))
	}

	return extKey, nil
}

// deriveChildren walks the given child indexes starting at key.
func deriveChildren(key *hdkeychain.ExtendedKey,
	path ...uint32) (*hdkeychain.ExtendedKey, error) {

	var err error
	for _, index := range path {
		key, err = key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", index, err)
		}
	}

	return key, nil
}
