// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netparams defines the Bitcoin Cash networks supported by the sweep
// tooling. Bitcoin Cash shares the Base58 and BIP32 version bytes of Bitcoin,
// so the btcd chain parameters are reused. The bchd parameters of each network
// are carried alongside for CashAddr encoding.
package netparams

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	bchchaincfg "github.com/gcash/bchd/chaincfg"
)

const (
	// CoinTypeBCH is the registered BIP44 coin type for Bitcoin Cash. It is
	// used on every network.
	CoinTypeBCH uint32 = 145
)

var (
	// ErrUnknownNetwork is returned when a network name does not match any
	// of the supported networks.
	ErrUnknownNetwork = errors.New("unknown network")
)

// Params couples the btcd chain parameters with the Bitcoin Cash specific
// address prefix of a network.
type Params struct {
	*chaincfg.Params

	// Name is the name used to select the network in configuration.
	Name string

	// CashAddrPrefix is the human readable part of CashAddr addresses on
	// this network.
	CashAddrPrefix string

	// CashParams are the bchd parameters of the same network, used by the
	// CashAddr codec.
	CashParams *bchchaincfg.Params
}

var (
	// MainNet holds the parameters for the Bitcoin Cash main network.
	MainNet = Params{
		Params:         &chaincfg.MainNetParams,
		Name:           "mainnet",
		CashAddrPrefix: "bitcoincash",
		CashParams:     &bchchaincfg.MainNetParams,
	}

	// TestNet holds the parameters for the Bitcoin Cash test network.
	TestNet = Params{
		Params:         &chaincfg.TestNet3Params,
		Name:           "testnet",
		CashAddrPrefix: "bchtest",
		CashParams:     &bchchaincfg.TestNet3Params,
	}
)

// ByName returns the network parameters registered under the given name. An
// empty name selects the main network.
func ByName(name string) (*Params, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MainNet.Name:
		return &MainNet, nil

	case TestNet.Name:
		return &TestNet, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}
}

// ByCashAddrPrefix returns the network whose CashAddr prefix matches prefix,
// ignoring case.
func ByCashAddrPrefix(prefix string) (*Params, error) {
	prefix = strings.ToLower(prefix)
	for _, p := range []*Params{&MainNet, &TestNet} {
		if p.CashAddrPrefix == prefix {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: prefix %q", ErrUnknownNetwork, prefix)
}

// String returns the network name.
func (p *Params) String() string {
	return p.Name
}
