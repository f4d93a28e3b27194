// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sweep moves the entire balance of a Bitcoin Cash deposit address
// to a destination address in a single transaction.
//
// A sweep runs three stages in order: the unspent outputs of the deposit
// address are aggregated from an indexer, a transaction spending all of them
// is built and signed, and the transaction is broadcast with one fallback
// attempt. The first failing stage ends the sweep.
package sweep

import (
	"context"
	"fmt"

	"github.com/btcsuite/bchsweep/indexer"
	"github.com/btcsuite/bchsweep/keychain"
	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/utxo"
)

// Ledger is the indexer access a Sweeper needs.
type Ledger interface {
	utxo.TxFetcher
	Submitter

	// Selector returns the endpoint pool.
	Selector() indexer.EndpointSelector
}

// A compile-time assertion to ensure the indexer client satisfies the
// Ledger interface.
var _ Ledger = (*indexer.Client)(nil)

// Request describes a single sweep.
type Request struct {
	// Xpub is the account level extended public key. When empty it is
	// derived from Xprv.
	Xpub string

	// Xprv is the root extended private key.
	Xprv string

	// Index is the deposit address index.
	Index uint32

	// Destination is the address to sweep to, in CashAddr or legacy
	// form.
	Destination string

	// FeeRate overrides the configured fee rate when non-zero.
	FeeRate bchunit.SatPerByte
}

// Sweeper runs sweeps against a ledger.
type Sweeper struct {
	cfg         Config
	keys        *keychain.Service
	aggregator  *utxo.Aggregator
	builder     *Builder
	broadcaster *Broadcaster
}

// New creates a sweeper from a validated copy of cfg.
func New(cfg Config, ledger Ledger) (*Sweeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}

	keys := keychain.New(params)

	return &Sweeper{
		cfg:  cfg,
		keys: keys,
		aggregator: utxo.NewAggregator(ledger, params, utxo.Config{
			MaxConcurrency: cfg.MaxConcurrency,
			DebugMaxUTXOs:  cfg.DebugMaxUTXOs,
		}),
		builder:     NewBuilder(keys, cfg.FeePerByte, cfg.MinRelayFee),
		broadcaster: NewBroadcaster(ledger, ledger.Selector()),
	}, nil
}

// Config returns the validated config of the sweeper.
func (s *Sweeper) Config() Config {
	return s.cfg
}

// Aggregator returns the UTXO aggregator used by the sweeper.
func (s *Sweeper) Aggregator() *utxo.Aggregator {
	return s.aggregator
}

// Sweep aggregates, builds and broadcasts the sweep described by req. When
// the broadcast fails the failed transaction is returned along with the
// error.
func (s *Sweeper) Sweep(ctx context.Context, req Request) (*Tx, error) {
	tx, err := s.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.broadcaster.Broadcast(ctx, tx)
}

// Prepare aggregates and builds the sweep described by req without
// broadcasting it.
func (s *Sweeper) Prepare(ctx context.Context, req Request) (*Tx, error) {
	// A missing private key is reported before any network access.
	if req.Xprv == "" {
		return nil, keychain.ErrMissingExtendedKey
	}

	xpub := req.Xpub
	if xpub == "" {
		var err error
		xpub, err = s.keys.AccountXpub(req.Xprv)
		if err != nil {
			return nil, err
		}
	}

	source, err := s.keys.DeriveAddress(xpub, req.Index)
	if err != nil {
		return nil, err
	}

	log.Infof("Sweeping deposit address %v (index %d) to %v", source,
		req.Index, req.Destination)

	utxos, err := s.aggregator.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	tx, err := s.builder.Build(
		req.Xprv, req.Index, req.Destination, utxos, req.FeeRate,
	)
	if err != nil {
		return nil, fmt.Errorf("build sweep of %v: %w", source, err)
	}

	return tx, nil
}
