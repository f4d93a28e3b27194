// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package utxo reconstructs the unspent outputs of an address from the
// transaction history reported by an indexer.
package utxo

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/bchsweep/cashaddr"
	"github.com/btcsuite/bchsweep/indexer"
	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency is the number of transaction fetches that run at
// once when no limit is configured.
const DefaultMaxConcurrency = 8

// TxFetcher is the part of the indexer client the aggregator needs.
type TxFetcher interface {
	// AddressHistory returns the ids of the transactions touching addr.
	AddressHistory(ctx context.Context, addr string) ([]string, error)

	// Transaction returns the transaction with the given id.
	Transaction(ctx context.Context, txid string) (*indexer.Tx, error)
}

// A compile-time assertion to ensure the indexer client satisfies the
// TxFetcher interface.
var _ TxFetcher = (*indexer.Client)(nil)

// Config holds the aggregator settings.
type Config struct {
	// MaxConcurrency bounds the number of concurrent transaction fetches.
	// Zero selects DefaultMaxConcurrency.
	MaxConcurrency int

	// DebugMaxUTXOs truncates the result to at most this many outputs
	// when positive. It exists for constrained test environments only.
	DebugMaxUTXOs int
}

// Aggregator computes the spendable outputs of an address.
type Aggregator struct {
	fetcher TxFetcher
	params  *netparams.Params
	cfg     Config
}

// NewAggregator creates an aggregator reading from fetcher.
func NewAggregator(fetcher TxFetcher, params *netparams.Params,
	cfg Config) *Aggregator {

	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}

	return &Aggregator{
		fetcher: fetcher,
		params:  params,
		cfg:     cfg,
	}
}

// target is the address being aggregated in the forms used for matching.
type target struct {
	addr     btcutil.Address
	legacy   string
	pkScript []byte
}

// Fetch returns the unspent outputs paying to addr, which may be given in
// CashAddr or legacy form. The outputs are ordered by outpoint.
//
// Outputs the indexer still reports as unspent are dropped when an
// unconfirmed transaction in the history spends them. Any failed fetch
// aborts the whole aggregation with an AggregationError.
func (a *Aggregator) Fetch(ctx context.Context, addr string) ([]UTXO,
	error) {

	t, err := a.resolve(addr)
	if err != nil {
		return nil, err
	}

	history, err := a.fetcher.AddressHistory(ctx, t.legacy)
	if err != nil {
		return nil, &AggregationError{Address: t.legacy, Err: err}
	}

	log.Debugf("Fetching %d transactions of %v", len(history), t.legacy)

	txs, err := a.fetchAll(ctx, t.legacy, history)
	if err != nil {
		return nil, err
	}

	utxos, err := a.reconcile(t, txs)
	if err != nil {
		return nil, err
	}

	if a.cfg.DebugMaxUTXOs > 0 && len(utxos) > a.cfg.DebugMaxUTXOs {
		log.Warnf("Truncating %d UTXOs of %v to %d, debug limit in "+
			"effect", len(utxos), t.legacy, a.cfg.DebugMaxUTXOs)

		utxos = utxos[:a.cfg.DebugMaxUTXOs]
	}

	log.Infof("Found %d UTXOs worth %v for %v", len(utxos), Total(utxos),
		t.legacy)

	return utxos, nil
}

// resolve decodes addr and derives its matching forms.
func (a *Aggregator) resolve(addr string) (*target, error) {
	decoded, err := cashaddr.DecodeAny(addr, a.params)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", addr, err)
	}

	pkScript, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, fmt.Errorf("script for %q: %w", addr, err)
	}

	return &target{
		addr:     decoded,
		legacy:   decoded.EncodeAddress(),
		pkScript: pkScript,
	}, nil
}

// fetchAll fetches every transaction of history concurrently. Each result
// lands in the slot of its history index so no state is shared between the
// fetches. The first failure cancels the remaining fetches.
func (a *Aggregator) fetchAll(ctx context.Context, addr string,
	history []string) ([]*indexer.Tx, error) {

	txs := make([]*indexer.Tx, len(history))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrency)

	for i, txid := range history {
		g.Go(func() error {
			tx, err := a.fetcher.Transaction(gctx, txid)
			switch {
			case err != nil:
				return &AggregationError{
					Address: addr,
					TxID:    txid,
					Err:     err,
				}

			case tx == nil:
				return &AggregationError{
					Address: addr,
					TxID:    txid,
					Err: fmt.Errorf("%w: no transaction "+
						"returned", ErrMalformedTx),
				}
			}

			txs[i] = tx

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return txs, nil
}

// reconcile merges the fetched transactions into the final unspent set.
func (a *Aggregator) reconcile(t *target,
	txs []*indexer.Tx) ([]UTXO, error) {

	candidates := make(map[wire.OutPoint]UTXO)
	provisional := fn.NewSet[wire.OutPoint]()

	for _, tx := range txs {
		hash, err := chainhash.NewHashFromStr(tx.TxID)
		if err != nil {
			return nil, &AggregationError{
				Address: t.legacy,
				TxID:    tx.TxID,
				Err:     fmt.Errorf("%w: %v", ErrMalformedTx, err),
			}
		}

		for _, out := range tx.Vout {
			if out.Spent {
				continue
			}

			pkScript, ok := a.matchOutput(t, &out)
			if !ok {
				continue
			}

			if out.Value < 0 {
				return nil, &AggregationError{
					Address: t.legacy,
					TxID:    tx.TxID,
					Err: fmt.Errorf("%w: output %d has "+
						"negative value %v", ErrMalformedTx,
						out.N, out.Value.Satoshis()),
				}
			}

			op := wire.OutPoint{Hash: *hash, Index: out.N}
			candidates[op] = UTXO{
				OutPoint: op,
				PkScript: pkScript,
				Address:  t.legacy,
				Value:    out.Value.Satoshis(),
			}
		}

		if tx.Confirmed() {
			continue
		}

		for _, in := range tx.Vin {
			if in.TxID == "" {
				continue
			}

			prev, err := chainhash.NewHashFromStr(in.TxID)
			if err != nil {
				return nil, &AggregationError{
					Address: t.legacy,
					TxID:    tx.TxID,
					Err: fmt.Errorf("%w: input %v: %v",
						ErrMalformedTx, in.TxID, err),
				}
			}

			provisional.Add(wire.OutPoint{Hash: *prev, Index: in.Vout})
		}
	}

	utxos := make([]UTXO, 0, len(candidates))
	for op, u := range candidates {
		if provisional.Contains(op) {
			log.Debugf("Skipping %v, spent by an unconfirmed "+
				"transaction", op)

			continue
		}

		utxos = append(utxos, u)
	}

	Sort(utxos)

	return utxos, nil
}

// matchOutput reports whether out pays to the target and returns its locking
// script. An output matches when its script equals the target script or when
// one of its listed addresses decodes to the target.
func (a *Aggregator) matchOutput(t *target, out *indexer.Vout) ([]byte,
	bool) {

	if out.ScriptPubKey.Hex != "" {
		script, err := hex.DecodeString(out.ScriptPubKey.Hex)
		if err == nil && bytes.Equal(script, t.pkScript) {
			return script, true
		}
	}

	for _, listed := range out.ScriptPubKey.Addresses {
		decoded, err := cashaddr.DecodeAny(listed, a.params)
		if err != nil {
			continue
		}

		if decoded.String() == t.addr.String() {
			return t.pkScript, true
		}
	}

	return nil, false
}
