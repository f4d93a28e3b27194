// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sweep

import (
	"context"

	"github.com/btcsuite/bchsweep/indexer"
)

// Submitter publishes raw transactions to a given endpoint.
type Submitter interface {
	// SubmitTo broadcasts raw through endpoint and returns the id of the
	// accepted transaction.
	SubmitTo(ctx context.Context, endpoint string, raw []byte) (string,
		error)
}

// A compile-time assertion to ensure the indexer client satisfies the
// Submitter interface.
var _ Submitter = (*indexer.Client)(nil)

// Broadcaster publishes sweep transactions. A failed submission is retried
// exactly once on a different endpoint; any further retry policy belongs to
// the caller.
type Broadcaster struct {
	submitter Submitter
	selector  indexer.EndpointSelector
}

// NewBroadcaster creates a broadcaster that picks endpoints with selector.
func NewBroadcaster(submitter Submitter,
	selector indexer.EndpointSelector) *Broadcaster {

	return &Broadcaster{
		submitter: submitter,
		selector:  selector,
	}
}

// Broadcast submits tx to a primary endpoint and, if that fails, to one
// distinct fallback endpoint. It never modifies tx. On success the returned
// copy is marked as broadcast and records the accepting endpoint. On failure
// a copy marked as failed is returned together with a BroadcastError.
func (b *Broadcaster) Broadcast(ctx context.Context, tx *Tx) (*Tx, error) {
	if tx == nil {
		return nil, ErrNilTx
	}

	primary, err := b.selector.Select()
	if err != nil {
		return tx.withStatus(StatusFailed, ""), &BroadcastError{
			Primary: err,
		}
	}

	primaryErr := b.submit(ctx, primary, tx)
	if primaryErr == nil {
		return tx.withStatus(StatusBroadcast, primary), nil
	}

	log.Warnf("Broadcast of %v via %v failed, trying a fallback: %v",
		tx.TxID, primary, primaryErr)

	fallback, err := b.selector.Select(primary)
	if err != nil {
		return tx.withStatus(StatusFailed, ""), &BroadcastError{
			Primary:         primaryErr,
			PrimaryEndpoint: primary,
			Fallback:        err,
		}
	}

	fallbackErr := b.submit(ctx, fallback, tx)
	if fallbackErr == nil {
		return tx.withStatus(StatusBroadcast, fallback), nil
	}

	log.Errorf("Broadcast of %v via fallback %v failed: %v", tx.TxID,
		fallback, fallbackErr)

	return tx.withStatus(StatusFailed, ""), &BroadcastError{
		Primary:          primaryErr,
		PrimaryEndpoint:  primary,
		Fallback:         fallbackErr,
		FallbackEndpoint: fallback,
	}
}

// submit publishes tx through endpoint.
func (b *Broadcaster) submit(ctx context.Context, endpoint string,
	tx *Tx) error {

	txid, err := b.submitter.SubmitTo(ctx, endpoint, tx.Raw)
	if err != nil {
		return err
	}

	if txid != tx.TxID {
		log.Warnf("Endpoint %v reported txid %v for %v", endpoint, txid,
			tx.TxID)
	}

	return nil
}
