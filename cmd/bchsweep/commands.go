// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/bchsweep/indexer"
	"github.com/btcsuite/bchsweep/keychain"
	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/sweep"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/jessevdk/go-flags"
)

// addCommands registers every command on parser.
func (a *app) addCommands(parser *flags.Parser) error {
	commands := []struct {
		name, short, long string
		data              any
	}{
		{
			name:  "address",
			short: "Derive a deposit address",
			long:  "Derive the CashAddr deposit address at an index of an account xpub.",
			data:  &addressCommand{app: a},
		},
		{
			name:  "privkey",
			short: "Derive a deposit private key",
			long:  "Derive the WIF private key of the deposit address at an index.",
			data:  &privKeyCommand{app: a},
		},
		{
			name:  "pubfromwif",
			short: "Show the address of a WIF key",
			long:  "Show the CashAddr address controlled by a WIF private key.",
			data:  &pubFromWIFCommand{app: a},
		},
		{
			name:  "validate",
			short: "Validate a destination address",
			long:  "Check that an address is a CashAddr address for the network.",
			data:  &validateCommand{app: a},
		},
		{
			name:  "legacy",
			short: "Convert between address encodings",
			long:  "Convert a CashAddr address to legacy form, or back with --reverse.",
			data:  &legacyCommand{app: a},
		},
		{
			name:  "genkeys",
			short: "Generate a key pair",
			long:  "Generate a root xprv and its account xpub from entropy.",
			data:  &genKeysCommand{app: a},
		},
		{
			name:  "xpub",
			short: "Show the account xpub of an xprv",
			long:  "Show the account level xpub m/44'/145'/0'/0 of a root xprv.",
			data:  &xpubCommand{app: a},
		},
		{
			name:  "balance",
			short: "Show the balance of an address",
			long:  "Query an indexer for the balance of an address.",
			data:  &balanceCommand{app: a},
		},
		{
			name:  "utxos",
			short: "List the unspent outputs of an address",
			long:  "Reconstruct the unspent outputs of an address from its history.",
			data:  &utxosCommand{app: a},
		},
		{
			name:  "sweep",
			short: "Sweep a deposit address",
			long:  "Move the whole balance of a deposit address to a destination.",
			data:  &sweepCommand{app: a},
		},
	}

	for _, c := range commands {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			return fmt.Errorf("add command %v: %w", c.name, err)
		}
	}

	return nil
}

// params returns the configured network.
func (a *app) params() (*netparams.Params, error) {
	return netparams.ByName(a.cfg.Network)
}

// keys returns a derivation service for the configured network.
func (a *app) keys() (*keychain.Service, error) {
	params, err := a.params()
	if err != nil {
		return nil, err
	}

	return keychain.New(params), nil
}

// client returns an indexer client over the configured endpoints.
func (a *app) client() (*indexer.Client, error) {
	cfg := a.cfg.sweepConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []indexer.Option{
		indexer.WithTimeout(a.cfg.Timeout),
		indexer.WithUserAgent(a.cfg.UserAgent),
		indexer.WithRegisterer(a.registry),
	}
	if a.httpClient != nil {
		opts = append(opts, indexer.WithHTTPClient(a.httpClient))
	}

	return indexer.New(indexer.NewRandomSelector(cfg.Endpoints...), opts...)
}

// sweeper returns a sweeper over the configured endpoints.
func (a *app) sweeper() (*sweep.Sweeper, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}

	return sweep.New(a.cfg.sweepConfig(), client)
}

// printf writes a formatted result line.
func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

type addressCommand struct {
	app *app

	Xpub  string `long:"xpub" env:"BCHSWEEP_XPUB" required:"true" description:"Account level extended public key"`
	Index uint32 `long:"index" description:"Deposit address index"`
}

// Execute prints the deposit address.
func (c *addressCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	addr, err := keys.DeriveAddress(c.Xpub, c.Index)
	if err != nil {
		return err
	}

	c.app.printf("%s", addr)

	return nil
}

type privKeyCommand struct {
	app *app

	Xprv  string `long:"xprv" env:"BCHSWEEP_XPRV" required:"true" description:"Root extended private key"`
	Index uint32 `long:"index" description:"Deposit address index"`
}

// Execute prints the WIF private key of the deposit address.
func (c *privKeyCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	wif, err := keys.DerivePrivateKey(c.Xprv, c.Index)
	if err != nil {
		return err
	}

	c.app.printf("%s", wif)

	return nil
}

type pubFromWIFCommand struct {
	app *app

	WIF string `long:"wif" env:"BCHSWEEP_WIF" required:"true" description:"WIF private key"`
}

// Execute prints the address controlled by the key.
func (c *pubFromWIFCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	addr, err := keys.DerivePublicFromPrivate(c.WIF)
	if err != nil {
		return err
	}

	c.app.printf("%s", addr)

	return nil
}

type validateCommand struct {
	app *app

	Address string `long:"address" required:"true" description:"Address to validate"`
}

// Execute prints the validation result. An invalid address is reported as a
// command failure.
func (c *validateCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	res := keys.ValidateAddress(c.Address)
	if !res.Valid {
		return fmt.Errorf("%s is not valid on %s: %s", c.Address,
			res.Network, res.Error)
	}

	c.app.printf("%s is valid on %s", c.Address, res.Network)

	return nil
}

type legacyCommand struct {
	app *app

	Address string `long:"address" required:"true" description:"Address to convert"`
	Reverse bool   `long:"reverse" description:"Convert a legacy address to CashAddr"`
}

// Execute prints the converted address.
func (c *legacyCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	convert := keys.StandardizeAddress
	if c.Reverse {
		convert = keys.ToCashAddress
	}

	addr, err := convert(c.Address)
	if err != nil {
		return err
	}

	c.app.printf("%s", addr)

	return nil
}

type genKeysCommand struct {
	app *app

	Entropy string `long:"entropy" description:"Hex encoded seed; random when empty"`
}

// Execute prints a new key pair.
func (c *genKeysCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	var entropy []byte
	if c.Entropy != "" {
		entropy, err = hex.DecodeString(c.Entropy)
		if err != nil {
			return fmt.Errorf("invalid entropy: %w", err)
		}
	} else {
		entropy = make([]byte, hdkeychain.RecommendedSeedLen)
		if _, err := rand.Read(entropy); err != nil {
			return err
		}
	}

	pair, err := keys.GenerateKeyPair(entropy)
	if err != nil {
		return err
	}

	c.app.printf("xprv: %s", pair.ExtendedPrivate)
	c.app.printf("xpub: %s", pair.ExtendedPublic)

	return nil
}

type xpubCommand struct {
	app *app

	Xprv string `long:"xprv" env:"BCHSWEEP_XPRV" required:"true" description:"Root extended private key"`
}

// Execute prints the account xpub.
func (c *xpubCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	xpub, err := keys.AccountXpub(c.Xprv)
	if err != nil {
		return err
	}

	c.app.printf("%s", xpub)

	return nil
}

type balanceCommand struct {
	app *app

	Address string `long:"address" required:"true" description:"Address to query, CashAddr or legacy"`
}

// Execute prints the balance of the address.
func (c *balanceCommand) Execute(_ []string) error {
	keys, err := c.app.keys()
	if err != nil {
		return err
	}

	// Indexers are queried with the legacy form.
	addr := c.Address
	if legacy, err := keys.StandardizeAddress(addr); err == nil {
		addr = legacy
	}

	client, err := c.app.client()
	if err != nil {
		return err
	}

	bal, err := client.Balance(c.app.ctx, addr)
	if err != nil {
		return err
	}

	c.app.printf("confirmed: %v", bal.Confirmed)
	c.app.printf("unconfirmed: %v", bal.Unconfirmed)
	c.app.printf("net: %v", bal.Net)

	return nil
}

type utxosCommand struct {
	app *app

	Address string `long:"address" required:"true" description:"Address to query, CashAddr or legacy"`
}

// Execute prints the unspent outputs of the address.
func (c *utxosCommand) Execute(_ []string) error {
	s, err := c.app.sweeper()
	if err != nil {
		return err
	}

	utxos, err := s.Aggregator().Fetch(c.app.ctx, c.Address)
	if err != nil {
		return err
	}

	for _, u := range utxos {
		c.app.printf("%v %v", u.OutPoint, u.Value)
	}
	c.app.printf("total: %v in %d outputs", utxo.Total(utxos), len(utxos))

	return nil
}

type sweepCommand struct {
	app *app

	Xpub        string `long:"xpub" env:"BCHSWEEP_XPUB" description:"Account level extended public key; derived from the xprv when empty"`
	Xprv        string `long:"xprv" env:"BCHSWEEP_XPRV" required:"true" description:"Root extended private key"`
	Index       uint32 `long:"index" description:"Deposit address index"`
	Destination string `long:"to" required:"true" description:"Destination address, CashAddr or legacy"`
	FeeRate     int64  `long:"rate" description:"Fee rate in sat/byte overriding --feeperbyte"`
	DryRun      bool   `long:"dryrun" description:"Build and sign the sweep without broadcasting it"`
}

// Execute runs the sweep.
func (c *sweepCommand) Execute(_ []string) error {
	if c.FeeRate < 0 {
		return errors.New("rate must not be negative")
	}

	s, err := c.app.sweeper()
	if err != nil {
		return err
	}

	cfg := s.Config()
	rate := cfg.FeePerByte
	if c.FeeRate > 0 {
		rate = bchunit.SatPerByte(c.FeeRate)
	}
	log.Infof("Sweeping on %v at %v (%v), minimum fee %v", cfg.Network,
		rate, rate.FeePerKByte(), cfg.MinRelayFee)

	req := sweep.Request{
		Xpub:        c.Xpub,
		Xprv:        c.Xprv,
		Index:       c.Index,
		Destination: c.Destination,
		FeeRate:     bchunit.SatPerByte(c.FeeRate),
	}

	var tx *sweep.Tx
	if c.DryRun {
		tx, err = s.Prepare(c.app.ctx, req)
	} else {
		tx, err = s.Sweep(c.app.ctx, req)
	}
	if err != nil {
		if tx != nil {
			c.app.printf("txid: %s", tx.TxID)
			c.app.printf("status: %v", tx.Status)
		}

		return err
	}

	c.app.printf("txid: %s", tx.TxID)
	c.app.printf("inputs: %d", len(tx.Inputs))
	c.app.printf("output: %v to %s", tx.Output, tx.Destination)
	c.app.printf("fee: %v", tx.Fee)
	c.app.printf("rate: %v", tx.FeeRate())
	c.app.printf("status: %v", tx.Status)
	if tx.Broadcasted() {
		c.app.printf("endpoint: %s", tx.Endpoint)
	}
	if c.DryRun {
		c.app.printf("hex: %s", tx.Hex())
	}

	return nil
}
