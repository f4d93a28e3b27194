// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sweep

import (
	"fmt"
	"net/url"

	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/btcsuite/btcd/btcutil"
)

// Config holds the settings of a Sweeper.
type Config struct {
	// Network is the network name, "mainnet" or "testnet".
	Network string

	// Endpoints is the pool of equivalent indexer base URLs.
	Endpoints []string

	// FeePerByte is the default fee rate. Zero selects
	// bchunit.DefaultSatPerByte.
	FeePerByte bchunit.SatPerByte

	// MinRelayFee is the smallest absolute fee paid. Zero selects
	// bchunit.DefaultMinRelayFee.
	MinRelayFee btcutil.Amount

	// MaxConcurrency bounds the concurrent transaction fetches. Zero
	// selects utxo.DefaultMaxConcurrency.
	MaxConcurrency int

	// DebugMaxUTXOs caps the number of UTXOs swept when positive. It is
	// meant for constrained test environments.
	DebugMaxUTXOs int
}

// DefaultConfig returns a mainnet config with default fee settings and no
// endpoints.
func DefaultConfig() *Config {
	return &Config{
		Network:        netparams.MainNet.Name,
		FeePerByte:     bchunit.DefaultSatPerByte,
		MinRelayFee:    bchunit.DefaultMinRelayFee,
		MaxConcurrency: utxo.DefaultMaxConcurrency,
	}
}

// Validate checks the config and fills in defaults for zero values.
// Settings that are legal but degrade behavior are logged as warnings.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: missing config", ErrInvalidConfig)
	}

	if _, err := netparams.ByName(c.Network); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if len(c.Endpoints) == 0 {
		return fmt.Errorf("%w: at least one endpoint is required",
			ErrInvalidConfig)
	}
	for _, endpoint := range c.Endpoints {
		if err := checkEndpoint(endpoint); err != nil {
			return err
		}
	}

	switch {
	case c.FeePerByte < 0:
		return fmt.Errorf("%w: negative fee rate %v", ErrInvalidConfig,
			c.FeePerByte)

	case c.MinRelayFee < 0:
		return fmt.Errorf("%w: negative min relay fee %v",
			ErrInvalidConfig, c.MinRelayFee)

	case c.MaxConcurrency < 0:
		return fmt.Errorf("%w: negative max concurrency %d",
			ErrInvalidConfig, c.MaxConcurrency)

	case c.DebugMaxUTXOs < 0:
		return fmt.Errorf("%w: negative debug UTXO limit %d",
			ErrInvalidConfig, c.DebugMaxUTXOs)
	}

	if c.FeePerByte == 0 {
		c.FeePerByte = bchunit.DefaultSatPerByte
	}
	if c.MinRelayFee == 0 {
		c.MinRelayFee = bchunit.DefaultMinRelayFee
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = utxo.DefaultMaxConcurrency
	}

	if len(c.Endpoints) == 1 {
		log.Warnf("Only one endpoint configured, failed broadcasts " +
			"have no fallback")
	}
	if c.DebugMaxUTXOs > 0 {
		log.Warnf("Debug UTXO limit of %d in effect, sweeps may leave "+
			"funds behind", c.DebugMaxUTXOs)
	}

	return nil
}

// Params returns the parameters of the configured network.
func (c *Config) Params() (*netparams.Params, error) {
	return netparams.ByName(c.Network)
}

// checkEndpoint verifies that endpoint is an absolute http or https URL.
func checkEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint %q: %v", ErrInvalidConfig,
			endpoint, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpoint %q is not an absolute http(s) "+
			"URL", ErrInvalidConfig, endpoint)
	}

	return nil
}
