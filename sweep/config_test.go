package sweep

import (
	"testing"

	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/stretchr/testify/require"
)

// TestConfigValidate checks accepted and rejected configs.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			modify: func(*Config) {},
		},
		{
			name: "testnet",
			modify: func(c *Config) {
				c.Network = "testnet"
			},
		},
		{
			name: "unknown network",
			modify: func(c *Config) {
				c.Network = "regtest"
			},
			wantErr: true,
		},
		{
			name: "no endpoints",
			modify: func(c *Config) {
				c.Endpoints = nil
			},
			wantErr: true,
		},
		{
			name: "relative endpoint",
			modify: func(c *Config) {
				c.Endpoints = []string{"/api/v1"}
			},
			wantErr: true,
		},
		{
			name: "ftp endpoint",
			modify: func(c *Config) {
				c.Endpoints = []string{"ftp://a.example"}
			},
			wantErr: true,
		},
		{
			name: "negative fee rate",
			modify: func(c *Config) {
				c.FeePerByte = -1
			},
			wantErr: true,
		},
		{
			name: "negative relay fee",
			modify: func(c *Config) {
				c.MinRelayFee = -1
			},
			wantErr: true,
		},
		{
			name: "negative concurrency",
			modify: func(c *Config) {
				c.MaxConcurrency = -1
			},
			wantErr: true,
		},
		{
			name: "negative debug limit",
			modify: func(c *Config) {
				c.DebugMaxUTXOs = -1
			},
			wantErr: true,
		},
		{
			name: "single endpoint with debug limit",
			modify: func(c *Config) {
				c.Endpoints = c.Endpoints[:1]
				c.DebugMaxUTXOs = 2
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.Endpoints = []string{endpointA, endpointB}
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}

			require.NoError(t, err)
		})
	}
}

// TestConfigDefaults checks that zero values are replaced by defaults.
func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{Endpoints: []string{endpointA}}
	require.NoError(t, cfg.Validate())

	require.Equal(t, bchunit.DefaultSatPerByte, cfg.FeePerByte)
	require.Equal(t, bchunit.DefaultMinRelayFee, cfg.MinRelayFee)
	require.Equal(t, utxo.DefaultMaxConcurrency, cfg.MaxConcurrency)
	require.Zero(t, cfg.DebugMaxUTXOs)

	params, err := cfg.Params()
	require.NoError(t, err)
	require.Equal(t, "mainnet", params.Name)

	var nilCfg *Config
	require.ErrorIs(t, nilCfg.Validate(), ErrInvalidConfig)
}
