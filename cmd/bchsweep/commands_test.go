package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

const (
	testXprv = "xprv9s21ZrQH143K3z2wCDRa3rHg9CHKedM1GvbJzGeZB14tsFdiDtpY" +
		"6T96c1wWr9rwWhU5C8zcEWFbBVa4T3A8bhGSESDG8Kx1SSPfM2rrjxk"

	testXpub = "xpub6EX58mQ6azTQ4yrQvnZzxWofBANUD839XV3wVH715Q4PhxA2LYAH" +
		"rn6h2VcwfH2sKoGS6RY4DNuyzn6AQxKPSaSoB2uQkEP2244JCf4eHA1"

	// testAddress and testLegacy are the deposit address at index 1.
	testAddress = "qrcz4kes5jtktk66mf0508g49h4fs5f8zstpt3f0jc"
	testLegacy  = "1NttWjysG8Wuc9GFDVDJcBb73U3XXLTUxC"
	testWIF     = "KwR3V6oUrxNP4R6GcA2TxMJmS6pt9p2CgjYi9zhpM56RFmowxQYV"

	testDestCash   = "qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a"
	testDestLegacy = "1BpEi6DfDAUFd7GtittLSdBeYJvcoaVggu"

	testEndpoint = "https://a.example/api/v1"

	testFundingTxID = "1111111111111111111111111111111111111111111111111111" +
		"111111111111"
	testParentTxID = "2222222222222222222222222222222222222222222222222222" +
		"222222222222"
	testSweepTxID = "3333333333333333333333333333333333333333333333333333" +
		"333333333333"
)

// runCommand runs the command line with file logging and the default config
// file disabled and returns what was written to standard output.
func runCommand(t *testing.T, httpClient *http.Client,
	args ...string) (string, error) {

	t.Helper()

	base := []string{
		"--nofilelogging", "--configfile", writeConfigFile(t, ""),
	}

	var out bytes.Buffer
	err := run(append(base, args...), &out, httpClient)

	return out.String(), err
}

// newMockIndexer returns an HTTP client over a mock transport that serves
// the funding transaction of the deposit address at index 1.
func newMockIndexer(t *testing.T) (*http.Client, *httpmock.MockTransport) {
	t.Helper()

	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(
		http.MethodGet, testEndpoint+"/address/"+testLegacy,
		httpmock.NewStringResponder(http.StatusOK,
			`{"address":"`+testLegacy+`","balance":"0.0003",`+
				`"unconfirmedBalance":"0",`+
				`"transactions":["`+testFundingTxID+`"]}`),
	)
	mt.RegisterResponder(
		http.MethodGet, testEndpoint+"/tx/"+testFundingTxID,
		httpmock.NewStringResponder(http.StatusOK,
			`{"txid":"`+testFundingTxID+`",`+
				`"vin":[{"txid":"`+testParentTxID+`","vout":0}],`+
				`"vout":[{"value":"0.0003","n":0,`+
				`"scriptPubKey":{"addresses":["`+testLegacy+`"]}}],`+
				`"confirmations":3}`),
	)

	return &http.Client{Transport: mt}, mt
}

// TestKeyCommands checks the commands that only derive or convert keys.
func TestKeyCommands(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "address",
			args: []string{"address", "--xpub", testXpub, "--index", "1"},
			want: testAddress,
		},
		{
			name: "privkey",
			args: []string{"privkey", "--xprv", testXprv, "--index", "1"},
			want: testWIF,
		},
		{
			name: "pubfromwif",
			args: []string{"pubfromwif", "--wif", testWIF},
			want: testAddress,
		},
		{
			name: "legacy",
			args: []string{"legacy", "--address", testAddress},
			want: testLegacy,
		},
		{
			name: "legacy reverse",
			args: []string{
				"legacy", "--address", testLegacy, "--reverse",
			},
			want: testAddress,
		},
		{
			name: "xpub",
			args: []string{"xpub", "--xprv", testXprv},
			want: testXpub,
		},
		{
			name: "validate",
			args: []string{"validate", "--address", testDestCash},
			want: testDestCash + " is valid on mainnet",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runCommand(t, nil, tc.args...)
			require.NoError(t, err)
			require.Equal(t, tc.want+"\n", out)
		})
	}
}

// TestKeyCommandErrors checks that invalid input fails the command.
func TestKeyCommandErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{
			name: "bad xpub",
			args: []string{"address", "--xpub", "xpubgarbage"},
		},
		{
			name: "missing xprv",
			args: []string{"privkey", "--index", "1"},
		},
		{
			name: "legacy destination",
			args: []string{"validate", "--address", testDestLegacy},
		},
		{
			name: "bad entropy",
			args: []string{"genkeys", "--entropy", "zz"},
		},
		{
			name: "unknown network",
			args: []string{
				"--network", "regtest", "address", "--xpub",
				testXpub,
			},
		},
		{
			name: "no command",
			args: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runCommand(t, nil, tc.args...)
			require.Error(t, err)
			require.Empty(t, out)
		})
	}
}

// TestGenKeys checks that generated keys derive consistent addresses.
func TestGenKeys(t *testing.T) {
	entropy := strings.Repeat("ab", 32)

	out, err := runCommand(t, nil, "genkeys", "--entropy", entropy)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "xprv: xprv"))
	require.True(t, strings.HasPrefix(lines[1], "xpub: xpub"))

	xprv := strings.TrimPrefix(lines[0], "xprv: ")
	xpub := strings.TrimPrefix(lines[1], "xpub: ")

	derived, err := runCommand(t, nil, "xpub", "--xprv", xprv)
	require.NoError(t, err)
	require.Equal(t, xpub+"\n", derived)

	// Random entropy yields a different pair each time.
	first, err := runCommand(t, nil, "genkeys")
	require.NoError(t, err)
	second, err := runCommand(t, nil, "genkeys")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

// TestBalanceCommand checks the balance lookup of a CashAddr address.
func TestBalanceCommand(t *testing.T) {
	client, mt := newMockIndexer(t)

	out, err := runCommand(t, client,
		"--endpoint", testEndpoint, "balance", "--address", testAddress,
	)
	require.NoError(t, err)
	require.Contains(t, out, "confirmed: 0.0003 BTC")
	require.Contains(t, out, "net: 0.0003 BTC")
	require.Equal(t, 1, mt.GetTotalCallCount())
}

// TestUTXOsCommand checks the listing of reconstructed outputs.
func TestUTXOsCommand(t *testing.T) {
	client, _ := newMockIndexer(t)

	out, err := runCommand(t, client,
		"--endpoint", testEndpoint, "utxos", "--address", testAddress,
	)
	require.NoError(t, err)
	require.Contains(t, out, testFundingTxID+":0 0.0003 BTC")
	require.Contains(t, out, "total: 0.0003 BTC in 1 outputs")
}

// TestSweepCommand checks a dry run and a broadcast sweep.
func TestSweepCommand(t *testing.T) {
	args := []string{
		"--endpoint", testEndpoint, "sweep", "--xprv", testXprv,
		"--index", "1", "--to", testDestCash,
	}

	t.Run("dry run", func(t *testing.T) {
		client, mt := newMockIndexer(t)

		out, err := runCommand(t, client, append(args, "--dryrun")...)
		require.NoError(t, err)
		require.Contains(t, out, "inputs: 1")
		require.Contains(t, out, "output: 0.00029 BTC to "+testDestLegacy)
		require.Contains(t, out, "fee: 0.00001 BTC")
		require.Contains(t, out, "sat/kb")
		require.Contains(t, out, "status: pending")
		require.Contains(t, out, "hex: 02000000")

		info := mt.GetCallCountInfo()
		require.Zero(t, info["POST "+testEndpoint+"/sendtx/"])
	})

	t.Run("broadcast", func(t *testing.T) {
		client, mt := newMockIndexer(t)
		mt.RegisterResponder(
			http.MethodPost, testEndpoint+"/sendtx/",
			httpmock.NewStringResponder(http.StatusOK,
				`{"result":"`+testSweepTxID+`"}`),
		)

		out, err := runCommand(t, client, args...)
		require.NoError(t, err)
		require.Contains(t, out, "status: broadcast")
		require.Contains(t, out, "endpoint: "+testEndpoint)
		require.NotContains(t, out, "hex:")
	})

	t.Run("rejected", func(t *testing.T) {
		client, mt := newMockIndexer(t)
		mt.RegisterResponder(
			http.MethodPost, testEndpoint+"/sendtx/",
			httpmock.NewStringResponder(http.StatusBadRequest,
				`{"error":"bad-txns-inputs-missingorspent"}`),
		)

		out, err := runCommand(t, client, args...)
		require.Error(t, err)
		require.Contains(t, out, "status: failed")
	})

	t.Run("kb rate", func(t *testing.T) {
		client, _ := newMockIndexer(t)

		kbArgs := append([]string{"--feeperkb", "20000"}, args...)
		out, err := runCommand(t, client, append(kbArgs, "--dryrun")...)
		require.NoError(t, err)

		// 20 sat/byte over a one input sweep clears the relay floor.
		require.Contains(t, out, "fee: 0.000026 BTC")
		require.Contains(t, out, "output: 0.000274 BTC to "+testDestLegacy)
	})

	t.Run("negative rate", func(t *testing.T) {
		out, err := runCommand(t, nil, append(args, "--rate=-1")...)
		require.ErrorContains(t, err, "rate")
		require.Empty(t, out)
	})
}
