package sweep

import (
	"context"
	"strings"
	"testing"

	"github.com/btcsuite/bchsweep/indexer"
	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	// testXprv is a root key whose deposit address at testIndex is
	// testSource.
	testXprv = "xprv9s21ZrQH143K3z2wCDRa3rHg9CHKedM1GvbJzGeZB14tsFdiDtpY" +
		"6T96c1wWr9rwWhU5C8zcEWFbBVa4T3A8bhGSESDG8Kx1SSPfM2rrjxk"

	// testXpub is the account node of testXprv.
	testXpub = "xpub6EX58mQ6azTQ4yrQvnZzxWofBANUD839XV3wVH715Q4PhxA2LYAH" +
		"rn6h2VcwfH2sKoGS6RY4DNuyzn6AQxKPSaSoB2uQkEP2244JCf4eHA1"

	// testIndex is the deposit index used by the tests.
	testIndex = 1

	// testSource is the legacy deposit address at testIndex.
	testSource = "1NttWjysG8Wuc9GFDVDJcBb73U3XXLTUxC"

	// testDestCash and testDestLegacy are the two encodings of the
	// destination address.
	testDestCash   = "qpm2qsznhks23z7629mms6s4cwef74vcwvy22gdx6a"
	testDestLegacy = "1BpEi6DfDAUFd7GtittLSdBeYJvcoaVggu"

	endpointA = "https://a.example/api/v1"
	endpointB = "https://b.example/api/v1"
)

// p2pkhScript returns the locking script of a mainnet legacy address.
func p2pkhScript(t *testing.T, addr string) []byte {
	t.Helper()

	decoded, err := btcutil.DecodeAddress(addr, netparams.MainNet.Params)
	require.NoError(t, err)

	script, err := txscript.PayToAddrScript(decoded)
	require.NoError(t, err)

	return script
}

// testUTXO returns an output of value paying to addr in a transaction whose
// id repeats the byte b.
func testUTXO(t *testing.T, addr string, b byte, index uint32,
	value btcutil.Amount) utxo.UTXO {

	t.Helper()

	var hash chainhash.Hash
	for i := range hash {
		hash[i] = b
	}

	return utxo.UTXO{
		OutPoint: wire.OutPoint{Hash: hash, Index: index},
		PkScript: p2pkhScript(t, addr),
		Address:  addr,
		Value:    value,
	}
}

// repeatTxID returns a 64 character txid made of the hex byte s.
func repeatTxID(s string) string {
	return strings.Repeat(s, 32)
}

// mockSubmitter is a mock implementation of the Submitter interface.
type mockSubmitter struct {
	mock.Mock
}

// A compile-time assertion to ensure mockSubmitter satisfies Submitter.
var _ Submitter = (*mockSubmitter)(nil)

func (m *mockSubmitter) SubmitTo(ctx context.Context, endpoint string,
	raw []byte) (string, error) {

	args := m.Called(ctx, endpoint, raw)

	return args.String(0), args.Error(1)
}

// mockLedger is a mock implementation of the Ledger interface over a static
// endpoint pool.
type mockLedger struct {
	mockSubmitter

	selector indexer.EndpointSelector
}

// A compile-time assertion to ensure mockLedger satisfies Ledger.
var _ Ledger = (*mockLedger)(nil)

func newMockLedger(endpoints ...string) *mockLedger {
	return &mockLedger{
		selector: indexer.NewStaticSelector(endpoints...),
	}
}

func (m *mockLedger) AddressHistory(ctx context.Context,
	addr string) ([]string, error) {

	args := m.Called(ctx, addr)
	history, _ := args.Get(0).([]string)

	return history, args.Error(1)
}

func (m *mockLedger) Transaction(ctx context.Context,
	txid string) (*indexer.Tx, error) {

	args := m.Called(ctx, txid)
	tx, _ := args.Get(0).(*indexer.Tx)

	return tx, args.Error(1)
}

func (m *mockLedger) Selector() indexer.EndpointSelector {
	return m.selector
}
