package sweep

import (
	"bytes"
	"testing"

	"github.com/btcsuite/bchsweep/keychain"
	"github.com/btcsuite/bchsweep/netparams"
	"github.com/btcsuite/bchsweep/pkg/bchunit"
	"github.com/btcsuite/bchsweep/utxo"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// newTestBuilder returns a mainnet builder with the default fee settings.
func newTestBuilder() *Builder {
	return NewBuilder(keychain.New(&netparams.MainNet), 0, 0)
}

// TestBuild checks the shape of a sweep and the validity of its
// signatures.
func TestBuild(t *testing.T) {
	t.Parallel()

	b := newTestBuilder()
	utxos := []utxo.UTXO{
		testUTXO(t, testSource, 0x22, 0, 20_000),
		testUTXO(t, testSource, 0x11, 3, 10_000),
	}

	tx, err := b.Build(testXprv, testIndex, testDestCash, utxos, 0)
	require.NoError(t, err)

	// Two inputs are well below the relay floor.
	require.Equal(t, bchunit.DefaultMinRelayFee, tx.Fee)
	require.Equal(t, btcutil.Amount(29_000), tx.Output)
	require.Equal(t, testDestLegacy, tx.Destination)
	require.Equal(t, StatusPending, tx.Status)
	require.False(t, tx.Broadcasted())
	require.Empty(t, tx.Endpoint)

	// Inputs are spent in outpoint order and the caller's slice is left
	// untouched.
	require.Equal(t, utxos[1].OutPoint, tx.Inputs[0].OutPoint)
	require.Equal(t, utxos[0].OutPoint, tx.Inputs[1].OutPoint)
	require.Equal(t, byte(0x22), utxos[0].OutPoint.Hash[0])

	msgTx := tx.MsgTx
	require.EqualValues(t, 2, msgTx.Version)
	require.Len(t, msgTx.TxIn, 2)
	require.Len(t, msgTx.TxOut, 1)
	require.Equal(t, int64(29_000), msgTx.TxOut[0].Value)
	require.Equal(t, p2pkhScript(t, testDestLegacy), msgTx.TxOut[0].PkScript)

	var buf bytes.Buffer
	require.NoError(t, msgTx.Serialize(&buf))
	require.Equal(t, buf.Bytes(), tx.Raw)
	require.Equal(t, msgTx.TxHash().String(), tx.TxID)
	require.Equal(t,
		bchunit.NewSatPerKByte(tx.Fee, uint64(len(tx.Raw))),
		tx.FeeRate(),
	)

	requireValidSignatures(t, msgTx, tx.Inputs)
}

// requireValidSignatures checks every input signature against the fork id
// digest.
func requireValidSignatures(t *testing.T, msgTx *wire.MsgTx,
	inputs []utxo.UTXO) {

	t.Helper()

	prevOuts := make(map[wire.OutPoint]*wire.TxOut)
	for _, u := range inputs {
		prevOuts[u.OutPoint] = wire.NewTxOut(int64(u.Value), u.PkScript)
	}
	sigHashes := txscript.NewTxSigHashes(
		msgTx, txscript.NewMultiPrevOutFetcher(prevOuts),
	)

	for i, in := range msgTx.TxIn {
		require.Equal(t, inputs[i].OutPoint, in.PreviousOutPoint)

		pushes, err := txscript.PushedData(in.SignatureScript)
		require.NoError(t, err)
		require.Len(t, pushes, 2)

		sigBytes, pubBytes := pushes[0], pushes[1]
		require.Equal(t, byte(sigHashType), sigBytes[len(sigBytes)-1])
		require.Equal(t, byte(0x41), sigBytes[len(sigBytes)-1])

		pubKey, err := btcec.ParsePubKey(pubBytes)
		require.NoError(t, err)
		require.Len(t, pubBytes, btcec.PubKeyBytesLenCompressed)

		sig, err := ecdsa.ParseDERSignature(sigBytes[:len(sigBytes)-1])
		require.NoError(t, err)

		digest, err := txscript.CalcWitnessSigHash(
			inputs[i].PkScript, sigHashes, sigHashType, msgTx, i,
			int64(inputs[i].Value),
		)
		require.NoError(t, err)
		require.True(t, sig.Verify(digest, pubKey), "input %d", i)
	}
}

// TestBuildDeterministic checks that identical inputs give identical bytes.
func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	b := newTestBuilder()
	utxos := []utxo.UTXO{testUTXO(t, testSource, 0x33, 1, 50_000)}

	first, err := b.Build(testXprv, testIndex, testDestLegacy, utxos, 2)
	require.NoError(t, err)

	second, err := b.Build(testXprv, testIndex, testDestCash, utxos, 2)
	require.NoError(t, err)

	require.Equal(t, first.Raw, second.Raw)
	require.Equal(t, first.TxID, second.TxID)
}

// TestBuildFee checks the fee floor, the default rate and the boundary of
// the funds check.
func TestBuildFee(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		defaultRate bchunit.SatPerByte
		rate        bchunit.SatPerByte
		values      []btcutil.Amount
		wantFee     btcutil.Amount
		wantErr     bool
	}{
		{
			name:    "relay floor",
			values:  []btcutil.Amount{5_000},
			wantFee: 1000,
		},
		{
			name:    "output equals fee",
			values:  []btcutil.Amount{2_000},
			wantFee: 1000,
		},
		{
			name:    "one satoshi short",
			values:  []btcutil.Amount{1_999},
			wantFee: 1000,
			wantErr: true,
		},
		{
			name:    "explicit rate above floor",
			rate:    20,
			values:  []btcutil.Amount{100_000},
			wantFee: 130 * 20,
		},
		{
			name:        "zero rate uses default",
			defaultRate: 10,
			values:      []btcutil.Amount{100_000, 100_000},
			wantFee:     216 * 10,
		},
		{
			name:    "fee too large for balance",
			rate:    100,
			values:  []btcutil.Amount{10_000, 20_000},
			wantFee: 216 * 100,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := NewBuilder(
				keychain.New(&netparams.MainNet), tc.defaultRate, 0,
			)

			utxos := make([]utxo.UTXO, 0, len(tc.values))
			for i, v := range tc.values {
				utxos = append(utxos, testUTXO(
					t, testSource, byte(i+1), 0, v,
				))
			}

			tx, err := b.Build(
				testXprv, testIndex, testDestCash, utxos, tc.rate,
			)
			if tc.wantErr {
				var fundsErr *InsufficientFundsError
				require.ErrorAs(t, err, &fundsErr)
				require.Equal(t, tc.wantFee, fundsErr.Fee)
				require.Equal(t, utxo.Total(utxos), fundsErr.Total)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantFee, tx.Fee)
			require.Equal(t, utxo.Total(utxos)-tc.wantFee, tx.Output)
			require.GreaterOrEqual(t, tx.Output, tx.Fee)
		})
	}
}

// TestBuildErrors checks the failure modes of Build.
func TestBuildErrors(t *testing.T) {
	t.Parallel()

	b := newTestBuilder()
	utxos := []utxo.UTXO{testUTXO(t, testSource, 0x44, 0, 50_000)}

	// A missing key is reported ahead of missing inputs.
	_, err := b.Build("", testIndex, testDestCash, nil, 0)
	require.ErrorIs(t, err, keychain.ErrMissingExtendedKey)

	_, err = b.Build(testXprv, testIndex, testDestCash, nil, 0)
	require.ErrorIs(t, err, ErrEmptyInputs)

	var vErr *keychain.ValidationError
	_, err = b.Build(testXprv, testIndex, "nowhere", utxos, 0)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "destination", vErr.Input)

	// Inputs that belong to another key are refused.
	foreign := []utxo.UTXO{testUTXO(t, testDestLegacy, 0x44, 0, 50_000)}
	_, err = b.Build(testXprv, testIndex, testDestCash, foreign, 0)
	require.ErrorIs(t, err, ErrKeyMismatch)

	_, err = b.Build(testXprv, testIndex+1, testDestCash, utxos, 0)
	require.ErrorIs(t, err, ErrKeyMismatch)
}

// TestBuilderFee checks the exported fee calculation.
func TestBuilderFee(t *testing.T) {
	t.Parallel()

	b := NewBuilder(keychain.New(&netparams.MainNet), 50, 0)
	require.Equal(t, btcutil.Amount(130*50), b.Fee(1, 0))
	require.Equal(t, bchunit.DefaultMinRelayFee, b.Fee(1, 1))

	floor := NewBuilder(keychain.New(&netparams.MainNet), 1, 5000)
	require.Equal(t, btcutil.Amount(5000), floor.Fee(3, 0))
}
