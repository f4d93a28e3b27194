package indexer

import (
	"encoding/json"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestParseDecimal checks the exact decimal to satoshi conversion.
func TestParseDecimal(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    btcutil.Amount
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "1", want: 100_000_000},
		{in: "0.00000001", want: 1},
		{in: "12.3456789", want: 1_234_567_890},
		{in: "-0.5", want: -50_000_000},
		{in: ".25", want: 25_000_000},
		{in: "0.123456789", want: 12_345_679},
		{in: "1e-8", want: 1},
		{in: "1.", want: 100_000_000},
		{in: "-.5", want: -50_000_000},
		{in: " 2.5 ", want: 250_000_000},
		{in: "1.5E+2", want: 15_000_000_000},
		{in: "21000000", want: btcutil.MaxSatoshi},
		{in: "-21000000", want: -btcutil.MaxSatoshi},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1.-5", wantErr: true},
		{in: "1.+5", wantErr: true},
		{in: "--1", wantErr: true},
		{in: "+-1", wantErr: true},
		{in: "+1", wantErr: true},
		{in: "-", wantErr: true},
		{in: ".", wantErr: true},
		{in: "-.", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "1e", wantErr: true},
		{in: "1e99999", wantErr: true},
		{in: "21000000.00000001", wantErr: true},
		{in: "100000000000", wantErr: true},
		{in: "-100000000000", wantErr: true},
		{in: "1e9", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := parseDecimal(tc.in)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidDecimal, tc.in)
			continue
		}

		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

// TestAmountUnmarshal checks that null and both JSON forms decode.
func TestAmountUnmarshal(t *testing.T) {
	t.Parallel()

	var v struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	err := json.Unmarshal(
		[]byte(`{"a":"0.1","b":0.2,"c":null}`), &v,
	)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(10_000_000), v.A.Satoshis())
	require.Equal(t, btcutil.Amount(20_000_000), v.B.Satoshis())
	require.Zero(t, v.C)

	// Malformed and overflowing values fail the whole decode.
	for _, body := range []string{
		`{"a":"--1"}`, `{"a":100000000000}`, `{"a":"-"}`, `{"a":true}`,
	} {
		err := json.Unmarshal([]byte(body), &v)
		require.ErrorIs(t, err, ErrInvalidDecimal, body)
	}
}

// TestErrorMessage checks extraction of rejection reasons.
func TestErrorMessage(t *testing.T) {
	t.Parallel()

	require.Empty(t, errorMessage(nil))
	require.Empty(t, errorMessage(json.RawMessage(`null`)))
	require.Empty(t, errorMessage(json.RawMessage(`""`)))
	require.Equal(t, "bad", errorMessage(json.RawMessage(`"bad"`)))
	require.Equal(t, "worse", errorMessage(
		json.RawMessage(`{"message":"worse"}`),
	))
	require.Equal(t, `{"code":-26}`, errorMessage(
		json.RawMessage(`{"code":-26}`),
	))
}
