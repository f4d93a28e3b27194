// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
)

// decimalPlaces is the number of fractional digits of a whole coin.
const decimalPlaces = 8

var (
	// ErrInvalidDecimal is returned when an amount in an indexer response
	// is not a decimal coin value.
	ErrInvalidDecimal = errors.New("invalid decimal amount")
)

// Amount is a coin amount received from an indexer. Indexers report amounts
// as decimal coin values, either as JSON strings or as JSON numbers. Amount
// decodes both forms into satoshis without going through a float.
type Amount btcutil.Amount

// UnmarshalJSON decodes a decimal coin value.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	amt, err := parseDecimal(raw)
	if err != nil {
		return err
	}

	*a = Amount(amt)

	return nil
}

// Satoshis returns the amount as a btcutil.Amount.
func (a Amount) Satoshis() btcutil.Amount {
	return btcutil.Amount(a)
}

// decimalPattern is the accepted form of a decimal coin value: an optional
// leading minus, digits on at least one side of the point and an optional
// short exponent.
var decimalPattern = regexp.MustCompile(
	`^-?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d{1,3})?$`,
)

// maxSatoshi bounds the magnitude of any decoded amount.
var maxSatoshi = decimal.NewFromInt(int64(btcutil.MaxSatoshi))

// parseDecimal converts a decimal coin string into satoshis. Values with more
// than eight fractional digits are rounded to the nearest satoshi.
func parseDecimal(s string) (btcutil.Amount, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDecimal, s, err)
	}

	sats := d.Shift(decimalPlaces).Round(0)
	if sats.Abs().GreaterThan(maxSatoshi) {
		return 0, fmt.Errorf("%w: %q exceeds the coin supply",
			ErrInvalidDecimal, s)
	}

	return btcutil.Amount(sats.IntPart()), nil
}

// Balance is the balance of a single address.
type Balance struct {
	// Confirmed is the confirmed balance.
	Confirmed btcutil.Amount

	// Unconfirmed is the balance change of unconfirmed transactions. It is
	// negative while an unconfirmed spend is pending.
	Unconfirmed btcutil.Amount

	// Net is Confirmed plus Unconfirmed.
	Net btcutil.Amount
}

// NetBTC returns the net balance as a decimal coin value rounded to eight
// decimal places.
func (b *Balance) NetBTC() float64 {
	return b.Net.ToBTC()
}

// addressResponse is the body of an address lookup.
type addressResponse struct {
	Address            string   `json:"address"`
	Balance            Amount   `json:"balance"`
	UnconfirmedBalance Amount   `json:"unconfirmedBalance"`
	Transactions       []string `json:"transactions"`
}

// Tx is a transaction as reported by an indexer.
type Tx struct {
	// TxID is the transaction id in its hex string form.
	TxID string `json:"txid"`

	// Vin lists the outpoints spent by the transaction.
	Vin []Vin `json:"vin"`

	// Vout lists the outputs created by the transaction.
	Vout []Vout `json:"vout"`

	// Confirmations is the number of confirmations. Zero means the
	// transaction is still in the mempool.
	Confirmations int64 `json:"confirmations"`
}

// Confirmed reports whether the transaction is included in a block.
func (t *Tx) Confirmed() bool {
	return t.Confirmations > 0
}

// Vin is a transaction input.
type Vin struct {
	TxID string `json:"txid"`
	Vout uint32 `json:"vout"`
}

// Vout is a transaction output.
type Vout struct {
	Value        Amount       `json:"value"`
	N            uint32       `json:"n"`
	ScriptPubKey ScriptPubKey `json:"scriptPubKey"`

	// Spent is set by indexers that track spends. Outputs flagged spent
	// are never treated as unspent; an unset flag proves nothing.
	Spent bool `json:"spent"`
}

// ScriptPubKey is the locking script of an output.
type ScriptPubKey struct {
	Hex       string   `json:"hex"`
	Addresses []string `json:"addresses"`
}

// submitResponse is the body of a broadcast.
type submitResponse struct {
	Result string          `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// errorMessage extracts a rejection reason from an error payload, which is
// either a plain string or an object with a message field. An absent or
// null payload yields the empty string.
func errorMessage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) ||
		bytes.Equal(raw, []byte("false")) {

		return ""
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	return string(raw)
}
