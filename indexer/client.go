// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package indexer implements a client for the REST interface of Blockbook and
// Insight style Bitcoin Cash indexers.
//
// The client is stateless. Every call picks an endpoint from a pool of
// equivalent indexers, performs exactly one HTTP request and never retries or
// caches. Retrying on another endpoint is left to the caller, which can
// address a specific endpoint through SubmitTo.
package indexer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultTimeout is the per request timeout used when none is set.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "bchsweep"

	// maxErrorBody is the number of body bytes kept in a NetworkError.
	maxErrorBody = 512

	// maxResponseBody caps the size of a decoded response.
	maxResponseBody = 16 << 20
)

// Request operation names used in errors, logs and metrics.
const (
	opAddress = "address"
	opTx      = "tx"
	opSendTx  = "sendtx"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the per request timeout. A zero timeout leaves only the
// caller's context in charge.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithRegisterer enables request metrics on the given registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(cl *Client) {
		cl.registerer = reg
	}
}

// Client talks to a pool of indexer endpoints.
type Client struct {
	selector   EndpointSelector
	http       *http.Client
	timeout    time.Duration
	userAgent  string
	registerer prometheus.Registerer
	metrics    *metrics
}

// New creates a client over the endpoints handed out by selector.
func New(selector EndpointSelector, opts ...Option) (*Client, error) {
	c := &Client{
		selector:  selector,
		http:      http.DefaultClient,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.registerer != nil {
		m, err := newMetrics(c.registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		c.metrics = m
	}

	return c, nil
}

// Selector returns the endpoint selector of the client.
func (c *Client) Selector() EndpointSelector {
	return c.selector
}

// Balance returns the confirmed and unconfirmed balance of addr.
func (c *Client) Balance(ctx context.Context, addr string) (*Balance,
	error) {

	var resp addressResponse
	if _, err := c.getAddress(ctx, addr, &resp); err != nil {
		return nil, err
	}

	confirmed := resp.Balance.Satoshis()
	unconfirmed := resp.UnconfirmedBalance.Satoshis()

	return &Balance{
		Confirmed:   confirmed,
		Unconfirmed: unconfirmed,
		Net:         confirmed + unconfirmed,
	}, nil
}

// AddressHistory returns the ids of the transactions touching addr. The
// indexer may cap the length of the history.
func (c *Client) AddressHistory(ctx context.Context, addr string) ([]string,
	error) {

	var resp addressResponse
	endpoint, err := c.getAddress(ctx, addr, &resp)
	if err != nil {
		return nil, err
	}

	log.Debugf("Indexer %v reports %d transactions for %v", endpoint,
		len(resp.Transactions), addr)

	return resp.Transactions, nil
}

// Transaction returns the transaction with the given id.
func (c *Client) Transaction(ctx context.Context, txid string) (*Tx, error) {
	endpoint, err := c.selector.Select()
	if err != nil {
		return nil, err
	}

	var tx Tx
	err = c.getJSON(ctx, endpoint, opTx, "/tx/"+url.PathEscape(txid), &tx)
	if err != nil {
		return nil, err
	}

	if tx.TxID == "" {
		tx.TxID = txid
	}

	return &tx, nil
}

// Submit broadcasts a raw transaction through an endpoint picked by the
// selector.
func (c *Client) Submit(ctx context.Context, raw []byte) (string, error) {
	endpoint, err := c.selector.Select()
	if err != nil {
		return "", err
	}

	return c.SubmitTo(ctx, endpoint, raw)
}

// SubmitTo broadcasts a raw transaction through the given endpoint and
// returns the transaction id reported by the indexer.
func (c *Client) SubmitTo(ctx context.Context, endpoint string,
	raw []byte) (string, error) {

	body := strings.NewReader(hex.EncodeToString(raw))

	resp, err := c.do(ctx, http.MethodPost, endpoint, opSendTx, "/sendtx/",
		body)
	if err != nil {
		return "", err
	}

	var result submitResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", &NetworkError{
			Endpoint:   endpoint,
			Op:         opSendTx,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	if msg := errorMessage(result.Error); msg != "" {
		return "", &NetworkError{
			Endpoint:   endpoint,
			Op:         opSendTx,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("%w: %s", ErrRejected, msg),
		}
	}
	if result.Result == "" {
		return "", &NetworkError{
			Endpoint:   endpoint,
			Op:         opSendTx,
			StatusCode: http.StatusOK,
			Err:        ErrEmptyResult,
		}
	}

	log.Infof("Transaction %v accepted by %v", result.Result, endpoint)

	return result.Result, nil
}

// getAddress performs an address lookup on a selected endpoint and returns
// the endpoint used.
func (c *Client) getAddress(ctx context.Context, addr string,
	resp *addressResponse) (string, error) {

	endpoint, err := c.selector.Select()
	if err != nil {
		return "", err
	}

	err = c.getJSON(
		ctx, endpoint, opAddress, "/address/"+url.PathEscape(addr), resp,
	)
	if err != nil {
		return "", err
	}

	return endpoint, nil
}

// getJSON performs a GET request and decodes the JSON response into dst.
func (c *Client) getJSON(ctx context.Context, endpoint, op, path string,
	dst any) error {

	body, err := c.do(ctx, http.MethodGet, endpoint, op, path, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &NetworkError{
			Endpoint:   endpoint,
			Op:         op,
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	return nil
}

// do performs a single request and returns the body of a 2xx response.
// Any other outcome is returned as a NetworkError. Error payloads of non-2xx
// responses are recognized as rejections.
func (c *Client) do(ctx context.Context, method, endpoint, op, path string,
	body io.Reader) ([]byte, error) {

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := strings.TrimSuffix(endpoint, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}

	log.Tracef("%v %v", method, target)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, 0, start)

		return nil, &NetworkError{Endpoint: endpoint, Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.observe(op, resp.StatusCode, start)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &NetworkError{
			Endpoint:   endpoint,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		netErr := &NetworkError{
			Endpoint:   endpoint,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       truncate(data, maxErrorBody),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}

		var payload submitResponse
		if json.Unmarshal(data, &payload) == nil {
			if msg := errorMessage(payload.Error); msg != "" {
				netErr.Err = fmt.Errorf("%w: %s", ErrRejected, msg)
			}
		}

		log.Debugf("Indexer request failed: %v", netErr)

		return nil, netErr
	}

	return data, nil
}

// truncate returns at most n bytes of data as a string.
func truncate(data []byte, n int) string {
	data = bytes.TrimSpace(data)
	if len(data) > n {
		data = data[:n]
	}

	return string(data)
}
