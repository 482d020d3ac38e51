/*
Copyright 2026 Altaira Labs.

SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package warehouse executes SQL statements against tenant warehouses over
// the Snowflake SQL REST API v2 and materializes the paginated results.
// Each execution is a self-contained request/response cycle: fresh token,
// fresh statement handle, no connection state between invocations.
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/altairalabs/frostgate/internal/keypair"
	"github.com/altairalabs/frostgate/internal/tenant"
	"github.com/altairalabs/frostgate/pkg/logctx"
	"github.com/altairalabs/frostgate/pkg/metrics"
)

// Default client settings.
const (
	DefaultRequestTimeout      = 60 * time.Second
	DefaultPartitionFetchLimit = 4

	statementsPath = "/api/v2/statements"
)

// TokenMinter mints per-execution bearer tokens. Satisfied by *keypair.Signer.
type TokenMinter interface {
	Mint(ctx context.Context, cred tenant.Credential) (*keypair.Token, error)
}

// Config contains client settings.
type Config struct {
	// BaseURL overrides the per-account endpoint. When empty, requests go to
	// https://{account}.snowflakecomputing.com.
	BaseURL string
	// RequestTimeout is the transport-level timeout per HTTP request,
	// independent of the statement timeout. Defaults to DefaultRequestTimeout.
	RequestTimeout time.Duration
	// PartitionFetchLimit bounds concurrent partition fetches per statement.
	// Defaults to DefaultPartitionFetchLimit.
	PartitionFetchLimit int
}

// Client submits statements, reconciles result partitions, and cancels
// statements the warehouse rejected.
type Client struct {
	minter    TokenMinter
	config    Config
	log       logr.Logger
	metrics   *metrics.QueryMetrics
	transport http.RoundTripper
}

// NewClient creates a statement execution client.
func NewClient(minter TokenMinter, cfg Config, log logr.Logger) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.PartitionFetchLimit <= 0 {
		cfg.PartitionFetchLimit = DefaultPartitionFetchLimit
	}
	return &Client{
		minter: minter,
		config: cfg,
		log:    log,
	}
}

// WithMetrics attaches query metrics to the client.
func (c *Client) WithMetrics(m *metrics.QueryMetrics) *Client {
	c.metrics = m
	return c
}

// Execute runs one statement for one tenant: mint token, submit, fetch any
// remaining partitions, materialize. Errors carry the sentinel appropriate
// to the failing stage and never affect sibling tenant executions.
func (c *Client) Execute(ctx context.Context, cred tenant.Credential, q Query) ([]Row, error) {
	tok, err := c.minter.Mint(ctx, cred)
	if err != nil {
		return nil, err
	}

	httpc := &http.Client{
		Transport: &bearerTransport{token: tok.Raw, base: c.transport},
		Timeout:   c.config.RequestTimeout,
	}
	base := c.baseURL(cred)
	ctx = logctx.WithAccount(logctx.WithTenantID(ctx, cred.TenantID), cred.Account)

	sub, err := c.submit(ctx, httpc, base, cred, q)
	if err != nil {
		return nil, err
	}

	handle := sub.handle()
	ctx = logctx.WithStatementHandle(ctx, handle)

	raw, err := c.collectPartitions(ctx, httpc, base, handle, sub)
	if err != nil {
		return nil, err
	}

	return Materialize(sub.ResultSetMetaData.RowType, raw)
}

// submit posts the statement and decodes the first partition. A rejected
// submission triggers one best-effort cancellation of the reported handle;
// the original error is what the caller observes.
func (c *Client) submit(
	ctx context.Context, httpc *http.Client, base string, cred tenant.Credential, q Query,
) (*statementResponse, error) {
	reqBody := submitRequest{
		Statement: q.SQL,
		Bindings:  wireBindings(q.Bindings),
		Warehouse: cred.Warehouse,
		Timeout:   int64(q.Timeout.Seconds()),
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode statement: %v", ErrStatementExecution, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+statementsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatementExecution, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: submit request failed: %v", ErrStatementExecution, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body statementResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil, fmt.Errorf("%w: failed to decode response: %v", ErrStatementExecution, err)
		}
		body = statementResponse{}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.cancel(ctx, httpc, base, body.handle())
		msg := body.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrStatementExecution, msg)
	}
	return &body, nil
}

// cancel issues a fire-and-forget cancellation for a rejected statement.
// Its own failure is logged as a secondary condition, never returned.
func (c *Client) cancel(ctx context.Context, httpc *http.Client, base, handle string) {
	log := logctx.FromContext(ctx, c.log)
	if handle == "" {
		log.V(1).Info("no statement handle in error response, skipping cancellation")
		return
	}

	cancelURL := fmt.Sprintf("%s%s/%s/cancel", base, statementsPath, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cancelURL, nil)
	if err != nil {
		log.Error(err, "failed to build cancel request", "statement_handle", handle)
		return
	}

	resp, err := httpc.Do(req)
	if err != nil {
		log.Error(err, "statement cancellation failed", "statement_handle", handle)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	log.V(1).Info("cancelled rejected statement", "statement_handle", handle)
}

// collectPartitions returns all raw rows in partition-index order.
// Partition 0 arrives inline with the submission; partitions 1..N-1 are
// fetched concurrently under the configured limit. All partitions must be
// fetched before any result is returned.
func (c *Client) collectPartitions(
	ctx context.Context, httpc *http.Client, base, handle string, sub *statementResponse,
) ([][]*string, error) {
	n := len(sub.ResultSetMetaData.PartitionInfo)
	if n <= 1 {
		return sub.Data, nil
	}

	parts := make([][][]*string, n)
	parts[0] = sub.Data

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.PartitionFetchLimit)
	for i := 1; i < n; i++ {
		i := i
		g.Go(func() error {
			data, err := c.fetchPartition(gctx, httpc, base, handle, i)
			if err != nil {
				return err
			}
			parts[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.PartitionsFetched.Add(float64(n - 1))
	}

	var raw [][]*string
	for _, p := range parts {
		raw = append(raw, p...)
	}
	return raw, nil
}

// fetchPartition retrieves one indexed partition of the statement's result set.
func (c *Client) fetchPartition(
	ctx context.Context, httpc *http.Client, base, handle string, index int,
) ([][]*string, error) {
	partURL := fmt.Sprintf("%s%s/%s?partition=%d", base, statementsPath, url.PathEscape(handle), index)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, partURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: partition %d: %v", ErrPartitionFetch, index, err)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: partition %d: %v", ErrPartitionFetch, index, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: partition %d: %s", ErrPartitionFetch, index, resp.Status)
	}

	var body statementResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: partition %d: failed to decode response: %v", ErrPartitionFetch, index, err)
	}
	return body.Data, nil
}

// baseURL returns the endpoint for a tenant's account.
func (c *Client) baseURL(cred tenant.Credential) string {
	if c.config.BaseURL != "" {
		return c.config.BaseURL
	}
	return fmt.Sprintf("https://%s.snowflakecomputing.com", cred.Account)
}
