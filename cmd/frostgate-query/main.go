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

// frostgate-query runs one SQL statement against tenant warehouses and
// prints the per-tenant outcomes as JSON. It is the operational entry point
// for the query engine; the SaaS API wires the same engine behind HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/altairalabs/frostgate/internal/config"
	"github.com/altairalabs/frostgate/internal/keypair"
	"github.com/altairalabs/frostgate/internal/keystore"
	"github.com/altairalabs/frostgate/internal/queryengine"
	"github.com/altairalabs/frostgate/internal/tenant"
	"github.com/altairalabs/frostgate/internal/warehouse"
	"github.com/altairalabs/frostgate/pkg/logging"
	"github.com/altairalabs/frostgate/pkg/metrics"
)

// tenantResult is the JSON output form of one tenant's outcome.
type tenantResult struct {
	TenantID string          `json:"tenantId"`
	Rows     []warehouse.Row `json:"rows,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func main() {
	var (
		sqlText  string
		bindings string
		tenantID string
		target   string
		admin    bool
		timeout  time.Duration
	)
	flag.StringVar(&sqlText, "sql", "", "SQL statement to execute (required)")
	flag.StringVar(&bindings, "bind", "", "comma-separated positional binding values")
	flag.StringVar(&tenantID, "tenant", "", "caller's tenant ID (omit for admin callers)")
	flag.StringVar(&target, "target", "", "target tenant ID (admin: narrows the fan-out)")
	flag.BoolVar(&admin, "admin", false, "run as system admin")
	flag.DurationVar(&timeout, "timeout", 0, "statement timeout (0 uses the configured default)")
	flag.Parse()

	if sqlText == "" {
		fmt.Fprintln(os.Stderr, "error: -sql is required")
		flag.Usage()
		os.Exit(2)
	}

	log, sync, err := logging.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Error(err, "failed to load configuration")
		os.Exit(1)
	}
	if timeout <= 0 {
		timeout = cfg.StatementTimeout
	}

	resolver, err := tenant.LoadStaticResolver(cfg.TenantsFile)
	if err != nil {
		log.Error(err, "failed to load tenants file", "path", cfg.TenantsFile)
		os.Exit(1)
	}

	store, err := keystore.NewS3Store(ctx, keystore.S3Config{
		Bucket:               cfg.KeyBucket,
		Region:               cfg.KeyRegion,
		Prefix:               cfg.KeyPrefix,
		Endpoint:             cfg.KeyEndpoint,
		UsePathStyle:         cfg.KeyUsePathStyle,
		RequireKMSEncryption: cfg.RequireKMSEncryption,
	})
	if err != nil {
		log.Error(err, "failed to initialize key store")
		os.Exit(1)
	}

	qm := metrics.NewQueryMetrics()
	client := warehouse.NewClient(keypair.NewSigner(store), warehouse.Config{
		BaseURL:        cfg.WarehouseBaseURL,
		RequestTimeout: cfg.RequestTimeout,
	}, log).WithMetrics(qm)

	engine := queryengine.NewEngine(client, resolver, queryengine.Config{
		MaxConcurrentTenants: cfg.MaxConcurrentTenants,
		SubmitsPerSecond:     cfg.SubmitsPerSecond,
	}, log).WithMetrics(qm)

	query := warehouse.Query{
		SQL:      sqlText,
		Bindings: parseBindings(bindings),
		Timeout:  timeout,
	}
	scope := tenant.Scope{
		TenantID:       tenantID,
		Admin:          admin,
		TargetTenantID: target,
	}

	outcomes, err := engine.Run(ctx, scope, query)
	if err != nil {
		log.Error(err, "query run failed")
		os.Exit(1)
	}

	results := make(map[string]tenantResult, len(outcomes))
	failures := 0
	for id, outcome := range outcomes {
		result := tenantResult{TenantID: id, Rows: outcome.Rows}
		if outcome.Err != nil {
			result.Error = outcome.Err.Error()
			failures++
		}
		results[id] = result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		log.Error(err, "failed to encode results")
		os.Exit(1)
	}

	if failures > 0 {
		log.Info("completed with tenant failures", "failed", failures, "total", len(outcomes))
		os.Exit(3)
	}
}

// parseBindings splits the -bind flag into positional values.
func parseBindings(s string) []any {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
