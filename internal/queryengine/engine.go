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

// Package queryengine fans a single logical query out across tenant
// warehouses. Each tenant execution is causally independent: one tenant's
// authentication or statement failure never aborts its siblings, and the
// caller always receives one outcome per resolved tenant.
package queryengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/altairalabs/frostgate/internal/tenant"
	"github.com/altairalabs/frostgate/internal/warehouse"
	"github.com/altairalabs/frostgate/pkg/logctx"
	"github.com/altairalabs/frostgate/pkg/metrics"
)

// Default engine limits.
const (
	DefaultMaxConcurrentTenants = 8
	DefaultSubmitsPerSecond     = 20
)

// Executor runs one statement for one tenant. Satisfied by *warehouse.Client.
type Executor interface {
	Execute(ctx context.Context, cred tenant.Credential, q warehouse.Query) ([]warehouse.Row, error)
}

// Outcome is the result of one tenant's execution in a fan-out.
// Exactly one of Rows or Err is meaningful.
type Outcome struct {
	TenantID string
	Rows     []warehouse.Row
	Err      error
}

// Config contains engine limits.
type Config struct {
	// MaxConcurrentTenants bounds concurrent tenant executions.
	// Defaults to DefaultMaxConcurrentTenants.
	MaxConcurrentTenants int
	// SubmitsPerSecond rate-limits statement submissions across the fan-out.
	// Defaults to DefaultSubmitsPerSecond; negative disables the limiter.
	SubmitsPerSecond float64
}

// Engine is the top-level entry point for query execution.
type Engine struct {
	exec     Executor
	resolver tenant.Resolver
	config   Config
	limiter  *rate.Limiter
	log      logr.Logger
	metrics  *metrics.QueryMetrics
}

// NewEngine creates a fan-out engine.
func NewEngine(exec Executor, resolver tenant.Resolver, cfg Config, log logr.Logger) *Engine {
	if cfg.MaxConcurrentTenants <= 0 {
		cfg.MaxConcurrentTenants = DefaultMaxConcurrentTenants
	}
	if cfg.SubmitsPerSecond == 0 {
		cfg.SubmitsPerSecond = DefaultSubmitsPerSecond
	}

	var limiter *rate.Limiter
	if cfg.SubmitsPerSecond > 0 {
		// Fractional rates truncate to burst 0, which would starve every
		// Wait call forever.
		burst := int(cfg.SubmitsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.SubmitsPerSecond), burst)
	}

	return &Engine{
		exec:     exec,
		resolver: resolver,
		config:   cfg,
		limiter:  limiter,
		log:      log,
	}
}

// WithMetrics attaches query metrics to the engine.
func (e *Engine) WithMetrics(m *metrics.QueryMetrics) *Engine {
	e.metrics = m
	return e
}

// Run resolves the tenants the scope authorizes and executes the query
// concurrently against each of them under the configured pool bound.
// The returned map holds one write-once Outcome per resolved tenant.
// Run itself fails only when tenant resolution fails; every downstream
// failure is tenant-scoped inside that tenant's Outcome.
func (e *Engine) Run(
	ctx context.Context, scope tenant.Scope, q warehouse.Query,
) (map[string]Outcome, error) {
	ctx = logctx.WithRequestID(ctx, uuid.NewString())
	log := logctx.FromContext(ctx, e.log)

	creds, err := tenant.ResolveScope(ctx, e.resolver, scope)
	if err != nil {
		if e.metrics != nil && errors.Is(err, tenant.ErrTenantResolution) {
			e.metrics.StatementsExecuted.WithLabelValues(metrics.StatusDenied).Inc()
		}
		return nil, err
	}
	log.V(1).Info("resolved fan-out tenants", "count", len(creds))
	if e.metrics != nil {
		e.metrics.FanoutSize.Observe(float64(len(creds)))
	}

	outcomes := make(map[string]Outcome, len(creds))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.config.MaxConcurrentTenants)

	for _, cred := range creds {
		cred := cred
		// Acquiring before spawn keeps the goroutine count bounded and
		// applies backpressure to the spawn loop for large tenant sets.
		sem <- struct{}{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := e.runTenant(ctx, cred, q)

			mu.Lock()
			outcomes[cred.TenantID] = outcome
			mu.Unlock()
		}()
	}
	wg.Wait()

	return outcomes, nil
}

// runTenant executes the query for one tenant and captures its outcome.
func (e *Engine) runTenant(ctx context.Context, cred tenant.Credential, q warehouse.Query) Outcome {
	ctx = logctx.WithTenantID(ctx, cred.TenantID)
	log := logctx.FromContext(ctx, e.log)
	start := time.Now()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			err = fmt.Errorf("acquire submit rate token: %w", err)
			e.observe(metrics.StatusError, start)
			return Outcome{TenantID: cred.TenantID, Err: err}
		}
	}

	rows, err := e.exec.Execute(ctx, cred, q)
	if err != nil {
		log.Error(err, "tenant query failed")
		e.observe(metrics.StatusError, start)
		return Outcome{TenantID: cred.TenantID, Err: err}
	}

	log.V(1).Info("tenant query succeeded", "rows", len(rows), "duration", time.Since(start))
	e.observe(metrics.StatusOK, start)
	return Outcome{TenantID: cred.TenantID, Rows: rows}
}

func (e *Engine) observe(status string, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.StatementsExecuted.WithLabelValues(status).Inc()
	e.metrics.StatementDuration.Observe(time.Since(start).Seconds())
}
