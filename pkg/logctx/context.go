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

// Package logctx provides context-based logging field propagation.
// It allows storing and extracting common logging fields from context.Context,
// enabling consistent logging across query engine components.
package logctx

import (
	"context"

	"github.com/go-logr/logr"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys for common logging fields.
// These keys are used to store values in context.Context that will be
// automatically extracted and added to log entries.
const (
	// ContextKeyTenantID identifies the tenant a query executes for.
	ContextKeyTenantID contextKey = "tenant_id"

	// ContextKeyAccount identifies the Snowflake account.
	ContextKeyAccount contextKey = "account"

	// ContextKeyWarehouse identifies the compute warehouse.
	ContextKeyWarehouse contextKey = "warehouse"

	// ContextKeyStatementHandle identifies a submitted statement.
	ContextKeyStatementHandle contextKey = "statement_handle"

	// ContextKeyRequestID identifies one fan-out invocation.
	ContextKeyRequestID contextKey = "request_id"
)

// allContextKeys lists all context keys that should be extracted for logging.
var allContextKeys = []contextKey{
	ContextKeyTenantID,
	ContextKeyAccount,
	ContextKeyWarehouse,
	ContextKeyStatementHandle,
	ContextKeyRequestID,
}

// WithTenantID returns a new context with the tenant ID set.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ContextKeyTenantID, tenantID)
}

// WithAccount returns a new context with the Snowflake account set.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, ContextKeyAccount, account)
}

// WithWarehouse returns a new context with the warehouse name set.
func WithWarehouse(ctx context.Context, warehouse string) context.Context {
	return context.WithValue(ctx, ContextKeyWarehouse, warehouse)
}

// WithStatementHandle returns a new context with the statement handle set.
func WithStatementHandle(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, ContextKeyStatementHandle, handle)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// TenantID extracts the tenant ID from the context, or "" if unset.
func TenantID(ctx context.Context) string {
	return valueOf(ctx, ContextKeyTenantID)
}

// RequestID extracts the request ID from the context, or "" if unset.
func RequestID(ctx context.Context) string {
	return valueOf(ctx, ContextKeyRequestID)
}

// FromContext returns a logger decorated with every logging field present
// in the context. Fields that are unset are omitted.
func FromContext(ctx context.Context, log logr.Logger) logr.Logger {
	for _, key := range allContextKeys {
		if v := valueOf(ctx, key); v != "" {
			log = log.WithValues(string(key), v)
		}
	}
	return log
}

// valueOf extracts a string value for the given key, or "" if absent.
func valueOf(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
