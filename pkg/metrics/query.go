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

// Package metrics provides Prometheus metrics for Frostgate components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Statement execution status label values.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusDenied = "denied"
)

// QueryMetrics holds Prometheus metrics for statement executions.
// Labels are low-cardinality only (status). High-cardinality dimensions
// (tenant_id, statement_handle) belong in logs.
type QueryMetrics struct {
	// StatementsExecuted counts statement executions by status.
	StatementsExecuted *prometheus.CounterVec

	// StatementDuration tracks end-to-end statement execution duration in seconds.
	StatementDuration prometheus.Histogram

	// PartitionsFetched counts result partitions fetched beyond the first.
	PartitionsFetched prometheus.Counter

	// FanoutSize tracks the number of tenants resolved per fan-out invocation.
	FanoutSize prometheus.Histogram
}

// DefaultStatementDurationBuckets are histogram buckets for statement
// execution. Ranges from sub-second metadata queries to long warehouse scans.
var DefaultStatementDurationBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewQueryMetrics creates and registers query metrics using the default registry.
func NewQueryMetrics() *QueryMetrics {
	return NewQueryMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewQueryMetricsWithRegisterer creates query metrics registered against the
// given Prometheus registerer. Use prometheus.NewRegistry() in tests for isolation.
func NewQueryMetricsWithRegisterer(reg prometheus.Registerer) *QueryMetrics {
	factory := promauto.With(reg)
	return &QueryMetrics{
		StatementsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frostgate_statements_executed_total",
			Help: "Total statement executions by status",
		}, []string{"status"}),
		StatementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "frostgate_statement_duration_seconds",
			Help:    "End-to-end statement execution duration in seconds",
			Buckets: DefaultStatementDurationBuckets,
		}),
		PartitionsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "frostgate_partitions_fetched_total",
			Help: "Result partitions fetched beyond the inline first partition",
		}),
		FanoutSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "frostgate_fanout_tenants",
			Help:    "Tenants resolved per fan-out invocation",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}
