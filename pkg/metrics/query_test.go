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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQueryMetricsWithRegisterer(reg)

	require.NotNil(t, m.StatementsExecuted)
	require.NotNil(t, m.StatementDuration)
	require.NotNil(t, m.PartitionsFetched)
	require.NotNil(t, m.FanoutSize)

	m.StatementsExecuted.WithLabelValues(StatusOK).Inc()
	m.StatementsExecuted.WithLabelValues(StatusError).Add(2)
	m.PartitionsFetched.Add(3)
	m.StatementDuration.Observe(0.42)
	m.FanoutSize.Observe(7)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.StatementsExecuted.WithLabelValues(StatusOK)))
	assert.Equal(t, float64(2),
		testutil.ToFloat64(m.StatementsExecuted.WithLabelValues(StatusError)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.PartitionsFetched))
}

func TestQueryMetricsIsolatedRegistries(t *testing.T) {
	// Two registries must not collide on metric names.
	m1 := NewQueryMetricsWithRegisterer(prometheus.NewRegistry())
	m2 := NewQueryMetricsWithRegisterer(prometheus.NewRegistry())

	m1.StatementsExecuted.WithLabelValues(StatusOK).Inc()
	assert.Equal(t, float64(0),
		testutil.ToFloat64(m2.StatementsExecuted.WithLabelValues(StatusOK)))
}
