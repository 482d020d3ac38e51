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

package warehouse

import (
	"fmt"
	"strconv"
	"time"
)

// Query is one SQL statement with bound parameters, shared read-only across
// every tenant execution in a fan-out.
type Query struct {
	// SQL is the statement text with positional "?" placeholders.
	SQL string
	// Bindings are the positional parameter values, in placeholder order.
	Bindings []any
	// Timeout is the statement timeout passed to the warehouse. Zero means
	// the warehouse default applies.
	Timeout time.Duration
}

// Column describes one result column as reported by the warehouse.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// bindingValue is the wire form of one bound parameter.
type bindingValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// submitRequest is the body of POST /api/v2/statements.
type submitRequest struct {
	Statement string                  `json:"statement"`
	Bindings  map[string]bindingValue `json:"bindings,omitempty"`
	Warehouse string                  `json:"warehouse"`
	Timeout   int64                   `json:"timeout,omitempty"`
}

// wireBindings re-indexes positional bindings to the API's 1-based string
// keys. All values are submitted as TEXT; the warehouse coerces them against
// the statement's placeholder types.
func wireBindings(bindings []any) map[string]bindingValue {
	if len(bindings) == 0 {
		return nil
	}
	out := make(map[string]bindingValue, len(bindings))
	for i, v := range bindings {
		out[strconv.Itoa(i+1)] = bindingValue{Type: "TEXT", Value: fmt.Sprint(v)}
	}
	return out
}

// partitionInfo describes one result partition.
type partitionInfo struct {
	RowCount int64 `json:"rowCount"`
}

// resultSetMetaData is the schema and partition metadata returned with the
// first partition.
type resultSetMetaData struct {
	RowType         []Column        `json:"rowType"`
	PartitionInfo   []partitionInfo `json:"partitionInfo"`
	StatementHandle string          `json:"statementHandle,omitempty"`
}

// statementResponse is the body of a submit or partition fetch response.
// Error responses reuse the same shape with code/message/sqlState set.
type statementResponse struct {
	Data              [][]*string       `json:"data"`
	ResultSetMetaData resultSetMetaData `json:"resultSetMetaData"`
	StatementHandle   string            `json:"statementHandle,omitempty"`
	Code              string            `json:"code,omitempty"`
	Message           string            `json:"message,omitempty"`
	SQLState          string            `json:"sqlState,omitempty"`
}

// handle returns the statement handle, wherever the warehouse reported it.
func (r *statementResponse) handle() string {
	if r.ResultSetMetaData.StatementHandle != "" {
		return r.ResultSetMetaData.StatementHandle
	}
	return r.StatementHandle
}
