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

import "errors"

// Sentinel errors for statement execution and result handling.
var (
	// ErrStatementExecution indicates the warehouse rejected a statement
	// submission, or the submission failed at the network level.
	ErrStatementExecution = errors.New("statement execution failed")
	// ErrPartitionFetch indicates a result partition fetch failed after a
	// successful submission. Fatal for that statement; never retried.
	ErrPartitionFetch = errors.New("partition fetch failed")
	// ErrTypeCoercion indicates a wire value could not be coerced to its
	// declared column type.
	ErrTypeCoercion = errors.New("type coercion failed")
)
