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

import "net/http"

// Authentication headers for the SQL REST API.
const (
	headerAuthorization = "Authorization"
	headerTokenType     = "X-Snowflake-Authorization-Token-Type"
	tokenTypeKeyPairJWT = "KEYPAIR_JWT"
)

// bearerTransport attaches the bearer token and key-pair token-type marker
// to every outgoing request. One instance lives for exactly one statement
// execution; the token is never shared across invocations.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(headerAuthorization, "Bearer "+t.token)
	clone.Header.Set(headerTokenType, tokenTypeKeyPairJWT)
	clone.Header.Set("Accept", "application/json")

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
