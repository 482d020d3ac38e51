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

package tenant

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// StaticResolver is a read-only Resolver backed by an in-memory credential
// set, typically loaded from a tenants file. It is the resolver used by the
// CLI binary; production deployments plug in the profile store instead.
type StaticResolver struct {
	creds map[string]Credential
}

// NewStaticResolver builds a resolver from the given credentials.
// Duplicate tenant IDs are rejected.
func NewStaticResolver(creds []Credential) (*StaticResolver, error) {
	m := make(map[string]Credential, len(creds))
	for i := range creds {
		if err := creds[i].Validate(); err != nil {
			return nil, err
		}
		if _, dup := m[creds[i].TenantID]; dup {
			return nil, fmt.Errorf("tenant: duplicate tenant %q", creds[i].TenantID)
		}
		m[creds[i].TenantID] = creds[i]
	}
	return &StaticResolver{creds: m}, nil
}

// LoadStaticResolver reads a YAML tenants file and builds a StaticResolver.
// The file has a single top-level "tenants" list of credential entries.
func LoadStaticResolver(path string) (*StaticResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tenant: read tenants file: %w", err)
	}

	var doc struct {
		Tenants []Credential `yaml:"tenants"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("tenant: parse tenants file: %w", err)
	}
	return NewStaticResolver(doc.Tenants)
}

// Resolve returns the credential for one tenant.
func (r *StaticResolver) Resolve(_ context.Context, tenantID string) (Credential, error) {
	cred, ok := r.creds[tenantID]
	if !ok {
		return Credential{}, fmt.Errorf("%w: %q", ErrTenantNotFound, tenantID)
	}
	return cred, nil
}

// ResolveAll returns every known credential, ordered by tenant ID.
func (r *StaticResolver) ResolveAll(_ context.Context) ([]Credential, error) {
	out := make([]Credential, 0, len(r.creds))
	for _, cred := range r.creds {
		out = append(out, cred)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

var _ Resolver = (*StaticResolver)(nil)
