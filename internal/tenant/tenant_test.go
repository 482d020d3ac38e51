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
	"errors"
	"os"
	"testing"
)

// MockResolver implements Resolver for testing and records calls.
type MockResolver struct {
	ResolveFunc    func(ctx context.Context, tenantID string) (Credential, error)
	ResolveAllFunc func(ctx context.Context) ([]Credential, error)
	ResolveCalls   int
}

func (m *MockResolver) Resolve(ctx context.Context, tenantID string) (Credential, error) {
	m.ResolveCalls++
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, tenantID)
	}
	return Credential{}, ErrTenantNotFound
}

func (m *MockResolver) ResolveAll(ctx context.Context) ([]Credential, error) {
	if m.ResolveAllFunc != nil {
		return m.ResolveAllFunc(ctx)
	}
	return nil, nil
}

func testCred(id string) Credential {
	return Credential{
		TenantID:      id,
		Account:       "org-" + id,
		User:          "SVC_USER",
		Warehouse:     "COMPUTE_WH",
		KeyReference:  "keys/" + id + ".json",
		KeyPassphrase: "secret",
	}
}

func TestResolveScopeOwnTenant(t *testing.T) {
	r := &MockResolver{
		ResolveFunc: func(_ context.Context, tenantID string) (Credential, error) {
			return testCred(tenantID), nil
		},
	}

	creds, err := ResolveScope(context.Background(), r, Scope{TenantID: "a"})
	if err != nil {
		t.Fatalf("ResolveScope() error: %v", err)
	}
	if len(creds) != 1 || creds[0].TenantID != "a" {
		t.Errorf("creds = %+v, want single credential for tenant a", creds)
	}
}

func TestResolveScopeCrossTenantRejectedBeforeResolution(t *testing.T) {
	r := &MockResolver{}

	_, err := ResolveScope(context.Background(), r, Scope{
		TenantID:       "a",
		TargetTenantID: "b",
	})
	if !errors.Is(err, ErrTenantResolution) {
		t.Fatalf("error = %v, want ErrTenantResolution", err)
	}
	if r.ResolveCalls != 0 {
		t.Errorf("Resolve called %d times, want 0 (rejection must precede resolution)", r.ResolveCalls)
	}
}

func TestResolveScopeOwnTenantExplicitTarget(t *testing.T) {
	r := &MockResolver{
		ResolveFunc: func(_ context.Context, tenantID string) (Credential, error) {
			return testCred(tenantID), nil
		},
	}

	creds, err := ResolveScope(context.Background(), r, Scope{
		TenantID:       "a",
		TargetTenantID: "a",
	})
	if err != nil {
		t.Fatalf("ResolveScope() error: %v", err)
	}
	if len(creds) != 1 || creds[0].TenantID != "a" {
		t.Errorf("creds = %+v, want single credential for tenant a", creds)
	}
}

func TestResolveScopeAdminTargeted(t *testing.T) {
	r := &MockResolver{
		ResolveFunc: func(_ context.Context, tenantID string) (Credential, error) {
			return testCred(tenantID), nil
		},
		ResolveAllFunc: func(context.Context) ([]Credential, error) {
			t.Fatal("ResolveAll must not be called for a targeted admin query")
			return nil, nil
		},
	}

	creds, err := ResolveScope(context.Background(), r, Scope{
		Admin:          true,
		TargetTenantID: "b",
	})
	if err != nil {
		t.Fatalf("ResolveScope() error: %v", err)
	}
	if len(creds) != 1 || creds[0].TenantID != "b" {
		t.Errorf("creds = %+v, want single credential for tenant b", creds)
	}
}

func TestResolveScopeAdminAll(t *testing.T) {
	r := &MockResolver{
		ResolveAllFunc: func(context.Context) ([]Credential, error) {
			return []Credential{testCred("a"), testCred("b"), testCred("c")}, nil
		},
	}

	creds, err := ResolveScope(context.Background(), r, Scope{Admin: true})
	if err != nil {
		t.Fatalf("ResolveScope() error: %v", err)
	}
	if len(creds) != 3 {
		t.Errorf("len(creds) = %d, want 3", len(creds))
	}
}

func TestResolveScopeAdminZeroTenants(t *testing.T) {
	r := &MockResolver{
		ResolveAllFunc: func(context.Context) ([]Credential, error) {
			return nil, nil
		},
	}

	_, err := ResolveScope(context.Background(), r, Scope{Admin: true})
	if !errors.Is(err, ErrTenantResolution) {
		t.Errorf("error = %v, want ErrTenantResolution", err)
	}
}

func TestResolveScopeUnknownTenant(t *testing.T) {
	r := &MockResolver{}

	_, err := ResolveScope(context.Background(), r, Scope{TenantID: "ghost"})
	if !errors.Is(err, ErrTenantResolution) {
		t.Errorf("error = %v, want ErrTenantResolution", err)
	}
}

func TestStaticResolver(t *testing.T) {
	r, err := NewStaticResolver([]Credential{testCred("b"), testCred("a")})
	if err != nil {
		t.Fatalf("NewStaticResolver() error: %v", err)
	}

	cred, err := r.Resolve(context.Background(), "a")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cred.Account != "org-a" {
		t.Errorf("Account = %q, want %q", cred.Account, "org-a")
	}

	if _, err := r.Resolve(context.Background(), "missing"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("Resolve(missing) error = %v, want ErrTenantNotFound", err)
	}

	all, err := r.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("ResolveAll() error: %v", err)
	}
	if len(all) != 2 || all[0].TenantID != "a" || all[1].TenantID != "b" {
		t.Errorf("ResolveAll() = %+v, want [a b] ordered", all)
	}
}

func TestNewStaticResolverDuplicate(t *testing.T) {
	_, err := NewStaticResolver([]Credential{testCred("a"), testCred("a")})
	if err == nil {
		t.Error("NewStaticResolver() accepted duplicate tenant IDs")
	}
}

func TestNewStaticResolverInvalidCredential(t *testing.T) {
	cred := testCred("a")
	cred.Warehouse = ""
	if _, err := NewStaticResolver([]Credential{cred}); err == nil {
		t.Error("NewStaticResolver() accepted credential without warehouse")
	}
}

func TestLoadStaticResolver(t *testing.T) {
	path := t.TempDir() + "/tenants.yaml"
	doc := `tenants:
  - tenantId: acme
    account: org-acme
    user: SVC_ACME
    warehouse: ACME_WH
    keyReference: keys/acme.json
    keyPassphrase: s3cret
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	r, err := LoadStaticResolver(path)
	if err != nil {
		t.Fatalf("LoadStaticResolver() error: %v", err)
	}
	cred, err := r.Resolve(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cred.Warehouse != "ACME_WH" {
		t.Errorf("Warehouse = %q, want %q", cred.Warehouse, "ACME_WH")
	}
}
