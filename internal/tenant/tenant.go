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

// Package tenant defines per-tenant warehouse credentials and the resolution
// policy that maps an authorization scope to the set of tenants a query
// executes against.
package tenant

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for tenant resolution.
var (
	// ErrTenantNotFound indicates no credential exists for the requested tenant.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantResolution indicates the authorization scope could not be
	// resolved to at least one tenant credential.
	ErrTenantResolution = errors.New("tenant resolution failed")
)

// Credential holds one tenant's warehouse connection identity.
// Immutable once resolved for a query; never persisted by this package.
type Credential struct {
	// TenantID is the platform-internal tenant identifier.
	TenantID string `yaml:"tenantId"`
	// Account is the Snowflake account identifier (e.g. "org-account").
	Account string `yaml:"account"`
	// User is the Snowflake username the key pair is registered for.
	User string `yaml:"user"`
	// Warehouse is the compute warehouse statements run on.
	Warehouse string `yaml:"warehouse"`
	// KeyReference locates the tenant's encrypted private key in the key store.
	KeyReference string `yaml:"keyReference"`
	// KeyPassphrase decrypts the stored private key envelope.
	KeyPassphrase string `yaml:"keyPassphrase"`
}

// Validate checks that all required credential fields are set.
func (c *Credential) Validate() error {
	if c.TenantID == "" {
		return errors.New("tenant: tenantId is required")
	}
	if c.Account == "" {
		return errors.New("tenant: account is required")
	}
	if c.User == "" {
		return errors.New("tenant: user is required")
	}
	if c.Warehouse == "" {
		return errors.New("tenant: warehouse is required")
	}
	if c.KeyReference == "" {
		return errors.New("tenant: keyReference is required")
	}
	return nil
}

// Scope describes the caller's authorization for one fan-out invocation.
type Scope struct {
	// TenantID is the caller's own tenant. Empty for system-admin callers.
	TenantID string
	// Admin marks a system-admin caller.
	Admin bool
	// TargetTenantID optionally narrows the invocation to one tenant.
	TargetTenantID string
}

// Resolver resolves tenant credentials. Implemented by the external profile
// store; this package only consumes the contract.
type Resolver interface {
	// Resolve returns the credential for one tenant, or ErrTenantNotFound.
	Resolve(ctx context.Context, tenantID string) (Credential, error)
	// ResolveAll returns credentials for every known tenant.
	ResolveAll(ctx context.Context) ([]Credential, error)
}

// ResolveScope applies the resolution policy and returns the credentials the
// query executes against. It never performs warehouse or key store I/O, so an
// unauthorized caller is rejected before any network call.
//
// Policy:
//   - Non-admin callers resolve exactly their own tenant. A target naming a
//     different tenant is rejected.
//   - Admin callers with an explicit target resolve exactly that tenant.
//   - Admin callers without a target resolve all known tenants.
func ResolveScope(ctx context.Context, r Resolver, scope Scope) ([]Credential, error) {
	if !scope.Admin {
		if scope.TenantID == "" {
			return nil, fmt.Errorf("%w: caller has no tenant", ErrTenantResolution)
		}
		if scope.TargetTenantID != "" && scope.TargetTenantID != scope.TenantID {
			return nil, fmt.Errorf("%w: tenant %q may not query tenant %q",
				ErrTenantResolution, scope.TenantID, scope.TargetTenantID)
		}
		return resolveOne(ctx, r, scope.TenantID)
	}

	if scope.TargetTenantID != "" {
		return resolveOne(ctx, r, scope.TargetTenantID)
	}

	creds, err := r.ResolveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTenantResolution, err)
	}
	if len(creds) == 0 {
		return nil, fmt.Errorf("%w: no tenants configured", ErrTenantResolution)
	}
	return creds, nil
}

func resolveOne(ctx context.Context, r Resolver, tenantID string) ([]Credential, error) {
	cred, err := r.Resolve(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: tenant %q: %v", ErrTenantResolution, tenantID, err)
	}
	return []Credential{cred}, nil
}
