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

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FROSTGATE_KEY_BUCKET", "key-bucket")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.TenantsFile != "tenants.yaml" {
		t.Errorf("TenantsFile = %q, want %q", cfg.TenantsFile, "tenants.yaml")
	}
	if cfg.KeyRegion != "us-east-1" {
		t.Errorf("KeyRegion = %q, want %q", cfg.KeyRegion, "us-east-1")
	}
	if cfg.KeyPrefix != "tenant-keys" {
		t.Errorf("KeyPrefix = %q, want %q", cfg.KeyPrefix, "tenant-keys")
	}
	if !cfg.RequireKMSEncryption {
		t.Error("RequireKMSEncryption = false, want true by default")
	}
	if cfg.MaxConcurrentTenants != 8 {
		t.Errorf("MaxConcurrentTenants = %d, want 8", cfg.MaxConcurrentTenants)
	}
	if cfg.SubmitsPerSecond != 20 {
		t.Errorf("SubmitsPerSecond = %v, want 20", cfg.SubmitsPerSecond)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.RequestTimeout)
	}
	if cfg.StatementTimeout != 5*time.Minute {
		t.Errorf("StatementTimeout = %v, want 5m", cfg.StatementTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FROSTGATE_KEY_BUCKET", "b")
	t.Setenv("FROSTGATE_KEY_REQUIRE_KMS", "false")
	t.Setenv("FROSTGATE_KEY_PATH_STYLE", "true")
	t.Setenv("FROSTGATE_MAX_CONCURRENT_TENANTS", "32")
	t.Setenv("FROSTGATE_SUBMITS_PER_SECOND", "2.5")
	t.Setenv("FROSTGATE_REQUEST_TIMEOUT", "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.RequireKMSEncryption {
		t.Error("RequireKMSEncryption = true, want false")
	}
	if !cfg.KeyUsePathStyle {
		t.Error("KeyUsePathStyle = false, want true")
	}
	if cfg.MaxConcurrentTenants != 32 {
		t.Errorf("MaxConcurrentTenants = %d, want 32", cfg.MaxConcurrentTenants)
	}
	if cfg.SubmitsPerSecond != 2.5 {
		t.Errorf("SubmitsPerSecond = %v, want 2.5", cfg.SubmitsPerSecond)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", cfg.RequestTimeout)
	}
}

func TestLoadMissingBucket(t *testing.T) {
	t.Setenv("FROSTGATE_KEY_BUCKET", "")

	if _, err := Load(); err == nil {
		t.Error("Load() accepted missing key bucket")
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("FROSTGATE_KEY_BUCKET", "b")
	t.Setenv("FROSTGATE_MAX_CONCURRENT_TENANTS", "not-a-number")
	t.Setenv("FROSTGATE_REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MaxConcurrentTenants != 8 {
		t.Errorf("MaxConcurrentTenants = %d, want default 8", cfg.MaxConcurrentTenants)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want default 60s", cfg.RequestTimeout)
	}
}
