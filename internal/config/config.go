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

// Package config provides environment-driven configuration for Frostgate binaries.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds the query runner configuration from environment variables.
type Config struct {
	// TenantsFile is the path to the YAML tenants file for the static resolver.
	TenantsFile string

	// Key store configuration
	KeyBucket            string
	KeyRegion            string
	KeyPrefix            string
	KeyEndpoint          string // optional, for S3-compatible stores
	KeyUsePathStyle      bool
	RequireKMSEncryption bool

	// Warehouse endpoint override (for tests and local stand-ins)
	WarehouseBaseURL string

	// Engine configuration
	MaxConcurrentTenants int
	SubmitsPerSecond     float64
	RequestTimeout       time.Duration
	StatementTimeout     time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		TenantsFile:          getEnvOrDefault("FROSTGATE_TENANTS_FILE", "tenants.yaml"),
		KeyBucket:            os.Getenv("FROSTGATE_KEY_BUCKET"),
		KeyRegion:            getEnvOrDefault("FROSTGATE_KEY_REGION", "us-east-1"),
		KeyPrefix:            getEnvOrDefault("FROSTGATE_KEY_PREFIX", "tenant-keys"),
		KeyEndpoint:          os.Getenv("FROSTGATE_KEY_ENDPOINT"),
		KeyUsePathStyle:      os.Getenv("FROSTGATE_KEY_PATH_STYLE") == "true",
		RequireKMSEncryption: os.Getenv("FROSTGATE_KEY_REQUIRE_KMS") != "false",
		WarehouseBaseURL:     os.Getenv("FROSTGATE_WAREHOUSE_BASE_URL"),
		MaxConcurrentTenants: getIntEnv("FROSTGATE_MAX_CONCURRENT_TENANTS", 8),
		SubmitsPerSecond:     getFloatEnv("FROSTGATE_SUBMITS_PER_SECOND", 20),
		RequestTimeout:       getDurationEnv("FROSTGATE_REQUEST_TIMEOUT", 60*time.Second),
		StatementTimeout:     getDurationEnv("FROSTGATE_STATEMENT_TIMEOUT", 5*time.Minute),
	}

	if cfg.KeyBucket == "" {
		return nil, errors.New("FROSTGATE_KEY_BUCKET is required")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
