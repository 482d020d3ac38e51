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

// Package keystore fetches encrypted per-tenant private key material from a
// secured object store. A missing key is a configuration fault surfaced
// immediately; nothing here retries.
package keystore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Sentinel errors for key material access.
var (
	// ErrKeyNotFound indicates no key object exists for the reference.
	ErrKeyNotFound = errors.New("key material not found")
	// ErrIntegrity indicates the store reported a weaker at-rest encryption
	// mode than required for key material.
	ErrIntegrity = errors.New("key material integrity check failed")
)

// Store provides access to encrypted key material blobs.
type Store interface {
	// Fetch returns the encrypted key blob for the given reference.
	Fetch(ctx context.Context, keyReference string) ([]byte, error)
}

// S3Config contains configuration for the S3 key material store.
type S3Config struct {
	// Bucket is the S3 bucket holding key material.
	Bucket string
	// Region is the AWS region.
	Region string
	// Prefix is the key prefix for all key objects.
	Prefix string
	// Endpoint is an optional custom endpoint (for S3-compatible services like MinIO).
	Endpoint string
	// UsePathStyle forces path-style addressing (required for MinIO).
	UsePathStyle bool
	// AccessKeyID is the AWS access key ID (optional, uses IAM role if not set).
	AccessKeyID string
	// SecretAccessKey is the AWS secret access key (optional, uses IAM role if not set).
	SecretAccessKey string
	// RequireKMSEncryption enforces aws:kms server-side encryption on fetched
	// objects. Enabled by default; disable only against local S3 stand-ins.
	RequireKMSEncryption bool
}

// DefaultS3Config returns a configuration with sensible defaults.
func DefaultS3Config(bucket, region string) S3Config {
	return S3Config{
		Bucket:               bucket,
		Region:               region,
		Prefix:               "tenant-keys",
		RequireKMSEncryption: true,
	}
}

// s3Client defines the S3 operations used by S3Store.
// This interface allows for mocking in tests.
type s3Client interface {
	GetObject(
		ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options),
	) (*s3.GetObjectOutput, error)
}

// S3Store implements Store using Amazon S3 or compatible services.
type S3Store struct {
	client s3Client
	config S3Config
}

// NewS3Store creates a new S3-backed key material store.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("region is required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		config: cfg,
	}, nil
}

// newS3StoreWithClient creates a store with an injected client for testing.
func newS3StoreWithClient(client s3Client, cfg S3Config) *S3Store {
	return &S3Store{client: client, config: cfg}
}

// Fetch retrieves the encrypted key blob for the given reference.
// It fails with ErrKeyNotFound if the object is absent and ErrIntegrity if
// the store reports a server-side encryption mode other than aws:kms.
func (s *S3Store) Fetch(ctx context.Context, keyReference string) ([]byte, error) {
	if keyReference == "" {
		return nil, fmt.Errorf("%w: empty key reference", ErrKeyNotFound)
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.objectKey(keyReference)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, keyReference)
		}
		// Also check for generic not found in error message (some S3-compatible services)
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, keyReference)
		}
		return nil, fmt.Errorf("failed to fetch key material: %w", err)
	}
	defer func() { _ = output.Body.Close() }()

	if s.config.RequireKMSEncryption && output.ServerSideEncryption != types.ServerSideEncryptionAwsKms {
		return nil, fmt.Errorf("%w: object %q reports server-side encryption %q, want %q",
			ErrIntegrity, keyReference, output.ServerSideEncryption, types.ServerSideEncryptionAwsKms)
	}

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read key material: %w", err)
	}
	return data, nil
}

// objectKey returns the S3 key for a key reference.
func (s *S3Store) objectKey(keyReference string) string {
	if s.config.Prefix == "" {
		return keyReference
	}
	return path.Join(s.config.Prefix, keyReference)
}

var _ Store = (*S3Store)(nil)
