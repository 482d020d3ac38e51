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

// Package keypair mints short-lived key-pair JWTs for Snowflake from
// per-tenant encrypted private keys. Key material is acquired at the start
// of one statement execution and zeroed on every exit path; nothing is
// cached across tenants or across calls.
package keypair

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/altairalabs/frostgate/internal/keystore"
	"github.com/altairalabs/frostgate/internal/tenant"
)

// DefaultTokenTTL is the validity window of a minted token.
const DefaultTokenTTL = time.Hour

// Sentinel errors for token minting.
var (
	// ErrKeyDecryption indicates the passphrase did not decrypt the key envelope.
	ErrKeyDecryption = errors.New("key decryption failed")
	// ErrAuthentication wraps every minting failure for callers.
	ErrAuthentication = errors.New("authentication failed")
)

// Token is a minted key-pair JWT scoped to one statement execution.
type Token struct {
	// Raw is the signed compact JWT.
	Raw string
	// Fingerprint is the public key fingerprint embedded in the issuer claim.
	Fingerprint string
	// ExpiresAt is the token expiry.
	ExpiresAt time.Time
}

// Signer mints key-pair JWTs from encrypted key material.
type Signer struct {
	store keystore.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewSigner creates a Signer backed by the given key material store.
func NewSigner(store keystore.Store) *Signer {
	return &Signer{
		store: store,
		ttl:   DefaultTokenTTL,
		now:   time.Now,
	}
}

// Mint fetches and decrypts the tenant's private key, derives the public key
// fingerprint, and signs a fresh RS256 token. Every failure is wrapped in
// ErrAuthentication; the inner sentinel remains matchable via errors.Is.
func (s *Signer) Mint(ctx context.Context, cred tenant.Credential) (*Token, error) {
	blob, err := s.store.Fetch(ctx, cred.KeyReference)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	keyDER, err := openEnvelope(blob, cred.KeyPassphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	defer zeroBytes(keyDER)

	key, err := parseRSAPrivateKey(keyDER)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	fingerprint, err := Fingerprint(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	qualifiedUser := fmt.Sprintf("%s.%s",
		strings.ToUpper(cred.Account), strings.ToUpper(cred.User))
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    qualifiedUser + "." + fingerprint,
		Subject:   qualifiedUser,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("%w: token signing failed: %v", ErrAuthentication, err)
	}

	return &Token{
		Raw:         raw,
		Fingerprint: fingerprint,
		ExpiresAt:   expiresAt,
	}, nil
}

// Fingerprint computes the Snowflake public key fingerprint:
// "SHA256:" + base64(sha256(PKIX DER of the public key)).
// Deterministic for a given key.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to encode public key: %w", err)
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}

// parseRSAPrivateKey parses PKCS#8 or PKCS#1 DER into an RSA private key.
func parseRSAPrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("unsupported private key type %T", key)
		}
		return rsaKey, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}
