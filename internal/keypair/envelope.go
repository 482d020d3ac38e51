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

package keypair

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Envelope format parameters. Changing any of these requires a version bump
// and re-sealing every stored key.
const (
	envelopeVersion = 1
	kdfIterations   = 120_000
	kdfKeyLen       = 32
	saltLen         = 16
)

// envelope is the at-rest JSON form of an encrypted private key:
// AES-256-GCM ciphertext of the PKCS#8 DER, DEK derived from the tenant
// passphrase via PBKDF2-SHA256.
type envelope struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// deriveDEK derives the data encryption key from a passphrase and salt.
func deriveDEK(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, kdfKeyLen, sha256.New)
}

// SealKey encrypts private key DER bytes under a passphrase, producing the
// envelope JSON stored in the key material store. Used by provisioning
// tooling and tests; the query path only opens envelopes.
func SealKey(keyDER []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	dek := deriveDEK(passphrase, salt)
	defer zeroBytes(dek)

	block, err := aes.NewCipher(dek)
	if err != nil {
		return nil, fmt.Errorf("AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("GCM creation failed: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	env := envelope{
		Version:    envelopeVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, keyDER, nil),
	}
	envBytes, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return envBytes, nil
}

// openEnvelope decrypts an envelope with the passphrase and returns the
// private key DER bytes. A wrong passphrase fails GCM authentication and
// surfaces as ErrKeyDecryption. The caller owns zeroing the returned bytes.
func openEnvelope(data []byte, passphrase string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: invalid envelope: %v", ErrKeyDecryption, err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported envelope version: %d", ErrKeyDecryption, env.Version)
	}

	dek := deriveDEK(passphrase, env.Salt)
	defer zeroBytes(dek)

	block, err := aes.NewCipher(dek)
	if err != nil {
		return nil, fmt.Errorf("%w: AES cipher creation failed: %v", ErrKeyDecryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: GCM creation failed: %v", ErrKeyDecryption, err)
	}

	// gcm.Open panics on a wrong-length nonce, so a truncated or corrupted
	// blob must be rejected before it reaches the cipher.
	if len(env.Nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: invalid envelope: nonce length %d", ErrKeyDecryption, len(env.Nonce))
	}
	if len(env.Ciphertext) == 0 {
		return nil, fmt.Errorf("%w: invalid envelope: empty ciphertext", ErrKeyDecryption)
	}

	keyDER, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: AES-GCM decryption failed: %v", ErrKeyDecryption, err)
	}
	return keyDER, nil
}

// zeroBytes overwrites sensitive byte slices in place.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
