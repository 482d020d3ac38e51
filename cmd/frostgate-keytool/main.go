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

// frostgate-keytool seals a tenant's PEM private key into the encrypted
// envelope format stored in the key material store, and prints the public
// key fingerprint to register with Snowflake.
package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/altairalabs/frostgate/internal/keypair"
)

func main() {
	var (
		keyPath    string
		outPath    string
		passphrase string
	)
	flag.StringVar(&keyPath, "key", "", "path to the PEM-encoded RSA private key (required)")
	flag.StringVar(&outPath, "out", "", "output path for the sealed envelope (default: stdout)")
	flag.StringVar(&passphrase, "passphrase", "", "envelope passphrase (required)")
	flag.Parse()

	if keyPath == "" || passphrase == "" {
		fmt.Fprintln(os.Stderr, "error: -key and -passphrase are required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(keyPath, outPath, passphrase); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(keyPath, outPath, passphrase string) error {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}

	der, pub, err := decodeKey(pemBytes)
	if err != nil {
		return err
	}

	blob, err := keypair.SealKey(der, passphrase)
	if err != nil {
		return fmt.Errorf("seal key: %w", err)
	}

	if outPath == "" {
		if _, err := os.Stdout.Write(append(blob, '\n')); err != nil {
			return err
		}
	} else if err := os.WriteFile(outPath, blob, 0o600); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}

	fingerprint, err := keypair.Fingerprint(pub)
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	fmt.Fprintf(os.Stderr, "public key fingerprint: %s\n", fingerprint)
	return nil
}

// decodeKey parses a PEM private key and returns its PKCS#8 DER encoding
// and public half.
func decodeKey(pemBytes []byte) ([]byte, *rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, nil, errors.New("no PEM block found")
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, nil, fmt.Errorf("parse PKCS#8 key: %w", err)
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, nil, fmt.Errorf("unsupported private key type %T", parsed)
		}
		key = rsaKey
	case "RSA PRIVATE KEY":
		parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, nil, fmt.Errorf("parse PKCS#1 key: %w", err)
		}
		key = parsed
	default:
		return nil, nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("encode PKCS#8 key: %w", err)
	}
	return der, &key.PublicKey, nil
}
