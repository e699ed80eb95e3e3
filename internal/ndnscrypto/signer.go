// This file is part of ndns-go, an NDNS implementation in Go.
// Copyright (C) 2026 The ndns-go contributors
//
// ndns-go is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// ndns-go is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later

// Package ndnscrypto provides the key store collaborator spec.md §1
// treats as external: Ed25519 key handling, the Signer/Signable split,
// and certificate modeling. Grounded on the teacher's
// crypto/eddsa.go and crypto/signature.go.
package ndnscrypto

import (
	ged25519 "crypto"
	cryptorand "crypto/rand"
	"crypto/sha512"
	"fmt"

	"github.com/bfix/gospel/crypto/ed25519"

	"github.com/named-data/ndns-go/internal/name"
)

// Error sentinels, following the teacher's package-level var Err... idiom.
var (
	ErrInvalidPrivateKeyData = fmt.Errorf("ndnscrypto: invalid Ed25519 private key data")
	ErrVerificationFailed    = fmt.Errorf("ndnscrypto: signature verification failed")
)

// PublicKey wraps an Ed25519 public key.
type PublicKey struct {
	key ed25519.PublicKey
}

// NewPublicKey wraps the binary representation of a public key.
func NewPublicKey(data []byte) *PublicKey {
	return &PublicKey{key: append(ed25519.PublicKey(nil), data...)}
}

// Bytes returns the binary representation of the public key.
func (pub *PublicKey) Bytes() []byte {
	return []byte(pub.key)
}

// Verify checks a signature over data, pre-hashed with SHA-512 as the
// teacher's EdDSAPublicKey.Verify does.
func (pub *PublicKey) Verify(data, sig []byte) bool {
	h := sha512.Sum512(data)
	return ed25519.Verify(pub.key, h[:], sig)
}

// PrivateKey wraps an Ed25519 private key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// PrivateKeyFromSeed derives a private key from a 32-byte seed.
func PrivateKeyFromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}
}

// GenerateKeypair creates a fresh Ed25519 key pair — used by the
// management operations to mint a KSK, DSK or DKEY (spec.md §3).
func GenerateKeypair() (*PublicKey, *PrivateKey, error) {
	pub, prv, err := ed25519.GenerateKey(cryptorand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return &PublicKey{key: pub}, &PrivateKey{key: prv}, nil
}

// Public returns the public half of a private key.
func (prv *PrivateKey) Public() *PublicKey {
	return &PublicKey{key: append(ed25519.PublicKey(nil), prv.key[ed25519.PublicKeySize:]...)}
}

// Seed returns the 32-byte seed the key was generated from, so
// management code can persist it (e.g. as zone-info) and reconstruct
// the same key later via PrivateKeyFromSeed.
func (prv *PrivateKey) Seed() []byte {
	return append([]byte(nil), prv.key.Seed()...)
}

// Sign produces a signature over data, pre-hashed with SHA-512, matching
// PublicKey.Verify.
func (prv *PrivateKey) Sign(data []byte) ([]byte, error) {
	h := sha512.Sum512(data)
	return prv.key.Sign(cryptorand.Reader, h[:], ged25519.Hash(0))
}

// Signable is anything that can produce the exact byte sequence a
// signature covers — the Data object's SignedPortion, per spec.md §3's
// "signed on-the-wire encoding" invariant.
type Signable interface {
	SignedPortion() []byte
}

// Signer is the key-store collaborator a zone's authoritative server
// and record factory use to produce signatures, modeled (not deeply
// implemented) per spec.md §4.4's "signing goes through a Signer
// interface" — grounded on the teacher's crypto.Signer/Signable split.
type Signer interface {
	// Sign returns the signature over s.SignedPortion() and the name
	// of the key used (the key-locator identity).
	Sign(s Signable) (sig []byte, keyLocator name.Name, err error)
}

// KeySigner is the simplest Signer: a single Ed25519 key bound to a
// fixed key-locator identity (e.g. a zone's current DSK).
type KeySigner struct {
	Key        *PrivateKey
	KeyLocator name.Name
}

// Sign implements Signer.
func (s *KeySigner) Sign(sig Signable) ([]byte, name.Name, error) {
	if s.Key == nil {
		return nil, name.Name{}, ErrInvalidPrivateKeyData
	}
	v, err := s.Key.Sign(sig.SignedPortion())
	if err != nil {
		return nil, name.Name{}, err
	}
	return v, s.KeyLocator, nil
}
