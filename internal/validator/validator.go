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

// Package validator enforces the signing hierarchy policy spec.md
// §4.8 describes: a data object is valid only if its signature
// verifies under its key-locator, that key-locator's identity is a
// prefix of the data's owner zone, and the signing certificate is
// itself valid all the way up to a configured trust anchor. Grounded
// on the teacher's crypto/eddsa.go verification shape and, for the
// recursive chain-walk structure, the options/keystore pattern in
// folbricht-routedns's dnssec.Validator.
package validator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bfix/gospel/logger"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/wire"
)

// Error sentinels (spec.md §7's "cryptographic errors").
var (
	ErrMalformedName    = errors.New("validator: data name does not carry an owner zone")
	ErrKeyNotAuthorized = errors.New("validator: key-locator identity is not a prefix of the owner zone")
	ErrSignatureInvalid = errors.New("validator: signature verification failed")
	ErrCertExpired      = errors.New("validator: certificate is outside its validity window")
	ErrUntrustedIssuer  = errors.New("validator: issuer is neither an ancestor-or-same identity nor a trust anchor")
	ErrCertChainBroken  = errors.New("validator: could not retrieve a certificate in the chain")
)

// Fetcher retrieves the certificate for a given key-locator name. The
// certfetch package's Fetcher satisfies this structurally.
type Fetcher interface {
	FetchCert(ctx context.Context, keyName name.Name) (*ndnscrypto.Certificate, error)
}

// Validator walks the certificate chain rooted at a data object's
// key-locator up to a configured trust anchor.
type Validator struct {
	// Anchors maps an identity's string form to its pre-configured
	// trust-anchor certificate (spec.md §4.8: "recursion ends at a
	// pre-configured trust anchor root certificate").
	Anchors map[string]*ndnscrypto.Certificate
	Fetcher Fetcher
	Now     func() time.Time
}

// Option configures a Validator at construction time.
type Option func(*Validator)

// WithNow overrides the validator's notion of the current time, for
// deterministic certificate-expiry tests.
func WithNow(now func() time.Time) Option {
	return func(v *Validator) { v.Now = now }
}

// WithAnchor registers identity as a trust anchor backed by cert.
func WithAnchor(identity name.Name, cert *ndnscrypto.Certificate) Option {
	return func(v *Validator) { v.Anchors[identity.String()] = cert }
}

// New creates a Validator that fetches missing certificates via f.
func New(f Fetcher, opts ...Option) *Validator {
	v := &Validator{Anchors: make(map[string]*ndnscrypto.Certificate), Fetcher: f, Now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate implements server.Validator (and any other context-free
// caller) by running ValidateWithContext against a background
// context — consistent with spec.md §5's single-threaded cooperative
// model, where handlers themselves carry no context of their own.
func (v *Validator) Validate(d *wire.Data) error {
	return v.ValidateWithContext(context.Background(), d)
}

// ValidateWithContext implements the full policy of spec.md §4.8.
func (v *Validator) ValidateWithContext(ctx context.Context, d *wire.Data) error {
	zone, err := name.SplitZone(d.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedName, err)
	}
	identity := ndnscrypto.Identity(d.KeyLocator)
	if !identity.IsPrefixOf(zone) {
		logger.Printf(logger.WARN, "[validator] key %v is not authorized for zone %v", d.KeyLocator, zone)
		return ErrKeyNotAuthorized
	}
	cert, err := v.resolveCert(ctx, d.KeyLocator)
	if err != nil {
		return err
	}
	if !cert.SubjectKey.Verify(d.SignedPortion(), d.SignatureValue) {
		return ErrSignatureInvalid
	}
	return nil
}

// resolveCert returns a verified certificate for keyName, recursing up
// the issuer chain until a trust anchor is reached.
func (v *Validator) resolveCert(ctx context.Context, keyName name.Name) (*ndnscrypto.Certificate, error) {
	identity := ndnscrypto.Identity(keyName)
	if anchor, ok := v.Anchors[identity.String()]; ok {
		return anchor, nil
	}

	cert, err := v.Fetcher.FetchCert(ctx, keyName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertChainBroken, err)
	}
	if !cert.Valid(v.Now()) {
		return nil, ErrCertExpired
	}

	if cert.IssuerKeyLocator.Equal(keyName) {
		// Literally self-signed (issuer key == subject key): only a
		// pre-registered anchor may be self-signed, and that case
		// already returned above without ever calling the fetcher.
		logger.Printf(logger.WARN, "[validator] cert for %v is self-signed and not a configured anchor", keyName)
		return nil, ErrUntrustedIssuer
	}
	issuerIdentity := ndnscrypto.Identity(cert.IssuerKeyLocator)
	if !issuerIdentity.IsPrefixOf(identity) {
		// Same-zone signing (the zone's KSK certifying its own DSK) is
		// a proper prefix-or-equal relationship and passes here; only
		// a non-ancestor issuer — a sibling or unrelated zone — is
		// rejected (spec.md §4.8: "any cross-zone signing by a
		// non-ancestor is rejected").
		logger.Printf(logger.WARN, "[validator] cert for %v issued by non-ancestor %v", identity, issuerIdentity)
		return nil, ErrUntrustedIssuer
	}

	issuerCert, err := v.resolveCert(ctx, cert.IssuerKeyLocator)
	if err != nil {
		return nil, err
	}
	if !issuerCert.SubjectKey.Verify(cert.SignedPortion(), cert.IssuerSignature) {
		return nil, ErrSignatureInvalid
	}
	return cert, nil
}
