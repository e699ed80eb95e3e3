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

// Package certfetch retrieves the certificates the validator needs
// (spec.md §4.7), grounded on the original source's
// daemon/cert-fetcher.{hpp,cpp}: a "plain" path that uses a forwarding
// hint discovered by an NS resolution, and an "app cert" path that
// runs the full iterative controller and recursively validates along
// the way.
package certfetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/named-data/ndns-go/internal/face"
	"github.com/named-data/ndns-go/internal/factory"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/query"
	"github.com/named-data/ndns-go/internal/wire"
)

// ErrCannotRetrieveCert is reported whenever resolution fails, the
// authoritative answer is a NACK, or the payload does not parse as a
// certificate (spec.md §4.7).
var ErrCannotRetrieveCert = errors.New("certfetch: cannot retrieve certificate")

var (
	nsComponent      = name.NewComponent("NS")
	certComponent    = name.NewComponent("CERT")
	appCertComponent = name.NewComponent("APPCERT")
)

// Validator is the subset of validation policy needed to recursively
// check an app-certificate response before de-encapsulating it.
type Validator interface {
	ValidateWithContext(ctx context.Context, d *wire.Data) error
}

// Fetcher retrieves certificates by key name, using the supplied
// face and cache. It is reentrant: FetchAppCert uses the same
// mechanics as any other iterative query.
type Fetcher struct {
	Face     face.Face
	Cache    query.ResultCache
	Lifetime time.Duration
	Retries  int
}

// New creates a Fetcher. Lifetime defaults to 2 seconds and Retries to
// 0 (no automatic retry — spec.md §4.7 leaves delay/retry policy to
// the caller) when left zero-valued. cache may be any query.ResultCache
// (the in-memory query.Cache or a shared query.RedisCache).
func New(f face.Face, cache query.ResultCache, lifetime time.Duration, retries int) *Fetcher {
	if lifetime <= 0 {
		lifetime = 2 * time.Second
	}
	return &Fetcher{Face: f, Cache: cache, Lifetime: lifetime, Retries: retries}
}

// FetchCert implements validator.Fetcher: it always uses the plain
// path, since that is the one the validator's cert-chain walk needs
// (one CERT per signing key in the chain, not an application-layer
// APPCERT).
func (f *Fetcher) FetchCert(ctx context.Context, keyName name.Name) (*ndnscrypto.Certificate, error) {
	return f.FetchPlainCert(ctx, keyName)
}

// FetchPlainCert resolves the NS record for keyName's owning identity
// to obtain a forwarding hint, then issues a direct interest for the
// certificate under ".../CERT" using that hint (spec.md §4.7, first
// bullet).
func (f *Fetcher) FetchPlainCert(ctx context.Context, keyName name.Name) (*ndnscrypto.Certificate, error) {
	return f.attempt(ctx, func() (*ndnscrypto.Certificate, error) {
		return f.fetchPlainOnce(ctx, keyName)
	})
}

func (f *Fetcher) fetchPlainOnce(ctx context.Context, keyName name.Name) (*ndnscrypto.Certificate, error) {
	identity := ndnscrypto.Identity(keyName)
	nsCtl := query.New(identity, nsComponent, f.Lifetime, 0, f.Face, f.Cache)
	res, err := nsCtl.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve NS for %v: %v", ErrCannotRetrieveCert, identity, err)
	}
	// The terminal LINK response (the one that named identity as a
	// delegation target) is exactly the forwarding hint needed to
	// reach identity's zone directly; a terminal NACK means identity
	// carries no further delegation record, and the direct interest
	// below is still attempted without a hint.
	var hint []name.Name
	if res.Response.ContentType == wire.LINK {
		if delegations, derr := factory.DecodeDelegations(res.Response.SubRecords); derr == nil {
			for _, d := range delegations {
				hint = append(hint, d.Name)
			}
		}
	}

	suffix := keyName.SubName(identity.Size(), -1)
	interestName := identity.Append(name.CertQueryMarker)
	for i := 0; i < suffix.Size(); i++ {
		interestName = interestName.Append(suffix.At(i))
	}
	interestName = interestName.Append(certComponent)

	data, err := f.Face.Express(ctx, face.Interest{Name: interestName, Lifetime: f.Lifetime, ForwardingHints: hint})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotRetrieveCert, err)
	}
	return decodeCertData(data)
}

// FetchAppCert runs the full iterative controller for (keyName,
// APPCERT), recursively validates the returned Data using v, then
// de-encapsulates the embedded certificate (spec.md §4.7, second
// bullet).
func (f *Fetcher) FetchAppCert(ctx context.Context, keyName name.Name, v Validator) (*ndnscrypto.Certificate, error) {
	return f.attempt(ctx, func() (*ndnscrypto.Certificate, error) {
		ctl := query.New(keyName, appCertComponent, f.Lifetime, 0, f.Face, f.Cache)
		res, err := ctl.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCannotRetrieveCert, err)
		}
		if res.Data.ContentType == wire.NACK {
			return nil, ErrCannotRetrieveCert
		}
		if v != nil {
			if err := v.ValidateWithContext(ctx, res.Data); err != nil {
				return nil, fmt.Errorf("%w: validate: %v", ErrCannotRetrieveCert, err)
			}
		}
		return decodeCertData(res.Data)
	})
}

func decodeCertData(d *wire.Data) (*ndnscrypto.Certificate, error) {
	if d.ContentType == wire.NACK {
		return nil, ErrCannotRetrieveCert
	}
	appContent, _, err := wire.DecodeContent(d.ContentType, d.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: decode content: %v", ErrCannotRetrieveCert, err)
	}
	cert, err := ndnscrypto.DecodeCertificate(appContent)
	if err != nil {
		return nil, fmt.Errorf("%w: parse certificate: %v", ErrCannotRetrieveCert, err)
	}
	return cert, nil
}

// attempt runs fn up to f.Retries+1 times, per spec.md §4.7's
// "Retries follow the certificate request's retry counter" — delays
// between attempts are left to the caller, so attempt issues no
// backoff of its own.
func (f *Fetcher) attempt(ctx context.Context, fn func() (*ndnscrypto.Certificate, error)) (*ndnscrypto.Certificate, error) {
	var lastErr error
	for try := 0; try <= f.Retries; try++ {
		cert, err := fn()
		if err == nil {
			return cert, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}
