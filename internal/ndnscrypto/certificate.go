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

package ndnscrypto

import (
	"bytes"
	"fmt"
	"time"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/wire"
)

// Certificate is the self-contained signed blob spec.md §3 describes:
// no X.509, following the original source's minimal NDN certificate
// helper rather than a standard certificate format.
type Certificate struct {
	SubjectKeyName name.Name // identity/KEY/key-id/cert-version
	SubjectKey     *PublicKey
	NotBefore      time.Time
	NotAfter       time.Time

	IssuerKeyLocator name.Name // identity of the signing key (KSK or parent DSK)
	IssuerSignature  []byte
}

// signedPortion is everything the issuer's signature covers.
func (c *Certificate) signedPortion() []byte {
	var buf bytes.Buffer
	wire.WriteBlock(&buf, wire.TagCertSubjectKeyName, wire.EncodeNameInner(c.SubjectKeyName))
	wire.WriteBlock(&buf, wire.TagCertPublicKey, c.SubjectKey.Bytes())
	wire.WriteBlock(&buf, wire.TagCertValidFrom, wire.EncodeNonNegativeInteger(uint64(c.NotBefore.Unix())))
	wire.WriteBlock(&buf, wire.TagCertValidUntil, wire.EncodeNonNegativeInteger(uint64(c.NotAfter.Unix())))
	return buf.Bytes()
}

// SignedPortion implements Signable.
func (c *Certificate) SignedPortion() []byte {
	return c.signedPortion()
}

// Sign fills IssuerSignature and IssuerKeyLocator using signer.
func (c *Certificate) Sign(signer Signer) error {
	sig, locator, err := signer.Sign(c)
	if err != nil {
		return err
	}
	c.IssuerSignature = sig
	c.IssuerKeyLocator = locator
	return nil
}

// Encode renders the full certificate, including the issuer's signature
// envelope, as the verbatim application payload a KEY-typed Response
// stores in its Content field (spec.md §4.4 "generateCertRrset").
func (c *Certificate) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(c.signedPortion())
	wire.WriteBlock(&buf, wire.TagCertIssuerKeyLocator, wire.EncodeNameInner(c.IssuerKeyLocator))
	wire.WriteBlock(&buf, wire.TagCertIssuerSignature, c.IssuerSignature)
	var out bytes.Buffer
	wire.WriteBlock(&out, wire.TagCertificate, buf.Bytes())
	return out.Bytes()
}

// DecodeCertificate parses a certificate produced by Encode.
func DecodeCertificate(b []byte) (*Certificate, error) {
	r := bytes.NewReader(b)
	top, err := wire.ReadBlock(r)
	if err != nil {
		return nil, err
	}
	if top.Tag != wire.TagCertificate {
		return nil, fmt.Errorf("ndnscrypto: expected Certificate TLV, got tag %d", top.Tag)
	}
	blocks, err := wire.ReadAllBlocks(top.Value)
	if err != nil {
		return nil, err
	}
	c := &Certificate{}
	for _, blk := range blocks {
		switch blk.Tag {
		case wire.TagCertSubjectKeyName:
			n, err := wire.DecodeNameInner(blk.Value)
			if err != nil {
				return nil, err
			}
			c.SubjectKeyName = n
		case wire.TagCertPublicKey:
			c.SubjectKey = NewPublicKey(blk.Value)
		case wire.TagCertValidFrom:
			v, err := wire.DecodeNonNegativeInteger(blk.Value)
			if err != nil {
				return nil, err
			}
			c.NotBefore = time.Unix(int64(v), 0).UTC()
		case wire.TagCertValidUntil:
			v, err := wire.DecodeNonNegativeInteger(blk.Value)
			if err != nil {
				return nil, err
			}
			c.NotAfter = time.Unix(int64(v), 0).UTC()
		case wire.TagCertIssuerKeyLocator:
			n, err := wire.DecodeNameInner(blk.Value)
			if err != nil {
				return nil, err
			}
			c.IssuerKeyLocator = n
		case wire.TagCertIssuerSignature:
			c.IssuerSignature = blk.Value
		default:
			return nil, fmt.Errorf("ndnscrypto: unexpected certificate tag %d", blk.Tag)
		}
	}
	return c, nil
}

// Valid reports whether now falls within the certificate's validity window.
func (c *Certificate) Valid(now time.Time) bool {
	return !now.Before(c.NotBefore) && now.Before(c.NotAfter)
}

// Identity returns the key's owning identity: the subject key name
// minus its trailing KEY marker, key-id and (if present) certificate-
// version components (spec.md §4.8's key-locator-identity rule). The
// trailing version is optional: a key-locator that names "the current
// key" rather than one specific certificate omits it.
func Identity(keyName name.Name) name.Name {
	n := keyName
	if n.Size() > 0 && n.At(-1).IsVersion() {
		n = n.Prefix(n.Size() - 1)
	}
	if n.Size() < 2 {
		return n
	}
	return n.Prefix(n.Size() - 2)
}

// KeyName builds a key name identity/KEY/keyID/certVersion, the
// storage-name and key-locator convention shared by CERT rrsets and
// certificates minted by the management tool.
func KeyName(identity name.Name, keyID string, certVersion uint64) name.Name {
	return identity.Append(
		name.NewComponent("KEY"),
		name.NewComponent(keyID),
		name.NewVersionComponent(certVersion),
	)
}
