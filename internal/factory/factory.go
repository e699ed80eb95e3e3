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

// Package factory builds ready-to-store, signed rrsets (spec.md §4.4),
// grounded on the original source's daemon/rrset-factory.{hpp,cpp}.
package factory

import (
	"bytes"
	"time"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/wire"
)

// VersionUseUnixTime is the sentinel version value meaning "assign
// version = current Unix time in milliseconds", per spec.md §4.4.
const VersionUseUnixTime uint64 = 0

// query-kind markers (spec.md §3/§6).
var (
	queryNDNS   = name.NewComponent("NDNS")
	queryNDNSR  = name.NewComponent("NDNS-R")
	rrTypeNS    = name.NewComponent("NS")
	rrTypeTXT   = name.NewComponent("TXT")
	rrTypeCERT  = name.NewComponent("CERT")
	rrTypeAUTH  = name.NewComponent("AUTH")
	rrTypeDOE   = name.NewComponent("DOE")
)

// Delegation is one entry of a LINK content's delegation list.
type Delegation struct {
	Name name.Name
	Cost uint64
}

func encodeDelegation(d Delegation) []byte {
	var buf bytes.Buffer
	wire.WriteBlock(&buf, wire.TagDelegationName, wire.EncodeNameInner(d.Name))
	wire.WriteBlock(&buf, wire.TagDelegationCost, wire.EncodeNonNegativeInteger(d.Cost))
	var out bytes.Buffer
	wire.WriteBlock(&out, wire.TagDelegationEntry, buf.Bytes())
	return out.Bytes()
}

func decodeDelegation(b []byte) (Delegation, error) {
	blk, err := wire.ReadBlock(bytes.NewReader(b))
	if err != nil {
		return Delegation{}, err
	}
	inner, err := wire.ReadAllBlocks(blk.Value)
	if err != nil {
		return Delegation{}, err
	}
	var d Delegation
	for _, b := range inner {
		switch b.Tag {
		case wire.TagDelegationName:
			n, err := wire.DecodeNameInner(b.Value)
			if err != nil {
				return Delegation{}, err
			}
			d.Name = n
		case wire.TagDelegationCost:
			c, err := wire.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return Delegation{}, err
			}
			d.Cost = c
		}
	}
	return d, nil
}

// DecodeDelegations parses a LINK content's sub-records back into
// Delegation values (the symmetric counterpart of GenerateNsRrset).
func DecodeDelegations(subRecords [][]byte) ([]Delegation, error) {
	out := make([]Delegation, 0, len(subRecords))
	for _, sr := range subRecords {
		d, err := decodeDelegation(sr)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Factory builds signed rrsets for one zone.
type Factory struct {
	Zone   name.Name
	Signer ndnscrypto.Signer
}

// New creates a Factory bound to a zone and its current signer
// (ordinarily a KeySigner wrapping the zone's current DSK).
func New(zone name.Name, signer ndnscrypto.Signer) *Factory {
	return &Factory{Zone: zone, Signer: signer}
}

func resolveVersion(version uint64) uint64 {
	if version != VersionUseUnixTime {
		return version
	}
	return uint64(time.Now().UnixMilli())
}

// generateBaseRrset builds the full data name for (label, rrType) under
// the factory's zone, using NDNS-R for CERT and NDNS for every other
// rrtype, APPCERT included (spec.md §4.4).
func (f *Factory) generateBaseRrset(label name.Name, rrType name.Component, version uint64) name.Name {
	queryType := queryNDNS
	if rrType.Equal(rrTypeCERT) {
		queryType = queryNDNSR
	}
	full := f.Zone.Append(queryType)
	for i := 0; i < label.Size(); i++ {
		full = full.Append(label.At(i))
	}
	return full.Append(rrType, name.NewVersionComponent(version))
}

func (f *Factory) sign(fullName name.Name, ct wire.ContentType, ttl time.Duration, content []byte) (*wire.Data, error) {
	d := &wire.Data{
		Name:            fullName,
		ContentType:     ct,
		FreshnessPeriod: ttl,
		Content:         content,
	}
	sig, locator, err := f.Signer.Sign(d)
	if err != nil {
		return nil, err
	}
	d.SignatureValue = sig
	d.KeyLocator = locator
	return d, nil
}

// GenerateNsRrset builds a LINK-typed delegation-list rrset ("NS" record).
func (f *Factory) GenerateNsRrset(label name.Name, version uint64, ttl time.Duration, delegations []Delegation) (*wire.Data, error) {
	version = resolveVersion(version)
	subs := make([][]byte, len(delegations))
	for i, d := range delegations {
		subs[i] = encodeDelegation(d)
	}
	content, err := wire.EncodeContent(wire.LINK, nil, subs)
	if err != nil {
		return nil, err
	}
	full := f.generateBaseRrset(label, rrTypeNS, version)
	return f.sign(full, wire.LINK, ttl, content)
}

// GenerateTxtRrset builds a RESP-typed text rrset, one sub-record per string.
func (f *Factory) GenerateTxtRrset(label name.Name, version uint64, ttl time.Duration, strs []string) (*wire.Data, error) {
	version = resolveVersion(version)
	subs := make([][]byte, len(strs))
	for i, s := range strs {
		subs[i] = []byte(s)
	}
	content, err := wire.EncodeContent(wire.RESP, nil, subs)
	if err != nil {
		return nil, err
	}
	full := f.generateBaseRrset(label, rrTypeTXT, version)
	return f.sign(full, wire.RESP, ttl, content)
}

// GenerateCertRrset builds a KEY-typed rrset carrying a certificate's
// encoded bytes.
func (f *Factory) GenerateCertRrset(label name.Name, version uint64, ttl time.Duration, certBytes []byte) (*wire.Data, error) {
	version = resolveVersion(version)
	content, err := wire.EncodeContent(wire.KEY, certBytes, nil)
	if err != nil {
		return nil, err
	}
	full := f.generateBaseRrset(label, rrTypeCERT, version)
	return f.sign(full, wire.KEY, ttl, content)
}

// GenerateAuthRrset builds an AUTH marker rrset with no sub-records,
// signaling "there is something further down" (spec.md §4.5).
func (f *Factory) GenerateAuthRrset(label name.Name, version uint64, ttl time.Duration) (*wire.Data, error) {
	version = resolveVersion(version)
	content, err := wire.EncodeContent(wire.AUTH, nil, nil)
	if err != nil {
		return nil, err
	}
	full := f.generateBaseRrset(label, rrTypeAUTH, version)
	return f.sign(full, wire.AUTH, ttl, content)
}

// GenerateDoeRrset builds a DOE-typed denial-of-existence rrset
// covering the gap between predecessor and successor labels.
func (f *Factory) GenerateDoeRrset(label name.Name, version uint64, ttl time.Duration, predecessor, successor name.Name) (*wire.Data, error) {
	version = resolveVersion(version)
	content := wire.EncodeDoe(wire.Doe{Lower: predecessor, Upper: successor})
	full := f.generateBaseRrset(label, rrTypeDOE, version)
	return f.sign(full, wire.DOE, ttl, content)
}
