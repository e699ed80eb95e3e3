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

package factory

import (
	"testing"
	"time"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/wire"
)

func testSigner(t *testing.T, locator name.Name) ndnscrypto.Signer {
	t.Helper()
	_, prv, err := ndnscrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return &ndnscrypto.KeySigner{Key: prv, KeyLocator: locator}
}

func TestGenerateTxtRrsetNameAndContent(t *testing.T) {
	zone := name.New("net", "example")
	f := New(zone, testSigner(t, zone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))))
	d, err := f.GenerateTxtRrset(name.New("www"), 42, time.Hour, []string{"hello", "world"})
	if err != nil {
		t.Fatalf("GenerateTxtRrset: %v", err)
	}
	want := zone.Append(name.NewComponent("NDNS"), name.NewComponent("www"),
		name.NewComponent("TXT"), name.NewVersionComponent(42))
	if !d.Name.Equal(want) {
		t.Fatalf("name mismatch: want %v got %v", want, d.Name)
	}
	if d.ContentType != wire.RESP {
		t.Fatalf("expected RESP content type, got %v", d.ContentType)
	}
	_, subs, err := wire.DecodeContent(d.ContentType, d.Content)
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	if len(subs) != 2 || string(subs[0]) != "hello" || string(subs[1]) != "world" {
		t.Fatalf("unexpected sub-records: %v", subs)
	}
}

func TestGenerateCertRrsetUsesCertQueryType(t *testing.T) {
	zone := name.New("net")
	f := New(zone, testSigner(t, zone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))))
	d, err := f.GenerateCertRrset(name.New(), 1, time.Hour, []byte("cert-bytes"))
	if err != nil {
		t.Fatalf("GenerateCertRrset: %v", err)
	}
	want := zone.Append(name.NewComponent("NDNS-R"), name.NewComponent("CERT"), name.NewVersionComponent(1))
	if !d.Name.Equal(want) {
		t.Fatalf("name mismatch: want %v got %v", want, d.Name)
	}
}

func TestGenerateNsRrsetDelegationRoundTrip(t *testing.T) {
	zone := name.New("net")
	f := New(zone, testSigner(t, zone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))))
	delegations := []Delegation{
		{Name: name.New("net", "example"), Cost: 1},
		{Name: name.New("net", "example2"), Cost: 2},
	}
	d, err := f.GenerateNsRrset(name.New("example"), 1, time.Hour, delegations)
	if err != nil {
		t.Fatalf("GenerateNsRrset: %v", err)
	}
	if d.ContentType != wire.LINK {
		t.Fatalf("expected LINK content type, got %v", d.ContentType)
	}
	_, subs, err := wire.DecodeContent(d.ContentType, d.Content)
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	got, err := DecodeDelegations(subs)
	if err != nil {
		t.Fatalf("DecodeDelegations: %v", err)
	}
	if len(got) != 2 || !got[0].Name.Equal(delegations[0].Name) || got[1].Cost != 2 {
		t.Fatalf("delegation mismatch: %+v", got)
	}
}

func TestGenerateDoeRrset(t *testing.T) {
	zone := name.New("net", "example")
	f := New(zone, testSigner(t, zone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))))
	d, err := f.GenerateDoeRrset(name.New("missing"), 1, time.Hour, name.New("alice"), name.New("carol"))
	if err != nil {
		t.Fatalf("GenerateDoeRrset: %v", err)
	}
	if d.ContentType != wire.DOE {
		t.Fatalf("expected DOE content type, got %v", d.ContentType)
	}
	doe, err := wire.DecodeDoe(d.Content)
	if err != nil {
		t.Fatalf("DecodeDoe: %v", err)
	}
	if !doe.Lower.Equal(name.New("alice")) || !doe.Upper.Equal(name.New("carol")) {
		t.Fatalf("doe mismatch: %+v", doe)
	}
}

func TestVersionSentinelUsesUnixTime(t *testing.T) {
	zone := name.New("net")
	f := New(zone, testSigner(t, zone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))))
	before := uint64(time.Now().UnixMilli())
	d, err := f.GenerateAuthRrset(name.New("www"), VersionUseUnixTime, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAuthRrset: %v", err)
	}
	v, err := d.Name.At(-1).ToVersion()
	if err != nil {
		t.Fatalf("ToVersion: %v", err)
	}
	if v < before {
		t.Fatalf("expected version sentinel to resolve to a recent unix-ms timestamp, got %d < %d", v, before)
	}
}
