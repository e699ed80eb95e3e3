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

package mgmt

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/store"
	"github.com/named-data/ndns-go/internal/wire"
)

func openTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "ndns.db")
	db, err := store.OpenSQLStore(fname)
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateRootZonePublishesKSKAndDSKCerts(t *testing.T) {
	db := openTestStore(t)
	m := New(db)

	rootID, err := m.CreateZone(name.New(), time.Hour, nil, 0)
	if err != nil {
		t.Fatalf("CreateZone: %v", err)
	}

	rrsets, err := db.ListRrsetsByZone(rootID)
	if err != nil {
		t.Fatalf("ListRrsetsByZone: %v", err)
	}
	var haveKSK, haveDSK bool
	for _, r := range rrsets {
		if r.Type != "CERT" {
			continue
		}
		switch r.Label {
		case "/KEY/ksk-1":
			haveKSK = true
		case "/KEY/dsk-1":
			haveDSK = true
		}
	}
	if !haveKSK || !haveDSK {
		t.Fatalf("expected both KSK and DSK certs published, got %+v", rrsets)
	}
}

func TestCreateZoneRejectsExisting(t *testing.T) {
	db := openTestStore(t)
	m := New(db)
	if _, err := m.CreateZone(name.New(), time.Hour, nil, 0); err != nil {
		t.Fatalf("CreateZone: %v", err)
	}
	if _, err := m.CreateZone(name.New(), time.Hour, nil, 0); !errors.Is(err, store.ErrZoneExists) {
		t.Fatalf("expected ErrZoneExists, got %v", err)
	}
}

func TestCreateChildZonePublishesDkeyUnderParent(t *testing.T) {
	db := openTestStore(t)
	m := New(db)
	rootID, err := m.CreateZone(name.New(), time.Hour, nil, 0)
	if err != nil {
		t.Fatalf("CreateZone(root): %v", err)
	}
	if _, err := m.CreateZone(name.New("net"), time.Hour, m, rootID); err != nil {
		t.Fatalf("CreateZone(net): %v", err)
	}

	rrsets, err := db.ListRrsetsByZone(rootID)
	if err != nil {
		t.Fatalf("ListRrsetsByZone: %v", err)
	}
	var haveDkey bool
	for _, r := range rrsets {
		if r.Type == "DKEY" && r.Label == "/net" {
			haveDkey = true
		}
	}
	if !haveDkey {
		t.Fatalf("expected a DKEY rrset for /net under root, got %+v", rrsets)
	}
}

func TestAddThenGetRoundTrip(t *testing.T) {
	db := openTestStore(t)
	m := New(db)
	zone := name.New("net", "example")
	rootID, err := m.CreateZone(name.New(), time.Hour, nil, 0)
	if err != nil {
		t.Fatalf("CreateZone(root): %v", err)
	}
	netID, err := m.CreateZone(name.New("net"), time.Hour, m, rootID)
	if err != nil {
		t.Fatalf("CreateZone(net): %v", err)
	}
	if _, err := m.CreateZone(zone, time.Hour, m, netID); err != nil {
		t.Fatalf("CreateZone(net/example): %v", err)
	}

	req := AddRecord{
		Zone:    zone,
		Label:   name.New("www"),
		RRType:  "TXT",
		Version: 1,
		TTL:     time.Hour,
		Elements: [][]byte{
			[]byte("hello"),
		},
	}
	if err := m.AddRrset(req); err != nil {
		t.Fatalf("AddRrset: %v", err)
	}

	got, err := m.GetRrset(zone, name.New("www"), "TXT")
	if err != nil {
		t.Fatalf("GetRrset: %v", err)
	}
	d, err := wire.DecodeData(got.Data)
	if err != nil {
		t.Fatalf("DecodeData: %v", err)
	}
	appContent, subs, err := wire.DecodeContent(d.ContentType, d.Content)
	_ = appContent
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	if len(subs) != 1 || string(subs[0]) != "hello" {
		t.Fatalf("unexpected TXT sub-records: %v", subs)
	}

	if err := m.RemoveRrset(zone, name.New("www"), "TXT"); err != nil {
		t.Fatalf("RemoveRrset: %v", err)
	}
	if _, err := m.GetRrset(zone, name.New("www"), "TXT"); !errors.Is(err, store.ErrRrsetNotFound) {
		t.Fatalf("expected ErrRrsetNotFound after removal, got %v", err)
	}
}

func TestDeleteZoneRemovesFromListZones(t *testing.T) {
	db := openTestStore(t)
	m := New(db)
	zone := name.New("net")
	if _, err := m.CreateZone(zone, time.Hour, nil, 0); err != nil {
		t.Fatalf("CreateZone: %v", err)
	}
	if err := m.DeleteZone(zone); err != nil {
		t.Fatalf("DeleteZone: %v", err)
	}
	zones, err := m.ListZones()
	if err != nil {
		t.Fatalf("ListZones: %v", err)
	}
	for _, z := range zones {
		if z.Name == zone.String() {
			t.Fatalf("expected %v to be gone after DeleteZone", zone)
		}
	}
}

func TestAddRrsetRejectsBannedCombinations(t *testing.T) {
	db := openTestStore(t)
	m := New(db)
	zone := name.New("net")
	if _, err := m.CreateZone(zone, time.Hour, nil, 0); err != nil {
		t.Fatalf("CreateZone: %v", err)
	}

	nsBlob := AddRecord{
		Zone: zone, Label: name.New("glue"), RRType: "NS", TTL: time.Hour,
		Elements: [][]byte{[]byte("x")}, ContentType: wire.BLOB, HasContentType: true,
	}
	if err := m.AddRrset(nsBlob); !errors.Is(err, ErrRejectedCombination) {
		t.Fatalf("expected ErrRejectedCombination for (NS, BLOB), got %v", err)
	}

	txtWrongType := AddRecord{
		Zone: zone, Label: name.New("www"), RRType: "TXT", TTL: time.Hour,
		Elements: [][]byte{[]byte("x")}, ContentType: wire.AUTH, HasContentType: true,
	}
	if err := m.AddRrset(txtWrongType); !errors.Is(err, ErrRejectedCombination) {
		t.Fatalf("expected ErrRejectedCombination for (TXT, AUTH), got %v", err)
	}

	blobMultiple := AddRecord{
		Zone: zone, Label: name.New("opaque"), RRType: "SOMETHING", TTL: time.Hour,
		Elements:       [][]byte{[]byte("a"), []byte("b")},
		ContentType:    wire.BLOB,
		HasContentType: true,
	}
	if err := m.AddRrset(blobMultiple); !errors.Is(err, ErrRejectedCombination) {
		t.Fatalf("expected ErrRejectedCombination for (BLOB, multiple elements), got %v", err)
	}

	unspecified := AddRecord{
		Zone: zone, Label: name.New("opaque2"), RRType: "SOMETHING", TTL: time.Hour,
		Elements: [][]byte{[]byte("a")},
	}
	if err := m.AddRrset(unspecified); !errors.Is(err, ErrUnsupportedRRType) {
		t.Fatalf("expected ErrUnsupportedRRType, got %v", err)
	}
}
