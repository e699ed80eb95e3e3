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

package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/named-data/ndns-go/internal/face"
	"github.com/named-data/ndns-go/internal/factory"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/store"
	"github.com/named-data/ndns-go/internal/wire"
)

type allowAllValidator struct{}

func (allowAllValidator) Validate(*wire.Data) error { return nil }

func newTestServer(t *testing.T) (*Server, store.Store, store.ZoneID, name.Name) {
	t.Helper()
	st, err := store.OpenSQLStore(filepath.Join(t.TempDir(), "zone.db"))
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	zoneName := name.New("net", "example")
	z := &store.Zone{Name: zoneName.String(), DefaultTTL: time.Hour}
	if err := st.InsertZone(z); err != nil {
		t.Fatalf("InsertZone: %v", err)
	}

	_, prv, err := ndnscrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	signer := &ndnscrypto.KeySigner{Key: prv, KeyLocator: zoneName.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))}
	f := factory.New(zoneName, signer)

	s := New(zoneName, z.ID, st, f, allowAllValidator{}, 4*time.Second)
	return s, st, z.ID, zoneName
}

func TestHandleQueryReturnsStoredRecordVerbatim(t *testing.T) {
	s, st, zid, zone := newTestServer(t)
	d, err := s.Factory.GenerateTxtRrset(name.New("www"), 1, time.Hour, []string{"hello"})
	if err != nil {
		t.Fatalf("GenerateTxtRrset: %v", err)
	}
	if err := st.InsertRrset(&store.Rrset{Zone: zid, Label: name.New("www").String(), Type: "TXT", Version: 1, TTL: time.Hour, Data: d.Encode()}); err != nil {
		t.Fatalf("InsertRrset: %v", err)
	}

	lf := face.NewLoopFace()
	s.Register(lf)
	interestName := zone.Append(name.NewComponent("NDNS"), name.NewComponent("www"), name.NewComponent("TXT"))
	got, err := lf.Express(context.Background(), face.Interest{Name: interestName, Lifetime: time.Second})
	if err != nil {
		t.Fatalf("Express: %v", err)
	}
	if got.ContentType != wire.RESP {
		t.Fatalf("expected RESP, got %v", got.ContentType)
	}
}

func TestHandleQueryNacksUnknownLabel(t *testing.T) {
	s, _, _, zone := newTestServer(t)
	lf := face.NewLoopFace()
	s.Register(lf)
	interestName := zone.Append(name.NewComponent("NDNS"), name.NewComponent("missing"), name.NewComponent("TXT"))
	got, err := lf.Express(context.Background(), face.Interest{Name: interestName, Lifetime: time.Second})
	if err != nil {
		t.Fatalf("Express: %v", err)
	}
	if got.ContentType != wire.NACK {
		t.Fatalf("expected NACK, got %v", got.ContentType)
	}
}

func TestHandleQueryAuthForDeeperLabel(t *testing.T) {
	s, st, zid, zone := newTestServer(t)
	d, err := s.Factory.GenerateTxtRrset(name.New("example", "www"), 1, time.Hour, []string{"hi"})
	if err != nil {
		t.Fatalf("GenerateTxtRrset: %v", err)
	}
	if err := st.InsertRrset(&store.Rrset{Zone: zid, Label: name.New("example", "www").String(), Type: "TXT", Version: 1, TTL: time.Hour, Data: d.Encode()}); err != nil {
		t.Fatalf("InsertRrset: %v", err)
	}

	lf := face.NewLoopFace()
	s.Register(lf)
	interestName := zone.Append(name.NewComponent("NDNS"), name.NewComponent("example"), name.NewComponent("NS"))
	got, err := lf.Express(context.Background(), face.Interest{Name: interestName, Lifetime: time.Second})
	if err != nil {
		t.Fatalf("Express: %v", err)
	}
	if got.ContentType != wire.AUTH {
		t.Fatalf("expected AUTH, got %v", got.ContentType)
	}
}

func TestHandleQueryVersionMismatchNacks(t *testing.T) {
	s, st, zid, zone := newTestServer(t)
	d, err := s.Factory.GenerateTxtRrset(name.New("www"), 5, time.Hour, []string{"hello"})
	if err != nil {
		t.Fatalf("GenerateTxtRrset: %v", err)
	}
	if err := st.InsertRrset(&store.Rrset{Zone: zid, Label: name.New("www").String(), Type: "TXT", Version: 5, TTL: time.Hour, Data: d.Encode()}); err != nil {
		t.Fatalf("InsertRrset: %v", err)
	}

	lf := face.NewLoopFace()
	s.Register(lf)
	interestName := zone.Append(name.NewComponent("NDNS"), name.NewComponent("www"), name.NewComponent("TXT"), name.NewVersionComponent(3))
	got, err := lf.Express(context.Background(), face.Interest{Name: interestName, Lifetime: time.Second})
	if err != nil {
		t.Fatalf("Express: %v", err)
	}
	if got.ContentType != wire.NACK {
		t.Fatalf("expected NACK on version mismatch, got %v", got.ContentType)
	}
}

func TestHandleUpdateInsertsNewRrset(t *testing.T) {
	s, st, zid, zone := newTestServer(t)
	proposed, err := s.Factory.GenerateTxtRrset(name.New("www"), 1, time.Hour, []string{"fresh"})
	if err != nil {
		t.Fatalf("GenerateTxtRrset: %v", err)
	}

	lf := face.NewLoopFace()
	s.Register(lf)
	updateName := zone.Append(name.NewComponent("NDNS"), name.NewBlobComponent(proposed.Encode()), name.UpdateLabel)
	got, err := lf.Express(context.Background(), face.Interest{Name: updateName, Lifetime: time.Second})
	if err != nil {
		t.Fatalf("Express: %v", err)
	}
	if got.ContentType != wire.RESP {
		t.Fatalf("expected RESP reply, got %v", got.ContentType)
	}
	stored, err := st.FindRrset(zid, name.New("www").String(), "TXT")
	if err != nil {
		t.Fatalf("FindRrset: %v", err)
	}
	if stored.Version != 1 {
		t.Fatalf("expected stored version 1, got %d", stored.Version)
	}
}

func TestHandleUpdateRejectsStaleVersion(t *testing.T) {
	s, st, zid, zone := newTestServer(t)
	existing, err := s.Factory.GenerateTxtRrset(name.New("www"), 100, time.Hour, []string{"current"})
	if err != nil {
		t.Fatalf("GenerateTxtRrset: %v", err)
	}
	if err := st.InsertRrset(&store.Rrset{Zone: zid, Label: name.New("www").String(), Type: "TXT", Version: 100, TTL: time.Hour, Data: existing.Encode()}); err != nil {
		t.Fatalf("InsertRrset: %v", err)
	}

	stale, err := s.Factory.GenerateTxtRrset(name.New("www"), 99, time.Hour, []string{"stale"})
	if err != nil {
		t.Fatalf("GenerateTxtRrset: %v", err)
	}

	lf := face.NewLoopFace()
	s.Register(lf)
	updateName := zone.Append(name.NewComponent("NDNS"), name.NewBlobComponent(stale.Encode()), name.UpdateLabel)
	_, err = lf.Express(context.Background(), face.Interest{Name: updateName, Lifetime: time.Second})
	if err != nil {
		t.Fatalf("Express: %v", err)
	}
	stored, err := st.FindRrset(zid, name.New("www").String(), "TXT")
	if err != nil {
		t.Fatalf("FindRrset: %v", err)
	}
	if stored.Version != 100 {
		t.Fatalf("store must be unchanged after stale update, version = %d", stored.Version)
	}
}
