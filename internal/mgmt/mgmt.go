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

// Package mgmt is the zone-management tool (spec.md §1, §3, §9): it
// creates and destroys zones, mints the KSK/DSK/DKEY key hierarchy,
// and adds/removes signed rrsets, grounded on the original source's
// daemon/management.{hpp,cpp} lifecycle and the teacher's own
// service-setup helpers in gnunet/service/store (single Store handle,
// explicit pre-condition checks before every mutation).
package mgmt

import (
	"errors"
	"fmt"
	"time"

	"github.com/named-data/ndns-go/internal/factory"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/store"
	"github.com/named-data/ndns-go/internal/wire"
)

// Management pre-condition errors (spec.md §7's "Management
// pre-condition errors ... fatal for the operation").
var (
	ErrZoneHasNoParentKey  = errors.New("mgmt: parent zone has no current DSK to endorse a child")
	ErrUnsupportedRRType   = errors.New("mgmt: record type requires an explicit content type")
	ErrRejectedCombination = errors.New("mgmt: rejected (type, content-type) combination")
)

// Zone-info keys (spec.md §3 "opaque info blobs keyed by short
// strings"); every key is kept at or under 10 characters.
const (
	infoKskName = "kskName"
	infoDskName = "dskName"
	infoKskSeed = "kskSeed"
	infoDskSeed = "dskSeed"
)

const keyIDKSK = "ksk-1"
const keyIDDSK = "dsk-1"

// Manager performs zone lifecycle and rrset operations against a
// single store, following spec.md §9's "zones are arena-allocated
// with integer ids" note: Manager never keeps a parent/child Zone
// object graph, only looks rows up by id as needed.
type Manager struct {
	Store store.Store
}

// New creates a Manager bound to st.
func New(st store.Store) *Manager {
	return &Manager{Store: st}
}

// signerFor rebuilds the current DSK signer for an already-created
// zone from its persisted key material.
func (m *Manager) signerFor(zoneID store.ZoneID) (ndnscrypto.Signer, error) {
	info, err := m.Store.GetZoneInfo(zoneID)
	if err != nil {
		return nil, err
	}
	seed, ok := info[infoDskSeed]
	if !ok {
		return nil, ErrZoneHasNoParentKey
	}
	dskKeyName, ok := info[infoDskName]
	if !ok {
		return nil, ErrZoneHasNoParentKey
	}
	prv := ndnscrypto.PrivateKeyFromSeed(seed)
	return &ndnscrypto.KeySigner{Key: prv, KeyLocator: decodeKeyName(dskKeyName)}, nil
}

func decodeKeyName(b []byte) name.Name {
	s := string(b)
	labels := splitName(s)
	return name.New(labels...)
}

func splitName(s string) []string {
	if s == "" || s == "/" {
		return nil
	}
	s = s[1:] // strip leading "/"
	var parts []string
	var cur []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			parts = append(parts, string(cur))
			cur = nil
			continue
		}
		cur = append(cur, s[i])
	}
	parts = append(parts, string(cur))
	return parts
}

// CreateZone creates a new zone, mints its KSK and DSK, and publishes
// both certificate rrsets into the zone's own store (spec.md §3's
// lifecycle: "generates or imports its keys and publishes its own DSK
// certificate rrset into its own store").
//
// When parent is non-nil, the parent's current DSK signs the new
// zone's KSK certificate — that certificate doubles as the DKEY record
// the parent publishes to endorse the child (spec.md §3's DKEY — "the
// parent's cert for the child zone"), stored under the parent zone at
// the child's last label, record type DKEY. A nil parent mints a
// self-signed KSK, for the root zone only.
func (m *Manager) CreateZone(zoneName name.Name, defaultTTL time.Duration, parent *Manager, parentZoneID store.ZoneID) (store.ZoneID, error) {
	if _, err := m.Store.FindZone(zoneName.String()); err == nil {
		return 0, store.ErrZoneExists
	}

	z := &store.Zone{Name: zoneName.String(), DefaultTTL: defaultTTL}
	if err := m.Store.InsertZone(z); err != nil {
		return 0, err
	}

	kskPub, kskPrv, err := ndnscrypto.GenerateKeypair()
	if err != nil {
		return 0, fmt.Errorf("mgmt: generate KSK: %w", err)
	}
	kskKeyName := ndnscrypto.KeyName(zoneName, keyIDKSK, 1)
	kskCert := &ndnscrypto.Certificate{
		SubjectKeyName: kskKeyName,
		SubjectKey:     kskPub,
		NotBefore:      time.Now().Add(-time.Minute),
		NotAfter:       time.Now().AddDate(10, 0, 0),
	}

	var kskSigner ndnscrypto.Signer
	if parent == nil {
		kskSigner = &ndnscrypto.KeySigner{Key: kskPrv, KeyLocator: kskKeyName}
	} else {
		ps, err := parent.signerFor(parentZoneID)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrZoneHasNoParentKey, err)
		}
		kskSigner = ps
	}
	if err := kskCert.Sign(kskSigner); err != nil {
		return 0, fmt.Errorf("mgmt: sign KSK cert: %w", err)
	}

	dskPub, dskPrv, err := ndnscrypto.GenerateKeypair()
	if err != nil {
		return 0, fmt.Errorf("mgmt: generate DSK: %w", err)
	}
	dskKeyName := ndnscrypto.KeyName(zoneName, keyIDDSK, 1)
	ownKSKSigner := &ndnscrypto.KeySigner{Key: kskPrv, KeyLocator: kskKeyName}
	dskCert := &ndnscrypto.Certificate{
		SubjectKeyName: dskKeyName,
		SubjectKey:     dskPub,
		NotBefore:      time.Now().Add(-time.Minute),
		NotAfter:       time.Now().AddDate(1, 0, 0),
	}
	if err := dskCert.Sign(ownKSKSigner); err != nil {
		return 0, fmt.Errorf("mgmt: sign DSK cert: %w", err)
	}

	freshness := defaultTTL
	if freshness <= 0 {
		freshness = 4 * time.Second
	}
	f := factory.New(zoneName, &ndnscrypto.KeySigner{Key: dskPrv, KeyLocator: dskKeyName})
	if err := m.publishCertRrset(z.ID, f, keyIDKSK, kskCert, freshness); err != nil {
		return 0, err
	}
	if err := m.publishCertRrset(z.ID, f, keyIDDSK, dskCert, freshness); err != nil {
		return 0, err
	}

	if err := m.Store.SetZoneInfo(z.ID, infoKskName, []byte(kskKeyName.String())); err != nil {
		return 0, err
	}
	if err := m.Store.SetZoneInfo(z.ID, infoDskName, []byte(dskKeyName.String())); err != nil {
		return 0, err
	}
	if err := m.Store.SetZoneInfo(z.ID, infoKskSeed, seedOf(kskPrv)); err != nil {
		return 0, err
	}
	if err := m.Store.SetZoneInfo(z.ID, infoDskSeed, seedOf(dskPrv)); err != nil {
		return 0, err
	}

	if parent != nil {
		if err := parent.publishDkeyRrset(parentZoneID, zoneName, kskCert, freshness); err != nil {
			return 0, err
		}
	}
	return z.ID, nil
}

// seedOf extracts the 32-byte Ed25519 seed from a private key, so it
// can be persisted in the store's opaque info blob and later used to
// reconstruct the same signer with PrivateKeyFromSeed.
func seedOf(prv *ndnscrypto.PrivateKey) []byte {
	return prv.Seed()
}

func (m *Manager) publishCertRrset(zoneID store.ZoneID, f *factory.Factory, keyID string, cert *ndnscrypto.Certificate, ttl time.Duration) error {
	d, err := f.GenerateCertRrset(name.New("KEY", keyID), 1, ttl, cert.Encode())
	if err != nil {
		return fmt.Errorf("mgmt: build cert rrset for %s: %w", keyID, err)
	}
	r := &store.Rrset{
		Zone:    zoneID,
		Label:   name.New("KEY", keyID).String(),
		Type:    "CERT",
		Version: 1,
		TTL:     ttl,
		Data:    d.Encode(),
	}
	return m.Store.InsertRrset(r)
}

// publishDkeyRrset stores the child's KSK certificate under the
// parent zone, labeled with the child's last name component, record
// type DKEY (spec.md §3's glossary: "the DKEY is the parent's cert for
// the child zone").
func (m *Manager) publishDkeyRrset(parentZoneID store.ZoneID, childZone name.Name, childKSKCert *ndnscrypto.Certificate, ttl time.Duration) error {
	if childZone.Size() == 0 {
		return nil
	}
	label := childZone.Suffix(1).String()
	content, err := wire.EncodeContent(wire.KEY, childKSKCert.Encode(), nil)
	if err != nil {
		return fmt.Errorf("mgmt: encode DKEY content: %w", err)
	}
	r := &store.Rrset{
		Zone:    parentZoneID,
		Label:   label,
		Type:    "DKEY",
		Version: 1,
		TTL:     ttl,
		Data:    content,
	}
	return m.Store.InsertRrset(r)
}

// DeleteZone removes every rrset belonging to the zone, then the zone
// row itself (spec.md §3: "destroyed by removing all rrsets belonging
// to it and then removing the zone row").
func (m *Manager) DeleteZone(zoneName name.Name) error {
	z, err := m.Store.FindZone(zoneName.String())
	if err != nil {
		return err
	}
	return m.Store.RemoveZone(z.ID)
}

// ListZones returns every known zone.
func (m *Manager) ListZones() ([]*store.Zone, error) {
	return m.Store.ListZones()
}

// FactoryFor rebuilds a record factory.Factory for an already-created
// zone, bound to its current DSK, so a long-running authoritative
// server process can sign new rrsets without this package exposing
// the zone's private key material directly.
func (m *Manager) FactoryFor(zoneName name.Name) (*factory.Factory, error) {
	z, err := m.Store.FindZone(zoneName.String())
	if err != nil {
		return nil, err
	}
	signer, err := m.signerFor(z.ID)
	if err != nil {
		return nil, err
	}
	return factory.New(zoneName, signer), nil
}

// ListZone returns every rrset belonging to zoneName.
func (m *Manager) ListZone(zoneName name.Name) ([]*store.Rrset, error) {
	z, err := m.Store.FindZone(zoneName.String())
	if err != nil {
		return nil, err
	}
	return m.Store.ListRrsetsByZone(z.ID)
}

// contentTypeFor implements spec.md §9's content-type autodetection:
// NS and TXT records default to RESP, CERT defaults to KEY; any other
// record type requires the caller to pass an explicit content type.
func contentTypeFor(rrType string, explicit wire.ContentType, explicitSet bool) (wire.ContentType, error) {
	switch rrType {
	case "NS", "TXT":
		if explicitSet && explicit != wire.RESP {
			return 0, fmt.Errorf("%w: (%s, %v)", ErrRejectedCombination, rrType, explicit)
		}
		return wire.RESP, nil
	case "CERT":
		if explicitSet && explicit != wire.KEY {
			return 0, fmt.Errorf("%w: (%s, %v)", ErrRejectedCombination, rrType, explicit)
		}
		return wire.KEY, nil
	default:
		if !explicitSet {
			return 0, fmt.Errorf("%w: record type %q", ErrUnsupportedRRType, rrType)
		}
		return explicit, nil
	}
}

// AddRecord is a value one sub-record contributes to an rrset being
// added; for a BLOB content type at most one element is permitted
// (spec.md §9's reject-combination table: "(BLOB, multiple content
// elements)").
type AddRecord struct {
	Zone         name.Name
	Label        name.Name
	RRType       string
	Version      uint64
	TTL          time.Duration
	Elements     [][]byte // opaque sub-record payloads (TXT strings, a single BLOB, etc.)
	ContentType  wire.ContentType
	HasContentType bool // caller supplied ContentType explicitly
}

// AddRrset inserts a signed rrset into a zone, inferring or validating
// its content type per spec.md §9 and rejecting the table's banned
// combinations before ever touching the store.
func (m *Manager) AddRrset(req AddRecord) error {
	if req.RRType == "NS" && req.HasContentType && req.ContentType == wire.BLOB {
		return fmt.Errorf("%w: (NS, BLOB)", ErrRejectedCombination)
	}
	ct, err := contentTypeFor(req.RRType, req.ContentType, req.HasContentType)
	if err != nil {
		return err
	}
	if ct == wire.BLOB && len(req.Elements) > 1 {
		return fmt.Errorf("%w: (BLOB, multiple content elements)", ErrRejectedCombination)
	}

	z, err := m.Store.FindZone(req.Zone.String())
	if err != nil {
		return err
	}
	signer, err := m.signerFor(z.ID)
	if err != nil {
		return err
	}

	version := req.Version
	if version == 0 {
		version = factory.VersionUseUnixTime
	}
	f := factory.New(req.Zone, signer)
	var d *wire.Data
	switch req.RRType {
	case "TXT":
		strs := make([]string, len(req.Elements))
		for i, e := range req.Elements {
			strs[i] = string(e)
		}
		d, err = f.GenerateTxtRrset(req.Label, version, req.TTL, strs)
	case "CERT":
		if len(req.Elements) != 1 {
			return fmt.Errorf("%w: CERT requires exactly one element", ErrRejectedCombination)
		}
		d, err = f.GenerateCertRrset(req.Label, version, req.TTL, req.Elements[0])
	default:
		var content []byte
		var cerr error
		if ct == wire.RESP || ct == wire.AUTH || ct == wire.NACK || ct == wire.LINK {
			content, cerr = wire.EncodeContent(ct, nil, req.Elements)
		} else {
			content, cerr = wire.EncodeContent(ct, firstOrNil(req.Elements), nil)
		}
		if cerr != nil {
			return fmt.Errorf("mgmt: encode content: %w", cerr)
		}
		d, err = signGeneric(f, req.Label, req.RRType, ct, version, req.TTL, content)
	}
	if err != nil {
		return fmt.Errorf("mgmt: build rrset: %w", err)
	}

	r := &store.Rrset{
		Zone:    z.ID,
		Label:   req.Label.String(),
		Type:    req.RRType,
		Version: currentVersion(d.Name),
		TTL:     req.TTL,
		Data:    d.Encode(),
	}
	return m.Store.InsertRrset(r)
}

func firstOrNil(elems [][]byte) []byte {
	if len(elems) == 0 {
		return nil
	}
	return elems[0]
}

func currentVersion(n name.Name) uint64 {
	v, err := n.At(-1).ToVersion()
	if err != nil {
		return 0
	}
	return v
}

// signGeneric builds and signs an rrset whose content type was given
// explicitly (any record type outside the factory's named helpers).
func signGeneric(f *factory.Factory, label name.Name, rrType string, ct wire.ContentType, version uint64, ttl time.Duration, content []byte) (*wire.Data, error) {
	rrTypeComp := name.NewComponent(rrType)
	full := f.Zone.Append(name.NewComponent("NDNS"))
	for i := 0; i < label.Size(); i++ {
		full = full.Append(label.At(i))
	}
	resolvedVersion := version
	if resolvedVersion == factory.VersionUseUnixTime {
		resolvedVersion = uint64(time.Now().UnixMilli())
	}
	full = full.Append(rrTypeComp, name.NewVersionComponent(resolvedVersion))
	d := &wire.Data{
		Name:            full,
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

// RemoveRrset deletes the current rrset for (zoneName, label, rrType).
func (m *Manager) RemoveRrset(zoneName name.Name, label name.Name, rrType string) error {
	z, err := m.Store.FindZone(zoneName.String())
	if err != nil {
		return err
	}
	r, err := m.Store.FindRrset(z.ID, label.String(), rrType)
	if err != nil {
		return err
	}
	return m.Store.RemoveRrset(r.ID)
}

// GetRrset returns the current rrset for (zoneName, label, rrType).
func (m *Manager) GetRrset(zoneName name.Name, label name.Name, rrType string) (*store.Rrset, error) {
	z, err := m.Store.FindZone(zoneName.String())
	if err != nil {
		return nil, err
	}
	return m.Store.FindRrset(z.ID, label.String(), rrType)
}

// AddDelegation publishes a LINK-typed NS rrset: the delegation list an
// iterative query follows to descend into a subzone (spec.md §4.4's
// GenerateNsRrset). This is distinct from AddRrset's generic NS/TXT/CERT
// path, whose content-type autodetection table (spec.md §9) maps a bare
// "NS" record type to RESP — that covers an operator adding a plain
// NS-labeled text record, not publishing the delegation machinery
// itself, which needs a typed Delegation list rather than opaque
// byte elements.
func (m *Manager) AddDelegation(zoneName name.Name, label name.Name, version uint64, ttl time.Duration, delegations []factory.Delegation) error {
	z, err := m.Store.FindZone(zoneName.String())
	if err != nil {
		return err
	}
	signer, err := m.signerFor(z.ID)
	if err != nil {
		return err
	}
	f := factory.New(zoneName, signer)
	d, err := f.GenerateNsRrset(label, version, ttl, delegations)
	if err != nil {
		return fmt.Errorf("mgmt: build delegation rrset: %w", err)
	}
	r := &store.Rrset{
		Zone:    z.ID,
		Label:   label.String(),
		Type:    "NS",
		Version: currentVersion(d.Name),
		TTL:     ttl,
		Data:    d.Encode(),
	}
	return m.Store.InsertRrset(r)
}
