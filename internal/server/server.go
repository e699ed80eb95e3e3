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

// Package server is the authoritative zone server (spec.md §4.5),
// grounded line for line on the original source's
// daemon/name-server.{hpp,cpp} for the onInterest/handleQuery/
// handleUpdate logic, and on the teacher's service/gns/service.go
// message-loop shape (filter registration, per-message switch,
// logger.Printf diagnostics) for the surrounding scaffolding.
package server

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bfix/gospel/logger"

	"github.com/named-data/ndns-go/internal/face"
	"github.com/named-data/ndns-go/internal/factory"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/store"
	"github.com/named-data/ndns-go/internal/wire"
)

// UpdateReturnCode values (spec.md §6).
const (
	UpdateOK      uint64 = 0
	UpdateFailure uint64 = 1
)

// Validator is the subset of the validator policy the server needs to
// authenticate UPDATE interests (spec.md §4.5 step 2).
type Validator interface {
	Validate(d *wire.Data) error
}

// Server is the authoritative answerer for a single zone.
type Server struct {
	Zone        name.Name
	ZoneID      store.ZoneID
	DSKCertName name.Name
	Freshness   time.Duration
	Store       store.Store
	Factory     *factory.Factory
	Validator   Validator
}

// New builds a Server for zone, with freshness defaulting to 4 seconds
// per spec.md §4.5 when freshness <= 0.
func New(zone name.Name, zoneID store.ZoneID, st store.Store, f *factory.Factory, v Validator, freshness time.Duration) *Server {
	if freshness <= 0 {
		freshness = 4 * time.Second
	}
	return &Server{Zone: zone, ZoneID: zoneID, Store: st, Factory: f, Validator: v, Freshness: freshness}
}

// Register installs the server's two interest filters on f: the
// iterative-query prefix <zone>/NDNS and the cert-query prefix
// <zone>/NDNS-R.
func (s *Server) Register(f face.Face) {
	f.SetInterestFilter(s.Zone.Append(name.NewComponent("NDNS")), s.onInterest)
	f.SetInterestFilter(s.Zone.Append(name.NewComponent("NDNS-R")), s.onInterest)
}

// onInterest is the single entry point for every interest the server's
// filters match.
func (s *Server) onInterest(i face.Interest) (*wire.Data, error) {
	match, err := name.MatchInterest(i.Name, s.Zone)
	if err != nil {
		// no match: drop silently (spec.md §7 "protocol errors ...
		// dropped silently by the server")
		return nil, nil
	}
	if match.RRType.Equal(name.UpdateLabel) {
		return s.handleUpdate(match)
	}
	return s.handleQuery(match)
}

// handleQuery implements spec.md §4.5's handleQuery.
func (s *Server) handleQuery(match name.MatchResult) (*wire.Data, error) {
	label := match.RRLabel
	rrType := match.RRType.String()

	found, err := s.Store.FindRrset(s.ZoneID, label.String(), rrType)
	if err == nil {
		if !match.HasVersion() {
			return decodeStored(found)
		}
		reqVersion, verr := match.Version.ToVersion()
		if verr == nil && reqVersion == found.Version {
			return decodeStored(found)
		}
		// version mismatch: NACK for the requested version
		return s.signedNack(label, match.RRType, reqVersionOr(match, found.Version))
	}

	// not found
	if match.RRType.Equal(nsComponent) {
		if s.hasDeeperRecord(label) {
			d, err := s.Factory.GenerateAuthRrset(label, factory.VersionUseUnixTime, s.Freshness)
			if err != nil {
				logger.Printf(logger.ERROR, "[server] generate AUTH for %v: %v", label, err)
				return nil, nil
			}
			return d, nil
		}
	}
	s.maybeGenerateDoe(label, rrType)
	return s.signedNack(label, match.RRType, 0)
}

var nsComponent = name.NewComponent("NS")

func reqVersionOr(match name.MatchResult, fallback uint64) uint64 {
	if v, err := match.Version.ToVersion(); err == nil {
		return v
	}
	return fallback
}

func decodeStored(r *store.Rrset) (*wire.Data, error) {
	return wire.DecodeData(r.Data)
}

func (s *Server) signedNack(label name.Name, rrType name.Component, version uint64) (*wire.Data, error) {
	content, err := wire.EncodeContent(wire.NACK, nil, nil)
	if err != nil {
		return nil, nil
	}
	full := s.nackName(label, rrType, version)
	d := &wire.Data{
		Name:            full,
		ContentType:     wire.NACK,
		FreshnessPeriod: s.Freshness,
		Content:         content,
	}
	sig, locator, err := s.Factory.Signer.Sign(d)
	if err != nil {
		logger.Printf(logger.ERROR, "[server] sign NACK for %v: %v", label, err)
		return nil, nil
	}
	d.SignatureValue = sig
	d.KeyLocator = locator
	return d, nil
}

func (s *Server) nackName(label name.Name, rrType name.Component, version uint64) name.Name {
	queryType := name.NewComponent("NDNS")
	if rrType.Equal(name.NewComponent("CERT")) {
		queryType = name.NewComponent("NDNS-R")
	}
	full := s.Zone.Append(queryType)
	for i := 0; i < label.Size(); i++ {
		full = full.Append(label.At(i))
	}
	return full.Append(rrType, name.NewVersionComponent(version))
}

// hasDeeperRecord reports whether the zone holds any rrset whose label
// is a strict extension of label (spec.md §4.5's AUTH condition).
func (s *Server) hasDeeperRecord(label name.Name) bool {
	all, err := s.Store.ListRrsetsByZone(s.ZoneID)
	if err != nil {
		return false
	}
	prefix := label.String()
	for _, r := range all {
		if r.Label == prefix {
			continue
		}
		if strings.HasPrefix(r.Label, prefix+"/") {
			return true
		}
	}
	return false
}

// maybeGenerateDoe opportunistically mints and stores a DOE rrset
// covering the gap around an absent label, for negative caching
// (spec.md §4.2, §4.5). It is best-effort: failures are logged, not
// surfaced, since the primary answer is still the NACK.
func (s *Server) maybeGenerateDoe(label name.Name, rrType string) {
	lower, lerr := s.Store.FindRrsetLowerBound(s.ZoneID, label.String(), rrType)
	upper, uerr := s.Store.FindRrsetUpperBound(s.ZoneID, label.String(), rrType)
	if lerr != nil || uerr != nil {
		return
	}
	lowerName := name.New(splitLabel(lower.Label)...)
	upperName := name.New(splitLabel(upper.Label)...)
	d, err := s.Factory.GenerateDoeRrset(label, factory.VersionUseUnixTime, s.Freshness, lowerName, upperName)
	if err != nil {
		logger.Printf(logger.ERROR, "[server] generate DOE for %v: %v", label, err)
		return
	}
	r := &store.Rrset{
		Zone:    s.ZoneID,
		Label:   label.String(),
		Type:    "DOE",
		Version: mustVersion(d.Name),
		TTL:     s.Freshness,
		Data:    d.Encode(),
	}
	if existing, err := s.Store.FindRrset(s.ZoneID, r.Label, r.Type); err == nil {
		r.ID = existing.ID
		if err := s.Store.UpdateRrset(r); err != nil {
			logger.Printf(logger.DBG, "[server] DOE update for %v not applied: %v", label, err)
		}
		return
	}
	if err := s.Store.InsertRrset(r); err != nil {
		logger.Printf(logger.DBG, "[server] DOE insert for %v not applied: %v", label, err)
	}
}

func mustVersion(n name.Name) uint64 {
	v, err := n.At(-1).ToVersion()
	if err != nil {
		return 0
	}
	return v
}

func splitLabel(s string) []string {
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// handleUpdate implements spec.md §4.5's handleUpdate.
func (s *Server) handleUpdate(match name.MatchResult) (*wire.Data, error) {
	// The update interest's label field encodes a serialized signed
	// Data object as a single blob component (the one preceding the
	// UPDATE marker).
	if match.RRLabel.Size() == 0 {
		return nil, nil
	}
	blob := match.RRLabel.At(-1).Value
	inner, err := wire.DecodeData(blob)
	if err != nil {
		logger.Printf(logger.WARN, "[server] malformed update payload: %v", err)
		return nil, nil
	}

	if err := s.Validator.Validate(inner); err != nil {
		logger.Printf(logger.WARN, "[server] update failed validation: %v", err)
		return nil, nil
	}

	innerMatch, err := name.MatchData(inner.Name, s.Zone)
	if err != nil {
		logger.Printf(logger.WARN, "[server] update data does not match zone: %v", err)
		return nil, nil
	}
	newVersion, err := innerMatch.Version.ToVersion()
	if err != nil {
		logger.Printf(logger.WARN, "[server] update data missing version: %v", err)
		return s.updateResult(UpdateFailure, "malformed version")
	}

	rType := innerMatch.RRType.String()
	rLabel := innerMatch.RRLabel.String()
	existing, err := s.Store.FindRrset(s.ZoneID, rLabel, rType)
	switch {
	case err == nil && newVersion > existing.Version:
		existing.Version = newVersion
		existing.TTL = inner.FreshnessPeriod
		existing.Data = blob
		if err := s.Store.UpdateRrset(existing); err != nil {
			return s.updateResult(UpdateFailure, err.Error())
		}
		return s.updateResult(UpdateOK, "")
	case err == nil:
		return s.updateResult(UpdateFailure, "version not newer than stored")
	default:
		r := &store.Rrset{
			Zone:    s.ZoneID,
			Label:   rLabel,
			Type:    rType,
			Version: newVersion,
			TTL:     inner.FreshnessPeriod,
			Data:    blob,
		}
		if err := s.Store.InsertRrset(r); err != nil {
			return s.updateResult(UpdateFailure, err.Error())
		}
		return s.updateResult(UpdateOK, "")
	}
}

// updateResult builds the signed RESP reply whose single sub-record
// carries the UpdateReturnCode (and optional message), per spec.md §9's
// "newer form" resolution of the observed-source-bug design note.
func (s *Server) updateResult(code uint64, msg string) (*wire.Data, error) {
	var sub bytes.Buffer
	wire.WriteBlock(&sub, wire.TagUpdateReturnCode, wire.EncodeNonNegativeInteger(code))
	if msg != "" {
		wire.WriteBlock(&sub, wire.TagUpdateReturnMsg, []byte(msg))
	}
	content, err := wire.EncodeContent(wire.RESP, nil, [][]byte{sub.Bytes()})
	if err != nil {
		return nil, nil
	}
	full := s.Zone.Append(name.NewComponent("NDNS"), name.UpdateLabel, name.NewVersionComponent(uint64(time.Now().UnixMilli())))
	d := &wire.Data{
		Name:            full,
		ContentType:     wire.RESP,
		FreshnessPeriod: s.Freshness,
		Content:         content,
	}
	sig, locator, err := s.Factory.Signer.Sign(d)
	if err != nil {
		logger.Printf(logger.ERROR, "[server] sign update result: %v", err)
		return nil, fmt.Errorf("server: sign update result: %w", err)
	}
	d.SignatureValue = sig
	d.KeyLocator = locator
	return d, nil
}
