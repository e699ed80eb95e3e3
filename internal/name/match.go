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

package name

import "errors"

// Query-kind and update markers (spec.md §3, §4.1).
var (
	QueryMarker     = NewComponent("NDNS")
	CertQueryMarker = NewComponent("NDNS-R")
	UpdateLabel     = NewComponent("UPDATE")
)

// ErrNameMismatch is returned when a name does not carry the zone as a
// strict prefix.
var ErrNameMismatch = errors.New("name: interest/data name does not match zone")

// ErrMalformedMatch is returned when the tail of a name does not follow
// the query/update structure spec.md §4.1 requires.
var ErrMalformedMatch = errors.New("name: malformed query/update structure")

// MatchResult is the outcome of matching an interest or data name
// against a zone (spec.md §4.1).
type MatchResult struct {
	RRLabel Name
	RRType  Component
	Version Component
}

// HasVersion reports whether the match captured a version component.
func (m MatchResult) HasVersion() bool {
	return m.Version.Type == VersionMarker
}

// MatchInterest matches an interest name against zone, per spec.md
// §4.1: the zone must be a strict prefix; the next component is either
// a query marker or the update marker; for the update case the single
// remaining component is the encoded Data blob; for the query case,
// components are consumed from the tail (optional version, then
// rrType, then rrLabel).
func MatchInterest(n Name, zone Name) (MatchResult, error) {
	if !zone.IsStrictPrefixOf(n) {
		return MatchResult{}, ErrNameMismatch
	}
	rest := n.SubName(zone.Size(), -1)
	if rest.Size() == 0 {
		return MatchResult{}, ErrMalformedMatch
	}

	marker := rest.At(0)
	if !marker.Equal(QueryMarker) && !marker.Equal(CertQueryMarker) {
		return MatchResult{}, ErrMalformedMatch
	}
	tail := rest.SubName(1, -1)
	if tail.Size() < 1 {
		return MatchResult{}, ErrMalformedMatch
	}

	if tail.At(-1).Equal(UpdateLabel) {
		if tail.Size() != 2 {
			return MatchResult{}, ErrMalformedMatch
		}
		return MatchResult{RRLabel: FromComponents(tail.At(0)), RRType: UpdateLabel}, nil
	}
	var version Component
	if tail.At(-1).IsVersion() {
		version = tail.At(-1)
		tail = tail.Prefix(tail.Size() - 1)
	}
	if tail.Size() < 1 {
		return MatchResult{}, ErrMalformedMatch
	}
	rrType := tail.At(-1)
	rrLabel := tail.Prefix(tail.Size() - 1)
	return MatchResult{RRLabel: rrLabel, RRType: rrType, Version: version}, nil
}

// SplitZone recovers the owner zone from a data name by locating its
// query or cert-query marker: everything before that marker is the
// zone (spec.md §4.8's "derived via the name-match above", used by the
// validator when it is not already given the owner zone).
func SplitZone(n Name) (Name, error) {
	for i := 0; i < n.Size(); i++ {
		if n.At(i).Equal(QueryMarker) || n.At(i).Equal(CertQueryMarker) {
			return n.Prefix(i), nil
		}
	}
	return Name{}, ErrMalformedMatch
}

// MatchData matches a data name against zone: the last two components
// are always version then rrType; the middle components form rrLabel
// (spec.md §4.1).
func MatchData(n Name, zone Name) (MatchResult, error) {
	if !zone.IsStrictPrefixOf(n) {
		return MatchResult{}, ErrNameMismatch
	}
	rest := n.SubName(zone.Size(), -1)
	if rest.Size() < 3 {
		return MatchResult{}, ErrMalformedMatch
	}
	marker := rest.At(0)
	if !marker.Equal(QueryMarker) && !marker.Equal(CertQueryMarker) {
		return MatchResult{}, ErrMalformedMatch
	}
	tail := rest.SubName(1, -1)
	if tail.Size() < 2 {
		return MatchResult{}, ErrMalformedMatch
	}
	version := tail.At(-1)
	if !version.IsVersion() {
		return MatchResult{}, ErrMalformedMatch
	}
	rrType := tail.At(-2)
	rrLabel := tail.Prefix(tail.Size() - 2)
	return MatchResult{RRLabel: rrLabel, RRType: rrType, Version: version}, nil
}
