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

import "fmt"

// Well-known label components, grounded on the original source's
// ndns-label.hpp constants.
var (
	IterativeQuery = NewComponent("NDNS")   // NDNS iterative-query marker
	CertQuery      = NewComponent("NDNS-R") // reserved recursive/cert-query marker
	UpdateLabel    = NewComponent("UPDATE") // last component of an update interest

	NSType      = NewComponent("NS")
	TXTType     = NewComponent("TXT")
	CertType    = NewComponent("CERT")
	AppCertType = NewComponent("APPCERT")
	DOEType     = NewComponent("DOE")
)

// MatchResult is the outcome of matching a received name against a
// zone's name (spec.md §4.1).
type MatchResult struct {
	RRLabel Name
	RRType  Component
	Version Component // zero-value Component if absent
}

// HasVersion reports whether the match captured a version component.
func (m MatchResult) HasVersion() bool {
	return m.Version.Type == VersionMarker
}

func calculateSkip(n, zone Name) (int, error) {
	skip := zone.Size()
	if n.Size() <= skip {
		return 0, fmt.Errorf("name: name is not longer than zone prefix")
	}
	if !zone.Equal(n.Prefix(zone.Size())) {
		return 0, fmt.Errorf("name: zone is not a prefix of name")
	}
	marker := n.At(skip)
	if !marker.Equal(IterativeQuery) && !marker.Equal(CertQuery) {
		return 0, fmt.Errorf("name: missing NDNS/NDNS-R query-type marker")
	}
	return skip + 1, nil
}

// MatchInterest matches an interest (query or update) name against a
// zone name, per spec.md §4.1:
//
//	zoneName / NDNS|NDNS-R / UPDATE|rrLabel / UPDATE|rrType / [VERSION]
//
// Consuming from the tail: an optional trailing version marker, then
// the rrType (or the UPDATE marker), with everything remaining in the
// middle forming rrLabel.
func MatchInterest(n, zone Name) (MatchResult, error) {
	var re MatchResult
	skip, err := calculateSkip(n, zone)
	if err != nil {
		return re, err
	}
	if n.Size()-skip < 1 {
		return re, fmt.Errorf("name: interest name too short after zone prefix")
	}
	offset := 1
	last := n.At(-offset)
	if last.IsVersion() {
		re.Version = last
		offset++
		if n.Size()-skip < offset {
			return re, fmt.Errorf("name: interest name too short after zone prefix")
		}
	}
	re.RRType = n.At(-offset)
	labelCount := n.Size() - skip - offset
	if labelCount < 0 {
		labelCount = 0
	}
	re.RRLabel = n.SubName(skip, labelCount)
	return re, nil
}

// MatchData matches a data (response) name against a zone name, per
// spec.md §4.1:
//
//	zoneName / NDNS|NDNS-R / rrLabel / rrType / VERSION
//
// The last two components are always version then rrType.
func MatchData(n, zone Name) (MatchResult, error) {
	var re MatchResult
	skip, err := calculateSkip(n, zone)
	if err != nil {
		return re, err
	}
	if n.Size()-skip < 2 {
		return re, fmt.Errorf("name: data name too short after zone prefix")
	}
	re.Version = n.At(-1)
	if !re.Version.IsVersion() {
		return re, fmt.Errorf("name: data name missing trailing version component")
	}
	re.RRType = n.At(-2)
	labelCount := n.Size() - skip - 2
	if labelCount < 0 {
		labelCount = 0
	}
	re.RRLabel = n.SubName(skip, labelCount)
	return re, nil
}
