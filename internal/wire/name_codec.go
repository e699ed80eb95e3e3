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

package wire

import (
	"bytes"
	"fmt"

	"github.com/named-data/ndns-go/internal/name"
)

// encodeNameInner renders the component sequence of a Name without
// the outer TagName wrapper, so callers that embed a Name inside a
// larger structure (e.g. Data's own top-level name field) can choose
// where the wrapping TLV header goes.
func encodeNameInner(n name.Name) []byte {
	var inner bytes.Buffer
	for i := 0; i < n.Size(); i++ {
		c := n.At(i)
		tag := TagComponentGeneric
		if c.IsVersion() {
			tag = TagComponentVersion
		}
		WriteBlock(&inner, tag, c.Value)
	}
	return inner.Bytes()
}

// decodeNameInner is the symmetric counterpart of encodeNameInner: it
// expects the raw component-block sequence (i.e. the Value of an
// already-consumed TagName block).
func decodeNameInner(inner []byte) (name.Name, error) {
	blocks, err := ReadAllBlocks(inner)
	if err != nil {
		return name.Name{}, err
	}
	comps := make([]name.Component, 0, len(blocks))
	for _, blk := range blocks {
		switch blk.Tag {
		case TagComponentGeneric:
			comps = append(comps, name.Component{Type: name.Generic, Value: blk.Value})
		case TagComponentVersion:
			comps = append(comps, name.Component{Type: name.VersionMarker, Value: blk.Value})
		default:
			return name.Name{}, fmt.Errorf("wire: unexpected component tag %d", blk.Tag)
		}
	}
	return name.FromComponents(comps...), nil
}

// EncodeNameInner is the exported form of encodeNameInner, for callers
// outside this package that embed a Name inside their own TLV
// structure (e.g. ndnscrypto.Certificate's subject/issuer key names).
func EncodeNameInner(n name.Name) []byte { return encodeNameInner(n) }

// DecodeNameInner is the exported form of decodeNameInner.
func DecodeNameInner(inner []byte) (name.Name, error) { return decodeNameInner(inner) }

// EncodeName renders a Name as a complete TLV-Name block: TagName{
// component* }, each component tagged Generic or Version. Used
// wherever a Name is embedded as an opaque, self-delimiting field
// (e.g. a LINK content's delegation entries, a DoE's two names).
func EncodeName(n name.Name) []byte {
	var out bytes.Buffer
	WriteBlock(&out, TagName, encodeNameInner(n))
	return out.Bytes()
}

// DecodeName parses a TLV-Name block produced by EncodeName.
func DecodeName(b []byte) (name.Name, error) {
	r := bytes.NewReader(b)
	top, err := ReadBlock(r)
	if err != nil {
		return name.Name{}, err
	}
	if top.Tag != TagName {
		return name.Name{}, fmt.Errorf("wire: expected Name TLV, got tag %d", top.Tag)
	}
	return decodeNameInner(top.Value)
}
