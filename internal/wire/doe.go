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

// Doe is the denial-of-existence payload (spec.md §4.2): a signed pair
// of adjacent existing labels that prove no label lies strictly
// between them. It is carried as the AppContent of a DOE-typed
// Response, under TagDoeNames.
type Doe struct {
	Lower name.Name
	Upper name.Name
}

// EncodeDoe renders a Doe pair as the verbatim application payload a
// DOE-typed Response stores in its Content field.
func EncodeDoe(d Doe) []byte {
	var inner bytes.Buffer
	WriteBlock(&inner, TagName, encodeNameInner(d.Lower))
	WriteBlock(&inner, TagName, encodeNameInner(d.Upper))
	var out bytes.Buffer
	WriteBlock(&out, TagDoeNames, inner.Bytes())
	return out.Bytes()
}

// DecodeDoe parses a Doe pair out of a DOE-typed Response's AppContent.
func DecodeDoe(b []byte) (Doe, error) {
	r := bytes.NewReader(b)
	top, err := ReadBlock(r)
	if err != nil {
		return Doe{}, err
	}
	if top.Tag != TagDoeNames {
		return Doe{}, fmt.Errorf("wire: expected DoeNames TLV, got tag %d", top.Tag)
	}
	blocks, err := ReadAllBlocks(top.Value)
	if err != nil {
		return Doe{}, err
	}
	if len(blocks) != 2 || blocks[0].Tag != TagName || blocks[1].Tag != TagName {
		return Doe{}, fmt.Errorf("wire: malformed DoeNames (want exactly two Name blocks)")
	}
	lower, err := decodeNameInner(blocks[0].Value)
	if err != nil {
		return Doe{}, err
	}
	upper, err := decodeNameInner(blocks[1].Value)
	if err != nil {
		return Doe{}, err
	}
	return Doe{Lower: lower, Upper: upper}, nil
}
