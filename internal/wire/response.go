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
	"time"

	"github.com/named-data/ndns-go/internal/name"
)

// ContentType discriminates how a Response's content block must be
// interpreted (spec.md §3, "Content-type tag").
type ContentType uint8

const (
	RESP ContentType = 1 // generic list of sub-records
	NACK ContentType = 2 // no such record
	AUTH ContentType = 3 // authority marker: record exists under a longer label
	LINK ContentType = 4 // delegation list
	KEY  ContentType = 5 // certificate
	BLOB ContentType = 6 // opaque application payload
	DOE  ContentType = 7 // denial-of-existence
)

func (c ContentType) String() string {
	switch c {
	case RESP:
		return "RESP"
	case NACK:
		return "NACK"
	case AUTH:
		return "AUTH"
	case LINK:
		return "LINK"
	case KEY:
		return "KEY"
	case BLOB:
		return "BLOB"
	case DOE:
		return "DOE"
	default:
		return fmt.Sprintf("ContentType(%d)", uint8(c))
	}
}

// hasSubRecords reports whether this content type's wire payload is a
// Content(TLV){SubRecord*} wrapper (true) or a verbatim application
// block (false): spec.md §4.2.
func (c ContentType) hasSubRecords() bool {
	switch c {
	case RESP, AUTH, NACK, LINK:
		return true
	case BLOB, KEY, DOE:
		return false
	default:
		return false
	}
}

// Response carries the logical fields of a decoded NDNS answer
// (spec.md §4.2).
type Response struct {
	Zone        name.Name
	QueryType   name.Component // NDNS or NDNS-R
	RRLabel     name.Name
	RRType      name.Component
	Version     uint64
	ContentType ContentType
	TTL         time.Duration

	// AppContent holds the raw application payload for BLOB/KEY/DOE
	// content types (verbatim, uninterpreted by this package).
	AppContent []byte

	// SubRecords holds the decoded sub-record bytes for RESP/AUTH/NACK/LINK
	// content types, in on-wire (= insertion) order.
	SubRecords [][]byte
}

// FullName reassembles the stored-data name for this response, per
// spec.md §3's invariant: <zone>/<queryType>/<rrLabel>/<rrType>/<version>.
func (r Response) FullName() name.Name {
	n := r.Zone.Append(r.QueryType)
	for i := 0; i < r.RRLabel.Size(); i++ {
		n = n.Append(r.RRLabel.At(i))
	}
	return n.Append(r.RRType, name.NewVersionComponent(r.Version))
}

// EncodeContent serializes the Response's payload (not including the
// Data name/meta-info/signature wrapper) according to spec.md §4.2.
func EncodeContent(ct ContentType, appContent []byte, subRecords [][]byte) ([]byte, error) {
	if !ct.hasSubRecords() {
		return append([]byte(nil), appContent...), nil
	}
	var inner bytes.Buffer
	for _, sr := range subRecords {
		var wrapped []byte
		if ct == RESP {
			var rr bytes.Buffer
			WriteBlock(&rr, TagRrData, sr)
			wrapped = rr.Bytes()
		} else {
			// LINK sub-records are raw delegation-entry blocks, already
			// framed by the caller (factory.GenerateNsRrset).
			wrapped = sr
		}
		WriteBlock(&inner, TagSubRecord, wrapped)
	}
	var out bytes.Buffer
	WriteBlock(&out, TagContent, inner.Bytes())
	return out.Bytes(), nil
}

// DecodeContent parses a wire payload for a known content type, per
// spec.md §4.2 ("gated on the known content-type"). An unknown
// content type aborts decoding, as required.
func DecodeContent(ct ContentType, payload []byte) (appContent []byte, subRecords [][]byte, err error) {
	switch ct {
	case RESP, NACK, AUTH, LINK, KEY, BLOB, DOE:
		// known
	default:
		return nil, nil, fmt.Errorf("wire: unknown content type %d, aborting decode", ct)
	}
	if !ct.hasSubRecords() {
		return append([]byte(nil), payload...), nil, nil
	}
	r := bytes.NewReader(payload)
	top, err := ReadBlock(r)
	if err != nil {
		return nil, nil, err
	}
	if top.Tag != TagContent {
		return nil, nil, fmt.Errorf("wire: expected Content TLV, got tag %d", top.Tag)
	}
	blocks, err := ReadAllBlocks(top.Value)
	if err != nil {
		return nil, nil, err
	}
	for _, blk := range blocks {
		if blk.Tag != TagSubRecord {
			return nil, nil, fmt.Errorf("wire: unexpected tag %d inside Content", blk.Tag)
		}
		if ct == RESP {
			sub, err := ReadAllBlocks(blk.Value)
			if err != nil || len(sub) != 1 || sub[0].Tag != TagRrData {
				return nil, nil, fmt.Errorf("wire: malformed RrData sub-record")
			}
			subRecords = append(subRecords, sub[0].Value)
		} else {
			subRecords = append(subRecords, blk.Value)
		}
	}
	return nil, subRecords, nil
}
