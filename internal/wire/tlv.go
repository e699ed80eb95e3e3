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

// Package wire implements the record (Rrset/Response) codec: a nested
// TLV encoding for signed data objects and the content blocks they
// carry, following the layout in spec.md §4.2 and §6. The low-level
// varnumber framing mirrors NDN TLV encoding; the reflective
// fixed-field marshalling style is grounded on the teacher's
// message/marshal.go (itself vendored from github.com/bfix/gospel/data),
// adapted here into genuine type-length-value framing so that nested,
// self-describing SubRecord sequences can be expressed.
package wire

import (
	"bytes"
	"fmt"
)

// Tag is a TLV type number. Exact values are local to this
// deployment (spec.md §6: "exact tag numbers are chosen by the
// implementation but must be stable across server/client").
type Tag uint64

const (
	TagName              Tag = 1
	TagComponentGeneric  Tag = 2
	TagComponentVersion  Tag = 3
	TagContent           Tag = 4 // "Content(TLV)" in the spec's glossary
	TagSubRecord         Tag = 5
	TagRrData            Tag = 6
	TagDelegationList    Tag = 7
	TagDelegationEntry   Tag = 8
	TagDoeNames          Tag = 9
	TagUpdateReturnCode  Tag = 11
	TagUpdateReturnMsg   Tag = 12
	TagSignatureInfo     Tag = 13
	TagKeyLocator        Tag = 14
	TagSignatureValue    Tag = 15
	TagMetaInfo          Tag = 16
	TagFreshnessPeriod   Tag = 17
	TagNdnsType          Tag = 18 // meta-info integer, per spec.md §6
	TagDataContent       Tag = 19 // outer framing around a Response's wire payload

	// Certificate fields (spec.md §3: "self-contained signed blobs").
	TagCertificate          Tag = 20
	TagCertSubjectKeyName   Tag = 21
	TagCertPublicKey        Tag = 22
	TagCertValidFrom        Tag = 23
	TagCertValidUntil       Tag = 24
	TagCertIssuerKeyLocator Tag = 25
	TagCertIssuerSignature  Tag = 26

	// DelegationEntry fields, used inside a LINK content's delegation list.
	TagDelegationName Tag = 27
	TagDelegationCost Tag = 28
)

// writeVarNumber encodes a non-negative integer using NDN TLV's
// variable-length number encoding: values below 253 take one byte;
// larger values are prefixed with 0xFD/0xFE/0xFF followed by a fixed
// 2/4/8 byte big-endian value.
func writeVarNumber(buf *bytes.Buffer, v uint64) {
	switch {
	case v < 253:
		buf.WriteByte(byte(v))
	case v <= 0xFFFF:
		buf.WriteByte(0xFD)
		buf.Write([]byte{byte(v >> 8), byte(v)})
	case v <= 0xFFFFFFFF:
		buf.WriteByte(0xFE)
		buf.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	default:
		buf.WriteByte(0xFF)
		b := make([]byte, 8)
		for i := 7; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
		buf.Write(b)
	}
}

func readVarNumber(r *bytes.Reader) (uint64, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("wire: truncated varnumber: %w", err)
	}
	switch {
	case first < 253:
		return uint64(first), nil
	case first == 0xFD:
		b := make([]byte, 2)
		if _, err := r.Read(b); err != nil {
			return 0, fmt.Errorf("wire: truncated varnumber (2-byte): %w", err)
		}
		return uint64(b[0])<<8 | uint64(b[1]), nil
	case first == 0xFE:
		b := make([]byte, 4)
		if _, err := r.Read(b); err != nil {
			return 0, fmt.Errorf("wire: truncated varnumber (4-byte): %w", err)
		}
		var v uint64
		for _, by := range b {
			v = v<<8 | uint64(by)
		}
		return v, nil
	default:
		b := make([]byte, 8)
		if _, err := r.Read(b); err != nil {
			return 0, fmt.Errorf("wire: truncated varnumber (8-byte): %w", err)
		}
		var v uint64
		for _, by := range b {
			v = v<<8 | uint64(by)
		}
		return v, nil
	}
}

// WriteBlock appends a single TLV block (tag, length, value) to buf.
func WriteBlock(buf *bytes.Buffer, tag Tag, value []byte) {
	writeVarNumber(buf, uint64(tag))
	writeVarNumber(buf, uint64(len(value)))
	buf.Write(value)
}

// Block is a single decoded TLV element.
type Block struct {
	Tag   Tag
	Value []byte
}

// ReadBlock reads a single TLV block from r.
func ReadBlock(r *bytes.Reader) (Block, error) {
	tag, err := readVarNumber(r)
	if err != nil {
		return Block{}, err
	}
	length, err := readVarNumber(r)
	if err != nil {
		return Block{}, err
	}
	value := make([]byte, length)
	if length > 0 {
		n, err := r.Read(value)
		if err != nil || uint64(n) != length {
			return Block{}, fmt.Errorf("wire: truncated TLV value for tag %d (want %d, got %d)", tag, length, n)
		}
	}
	return Block{Tag: Tag(tag), Value: value}, nil
}

// ReadAllBlocks decodes a flat sequence of sibling TLV blocks from b.
func ReadAllBlocks(b []byte) ([]Block, error) {
	r := bytes.NewReader(b)
	var blocks []Block
	for r.Len() > 0 {
		blk, err := ReadBlock(r)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, blk)
	}
	return blocks, nil
}

// encodeNonNegativeInteger is the minimal big-endian integer encoding
// used for TLV value payloads that carry a bare integer (NdnsType,
// UpdateReturnCode, FreshnessPeriod).
func encodeNonNegativeInteger(v uint64) []byte {
	switch {
	case v <= 0xFF:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		return []byte{byte(v >> 8), byte(v)}
	case v <= 0xFFFFFFFF:
		return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	default:
		b := make([]byte, 8)
		for i := 7; i >= 0; i-- {
			b[i] = byte(v)
			v >>= 8
		}
		return b
	}
}

// EncodeNonNegativeInteger is the exported form of encodeNonNegativeInteger.
func EncodeNonNegativeInteger(v uint64) []byte { return encodeNonNegativeInteger(v) }

// DecodeNonNegativeInteger is the exported form of decodeNonNegativeInteger.
func DecodeNonNegativeInteger(b []byte) (uint64, error) { return decodeNonNegativeInteger(b) }

func decodeNonNegativeInteger(b []byte) (uint64, error) {
	switch len(b) {
	case 1, 2, 4, 8:
		var v uint64
		for _, by := range b {
			v = v<<8 | uint64(by)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("wire: malformed nonNegativeInteger (len=%d)", len(b))
	}
}
