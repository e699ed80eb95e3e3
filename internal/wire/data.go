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

// Data is the complete signed on-the-wire object: every stored
// rrset's Data field (spec.md §3) is the encoding of one of these. It
// wraps a Response's content plus the meta-info and signature
// envelope.
//
// Content holds whatever EncodeContent produced for the Response's
// content type: for RESP/AUTH/NACK/LINK that is already a
// self-delimiting TagContent TLV block; for BLOB/KEY/DOE it is the
// verbatim, unframed application payload (spec.md §4.2). Encode wraps
// it once more in TagDataContent so the Data envelope itself stays
// unambiguous regardless of which shape Content takes.
type Data struct {
	Name            name.Name
	ContentType     ContentType
	FreshnessPeriod time.Duration
	Content         []byte

	KeyLocator     name.Name // identity of the signing key
	SignatureValue []byte
}

func (d *Data) metaInfoBytes() []byte {
	var meta bytes.Buffer
	WriteBlock(&meta, TagNdnsType, encodeNonNegativeInteger(uint64(d.ContentType)))
	WriteBlock(&meta, TagFreshnessPeriod, encodeNonNegativeInteger(uint64(d.FreshnessPeriod/time.Millisecond)))
	return meta.Bytes()
}

// SignedPortion returns the bytes covered by the signature: the name,
// meta-info and content, but not the signature envelope itself.
func (d *Data) SignedPortion() []byte {
	var buf bytes.Buffer
	WriteBlock(&buf, TagName, encodeNameInner(d.Name))
	WriteBlock(&buf, TagMetaInfo, d.metaInfoBytes())
	WriteBlock(&buf, TagDataContent, d.Content)
	return buf.Bytes()
}

// Encode serializes the full Data object, including the signature
// envelope (key locator + signature value).
func (d *Data) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(d.SignedPortion())
	var sigInfo bytes.Buffer
	WriteBlock(&sigInfo, TagKeyLocator, EncodeName(d.KeyLocator))
	WriteBlock(&buf, TagSignatureInfo, sigInfo.Bytes())
	WriteBlock(&buf, TagSignatureValue, d.SignatureValue)
	return buf.Bytes()
}

// DecodeData parses a full Data object produced by Encode.
func DecodeData(b []byte) (*Data, error) {
	r := bytes.NewReader(b)
	d := &Data{}

	nameBlk, err := ReadBlock(r)
	if err != nil {
		return nil, err
	}
	if nameBlk.Tag != TagName {
		return nil, fmt.Errorf("wire: expected Name TLV as first field of Data")
	}
	n, err := decodeNameInner(nameBlk.Value)
	if err != nil {
		return nil, err
	}
	d.Name = n

	metaBlk, err := ReadBlock(r)
	if err != nil {
		return nil, err
	}
	if metaBlk.Tag != TagMetaInfo {
		return nil, fmt.Errorf("wire: expected MetaInfo TLV")
	}
	metaBlocks, err := ReadAllBlocks(metaBlk.Value)
	if err != nil {
		return nil, err
	}
	for _, mb := range metaBlocks {
		switch mb.Tag {
		case TagNdnsType:
			v, err := decodeNonNegativeInteger(mb.Value)
			if err != nil {
				return nil, err
			}
			d.ContentType = ContentType(v)
		case TagFreshnessPeriod:
			v, err := decodeNonNegativeInteger(mb.Value)
			if err != nil {
				return nil, err
			}
			d.FreshnessPeriod = time.Duration(v) * time.Millisecond
		default:
			return nil, fmt.Errorf("wire: unexpected MetaInfo tag %d", mb.Tag)
		}
	}

	contentBlk, err := ReadBlock(r)
	if err != nil {
		return nil, err
	}
	if contentBlk.Tag != TagDataContent {
		return nil, fmt.Errorf("wire: expected DataContent TLV")
	}
	d.Content = contentBlk.Value

	sigInfoBlk, err := ReadBlock(r)
	if err != nil {
		return nil, err
	}
	if sigInfoBlk.Tag != TagSignatureInfo {
		return nil, fmt.Errorf("wire: expected SignatureInfo TLV")
	}
	sigBlocks, err := ReadAllBlocks(sigInfoBlk.Value)
	if err != nil {
		return nil, err
	}
	for _, sb := range sigBlocks {
		if sb.Tag != TagKeyLocator {
			return nil, fmt.Errorf("wire: unexpected SignatureInfo tag %d", sb.Tag)
		}
		kl, err := DecodeName(sb.Value)
		if err != nil {
			return nil, err
		}
		d.KeyLocator = kl
	}

	sigValBlk, err := ReadBlock(r)
	if err != nil {
		return nil, err
	}
	if sigValBlk.Tag != TagSignatureValue {
		return nil, fmt.Errorf("wire: expected SignatureValue TLV")
	}
	d.SignatureValue = sigValBlk.Value
	return d, nil
}
