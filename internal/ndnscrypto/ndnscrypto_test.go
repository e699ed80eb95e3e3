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

package ndnscrypto

import (
	"testing"
	"time"

	"github.com/named-data/ndns-go/internal/name"
)

type fakeSignable struct{ data []byte }

func (f fakeSignable) SignedPortion() []byte { return f.data }

func TestSignVerifyRoundTrip(t *testing.T) {
	pub, prv, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	data := []byte("the signed portion of a response")
	sig, err := prv.Sign(data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !pub.Verify(data, sig) {
		t.Fatalf("expected signature to verify")
	}
	if pub.Verify([]byte("tampered"), sig) {
		t.Fatalf("signature must not verify over different data")
	}
}

func TestKeySignerProducesVerifiableSignature(t *testing.T) {
	pub, prv, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	locator := name.New("net", "example", "KEY", "dsk-1")
	signer := &KeySigner{Key: prv, KeyLocator: locator}
	sig, gotLocator, err := signer.Sign(fakeSignable{data: []byte("hello")})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !gotLocator.Equal(locator) {
		t.Fatalf("key locator mismatch: want %v got %v", locator, gotLocator)
	}
	if !pub.Verify([]byte("hello"), sig) {
		t.Fatalf("expected signature to verify")
	}
}

func TestCertificateEncodeDecodeRoundTrip(t *testing.T) {
	subjectPub, _, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	_, issuerPrv, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	cert := &Certificate{
		SubjectKeyName: KeyName(name.New("net", "example"), "ksk-1", 1),
		SubjectKey:     subjectPub,
		NotBefore:      time.Unix(1000, 0).UTC(),
		NotAfter:       time.Unix(2000, 0).UTC(),
	}
	signer := &KeySigner{Key: issuerPrv, KeyLocator: name.New("net", "KEY", "dsk-1")}
	if err := cert.Sign(signer); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	encoded := cert.Encode()
	got, err := DecodeCertificate(encoded)
	if err != nil {
		t.Fatalf("DecodeCertificate: %v", err)
	}
	if !got.SubjectKeyName.Equal(cert.SubjectKeyName) {
		t.Fatalf("subject key name mismatch")
	}
	if got.NotBefore.Unix() != 1000 || got.NotAfter.Unix() != 2000 {
		t.Fatalf("validity window mismatch: %v %v", got.NotBefore, got.NotAfter)
	}
	if !got.IssuerKeyLocator.Equal(signer.KeyLocator) {
		t.Fatalf("issuer key locator mismatch")
	}
}

func TestIdentityStripsKeyComponents(t *testing.T) {
	kn := KeyName(name.New("net", "example"), "ksk-1", 1)
	id := Identity(kn)
	if !id.Equal(name.New("net", "example")) {
		t.Fatalf("expected identity /net/example, got %v", id)
	}
}
