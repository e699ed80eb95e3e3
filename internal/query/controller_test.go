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

package query

import (
	"context"
	"testing"
	"time"

	"github.com/named-data/ndns-go/internal/face"
	"github.com/named-data/ndns-go/internal/factory"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/wire"
)

func testSigner(t *testing.T, locator name.Name) ndnscrypto.Signer {
	t.Helper()
	_, prv, err := ndnscrypto.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	return &ndnscrypto.KeySigner{Key: prv, KeyLocator: locator}
}

func TestBuildInterestNameQueryNS(t *testing.T) {
	c := &Controller{Label: name.New("net", "example", "www"), Type: name.NewComponent("TXT")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 1
	n, err := c.buildInterestName()
	if err != nil {
		t.Fatalf("buildInterestName: %v", err)
	}
	want := name.New("NDNS", "net", "NS")
	if !n.Equal(want) {
		t.Fatalf("want %v got %v", want, n)
	}
}

func TestBuildInterestNameQueryRR(t *testing.T) {
	c := &Controller{Label: name.New("net", "example", "www"), Type: name.NewComponent("TXT")}
	c.step = QueryRR
	c.nFinishedComps = 2
	n, err := c.buildInterestName()
	if err != nil {
		t.Fatalf("buildInterestName: %v", err)
	}
	want := name.New("net", "example").Append(name.NewComponent("NDNS"), name.NewComponent("www"), name.NewComponent("TXT"))
	if !n.Equal(want) {
		t.Fatalf("want %v got %v", want, n)
	}
}

func TestBuildInterestNameQueryRRUsesCertMarkerForCert(t *testing.T) {
	c := &Controller{Label: name.New("net", "KEY", "ksk-1"), Type: name.NewComponent("CERT")}
	c.step = QueryRR
	c.nFinishedComps = 1
	n, err := c.buildInterestName()
	if err != nil {
		t.Fatalf("buildInterestName: %v", err)
	}
	want := name.New("net").Append(name.NewComponent("NDNS-R"), name.NewComponent("KEY"), name.NewComponent("ksk-1"), name.NewComponent("CERT"))
	if !n.Equal(want) {
		t.Fatalf("want %v got %v", want, n)
	}
}

func TestTransitionNackAtFinalComponentNonNSMovesToQueryRR(t *testing.T) {
	c := &Controller{Label: name.New("net"), Type: name.NewComponent("TXT")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 1
	c.transition(&wire.Data{ContentType: wire.NACK})
	if c.step != QueryRR {
		t.Fatalf("expected QueryRR, got %v", c.step)
	}
}

func TestTransitionNackElseGoesToAnswerStub(t *testing.T) {
	c := &Controller{Label: name.New("net", "example"), Type: name.NewComponent("TXT")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 1
	c.transition(&wire.Data{ContentType: wire.NACK})
	if c.step != AnswerStub {
		t.Fatalf("expected AnswerStub, got %v", c.step)
	}
}

func TestTransitionLinkAtTargetForNSTypeAnswers(t *testing.T) {
	zone := name.New("net")
	f := factory.New(zone, testSigner(t, zone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))))
	d, err := f.GenerateNsRrset(name.New(), 1, time.Hour, nil)
	if err != nil {
		t.Fatalf("GenerateNsRrset: %v", err)
	}
	c := &Controller{Label: name.New("net"), Type: name.NewComponent("NS")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 1
	c.transition(d)
	if c.step != AnswerStub {
		t.Fatalf("expected AnswerStub, got %v", c.step)
	}
}

func TestTransitionLinkAdvancesAndRemembersHint(t *testing.T) {
	zone := name.New("net")
	f := factory.New(zone, testSigner(t, zone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1"))))
	delegations := []factory.Delegation{{Name: name.New("net", "example"), Cost: 1}}
	d, err := f.GenerateNsRrset(name.New(), 1, time.Hour, delegations)
	if err != nil {
		t.Fatalf("GenerateNsRrset: %v", err)
	}
	c := &Controller{Label: name.New("net", "example", "www"), Type: name.NewComponent("TXT")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 1
	c.transition(d)
	if c.step != QueryNS {
		t.Fatalf("expected to remain in QueryNS, got %v", c.step)
	}
	if c.nFinishedComps != 1 || c.nTryComps != 1 {
		t.Fatalf("unexpected progress: nFinishedComps=%d nTryComps=%d", c.nFinishedComps, c.nTryComps)
	}
	if len(c.hint) != 1 || !c.hint[0].Equal(name.New("net", "example")) {
		t.Fatalf("expected forwarding hint to be remembered, got %+v", c.hint)
	}
}

func TestTransitionAuthExtendsProbe(t *testing.T) {
	c := &Controller{Label: name.New("net", "example"), Type: name.NewComponent("TXT")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 1
	c.transition(&wire.Data{ContentType: wire.AUTH})
	if c.step != QueryNS {
		t.Fatalf("expected to remain in QueryNS, got %v", c.step)
	}
	if c.nTryComps != 2 {
		t.Fatalf("expected nTryComps to extend to 2, got %d", c.nTryComps)
	}
}

// TestTransitionAuthAtBoundaryProgresses covers the NS-at-terminal-depth
// case: an AUTH arriving when the probe already spans the whole label
// (nFinishedComps+nTryComps == k) must still advance nTryComps and then
// leave QueryNS, rather than reissuing the same probe forever.
func TestTransitionAuthAtBoundaryProgresses(t *testing.T) {
	c := &Controller{Label: name.New("net", "example"), Type: name.NewComponent("NS")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 2
	c.transition(&wire.Data{ContentType: wire.AUTH})
	if c.nTryComps != 3 {
		t.Fatalf("expected nTryComps to increment unconditionally to 3, got %d", c.nTryComps)
	}
	if c.step != AnswerStub {
		t.Fatalf("expected NS query at boundary to move to AnswerStub, got %v", c.step)
	}
}

// TestTransitionAuthAtBoundaryQueriesRR is the non-NS counterpart: at
// the same boundary, a non-NS query moves to QueryRR instead.
func TestTransitionAuthAtBoundaryQueriesRR(t *testing.T) {
	c := &Controller{Label: name.New("net", "example"), Type: name.NewComponent("TXT")}
	c.step = QueryNS
	c.nFinishedComps = 0
	c.nTryComps = 2
	c.transition(&wire.Data{ContentType: wire.AUTH})
	if c.step != QueryRR {
		t.Fatalf("expected TXT query at boundary to move to QueryRR, got %v", c.step)
	}
}

func TestTransitionQueryRRAlwaysAnswers(t *testing.T) {
	c := &Controller{Label: name.New("net"), Type: name.NewComponent("NS")}
	c.step = QueryRR
	c.transition(&wire.Data{ContentType: wire.RESP})
	if c.step != AnswerStub {
		t.Fatalf("QueryRR must always move to AnswerStub, got %v", c.step)
	}
}

// TestRunNSQueryTerminatesOnSecondLinkWithoutExtraProbe exercises an
// NS-typed query whose target is itself the delegation boundary: the
// controller must stop on the LINK that names the target zone and
// must not issue a third interest probing past it.
func TestRunNSQueryTerminatesOnSecondLinkWithoutExtraProbe(t *testing.T) {
	lf := face.NewLoopFace()
	var interestCount int

	rootZone := name.New()
	rootSigner := testSigner(t, rootZone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1")))
	rootFactory := factory.New(rootZone, rootSigner)
	lf.SetInterestFilter(name.New("NDNS"), func(i face.Interest) (*wire.Data, error) {
		interestCount++
		return rootFactory.GenerateNsRrset(name.New("net"), 1, time.Hour,
			[]factory.Delegation{{Name: name.New("net"), Cost: 1}})
	})

	netZone := name.New("net")
	netSigner := testSigner(t, netZone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1")))
	netFactory := factory.New(netZone, netSigner)
	lf.SetInterestFilter(netZone.Append(name.NewComponent("NDNS")), func(i face.Interest) (*wire.Data, error) {
		interestCount++
		return netFactory.GenerateNsRrset(name.New("example"), 1, time.Hour,
			[]factory.Delegation{{Name: name.New("net", "example"), Cost: 1}})
	})

	c := New(name.New("net", "example"), name.NewComponent("NS"), time.Second, 0, lf, NewCache(16))
	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if interestCount != 2 {
		t.Fatalf("expected exactly two interests, got %d", interestCount)
	}
	if res.Response.ContentType != wire.LINK {
		t.Fatalf("expected LINK, got %v", res.Response.ContentType)
	}
}

// TestRunTwoHopDelegation exercises the full resolution of
// /net/example/www (TXT), mirroring the two-NS-hop scenario from
// spec.md §8: root answers NS for "net" with a LINK, "net" answers NS
// for "example" with a LINK, then "example" answers the TXT query
// directly.
func TestRunTwoHopDelegation(t *testing.T) {
	lf := face.NewLoopFace()

	rootZone := name.New()
	rootSigner := testSigner(t, rootZone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1")))
	rootFactory := factory.New(rootZone, rootSigner)
	lf.SetInterestFilter(name.New("NDNS"), func(i face.Interest) (*wire.Data, error) {
		return rootFactory.GenerateNsRrset(name.New("net"), 1, time.Hour,
			[]factory.Delegation{{Name: name.New("net"), Cost: 1}})
	})

	netZone := name.New("net")
	netSigner := testSigner(t, netZone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1")))
	netFactory := factory.New(netZone, netSigner)
	lf.SetInterestFilter(netZone.Append(name.NewComponent("NDNS")), func(i face.Interest) (*wire.Data, error) {
		return netFactory.GenerateNsRrset(name.New("example"), 1, time.Hour,
			[]factory.Delegation{{Name: name.New("net", "example"), Cost: 1}})
	})

	exampleZone := name.New("net", "example")
	exampleSigner := testSigner(t, exampleZone.Append(name.NewComponent("KEY"), name.NewComponent("dsk-1")))
	exampleFactory := factory.New(exampleZone, exampleSigner)
	lf.SetInterestFilter(exampleZone.Append(name.NewComponent("NDNS")), func(i face.Interest) (*wire.Data, error) {
		return exampleFactory.GenerateTxtRrset(name.New("www"), 1, time.Hour, []string{"hello"})
	})

	c := New(name.New("net", "example", "www"), name.NewComponent("TXT"), time.Second, 0, lf, NewCache(16))
	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Response.ContentType != wire.RESP {
		t.Fatalf("expected RESP, got %v", res.Response.ContentType)
	}
	if len(res.Response.SubRecords) != 1 || string(res.Response.SubRecords[0]) != "hello" {
		t.Fatalf("unexpected sub-records: %v", res.Response.SubRecords)
	}
}
