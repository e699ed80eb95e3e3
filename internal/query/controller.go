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

// Package query implements the iterative query controller (spec.md
// §4.6), the dominant component of the resolution path: it walks the
// zone hierarchy one delegation at a time, exactly mirroring the
// original source's explicit step/nFinishedComps/nTryComps state
// machine. The label-at-a-time for-loop shape and logger.Printf
// diagnostics at each transition are grounded on the teacher's
// gnunet/service/gns/module.go ResolveRelative loop.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bfix/gospel/logger"

	"github.com/named-data/ndns-go/internal/face"
	"github.com/named-data/ndns-go/internal/factory"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/wire"
)

// Step is the controller's resolution state (spec.md §4.6).
type Step int

const (
	QueryNS Step = iota
	QueryRR
	AnswerStub
	Abort
)

func (s Step) String() string {
	switch s {
	case QueryNS:
		return "QueryNS"
	case QueryRR:
		return "QueryRR"
	case AnswerStub:
		return "AnswerStub"
	case Abort:
		return "Abort"
	default:
		return "?"
	}
}

// Error is the structured failure value surfaced to the caller, per
// spec.md §7's "structured error values (kind + human text)".
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("query: [%d] %s", e.Code, e.Msg) }

// ErrAlreadyRunning guards against a second Run on a live controller
// (spec.md §4.6: "a fresh start() on an already-running controller is
// disallowed").
var ErrAlreadyRunning = errors.New("query: controller is already running")

var nsType = name.NewComponent("NS")
var certType = name.NewComponent("CERT")

// Result is what a successful resolution returns: the raw signed Data
// plus its parsed Response, using the controller's final working zone
// as the zone name (spec.md §4.6's "Termination").
type Result struct {
	Data     *wire.Data
	Response wire.Response
}

// Controller drives one iterative resolution of (Label, Type). It is
// single-use: call Run once.
type Controller struct {
	Label               name.Name
	Type                name.Component
	Lifetime            time.Duration
	StartComponentIndex int
	Face                face.Face
	Cache               ResultCache

	step           Step
	nFinishedComps int
	nTryComps      int
	hint           []name.Name
	lastData       *wire.Data
	running        bool
}

// New creates a Controller for (label, rrType) with the given face and
// cache (cache may be nil, or a nil *Cache, to disable caching).
func New(label name.Name, rrType name.Component, lifetime time.Duration, startComponentIndex int, f face.Face, cache ResultCache) *Controller {
	return &Controller{
		Label:               label,
		Type:                rrType,
		Lifetime:            lifetime,
		StartComponentIndex: startComponentIndex,
		Face:                f,
		Cache:               cache,
	}
}

// Run drives the controller to completion, returning the resolved
// Result or a structured Error.
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	if c.running {
		return nil, ErrAlreadyRunning
	}
	c.running = true
	defer func() { c.running = false }()

	c.step = QueryNS
	c.nFinishedComps = c.StartComponentIndex
	c.nTryComps = 1
	if c.Label.Size() == c.nFinishedComps {
		c.step = QueryRR
	}

	for {
		switch c.step {
		case AnswerStub:
			zone := c.Label.Prefix(c.nFinishedComps)
			resp, err := parseResponse(c.lastData, zone)
			if err != nil {
				logger.Printf(logger.ERROR, "[query] parse response against zone %v: %v", zone, err)
				return nil, &Error{Code: 2, Msg: err.Error()}
			}
			return &Result{Data: c.lastData, Response: resp}, nil
		case Abort:
			return nil, &Error{Code: 1, Msg: "protocol error: unexpected content-type for step"}
		}

		interestName, err := c.buildInterestName()
		if err != nil {
			return nil, &Error{Code: 1, Msg: err.Error()}
		}
		logger.Printf(logger.DBG, "[query] step=%v express %v", c.step, interestName)

		data, err := c.fetch(ctx, interestName)
		if err != nil {
			if errors.Is(err, face.ErrTimeout) {
				return nil, &Error{Code: 0, Msg: "abort"}
			}
			return nil, &Error{Code: 1, Msg: err.Error()}
		}
		c.lastData = data
		c.transition(data)
	}
}

func (c *Controller) fetch(ctx context.Context, n name.Name) (*wire.Data, error) {
	key := n.String()
	now := time.Now()
	if c.Cache != nil {
		if d, ok := c.Cache.Get(key, now); ok {
			logger.Printf(logger.DBG, "[query] cache hit for %v", n)
			return d, nil
		}
	}
	d, err := c.Face.Express(ctx, face.Interest{Name: n, Lifetime: c.Lifetime, ForwardingHints: c.hint})
	if err != nil {
		return nil, err
	}
	if c.Cache != nil {
		c.Cache.Put(key, d, now)
	}
	return d, nil
}

// buildInterestName implements spec.md §4.6's "Issuing the next interest".
func (c *Controller) buildInterestName() (name.Name, error) {
	k := c.Label.Size()
	switch c.step {
	case QueryNS:
		end := c.nFinishedComps + c.nTryComps
		if end > k {
			end = k
		}
		probe := c.Label.SubName(c.nFinishedComps, end-c.nFinishedComps)
		n := c.Label.Prefix(c.nFinishedComps).Append(name.NewComponent("NDNS"))
		for i := 0; i < probe.Size(); i++ {
			n = n.Append(probe.At(i))
		}
		return n.Append(nsType), nil
	case QueryRR:
		remaining := c.Label.SubName(c.nFinishedComps, -1)
		marker := name.NewComponent("NDNS")
		if c.Type.Equal(certType) {
			marker = name.NewComponent("NDNS-R")
		}
		n := c.Label.Prefix(c.nFinishedComps).Append(marker)
		for i := 0; i < remaining.Size(); i++ {
			n = n.Append(remaining.At(i))
		}
		return n.Append(c.Type), nil
	default:
		return name.Name{}, fmt.Errorf("cannot issue interest in step %v", c.step)
	}
}

// transition implements spec.md §4.6's per-step state transition table.
//
// The LINK case resolves the "probe reached the target component"
// boundary itself rather than through a separate post-check: an
// NS-typed query stops on the zone that issued this LINK (so
// nFinishedComps/nTryComps are left untouched — AnswerStub parses
// lastData against the CURRENT working zone), while any other type
// advances into the newly-confirmed delegation and, once at most one
// label of the target remains unconfirmed, moves straight to QueryRR,
// skipping the otherwise-redundant NS probe for the final label.
func (c *Controller) transition(data *wire.Data) {
	k := c.Label.Size()
	switch c.step {
	case QueryNS:
		switch data.ContentType {
		case wire.NACK:
			if c.nFinishedComps+c.nTryComps == k && !c.Type.Equal(nsType) {
				c.step = QueryRR
			} else {
				c.step = AnswerStub
			}
		case wire.LINK:
			reached := c.nFinishedComps+c.nTryComps == k
			if reached && c.Type.Equal(nsType) {
				c.step = AnswerStub
				return
			}
			c.rememberHint(data)
			c.nFinishedComps += c.nTryComps
			c.nTryComps = 1
			if c.nFinishedComps >= k-1 {
				c.step = QueryRR
			}
		case wire.AUTH:
			c.nTryComps++
			if c.nFinishedComps+c.nTryComps > k {
				if c.Type.Equal(nsType) {
					c.step = AnswerStub
				} else {
					c.step = QueryRR
				}
			}
		case wire.BLOB:
			logger.Printf(logger.WARN, "[query] unexpected BLOB content under QueryNS, no progress")
		default:
			c.step = Abort
		}
	case QueryRR:
		c.step = AnswerStub
	default:
		c.step = Abort
	}
}

// Hint returns the forwarding hint the controller has accumulated so
// far: the delegation list from the most recent LINK response with a
// non-empty delegation list. It is a plain accessor, read after Run.
// An NS-typed query that stops on the LINK naming its target does not
// record that LINK's delegations here.
func (c *Controller) Hint() []name.Name {
	return c.hint
}

// rememberHint extracts the delegation list from a LINK response and
// installs it as the forwarding hint for subsequent interests under
// the newly-confirmed working zone (spec.md §4.6's "Forwarding-hint
// handling"). Empty delegation lists are omitted, leaving any
// previously remembered hint untouched.
func (c *Controller) rememberHint(data *wire.Data) {
	_, subs, err := wire.DecodeContent(data.ContentType, data.Content)
	if err != nil {
		logger.Printf(logger.WARN, "[query] decode LINK content: %v", err)
		return
	}
	delegations, err := factory.DecodeDelegations(subs)
	if err != nil {
		logger.Printf(logger.WARN, "[query] decode delegation list: %v", err)
		return
	}
	if len(delegations) == 0 {
		return
	}
	hints := make([]name.Name, len(delegations))
	for i, d := range delegations {
		hints[i] = d.Name
	}
	c.hint = hints
}

// parseResponse builds a wire.Response from the final Data using zone
// as the owner zone name, per spec.md §4.6's AnswerStub termination.
func parseResponse(data *wire.Data, zone name.Name) (wire.Response, error) {
	match, err := name.MatchData(data.Name, zone)
	if err != nil {
		return wire.Response{}, err
	}
	version, err := match.Version.ToVersion()
	if err != nil {
		return wire.Response{}, err
	}
	appContent, subs, err := wire.DecodeContent(data.ContentType, data.Content)
	if err != nil {
		return wire.Response{}, err
	}
	queryType := data.Name.At(zone.Size())
	return wire.Response{
		Zone:        zone,
		QueryType:   queryType,
		RRLabel:     match.RRLabel,
		RRType:      match.RRType,
		Version:     version,
		ContentType: data.ContentType,
		TTL:         data.FreshnessPeriod,
		AppContent:  appContent,
		SubRecords:  subs,
	}, nil
}
