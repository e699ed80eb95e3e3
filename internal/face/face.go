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

// Package face defines the minimal packet transport abstraction the
// query controller and authoritative server need. The wire transport
// itself is explicitly out of scope (spec.md §1); this package ships
// only the interface plus one in-process implementation sufficient to
// drive the end-to-end scenarios in spec.md §8 — grounded on the
// teacher's gnunet/transport package shape (MsgChannel, callback
// registration) and service/gns/service.go's direct function-reference
// wiring.
package face

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/wire"
)

// ErrTimeout is returned by Express when no registered handler answers
// an interest before its lifetime elapses (spec.md §4.6's "timeout").
var ErrTimeout = errors.New("face: interest timed out")

// Interest is the outgoing query: a name, an application lifetime, and
// an optional forwarding hint (spec.md §4.6's "forwarding-hint
// handling").
type Interest struct {
	Name            name.Name
	Lifetime        time.Duration
	ForwardingHints []name.Name
}

// Handler answers an interest matched against a registered prefix. A
// nil Data with no error means "no record, drop" at the face level;
// the caller observes this as a timeout, exactly like the teacher's
// transport does for unanswered interests.
type Handler func(Interest) (*wire.Data, error)

// Face is the abstract packet send/receive channel the controller and
// server depend on.
type Face interface {
	// Express sends an interest and waits (cooperatively) for either a
	// matching Data, an error, or ctx cancellation/timeout.
	Express(ctx context.Context, i Interest) (*wire.Data, error)
	// SetInterestFilter registers h to answer interests under prefix.
	// Registering the same prefix twice replaces the previous handler.
	SetInterestFilter(prefix name.Name, h Handler)
}

// LoopFace is a direct in-process Face: Express performs longest-prefix
// match against registered filters and calls the handler synchronously
// — no real network stack, sufficient to wire an authoritative server
// directly to a query controller in the same process (spec.md §4.11).
type LoopFace struct {
	mu       sync.RWMutex
	handlers []registeredHandler
}

type registeredHandler struct {
	prefix name.Name
	h      Handler
}

// NewLoopFace creates an empty in-process face.
func NewLoopFace() *LoopFace {
	return &LoopFace{}
}

// SetInterestFilter implements Face.
func (f *LoopFace) SetInterestFilter(prefix name.Name, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rh := range f.handlers {
		if rh.prefix.Equal(prefix) {
			f.handlers[i].h = h
			return
		}
	}
	f.handlers = append(f.handlers, registeredHandler{prefix: prefix, h: h})
}

// Express implements Face: longest matching prefix wins.
func (f *LoopFace) Express(ctx context.Context, i Interest) (*wire.Data, error) {
	f.mu.RLock()
	var best *registeredHandler
	for idx := range f.handlers {
		rh := &f.handlers[idx]
		if rh.prefix.IsPrefixOf(i.Name) {
			if best == nil || rh.prefix.Size() > best.prefix.Size() {
				best = rh
			}
		}
	}
	f.mu.RUnlock()

	if best == nil {
		return nil, ErrTimeout
	}
	select {
	case <-ctx.Done():
		return nil, ErrTimeout
	default:
	}
	data, err := best.h(i)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrTimeout
	}
	return data, nil
}
