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
	"sync"
	"time"

	"github.com/named-data/ndns-go/internal/wire"
)

// ResultCache is what Controller consults before sending an interest
// and populates after a Data arrives. Cache below is the in-memory
// implementation; RedisCache is a shared, process-external one,
// mirroring the teacher's util.KeyValueStore split between an
// in-process map and a redis.Client-backed store.
type ResultCache interface {
	Get(key string, now time.Time) (*wire.Data, bool)
	Put(key string, d *wire.Data, now time.Time)
}

// Cache is the bounded FIFO signed-data cache the controller consults
// before sending an interest (spec.md §4.6's "in-memory LRU-style
// cache"; eviction is FIFO per spec.md §9's open-question resolution,
// since the exact algorithm is explicitly "not observable" — spec.md
// §8 — and FIFO is the simplest policy that satisfies "bounded").
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]cacheEntry
}

type cacheEntry struct {
	data      *wire.Data
	expiresAt time.Time
}

// NewCache creates a cache holding at most capacity live entries. A
// non-positive capacity disables caching outright.
func NewCache(capacity int) *Cache {
	return &Cache{capacity: capacity, entries: make(map[string]cacheEntry)}
}

var _ ResultCache = (*Cache)(nil)

// Get returns the cached Data for key if present and not yet expired
// at now.
func (c *Cache) Get(key string, now time.Time) (*wire.Data, bool) {
	if c == nil || c.capacity <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Put inserts d under key, respecting its freshness period, evicting
// the oldest entry (FIFO) if the cache is at capacity.
func (c *Cache) Put(key string, d *wire.Data, now time.Time) {
	if c == nil || c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{data: d, expiresAt: now.Add(d.FreshnessPeriod)}
}
