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
	"os"
	"testing"
	"time"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/wire"
)

// RedisCache needs a live server, so this test only runs when one is
// reachable at NDNS_TEST_REDIS_ADDR; it is skipped otherwise rather
// than faked, since a fake Redis protocol server would not exercise
// the real go-redis wire encoding.
func testRedisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("NDNS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NDNS_TEST_REDIS_ADDR not set; skipping redis-backed cache test")
	}
	return addr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	addr := testRedisAddr(t)
	c := NewRedisCache(addr, "", 0)
	defer c.Close()

	d := &wire.Data{
		Name:            name.New("net", "example", "www"),
		ContentType:     wire.BLOB,
		FreshnessPeriod: time.Minute,
		Content:         []byte("payload"),
	}
	now := time.Now()
	c.Put("net/example/www/TXT", d, now)

	got, ok := c.Get("net/example/www/TXT", now)
	if !ok {
		t.Fatalf("expected a cache hit after Put")
	}
	if string(got.Content) != "payload" {
		t.Fatalf("unexpected content: %q", got.Content)
	}

	if _, ok := c.Get("no-such-key", now); ok {
		t.Fatalf("expected a miss for an unknown key")
	}
}

func TestRedisCacheSkipsNonPositiveFreshness(t *testing.T) {
	addr := testRedisAddr(t)
	c := NewRedisCache(addr, "", 0)
	defer c.Close()

	d := &wire.Data{
		Name:            name.New("net"),
		ContentType:     wire.BLOB,
		FreshnessPeriod: 0,
		Content:         []byte("x"),
	}
	now := time.Now()
	c.Put("zero-freshness", d, now)
	if _, ok := c.Get("zero-freshness", now); ok {
		t.Fatalf("expected Put to skip a zero-freshness entry")
	}
}
