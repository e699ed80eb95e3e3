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

// ndns-dig is the one-shot iterative-resolution CLI (spec.md §6's
// "dig"): exit code 0 on success, 1 on any error with a stderr
// diagnostic, grounded on the teacher's cmd/revoke-zonekey one-shot
// tool shape.
//
// Since the on-the-wire transport is an abstract collaborator (spec.md
// explicitly leaves "the transport face" out of scope), dig resolves
// against every zone held in a local database directly: it loads each
// zone from the store, stands up an authoritative server.Server for
// it, and registers all of them on one shared face.LoopFace, then runs
// the same query.Controller the resolver uses against a real network
// face. This lets dig validate and inspect locally-managed zone data
// end-to-end without requiring a live NDN forwarder.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/named-data/ndns-go/internal/certfetch"
	"github.com/named-data/ndns-go/internal/config"
	"github.com/named-data/ndns-go/internal/face"
	"github.com/named-data/ndns-go/internal/mgmt"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/query"
	"github.com/named-data/ndns-go/internal/server"
	"github.com/named-data/ndns-go/internal/store"
	"github.com/named-data/ndns-go/internal/validator"
)

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ndns-dig: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	var dbPath, cfgPath string
	var lifetimeMs int
	flag.StringVar(&dbPath, "d", "", "sqlite3 database file (default: config's server.database)")
	flag.StringVar(&cfgPath, "c", "", "JSON config file (default: built-in defaults)")
	flag.IntVar(&lifetimeMs, "t", 4000, "interest lifetime in milliseconds")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ndns-dig [-c config] [-d database] [-t lifetimeMs] <name> <rrType>\n")
	}
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Parse(cfgPath)
		if err != nil {
			fatalf("parse config %q: %s", cfgPath, err.Error())
		}
	}
	if dbPath == "" {
		dbPath = cfg.Server.Database
	}
	db, err := store.OpenSQLStore(dbPath)
	if err != nil {
		fatalf("open store %q: %s", dbPath, err.Error())
	}

	m := mgmt.New(db)
	zones, err := m.ListZones()
	if err != nil {
		fatalf("list zones: %s", err.Error())
	}

	lf := face.NewLoopFace()
	cache := query.NewCache(cfg.Resolver.CacheSize)
	fetcher := certfetch.New(lf, cache, time.Duration(lifetimeMs)*time.Millisecond, cfg.Resolver.CertRetries)
	v := validator.New(fetcher)

	for _, z := range zones {
		zoneName := parseName(z.Name)
		f, err := m.FactoryFor(zoneName)
		if err != nil {
			continue // zone has no reconstructable signer; dig simply can't reach it
		}
		srv := server.New(zoneName, z.ID, db, f, v, z.DefaultTTL)
		srv.Register(lf)
	}

	label := parseName(args[0])
	rrType := name.NewComponent(args[1])
	ctl := query.New(label, rrType, time.Duration(lifetimeMs)*time.Millisecond, cfg.Resolver.StartComponentIndex, lf, cache)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(lifetimeMs)*time.Millisecond*8)
	defer cancel()
	res, err := ctl.Run(ctx)
	if err != nil {
		fatalf("resolve %v %v: %s", label, rrType, err.Error())
	}

	fmt.Printf(";; ANSWER for %v %v\n", label, rrType)
	fmt.Printf(";; content-type: %v, ttl: %v, version: %d\n", res.Response.ContentType, res.Response.TTL, res.Response.Version)
	if len(res.Response.AppContent) > 0 {
		fmt.Printf("%s\n", res.Response.AppContent)
	}
	for _, sub := range res.Response.SubRecords {
		fmt.Printf("%s\n", sub)
	}
}

func parseName(s string) name.Name {
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return name.New()
	}
	return name.New(strings.Split(s, "/")...)
}
