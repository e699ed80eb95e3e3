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

// ndns-server is the long-running authoritative answerer (spec.md
// §4.5), grounded on the teacher's cmd/zonemaster-go and
// cmd/gnunet-service-gns-go: flag-parsed endpoints, a JSON-RPC
// side-channel started on request, and an OS-signal-driven main loop.
//
// The on-the-wire interest/data transport is explicitly out of scope
// (spec.md's "the transport face (an abstract packet send/receive
// channel)" collaborator) — this process answers every zone it loads
// on one shared in-process face.LoopFace rather than a real NDN
// forwarder socket, the same abstraction query.Controller's own tests
// use. The JSON-RPC endpoint is real, over a TCP listener, and is the
// supported way to manage zones on a running instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bfix/gospel/logger"

	"github.com/named-data/ndns-go/internal/certfetch"
	"github.com/named-data/ndns-go/internal/config"
	"github.com/named-data/ndns-go/internal/face"
	"github.com/named-data/ndns-go/internal/mgmt"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/ndnscrypto"
	"github.com/named-data/ndns-go/internal/query"
	"github.com/named-data/ndns-go/internal/server"
	"github.com/named-data/ndns-go/internal/store"
	"github.com/named-data/ndns-go/internal/validator"
	"github.com/named-data/ndns-go/internal/wire"
)

func main() {
	defer func() {
		logger.Println(logger.INFO, "[ndns-server] Bye.")
		logger.Flush()
	}()
	logger.Println(logger.INFO, "[ndns-server] Starting service...")

	var (
		dbPath   string
		cfgPath  string
		rpcAddr  string
		logLevel int
	)
	flag.StringVar(&dbPath, "d", "", "sqlite3 database file (default: config's server.database)")
	flag.StringVar(&cfgPath, "c", "", "JSON config file (default: built-in defaults)")
	flag.StringVar(&rpcAddr, "R", "", "JSON-RPC management endpoint, e.g. \":8645\" (default: none)")
	flag.IntVar(&logLevel, "L", logger.INFO, "log level")
	flag.Parse()

	logger.SetLogLevel(logLevel)

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Parse(cfgPath)
		if err != nil {
			logger.Printf(logger.ERROR, "[ndns-server] parse config %q: %s", cfgPath, err.Error())
			os.Exit(1)
		}
	}
	if dbPath == "" {
		dbPath = cfg.Server.Database
	}

	db, err := store.OpenSQLStore(dbPath)
	if err != nil {
		logger.Printf(logger.ERROR, "[ndns-server] open store %q: %s", dbPath, err.Error())
		os.Exit(1)
	}
	m := mgmt.New(db)

	zones, err := m.ListZones()
	if err != nil {
		logger.Printf(logger.ERROR, "[ndns-server] list zones: %s", err.Error())
		os.Exit(1)
	}
	if len(zones) == 0 {
		logger.Println(logger.WARN, "[ndns-server] no zones found; create one with ndns-mgmt first")
	}

	lf := face.NewLoopFace()
	cache := query.NewCache(cfg.Resolver.CacheSize)
	fetcher := certfetch.New(lf, cache, time.Duration(cfg.Resolver.InterestLifetimeMs)*time.Millisecond, cfg.Resolver.CertRetries)
	v := validator.New(fetcher)

	if anchor, identity, err := loadRootAnchor(m); err == nil {
		v = validator.New(fetcher, validator.WithAnchor(identity, anchor))
	} else {
		logger.Printf(logger.WARN, "[ndns-server] no root trust anchor available: %s", err.Error())
	}

	for _, z := range zones {
		zoneName := parseZoneName(z.Name)
		f, err := m.FactoryFor(zoneName)
		if err != nil {
			logger.Printf(logger.ERROR, "[ndns-server] factory for %v: %s", zoneName, err.Error())
			continue
		}
		srv := server.New(zoneName, z.ID, db, f, v, z.DefaultTTL)
		srv.Register(lf)
		logger.Printf(logger.INFO, "[ndns-server] serving zone %v", zoneName)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if rpcAddr != "" {
		router := mgmt.NewRouter("/rpc", &mgmt.RPCService{Manager: m})
		if err := mgmt.Serve(ctx, rpcAddr, router); err != nil {
			logger.Printf(logger.ERROR, "[ndns-server] RPC failed to start: %s", err.Error())
			cancel()
			os.Exit(1)
		}
		logger.Printf(logger.INFO, "[ndns-server] JSON-RPC management endpoint on %s", rpcAddr)
	}

	sigCh := make(chan os.Signal, 5)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf(logger.INFO, "[ndns-server] terminating on signal %q", sig)
	cancel()
}

func parseZoneName(s string) name.Name {
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return name.New()
	}
	return name.New(strings.Split(s, "/")...)
}

// loadRootAnchor reads the root zone's own KSK certificate out of the
// store and returns it alongside the root identity, so it can seed a
// self-signed trust anchor (spec.md §3: the root zone's KSK is
// self-signed and is the top of every chain).
func loadRootAnchor(m *mgmt.Manager) (*ndnscrypto.Certificate, name.Name, error) {
	root := name.New()
	rrsets, err := m.ListZone(root)
	if err != nil {
		return nil, root, err
	}
	for _, rr := range rrsets {
		if rr.Type != "CERT" || rr.Label != "/KEY/ksk-1" {
			continue
		}
		d, err := wire.DecodeData(rr.Data)
		if err != nil {
			return nil, root, err
		}
		cert, err := ndnscrypto.DecodeCertificate(d.Content)
		if err != nil {
			return nil, root, err
		}
		return cert, root, nil
	}
	return nil, root, fmt.Errorf("ndns-server: no root KSK certificate in store")
}
