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

// ndns-mgmt is the zone-management CLI (spec.md §6's "CLI surface
// ... create-zone, delete-zone, add-rr, add-rr-from-file, remove-rr,
// get-rr, list-zone, list-all-zones"): exit code 0 on success, 1 on
// any error with a stderr diagnostic, grounded on the teacher's
// cmd/revoke-zonekey one-shot-tool shape (flag-parsed arguments,
// log.Fatal/os.Exit(1) for terminal errors) rather than its
// long-running service tools.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/named-data/ndns-go/internal/config"
	"github.com/named-data/ndns-go/internal/mgmt"
	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/store"
)

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ndns-mgmt: "+format+"\n", args...)
	os.Exit(1)
}

func parseName(s string) name.Name {
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return name.New()
	}
	return name.New(strings.Split(s, "/")...)
}

func openManager(dbPath string) *mgmt.Manager {
	db, err := store.OpenSQLStore(dbPath)
	if err != nil {
		fatalf("open store %q: %s", dbPath, err.Error())
	}
	return mgmt.New(db)
}

func main() {
	var dbPath, cfgPath string
	flag.StringVar(&dbPath, "d", "", "sqlite3 database file (default: config's server.database)")
	flag.StringVar(&cfgPath, "c", "", "JSON config file (default: built-in defaults)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `usage: ndns-mgmt [-d database] <command> [args...]

commands:
  create-zone   <zone> <defaultTtlSeconds> [parentZone]
  delete-zone   <zone>
  add-rr        <zone> <label> <rrType> <version> <ttlSeconds> <elements...>
  add-rr-from-file <zone> <label> <rrType> <version> <ttlSeconds> <file>
  remove-rr     <zone> <label> <rrType>
  get-rr        <zone> <label> <rrType>
  list-zone     <zone>
  list-all-zones
`)
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
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
	m := openManager(dbPath)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create-zone":
		cmdCreateZone(m, rest)
	case "delete-zone":
		cmdDeleteZone(m, rest)
	case "add-rr":
		cmdAddRR(m, rest)
	case "add-rr-from-file":
		cmdAddRRFromFile(m, rest)
	case "remove-rr":
		cmdRemoveRR(m, rest)
	case "get-rr":
		cmdGetRR(m, rest)
	case "list-zone":
		cmdListZone(m, rest)
	case "list-all-zones":
		cmdListAllZones(m, rest)
	default:
		fmt.Fprintf(os.Stderr, "ndns-mgmt: unknown command %q\n", cmd)
		flag.Usage()
		os.Exit(1)
	}
}

func cmdCreateZone(m *mgmt.Manager, args []string) {
	if len(args) < 2 {
		fatalf("create-zone requires <zone> <defaultTtlSeconds> [parentZone]")
	}
	zone := parseName(args[0])
	ttlSeconds, err := parseUint(args[1])
	if err != nil {
		fatalf("invalid defaultTtlSeconds: %s", err.Error())
	}
	var parent *mgmt.Manager
	var parentZoneID store.ZoneID
	if len(args) >= 3 {
		parentName := parseName(args[2])
		pz, err := m.Store.FindZone(parentName.String())
		if err != nil {
			fatalf("parent zone %v: %s", parentName, err.Error())
		}
		parent = m
		parentZoneID = pz.ID
	}
	id, err := m.CreateZone(zone, time.Duration(ttlSeconds)*time.Second, parent, parentZoneID)
	if err != nil {
		fatalf("create-zone: %s", err.Error())
	}
	fmt.Printf("created zone %v (id=%d)\n", zone, id)
}

func cmdDeleteZone(m *mgmt.Manager, args []string) {
	if len(args) < 1 {
		fatalf("delete-zone requires <zone>")
	}
	if err := m.DeleteZone(parseName(args[0])); err != nil {
		fatalf("delete-zone: %s", err.Error())
	}
	fmt.Printf("deleted zone %v\n", args[0])
}

func cmdAddRR(m *mgmt.Manager, args []string) {
	if len(args) < 5 {
		fatalf("add-rr requires <zone> <label> <rrType> <version> <ttlSeconds> <elements...>")
	}
	zone := parseName(args[0])
	label := parseName(args[1])
	rrType := args[2]
	version, err := parseUint(args[3])
	if err != nil {
		fatalf("invalid version: %s", err.Error())
	}
	ttlSeconds, err := parseUint(args[4])
	if err != nil {
		fatalf("invalid ttlSeconds: %s", err.Error())
	}
	var elements [][]byte
	for _, e := range args[5:] {
		elements = append(elements, []byte(e))
	}
	req := mgmt.AddRecord{
		Zone:    zone,
		Label:   label,
		RRType:  rrType,
		Version: version,
		TTL:     time.Duration(ttlSeconds) * time.Second,
		Elements: elements,
	}
	if err := m.AddRrset(req); err != nil {
		fatalf("add-rr: %s", err.Error())
	}
	fmt.Printf("added %s rrset at %v/%v v%d\n", rrType, zone, label, version)
}

func cmdAddRRFromFile(m *mgmt.Manager, args []string) {
	if len(args) < 6 {
		fatalf("add-rr-from-file requires <zone> <label> <rrType> <version> <ttlSeconds> <file>")
	}
	zone := parseName(args[0])
	label := parseName(args[1])
	rrType := args[2]
	version, err := parseUint(args[3])
	if err != nil {
		fatalf("invalid version: %s", err.Error())
	}
	ttlSeconds, err := parseUint(args[4])
	if err != nil {
		fatalf("invalid ttlSeconds: %s", err.Error())
	}
	raw, err := os.ReadFile(args[5])
	if err != nil {
		fatalf("read %s: %s", args[5], err.Error())
	}
	// A file may hold either one blob (BLOB/CERT/KEY payload) or a
	// JSON array of strings (one sub-record per line, for TXT/NS-like
	// rrsets) — chosen by whether it parses as the latter.
	var elements [][]byte
	var lines []string
	if jsonErr := json.Unmarshal(raw, &lines); jsonErr == nil {
		for _, l := range lines {
			elements = append(elements, []byte(l))
		}
	} else {
		elements = [][]byte{raw}
	}
	req := mgmt.AddRecord{
		Zone:    zone,
		Label:   label,
		RRType:  rrType,
		Version: version,
		TTL:     time.Duration(ttlSeconds) * time.Second,
		Elements: elements,
	}
	if err := m.AddRrset(req); err != nil {
		fatalf("add-rr-from-file: %s", err.Error())
	}
	fmt.Printf("added %s rrset at %v/%v v%d from %s\n", rrType, zone, label, version, args[5])
}

func cmdRemoveRR(m *mgmt.Manager, args []string) {
	if len(args) < 3 {
		fatalf("remove-rr requires <zone> <label> <rrType>")
	}
	if err := m.RemoveRrset(parseName(args[0]), parseName(args[1]), args[2]); err != nil {
		fatalf("remove-rr: %s", err.Error())
	}
	fmt.Println("removed")
}

func cmdGetRR(m *mgmt.Manager, args []string) {
	if len(args) < 3 {
		fatalf("get-rr requires <zone> <label> <rrType>")
	}
	rr, err := m.GetRrset(parseName(args[0]), parseName(args[1]), args[2])
	if err != nil {
		fatalf("get-rr: %s", err.Error())
	}
	fmt.Printf("version=%d ttl=%s bytes=%d\n", rr.Version, rr.TTL, len(rr.Data))
}

func cmdListZone(m *mgmt.Manager, args []string) {
	if len(args) < 1 {
		fatalf("list-zone requires <zone>")
	}
	rrsets, err := m.ListZone(parseName(args[0]))
	if err != nil {
		fatalf("list-zone: %s", err.Error())
	}
	for _, rr := range rrsets {
		fmt.Printf("%s\t%s\tv%d\n", rr.Label, rr.Type, rr.Version)
	}
}

func cmdListAllZones(m *mgmt.Manager, args []string) {
	zones, err := m.ListZones()
	if err != nil {
		fatalf("list-all-zones: %s", err.Error())
	}
	for _, z := range zones {
		fmt.Printf("%s\t%s\n", z.Name, z.DefaultTTL)
	}
}

func parseUint(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}
