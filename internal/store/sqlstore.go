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

package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/bfix/gospel/logger"
)

//go:embed schema.sql
var initScript string

// SQLStore is the SQL-backed Store implementation, grounded on the
// teacher's ZoneDB: connect-or-create, an embedded init script run
// once, and insert/update/delete dispatch on the presence of an id.
type SQLStore struct {
	conn *DbConn
}

// OpenSQLStore opens (creating if necessary) a SQLite3-backed store at
// fname. Use OpenStore for other engines (e.g. MySQL).
func OpenSQLStore(fname string) (*SQLStore, error) {
	return OpenStore("sqlite3+" + fname)
}

// OpenStore opens a store given a "<engine>+<dsn>" spec (see dbPool.Connect).
func OpenStore(spec string) (*SQLStore, error) {
	db := &SQLStore{}
	var err error
	if db.conn, err = dbPoolInst.Connect(spec); err != nil {
		return nil, err
	}
	// check for initialized database (sqlite-only fast-path check;
	// harmless no-op on a fresh MySQL schema since "create table if not
	// exists" is idempotent)
	res := db.conn.QueryRow("select name from sqlite_master where type='table' and name='zones'")
	var s string
	if res.Scan(&s) != nil {
		if _, err = db.conn.Exec(initScript); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func (db *SQLStore) Close() error {
	return db.conn.Close()
}

//----------------------------------------------------------------------
// Zone handling
//----------------------------------------------------------------------

func (db *SQLStore) InsertZone(z *Zone) error {
	if z.ID != 0 {
		return nil // idempotent, per spec.md §4.3
	}
	result, err := db.conn.Exec(
		"insert into zones(name,ttl) values(?,?)",
		z.Name, int64(z.DefaultTTL/time.Second),
	)
	if err != nil {
		logger.Printf(logger.ERROR, "[store] insert zone %q: %v", z.Name, err)
		return fmt.Errorf("%w: %v", ErrZoneExists, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	z.ID = ZoneID(id)
	return nil
}

func (db *SQLStore) FindZone(name string) (*Zone, error) {
	row := db.conn.QueryRow("select id,name,ttl from zones where name=?", name)
	z := &Zone{}
	var ttlSecs int64
	if err := row.Scan(&z.ID, &z.Name, &ttlSecs); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	z.DefaultTTL = time.Duration(ttlSecs) * time.Second
	return z, nil
}

func (db *SQLStore) ListZones() ([]*Zone, error) {
	rows, err := db.conn.Query("select id,name,ttl from zones order by name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Zone
	for rows.Next() {
		z := &Zone{}
		var ttlSecs int64
		if err := rows.Scan(&z.ID, &z.Name, &ttlSecs); err != nil {
			return out, err
		}
		z.DefaultTTL = time.Duration(ttlSecs) * time.Second
		out = append(out, z)
	}
	return out, nil
}

func (db *SQLStore) RemoveZone(id ZoneID) error {
	// schema.sql's "on delete cascade" clauses only fire when a
	// connection has foreign-key enforcement turned on, which neither
	// engine does by default (sqlite3 per-connection, mysql per-table
	// engine choice) — so rrsets and zone_info are removed explicitly
	// here rather than relying on the cascade.
	if _, err := db.conn.Exec("delete from rrsets where zone_id=?", id); err != nil {
		return err
	}
	if _, err := db.conn.Exec("delete from zone_info where zone_id=?", id); err != nil {
		return err
	}
	_, err := db.conn.Exec("delete from zones where id=?", id)
	return err
}

//----------------------------------------------------------------------
// Zone info
//----------------------------------------------------------------------

func (db *SQLStore) SetZoneInfo(zone ZoneID, key string, value []byte) error {
	if len(key) > 10 {
		return fmt.Errorf("store: zone_info key %q exceeds 10 characters", key)
	}
	_, err := db.conn.Exec(
		"insert into zone_info(zone_id,key,value) values(?,?,?) "+
			"on conflict(zone_id,key) do update set value=excluded.value",
		zone, key, value,
	)
	return err
}

func (db *SQLStore) GetZoneInfo(zone ZoneID) (map[string][]byte, error) {
	rows, err := db.conn.Query("select key,value from zone_info where zone_id=?", zone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]byte)
	for rows.Next() {
		var k string
		var v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return out, err
		}
		out[k] = v
	}
	return out, nil
}

//----------------------------------------------------------------------
// Rrset handling
//----------------------------------------------------------------------

func (db *SQLStore) InsertRrset(r *Rrset) error {
	result, err := db.conn.Exec(
		"insert into rrsets(zone_id,label,type,version,ttl,data) values(?,?,?,?,?,?)",
		r.Zone, r.Label, r.Type, r.Version, int64(r.TTL/time.Second), r.Data,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDuplicateRrset, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

func (db *SQLStore) FindRrset(zone ZoneID, label, typ string) (*Rrset, error) {
	row := db.conn.QueryRow(
		"select id,version,ttl,data from rrsets where zone_id=? and label=? and type=? "+
			"order by version desc limit 1",
		zone, label, typ,
	)
	r := &Rrset{Zone: zone, Label: label, Type: typ}
	var ttlSecs int64
	if err := row.Scan(&r.ID, &r.Version, &ttlSecs, &r.Data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRrsetNotFound
		}
		return nil, err
	}
	r.TTL = time.Duration(ttlSecs) * time.Second
	return r, nil
}

func (db *SQLStore) FindRrsetLowerBound(zone ZoneID, label, typ string) (*Rrset, error) {
	row := db.conn.QueryRow(
		"select id,label,version,ttl,data from rrsets where zone_id=? and type=? and label<? "+
			"order by label desc, version desc limit 1",
		zone, typ, label,
	)
	r := &Rrset{Zone: zone, Type: typ}
	var ttlSecs int64
	if err := row.Scan(&r.ID, &r.Label, &r.Version, &ttlSecs, &r.Data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRrsetNotFound
		}
		return nil, err
	}
	r.TTL = time.Duration(ttlSecs) * time.Second
	return r, nil
}

func (db *SQLStore) FindRrsetUpperBound(zone ZoneID, label, typ string) (*Rrset, error) {
	row := db.conn.QueryRow(
		"select id,label,version,ttl,data from rrsets where zone_id=? and type=? and label>? "+
			"order by label asc, version desc limit 1",
		zone, typ, label,
	)
	r := &Rrset{Zone: zone, Type: typ}
	var ttlSecs int64
	if err := row.Scan(&r.ID, &r.Label, &r.Version, &ttlSecs, &r.Data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRrsetNotFound
		}
		return nil, err
	}
	r.TTL = time.Duration(ttlSecs) * time.Second
	return r, nil
}

func (db *SQLStore) ListRrsetsByZone(zone ZoneID) ([]*Rrset, error) {
	rows, err := db.conn.Query(
		"select id,label,type,version,ttl,data from rrsets where zone_id=? order by label",
		zone,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Rrset
	for rows.Next() {
		r := &Rrset{Zone: zone}
		var ttlSecs int64
		if err := rows.Scan(&r.ID, &r.Label, &r.Type, &r.Version, &ttlSecs, &r.Data); err != nil {
			return out, err
		}
		r.TTL = time.Duration(ttlSecs) * time.Second
		out = append(out, r)
	}
	return out, nil
}

func (db *SQLStore) UpdateRrset(r *Rrset) error {
	existing, err := db.FindRrset(r.Zone, r.Label, r.Type)
	if err == nil && r.Version <= existing.Version {
		return ErrStaleVersion
	}
	result, err := db.conn.Exec(
		"update rrsets set version=?,ttl=?,data=? where id=?",
		r.Version, int64(r.TTL/time.Second), r.Data, r.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrRrsetNotFound
	}
	return nil
}

func (db *SQLStore) RemoveRrset(id int64) error {
	_, err := db.conn.Exec("delete from rrsets where id=?", id)
	return err
}

func (db *SQLStore) RemoveByZoneAndType(zone ZoneID, typ string) error {
	_, err := db.conn.Exec("delete from rrsets where zone_id=? and type=?", zone, typ)
	return err
}
