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
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql" // init MySQL driver
	_ "github.com/mattn/go-sqlite3"    // init SQLite3 driver
)

// DbConn is a database connection suitable for executing SQL commands,
// grounded on the teacher's gnunet/service/store.DbConn.
type DbConn struct {
	conn   *sql.Conn
	key    string
	engine string
}

// Close releases the connection and decrements the pool's ref count.
func (db *DbConn) Close() (err error) {
	if err = db.conn.Close(); err != nil {
		return
	}
	return dbPoolInst.remove(db.key)
}

// QueryRow returns a single record for a query.
func (db *DbConn) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(dbPoolInst.ctx, query, args...)
}

// Query returns all matching records for a query.
func (db *DbConn) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(dbPoolInst.ctx, query, args...)
}

// Exec executes a SQL statement.
func (db *DbConn) Exec(query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(dbPoolInst.ctx, query, args...)
}

//----------------------------------------------------------------------
// dbPool: connecting with the same connect string returns the same
// underlying *sql.DB instance, reference-counted. Grounded on the
// teacher's gnunet/service/store.dbPool / DbPool singleton.
//----------------------------------------------------------------------

type dbPoolEntry struct {
	db   *sql.DB
	refs int
}

type pool struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	insts  map[string]*dbPoolEntry
}

var dbPoolInst = newPool()

func newPool() *pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &pool{ctx: ctx, cancel: cancel, insts: make(map[string]*dbPoolEntry)}
}

func (p *pool) remove(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pe, ok := p.insts[key]
	if !ok {
		return nil
	}
	pe.refs--
	if pe.refs == 0 {
		err := pe.db.Close()
		delete(p.insts, key)
		return err
	}
	return nil
}

// Connect opens a connection to a SQL database. The spec has the form
// "<engine>+<engine-specific-arguments>", mirroring the teacher's
// dbPool.Connect: "sqlite3+/path/to/file.db" or
// "mysql+user:pass@tcp(host)/dbname".
func (p *pool) Connect(spec string) (*DbConn, error) {
	parts := strings.SplitN(spec, "+", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("store: invalid database spec %q", spec)
	}
	engine, dsn := parts[0], parts[1]
	switch engine {
	case "sqlite3", "mysql":
	default:
		return nil, ErrUnknownEngine
	}

	p.mu.Lock()
	pe, ok := p.insts[spec]
	if !ok {
		db, err := sql.Open(engine, dsn)
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		pe = &dbPoolEntry{db: db}
		p.insts[spec] = pe
	}
	pe.refs++
	p.mu.Unlock()

	conn, err := pe.db.Conn(p.ctx)
	if err != nil {
		return nil, err
	}
	return &DbConn{conn: conn, key: spec, engine: engine}, nil
}
