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

// JSON-RPC surface for the management tool, grounded on the teacher's
// service/rpc.go (a gorilla/mux Router serving a JSON-RPC endpoint)
// and service/dht/rpc.go (one struct per service, one exported method
// per command, the `func(r *http.Request, req *X, reply *Y) error`
// shape gorilla/rpc requires).
package mgmt

import (
	"context"
	"net/http"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/gorilla/mux"
	gorillarpc "github.com/gorilla/rpc"
	"github.com/gorilla/rpc/json2"

	"github.com/named-data/ndns-go/internal/name"
	"github.com/named-data/ndns-go/internal/store"
	"github.com/named-data/ndns-go/internal/wire"
)

// RPCService exposes Manager's operations as JSON-RPC 2.0 commands
// under the "Zone" namespace (Zone.Create, Zone.Delete, Zone.AddRrset,
// ...), mirroring dht.RPCService's one-struct-per-module pattern.
type RPCService struct {
	Manager *Manager
}

// CreateZoneRequest is the payload for Zone.Create.
type CreateZoneRequest struct {
	Zone       string `json:"zone"`
	DefaultTTL int64  `json:"defaultTtlSeconds"`
	Parent     string `json:"parent,omitempty"`
}

// CreateZoneReply is the result of Zone.Create.
type CreateZoneReply struct {
	ZoneID int64 `json:"zoneId"`
}

// Create mints a zone (and, if Parent is set, has that zone's DSK
// endorse the new one with a DKEY cert), per spec.md §3's lifecycle.
func (s *RPCService) Create(r *http.Request, req *CreateZoneRequest, reply *CreateZoneReply) error {
	zoneName := parseName(req.Zone)
	var parentID store.ZoneID
	if req.Parent != "" {
		pz, err := s.Manager.Store.FindZone(req.Parent)
		if err != nil {
			return err
		}
		parentID = pz.ID
	}
	var parent *Manager
	if req.Parent != "" {
		parent = s.Manager
	}
	id, err := s.Manager.CreateZone(zoneName, time.Duration(req.DefaultTTL)*time.Second, parent, parentID)
	if err != nil {
		return err
	}
	reply.ZoneID = int64(id)
	return nil
}

// DeleteZoneRequest is the payload for Zone.Delete.
type DeleteZoneRequest struct {
	Zone string `json:"zone"`
}

// DeleteZoneReply is the (empty) result of Zone.Delete.
type DeleteZoneReply struct{}

// Delete removes a zone and everything it owns.
func (s *RPCService) Delete(r *http.Request, req *DeleteZoneRequest, reply *DeleteZoneReply) error {
	return s.Manager.DeleteZone(parseName(req.Zone))
}

// ListZonesRequest is the (empty) payload for Zone.ListAll.
type ListZonesRequest struct{}

// ListZonesReply is the result of Zone.ListAll.
type ListZonesReply struct {
	Zones []string `json:"zones"`
}

// ListAll returns the name of every known zone.
func (s *RPCService) ListAll(r *http.Request, req *ListZonesRequest, reply *ListZonesReply) error {
	zones, err := s.Manager.ListZones()
	if err != nil {
		return err
	}
	reply.Zones = make([]string, len(zones))
	for i, z := range zones {
		reply.Zones[i] = z.Name
	}
	return nil
}

// ListZoneRequest is the payload for Zone.List.
type ListZoneRequest struct {
	Zone string `json:"zone"`
}

// RrsetInfo is the JSON-facing view of a stored rrset.
type RrsetInfo struct {
	Label   string `json:"label"`
	Type    string `json:"type"`
	Version uint64 `json:"version"`
}

// ListZoneReply is the result of Zone.List.
type ListZoneReply struct {
	Rrsets []RrsetInfo `json:"rrsets"`
}

// List returns every rrset of a single zone.
func (s *RPCService) List(r *http.Request, req *ListZoneRequest, reply *ListZoneReply) error {
	rrsets, err := s.Manager.ListZone(parseName(req.Zone))
	if err != nil {
		return err
	}
	reply.Rrsets = make([]RrsetInfo, len(rrsets))
	for i, rr := range rrsets {
		reply.Rrsets[i] = RrsetInfo{Label: rr.Label, Type: rr.Type, Version: rr.Version}
	}
	return nil
}

// AddRrsetRequest is the payload for Zone.AddRrset.
type AddRrsetRequest struct {
	Zone           string   `json:"zone"`
	Label          string   `json:"label"`
	RRType         string   `json:"rrType"`
	Version        uint64   `json:"version"`
	TTLSeconds     int64    `json:"ttlSeconds"`
	Elements       []string `json:"elements"`
	ContentType    int      `json:"contentType,omitempty"`
	HasContentType bool     `json:"hasContentType,omitempty"`
}

// AddRrsetReply is the (empty) result of Zone.AddRrset.
type AddRrsetReply struct{}

// AddRrset adds a signed rrset, applying spec.md §9's content-type
// autodetection and reject-combination rules.
func (s *RPCService) AddRrset(r *http.Request, req *AddRrsetRequest, reply *AddRrsetReply) error {
	elems := make([][]byte, len(req.Elements))
	for i, e := range req.Elements {
		elems[i] = []byte(e)
	}
	return s.Manager.AddRrset(AddRecord{
		Zone:           parseName(req.Zone),
		Label:          parseName(req.Label),
		RRType:         req.RRType,
		Version:        req.Version,
		TTL:            time.Duration(req.TTLSeconds) * time.Second,
		Elements:       elems,
		ContentType:    wire.ContentType(req.ContentType),
		HasContentType: req.HasContentType,
	})
}

// RemoveRrsetRequest is the payload for Zone.RemoveRrset.
type RemoveRrsetRequest struct {
	Zone   string `json:"zone"`
	Label  string `json:"label"`
	RRType string `json:"rrType"`
}

// RemoveRrsetReply is the (empty) result of Zone.RemoveRrset.
type RemoveRrsetReply struct{}

// RemoveRrset deletes a single rrset.
func (s *RPCService) RemoveRrset(r *http.Request, req *RemoveRrsetRequest, reply *RemoveRrsetReply) error {
	return s.Manager.RemoveRrset(parseName(req.Zone), parseName(req.Label), req.RRType)
}

// GetRrsetRequest is the payload for Zone.GetRrset.
type GetRrsetRequest struct {
	Zone   string `json:"zone"`
	Label  string `json:"label"`
	RRType string `json:"rrType"`
}

// GetRrsetReply is the result of Zone.GetRrset: the rrset's current
// version and its complete signed wire encoding.
type GetRrsetReply struct {
	Version uint64 `json:"version"`
	Data    []byte `json:"data"`
}

// GetRrset fetches the current rrset for (zone, label, type).
func (s *RPCService) GetRrset(r *http.Request, req *GetRrsetRequest, reply *GetRrsetReply) error {
	rr, err := s.Manager.GetRrset(parseName(req.Zone), parseName(req.Label), req.RRType)
	if err != nil {
		return err
	}
	reply.Version = rr.Version
	reply.Data = rr.Data
	return nil
}

func parseName(s string) name.Name {
	labels := splitName(s)
	return name.New(labels...)
}

// NewRouter wires an RPCService onto a fresh gorilla/mux router at
// path, using the JSON-RPC 2.0 codec, the same combination the
// teacher's service.Router/service.RegisterRPC pair establishes for
// every other module.
func NewRouter(path string, svc *RPCService) *mux.Router {
	rpcServer := gorillarpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(svc, "Zone"); err != nil {
		logger.Printf(logger.ERROR, "[mgmt] failed to register RPC service: %s", err.Error())
	}
	r := mux.NewRouter()
	r.Handle(path, rpcServer)
	return r
}

// Serve runs an HTTP server for router until ctx is cancelled,
// mirroring the teacher's service.StartRPC shutdown-on-context
// pattern.
func Serve(ctx context.Context, addr string, router *mux.Router) error {
	srv := &http.Server{
		Handler:      router,
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	go func() {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf(logger.WARN, "[mgmt] RPC server listen failed: %s", err.Error())
			}
		}()
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Printf(logger.WARN, "[mgmt] RPC server shutdown failed: %s", err.Error())
		}
	}()
	return nil
}
