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

// Package config holds the JSON-backed configuration shared by the
// server, resolver and management tools: database location, validator
// policy, trust anchor and the few tunables spec.md §6 allows to be
// resolved from the environment.
package config

import (
	"encoding/json"
	"os"
	"time"
)

// ServerConfig configures one authoritative zone server instance.
type ServerConfig struct {
	Database         string `json:"database"`         // sqlite3 file holding zones/rrsets
	ContentFreshness int    `json:"contentFreshness"`  // seconds; spec.md §4.5 default 4
}

// ResolverConfig configures the iterative query client.
type ResolverConfig struct {
	StartComponentIndex int `json:"startComponentIndex"` // spec.md §9 "globally routable" depth
	CacheSize           int `json:"cacheSize"`            // bounded FIFO cache capacity
	InterestLifetimeMs  int `json:"interestLifetimeMs"`
	CertRetries         int `json:"certRetries"`
}

// ValidatorConfig points at the trust-anchor material. The policy-file
// format itself is out of scope (spec.md §1); only the anchor path and
// (optional) explicit policy path are resolved from configuration.
type ValidatorConfig struct {
	AnchorCertPath string `json:"anchorCertPath"`
	PolicyPath     string `json:"policyPath,omitempty"`
}

// Config is the aggregated configuration for an ndns-go deployment.
type Config struct {
	Server    *ServerConfig    `json:"server,omitempty"`
	Resolver  *ResolverConfig  `json:"resolver,omitempty"`
	Validator *ValidatorConfig `json:"validator,omitempty"`
}

// Cfg is the global configuration, set by Parse.
var Cfg *Config

// Default returns a Config populated with the spec's defaults.
func Default() *Config {
	return &Config{
		Server: &ServerConfig{
			Database:         "ndns.sqlite3",
			ContentFreshness: 4,
		},
		Resolver: &ResolverConfig{
			StartComponentIndex: 0,
			CacheSize:           256,
			InterestLifetimeMs:  4000,
			CertRetries:         3,
		},
		Validator: &ValidatorConfig{},
	}
}

// Freshness returns the configured server freshness as a Duration.
func (c *ServerConfig) Freshness() time.Duration {
	if c == nil || c.ContentFreshness <= 0 {
		return 4 * time.Second
	}
	return time.Duration(c.ContentFreshness) * time.Second
}

// Parse reads a JSON-encoded configuration file and sets Cfg.
func Parse(fname string) (*Config, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	Cfg = cfg
	return cfg, nil
}
