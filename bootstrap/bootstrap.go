// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bootstrap loads the environment-driven configuration every
// binary built on top of corevr needs: the application identity that goes
// into every platform client's user agent string, the log filter, and the
// on-disk config directory.
//
// Purpose: Environment-driven startup configuration.
// Domain: Bootstrap
package bootstrap

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment variable a corevr-based binary reads at
// startup.
type Config struct {
	// AppName, AppVersion and AppHomepage compose the user agent string
	// every platform client is constructed with; VRChat's API in
	// particular rejects connections carrying a generic or missing user
	// agent.
	AppName     string `env:"APP_NAME,required"`
	AppVersion  string `env:"APP_VERSION,required"`
	AppHomepage string `env:"APP_HOMEPAGE"`

	// LogFilter is passed straight to corelog.ParseLevel.
	LogFilter string `env:"LOG_FILTER" envDefault:"info"`

	// ConfigDir is the directory the file-backed repository stores its
	// collections under.
	ConfigDir string `env:"CONFIG_DIR,required"`

	// DatabaseURL, if set, selects the Postgres-backed repository instead
	// of the file-backed one.
	DatabaseURL string `env:"DATABASE_URL"`
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: parse environment: %w", err)
	}
	return cfg, nil
}

// UserAgent builds the user agent string every platform client factory is
// constructed with, in the "name/version (homepage)" form VRChat's terms
// of service ask API clients to identify themselves with.
func (c *Config) UserAgent() string {
	if c.AppHomepage == "" {
		return fmt.Sprintf("%s/%s", c.AppName, c.AppVersion)
	}
	return fmt.Sprintf("%s/%s (%s)", c.AppName, c.AppVersion, c.AppHomepage)
}

// UsesPostgres reports whether DatabaseURL was set, the signal a caller
// uses to decide between storage/file and storage/postgres.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}
