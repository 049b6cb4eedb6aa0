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

// Package onlivfe is the single public entry point of the module: it
// composes a session.Manager and a storage.Repository behind the
// freshness policy (cache a read when it is recent enough, otherwise
// fetch, persist, and return the fresh value).
//
// Purpose: Unified façade over the session manager and the repository.
// Domain: Façade
package onlivfe

import (
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/onlivfe/corevr/session"
	"github.com/onlivfe/corevr/storage"
)

// DefaultRefreshInterval is REFRESH_INTERVAL's default value: a cached
// entity younger than this is returned without a network call.
const DefaultRefreshInterval = time.Minute

// unlimited is passed to the Repository's limit-bounded list operations
// when the caller wants every id; any limit at or above the true
// collection size returns the whole thing.
const unlimited = math.MaxInt32

// Onlivfe is the façade. It owns no state of its own beyond the freshness
// policy's configuration and the singleflight group collapsing concurrent
// identical refetches; the session manager and repository are the only
// sources of truth.
type Onlivfe struct {
	repo     storage.Repository
	sessions *session.Manager

	refreshInterval time.Duration
	logger          *slog.Logger

	fetchGroup singleflight.Group
}

// Option configures an Onlivfe at construction time.
type Option func(*Onlivfe)

// WithRefreshInterval overrides DefaultRefreshInterval.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *Onlivfe) { o.refreshInterval = d }
}

// WithLogger overrides the default logger (slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *Onlivfe) { o.logger = l }
}

// New constructs the façade over an already-wired repository and session
// manager.
func New(repo storage.Repository, sessions *session.Manager, opts ...Option) *Onlivfe {
	o := &Onlivfe{
		repo:            repo,
		sessions:        sessions,
		refreshInterval: DefaultRefreshInterval,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// isFresh reports whether updatedAt is recent enough to serve from cache
// without a network call, under the façade's configured refresh interval.
func (o *Onlivfe) isFresh(updatedAt time.Time) bool {
	return time.Since(updatedAt) < o.refreshInterval
}
