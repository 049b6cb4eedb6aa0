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

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
)

// Manager owns the three per-platform tables and the constant user-agent
// string used for every client it mints. It is the renamed, repurposed
// successor of a web-session Service: same lock-guarded-table-behind-a-
// struct shape, entirely different row contents.
//
// Purpose: Login/reauthenticate/logout orchestration and typed per-account
// queries.
// Domain: Session
type Manager struct {
	userAgent string
	factories platformclient.Factories

	vrchatMu sync.RWMutex
	vrchat   map[string]*vrchatRow

	cvrMu sync.RWMutex
	cvr   map[string]*cvrRow

	resoniteMu sync.RWMutex
	resonite   map[string]*resoniteRow
}

// New constructs a Manager with empty tables. userAgent is immutable for
// the Manager's lifetime, per spec's "shared resources" note.
func New(userAgent string, factories platformclient.Factories) *Manager {
	return &Manager{
		userAgent: userAgent,
		factories: factories,
		vrchat:    map[string]*vrchatRow{},
		cvr:       map[string]*cvrRow{},
		resonite:  map[string]*resoniteRow{},
	}
}

// Login dispatches on creds.Platform to the matching per-platform login
// flow. On success it returns the durable Authentication to persist; on
// failure it returns corerr.ErrAuthenticationFailed (wrapped) or, for the
// VRChat additional-factor case, a *corerr.RequiresSecondFactorError.
func (m *Manager) Login(ctx context.Context, creds auth.LoginCredentials) (auth.Authentication, error) {
	switch creds.Platform {
	case platform.VRChat:
		return m.loginVRChat(ctx, creds)
	case platform.ChilloutVR:
		return m.loginChilloutVR(ctx, creds)
	case platform.Resonite:
		return m.loginResonite(ctx, creds)
	default:
		return auth.Authentication{}, fmt.Errorf("session: unknown platform %q: %w", creds.Platform, corerr.ErrInternal)
	}
}

// Reauthenticate refreshes an already-persisted Authentication's live
// client, per platform, returning a copy with Metadata.UpdatedAt bumped to
// now on success.
func (m *Manager) Reauthenticate(ctx context.Context, a auth.Authentication) (auth.Authentication, error) {
	switch a.Platform {
	case platform.VRChat:
		return m.reauthenticateVRChat(ctx, a)
	case platform.ChilloutVR:
		return m.reauthenticateChilloutVR(ctx, a)
	case platform.Resonite:
		return m.reauthenticateResonite(ctx, a)
	default:
		return auth.Authentication{}, fmt.Errorf("session: unknown platform %q: %w", a.Platform, corerr.ErrInternal)
	}
}

// Logout is best-effort: the platform logout query is attempted where the
// platform supports one, its outcome ignored; the in-memory row is always
// removed. Logging out an account with no row is a no-op.
func (m *Manager) Logout(ctx context.Context, aid platform.AccountID) error {
	switch aid.Platform {
	case platform.VRChat:
		m.vrchatMu.Lock()
		row, ok := m.vrchat[aid.String()]
		delete(m.vrchat, aid.String())
		m.vrchatMu.Unlock()
		if ok && row.state == vrchatAuthenticated {
			_ = row.client.Logout(ctx)
		}
		return nil
	case platform.ChilloutVR:
		// CVR has no server logout endpoint (spec §4.3.3/§9); removing the
		// in-memory row is the entire operation.
		m.cvrMu.Lock()
		delete(m.cvr, aid.String())
		m.cvrMu.Unlock()
		return nil
	case platform.Resonite:
		m.resoniteMu.Lock()
		row, ok := m.resonite[aid.String()]
		delete(m.resonite, aid.String())
		m.resoniteMu.Unlock()
		if ok {
			_ = row.client.Logout(ctx)
		}
		return nil
	default:
		return fmt.Errorf("session: unknown platform %q: %w", aid.Platform, corerr.ErrInternal)
	}
}
