package session

import (
	"context"
	"fmt"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
)

func (m *Manager) loginChilloutVR(ctx context.Context, creds auth.LoginCredentials) (auth.Authentication, error) {
	if creds.ChilloutVR == nil {
		return auth.Authentication{}, fmt.Errorf("session: empty chilloutvr credentials: %w", corerr.ErrAuthenticationFailed)
	}
	c := creds.ChilloutVR

	m.cvrMu.Lock()
	defer m.cvrMu.Unlock()

	var client = m.downgradeChilloutVR(c.Account)
	if client == nil {
		client = m.factories.ChilloutVR.New(m.userAgent)
	}

	resp, err := client.Login(ctx, c.Username, c.Password)
	if err != nil {
		return auth.Authentication{}, fmt.Errorf("session: chilloutvr login: %w", corerr.ErrAuthenticationFailed)
	}

	aid := platform.AccountIDFromChilloutVR(resp.UserID)
	m.cvr[aid.String()] = &cvrRow{accountID: aid, client: client}
	return auth.NewChilloutVRAuthentication(resp.Identifier, resp.DurableToken, aid), nil
}

// downgradeChilloutVR reuses an existing client's connection pool for
// account, releasing its prior authentication, or returns nil if no row
// exists for it (fresh client is the caller's fallback).
func (m *Manager) downgradeChilloutVR(account *platform.AccountID) platformclient.ChilloutVRClient {
	if account == nil {
		return nil
	}
	if row, ok := m.cvr[account.String()]; ok {
		return row.client
	}
	return nil
}

func (m *Manager) reauthenticateChilloutVR(ctx context.Context, a auth.Authentication) (auth.Authentication, error) {
	key := a.AccountID().String()

	// CVR has no separate refresh endpoint (§4.3.2): the stored identifier
	// and durable token are handed back to the client factory and probed
	// with an authenticated query rather than a fresh username/password
	// login, since login() only ever receives the one-shot credentials.
	client := m.factories.ChilloutVR.FromToken(m.userAgent, a.ChilloutVR.Identifier, a.ChilloutVR.DurableToken)

	m.cvrMu.Lock()
	defer m.cvrMu.Unlock()

	if _, err := client.User(ctx, a.AccountID()); err != nil {
		delete(m.cvr, key)
		return auth.Authentication{}, fmt.Errorf("session: chilloutvr reauthenticate probe: %w", corerr.ErrAuthenticationFailed)
	}

	m.cvr[key] = &cvrRow{accountID: a.AccountID(), client: client}
	refreshed := a
	refreshed.Metadata = platform.NewNow(a.AccountID())
	return refreshed, nil
}
