package session

import (
	"context"
	"fmt"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
)

func (m *Manager) loginResonite(ctx context.Context, creds auth.LoginCredentials) (auth.Authentication, error) {
	if creds.Resonite == nil {
		return auth.Authentication{}, fmt.Errorf("session: empty resonite credentials: %w", corerr.ErrAuthenticationFailed)
	}
	c := creds.Resonite

	m.resoniteMu.Lock()
	defer m.resoniteMu.Unlock()

	var client = m.downgradeResonite(c)
	if client == nil {
		client = m.factories.Resonite.New(m.userAgent)
	}

	resp, err := client.Login(ctx, c.IdentifierKind, c.Identifier, c.Password)
	if err != nil {
		return auth.Authentication{}, fmt.Errorf("session: resonite login: %w", corerr.ErrAuthenticationFailed)
	}

	aid := platform.AccountIDFromResonite(resp.UserID)
	m.resonite[aid.String()] = &resoniteRow{accountID: aid, client: client}
	return auth.NewResoniteAuthentication(resp.SessionToken, resp.UserID, aid), nil
}

// downgradeResonite reuses an existing row's client only when the
// credential's identifier is of kind OwnerID and already has a row, per
// §4.3.1 ("If ... kind OwnerID and that id matches an existing entry,
// downgrade that entry").
func (m *Manager) downgradeResonite(c *auth.ResoniteCredentials) platformclient.ResoniteClient {
	if c.IdentifierKind != auth.ResoniteIdentifierOwnerID {
		return nil
	}
	aid := platform.AccountIDFromResonite(c.Identifier)
	if row, ok := m.resonite[aid.String()]; ok {
		return row.client
	}
	return nil
}

func (m *Manager) reauthenticateResonite(ctx context.Context, a auth.Authentication) (auth.Authentication, error) {
	key := a.AccountID().String()

	m.resoniteMu.Lock()
	defer m.resoniteMu.Unlock()

	row, exists := m.resonite[key]
	if !exists {
		client := m.factories.Resonite.FromToken(m.userAgent, a.Resonite.SessionToken, a.Resonite.UserID)
		row = &resoniteRow{accountID: a.AccountID(), client: client}
		m.resonite[key] = row
	}

	if err := row.client.ExtendUserSession(ctx); err != nil {
		delete(m.resonite, key)
		return auth.Authentication{}, fmt.Errorf("session: resonite extend session: %w", corerr.ErrAuthenticationFailed)
	}

	refreshed := a
	refreshed.Metadata = platform.NewNow(a.AccountID())
	return refreshed, nil
}
