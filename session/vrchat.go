package session

import (
	"context"
	"fmt"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
)

// loginVRChat implements the two-stage state machine from §4.3.1.
func (m *Manager) loginVRChat(ctx context.Context, creds auth.LoginCredentials) (auth.Authentication, error) {
	switch {
	case creds.VRChatInitial != nil:
		return m.loginVRChatInitial(ctx, creds.VRChatInitial)
	case creds.VRChatSecondFactor != nil:
		return m.loginVRChatSecondFactor(ctx, creds.VRChatSecondFactor)
	default:
		return auth.Authentication{}, fmt.Errorf("session: empty vrchat credentials: %w", corerr.ErrAuthenticationFailed)
	}
}

func (m *Manager) loginVRChatInitial(ctx context.Context, creds *auth.VRChatInitialCredentials) (auth.Authentication, error) {
	client := m.factories.VRChat.New(m.userAgent)

	resp, err := client.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		return auth.Authentication{}, fmt.Errorf("session: vrchat login: %w", corerr.ErrAuthenticationFailed)
	}

	// Transition rule 1: the account id is unknown until this follow-up
	// query returns, regardless of which branch below is taken.
	aid, err := client.GetCurrentUser(ctx)
	if err != nil {
		return auth.Authentication{}, fmt.Errorf("session: vrchat get current user: %w", corerr.ErrNetworkFailure)
	}

	m.vrchatMu.Lock()
	defer m.vrchatMu.Unlock()

	if len(resp.RequiredFactors) > 0 {
		// Transition rule 2: store Authenticating keyed by the now-known
		// account id and surface RequiresAdditionalFactor, not a bare error.
		m.vrchat[aid.String()] = &vrchatRow{
			accountID:       aid,
			state:           vrchatAuthenticating,
			client:          client,
			token:           resp.Token,
			requiredFactors: resp.RequiredFactors,
		}
		return auth.Authentication{}, &corerr.RequiresSecondFactorError{Account: aid}
	}

	m.vrchat[aid.String()] = &vrchatRow{accountID: aid, state: vrchatAuthenticated, client: client, token: resp.Token}
	return auth.NewVRChat(resp.Token, "", aid), nil
}

func (m *Manager) loginVRChatSecondFactor(ctx context.Context, creds *auth.VRChatSecondFactorCredentials) (auth.Authentication, error) {
	key := creds.Account.String()

	m.vrchatMu.Lock()
	defer m.vrchatMu.Unlock()

	// Transition rule 3: no Authenticating row for this id is a rejection,
	// not NotAuthenticated — the account was never offered a pending login.
	row, ok := m.vrchat[key]
	if !ok || row.state != vrchatAuthenticating {
		return auth.Authentication{}, fmt.Errorf("session: no pending vrchat login for %s: %w", creds.Account, corerr.ErrAuthenticationFailed)
	}

	resp, err := row.client.VerifySecondFactor(ctx, creds.Factor, creds.Code)
	if err != nil {
		return auth.Authentication{}, fmt.Errorf("session: vrchat verify second factor: %w", corerr.ErrNetworkFailure)
	}
	if !resp.Verified {
		// Transition rule 4: remain Authenticating, let the caller retry.
		return auth.Authentication{}, fmt.Errorf("session: vrchat second factor not verified: %w", corerr.ErrAuthenticationFailed)
	}

	// Transition rule 5: finalize, the stored token includes the
	// second-factor token.
	row.state = vrchatAuthenticated
	row.secondFactorToken = resp.Token
	return auth.NewVRChat(row.token, resp.Token, creds.Account), nil
}

func (m *Manager) reauthenticateVRChat(ctx context.Context, a auth.Authentication) (auth.Authentication, error) {
	key := a.AccountID().String()
	client := m.factories.VRChat.FromToken(m.userAgent, a.VRChat.Token)

	m.vrchatMu.Lock()
	defer m.vrchatMu.Unlock()

	m.vrchat[key] = &vrchatRow{
		accountID:         a.AccountID(),
		state:             vrchatAuthenticated,
		client:            client,
		token:             a.VRChat.Token,
		secondFactorToken: a.VRChat.SecondFactorToken,
	}

	if _, err := client.GetCurrentUser(ctx); err != nil {
		delete(m.vrchat, key)
		return auth.Authentication{}, fmt.Errorf("session: vrchat reauthenticate probe: %w", corerr.ErrAuthenticationFailed)
	}

	refreshed := a
	refreshed.Metadata = platform.NewNow(a.AccountID())
	return refreshed, nil
}

// authenticatedVRChatIDs returns every account id whose row is in the
// Authenticated substate, filtering out rows still Authenticating.
func (m *Manager) authenticatedVRChatIDs() []platform.AccountID {
	m.vrchatMu.RLock()
	defer m.vrchatMu.RUnlock()
	var ids []platform.AccountID
	for _, row := range m.vrchat {
		if row.state != vrchatAuthenticated {
			continue
		}
		ids = append(ids, row.accountID)
	}
	return ids
}
