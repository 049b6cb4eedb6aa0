package session

import (
	"context"
	"fmt"

	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
)

// Friends dispatches to the authenticated client for as and wraps every
// returned record in platform.NewDataAndMetadataNow(.., as).
func (m *Manager) Friends(ctx context.Context, as platform.AccountID) ([]platform.DataAndMetadata[platform.Friend], error) {
	switch as.Platform {
	case platform.VRChat:
		client, err := m.vrchatClientFor(as)
		if err != nil {
			return nil, err
		}
		friends, err := client.Friends(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: vrchat friends: %w", corerr.ErrNetworkFailure)
		}
		return wrapFriends(friends, as), nil
	case platform.ChilloutVR:
		m.cvrMu.RLock()
		row, ok := m.cvr[as.String()]
		m.cvrMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("session: %s: %w", as, corerr.ErrNotAuthenticated)
		}
		friends, err := row.client.Friends(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: chilloutvr friends: %w", corerr.ErrNetworkFailure)
		}
		return wrapFriends(friends, as), nil
	case platform.Resonite:
		m.resoniteMu.RLock()
		row, ok := m.resonite[as.String()]
		m.resoniteMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("session: %s: %w", as, corerr.ErrNotAuthenticated)
		}
		friends, err := row.client.Friends(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: resonite friends: %w", corerr.ErrNetworkFailure)
		}
		return wrapFriends(friends, as), nil
	default:
		return nil, fmt.Errorf("session: unknown platform %q: %w", as.Platform, corerr.ErrInternal)
	}
}

func wrapFriends(friends []platform.Friend, as platform.AccountID) []platform.DataAndMetadata[platform.Friend] {
	out := make([]platform.DataAndMetadata[platform.Friend], 0, len(friends))
	for _, f := range friends {
		out = append(out, platform.NewDataAndMetadataNow(f, as))
	}
	return out
}

// Instance fetches the instance/room named by id through as's authenticated
// client. id and as must share the same platform tag.
func (m *Manager) Instance(ctx context.Context, as platform.AccountID, id platform.InstanceID) (platform.DataAndMetadata[platform.Instance], error) {
	if as.Platform != id.Platform {
		return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("session: account platform %q, instance platform %q: %w", as.Platform, id.Platform, corerr.ErrPlatformMismatch)
	}
	switch as.Platform {
	case platform.VRChat:
		client, err := m.vrchatClientFor(as)
		if err != nil {
			return platform.DataAndMetadata[platform.Instance]{}, err
		}
		inst, err := client.Instance(ctx, id)
		if err != nil {
			return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("session: vrchat instance: %w", corerr.ErrNetworkFailure)
		}
		return platform.NewDataAndMetadataNow(inst, as), nil
	case platform.ChilloutVR:
		m.cvrMu.RLock()
		row, ok := m.cvr[as.String()]
		m.cvrMu.RUnlock()
		if !ok {
			return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("session: %s: %w", as, corerr.ErrNotAuthenticated)
		}
		inst, err := row.client.Instance(ctx, id)
		if err != nil {
			return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("session: chilloutvr instance: %w", corerr.ErrNetworkFailure)
		}
		return platform.NewDataAndMetadataNow(inst, as), nil
	case platform.Resonite:
		m.resoniteMu.RLock()
		row, ok := m.resonite[as.String()]
		m.resoniteMu.RUnlock()
		if !ok {
			return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("session: %s: %w", as, corerr.ErrNotAuthenticated)
		}
		inst, err := row.client.Instance(ctx, id)
		if err != nil {
			return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("session: resonite instance: %w", corerr.ErrNetworkFailure)
		}
		return platform.NewDataAndMetadataNow(inst, as), nil
	default:
		return platform.DataAndMetadata[platform.Instance]{}, fmt.Errorf("session: unknown platform %q: %w", as.Platform, corerr.ErrInternal)
	}
}

// User fetches the account record named by id through as's authenticated
// client.
func (m *Manager) User(ctx context.Context, as, id platform.AccountID) (platform.DataAndMetadata[platform.Account], error) {
	switch as.Platform {
	case platform.VRChat:
		client, err := m.vrchatClientFor(as)
		if err != nil {
			return platform.DataAndMetadata[platform.Account]{}, err
		}
		acc, err := client.User(ctx, id)
		if err != nil {
			return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("session: vrchat user: %w", corerr.ErrNetworkFailure)
		}
		return platform.NewDataAndMetadataNow(acc, as), nil
	case platform.ChilloutVR:
		m.cvrMu.RLock()
		row, ok := m.cvr[as.String()]
		m.cvrMu.RUnlock()
		if !ok {
			return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("session: %s: %w", as, corerr.ErrNotAuthenticated)
		}
		acc, err := row.client.User(ctx, id)
		if err != nil {
			return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("session: chilloutvr user: %w", corerr.ErrNetworkFailure)
		}
		return platform.NewDataAndMetadataNow(acc, as), nil
	case platform.Resonite:
		m.resoniteMu.RLock()
		row, ok := m.resonite[as.String()]
		m.resoniteMu.RUnlock()
		if !ok {
			return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("session: %s: %w", as, corerr.ErrNotAuthenticated)
		}
		acc, err := row.client.User(ctx, id)
		if err != nil {
			return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("session: resonite user: %w", corerr.ErrNetworkFailure)
		}
		return platform.NewDataAndMetadataNow(acc, as), nil
	default:
		return platform.DataAndMetadata[platform.Account]{}, fmt.Errorf("session: unknown platform %q: %w", as.Platform, corerr.ErrInternal)
	}
}

// vrchatClientFor returns the live client for as, rejecting a row still in
// the Authenticating substate (it has no usable authenticated client yet).
func (m *Manager) vrchatClientFor(as platform.AccountID) (platformclient.VRChatClient, error) {
	m.vrchatMu.RLock()
	defer m.vrchatMu.RUnlock()
	row, ok := m.vrchat[as.String()]
	if !ok || row.state != vrchatAuthenticated {
		return nil, fmt.Errorf("session: %s: %w", as, corerr.ErrNotAuthenticated)
	}
	return row.client, nil
}

// AuthenticatedClients enumerates every authenticated account id for
// platform p: VRChat rows in the Authenticated substate only, plus every
// CVR and Resonite row (those tables have no intermediate substate).
func (m *Manager) AuthenticatedClients(p platform.Tag) []platform.AccountID {
	switch p {
	case platform.VRChat:
		return m.authenticatedVRChatIDs()
	case platform.ChilloutVR:
		m.cvrMu.RLock()
		defer m.cvrMu.RUnlock()
		ids := make([]platform.AccountID, 0, len(m.cvr))
		for _, row := range m.cvr {
			ids = append(ids, row.accountID)
		}
		return ids
	case platform.Resonite:
		m.resoniteMu.RLock()
		defer m.resoniteMu.RUnlock()
		ids := make([]platform.AccountID, 0, len(m.resonite))
		for _, row := range m.resonite {
			ids = append(ids, row.accountID)
		}
		return ids
	default:
		return nil
	}
}
