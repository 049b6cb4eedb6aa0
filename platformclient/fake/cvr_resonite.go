package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
)

// ChilloutVRFixture describes one stub CVR account's scripted behavior.
type ChilloutVRFixture struct {
	Username     string
	Password     string
	UserID       string
	Identifier   string
	DurableToken string
	RejectLogin  bool
	NetworkCalls int
}

// ChilloutVRFactory is a platformclient.ChilloutVRClientFactory backed by
// scripted fixtures.
type ChilloutVRFactory struct {
	mu         sync.Mutex
	byUsername map[string]*ChilloutVRFixture
	byToken    map[string]*ChilloutVRFixture
}

func NewChilloutVRFactory(fixtures ...*ChilloutVRFixture) *ChilloutVRFactory {
	f := &ChilloutVRFactory{byUsername: map[string]*ChilloutVRFixture{}, byToken: map[string]*ChilloutVRFixture{}}
	for _, fx := range fixtures {
		f.byUsername[fx.Username] = fx
		f.byToken[fx.DurableToken] = fx
	}
	return f
}

func (f *ChilloutVRFactory) New(userAgent string) platformclient.ChilloutVRClient {
	return &cvrClient{factory: f}
}

func (f *ChilloutVRFactory) FromToken(userAgent, identifier, durableToken string) platformclient.ChilloutVRClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &cvrClient{factory: f, fixture: f.byToken[durableToken]}
}

type cvrClient struct {
	factory *ChilloutVRFactory
	fixture *ChilloutVRFixture
}

func (c *cvrClient) Login(ctx context.Context, username, password string) (platformclient.ChilloutVRLoginResponse, error) {
	c.factory.mu.Lock()
	fx, ok := c.factory.byUsername[username]
	c.factory.mu.Unlock()
	if !ok {
		return platformclient.ChilloutVRLoginResponse{}, fmt.Errorf("fake: unknown chilloutvr account %q", username)
	}
	fx.NetworkCalls++
	if fx.Password != password || fx.RejectLogin {
		return platformclient.ChilloutVRLoginResponse{}, auth.ErrCredentialFieldNotApplicable
	}
	c.fixture = fx
	return platformclient.ChilloutVRLoginResponse{
		UserID:       fx.UserID,
		Identifier:   fx.Identifier,
		DurableToken: fx.DurableToken,
	}, nil
}

func (c *cvrClient) Friends(ctx context.Context) ([]platform.Friend, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return nil, nil
}

func (c *cvrClient) Instance(ctx context.Context, id platform.InstanceID) (platform.Instance, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return platform.Instance{}, nil
}

// User also serves as the reauthenticate probe for CVR (§4.3.2: CVR has no
// separate refresh endpoint), so an unbound fixture — no durable token
// matched at FromToken time — must fail rather than silently succeed.
func (c *cvrClient) User(ctx context.Context, id platform.AccountID) (platform.Account, error) {
	if c.fixture == nil {
		return platform.Account{}, fmt.Errorf("fake: chilloutvr client not authenticated")
	}
	c.fixture.NetworkCalls++
	return platform.Account{ID: id}, nil
}

// ResoniteFixture describes one stub Resonite account's scripted behavior.
type ResoniteFixture struct {
	IdentifierKind auth.ResoniteIdentifierKind
	Identifier     string
	Password       string
	UserID         string
	SessionToken   string
	RejectLogin    bool
	// RejectExtend makes ExtendUserSession fail, used to script the
	// reauthenticate no-existing-row path removing the row on failure.
	RejectExtend bool
	NetworkCalls int
}

// ResoniteFactory is a platformclient.ResoniteClientFactory backed by
// scripted fixtures.
type ResoniteFactory struct {
	mu           sync.Mutex
	byIdentifier map[string]*ResoniteFixture
	byToken      map[string]*ResoniteFixture
}

func NewResoniteFactory(fixtures ...*ResoniteFixture) *ResoniteFactory {
	f := &ResoniteFactory{byIdentifier: map[string]*ResoniteFixture{}, byToken: map[string]*ResoniteFixture{}}
	for _, fx := range fixtures {
		f.byIdentifier[fx.Identifier] = fx
		f.byToken[fx.SessionToken] = fx
	}
	return f
}

func (f *ResoniteFactory) New(userAgent string) platformclient.ResoniteClient {
	return &resoniteClient{factory: f}
}

func (f *ResoniteFactory) FromToken(userAgent, sessionToken, userID string) platformclient.ResoniteClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &resoniteClient{factory: f, fixture: f.byToken[sessionToken]}
}

type resoniteClient struct {
	factory *ResoniteFactory
	fixture *ResoniteFixture
}

func (c *resoniteClient) Login(ctx context.Context, identifierKind auth.ResoniteIdentifierKind, identifier, password string) (platformclient.ResoniteLoginResponse, error) {
	c.factory.mu.Lock()
	fx, ok := c.factory.byIdentifier[identifier]
	c.factory.mu.Unlock()
	if !ok {
		return platformclient.ResoniteLoginResponse{}, fmt.Errorf("fake: unknown resonite account %q", identifier)
	}
	fx.NetworkCalls++
	if fx.Password != password || fx.RejectLogin {
		return platformclient.ResoniteLoginResponse{}, auth.ErrCredentialFieldNotApplicable
	}
	c.fixture = fx
	return platformclient.ResoniteLoginResponse{UserID: fx.UserID, SessionToken: fx.SessionToken}, nil
}

func (c *resoniteClient) ExtendUserSession(ctx context.Context) error {
	if c.fixture == nil {
		return fmt.Errorf("fake: no fixture bound")
	}
	c.fixture.NetworkCalls++
	if c.fixture.RejectExtend {
		return fmt.Errorf("fake: session extension rejected")
	}
	return nil
}

func (c *resoniteClient) Friends(ctx context.Context) ([]platform.Friend, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return nil, nil
}

func (c *resoniteClient) Instance(ctx context.Context, id platform.InstanceID) (platform.Instance, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return platform.Instance{}, nil
}

func (c *resoniteClient) User(ctx context.Context, id platform.AccountID) (platform.Account, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return platform.Account{ID: id}, nil
}

func (c *resoniteClient) Logout(ctx context.Context) error {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return nil
}
