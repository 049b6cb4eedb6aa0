// Package fake provides in-memory platformclient implementations for
// tests, grounded directly in the stub behaviors spec.md §8 describes
// verbatim: a login that returns requires_additional_auth plus a token, a
// second factor that reports verified true/false, and per-account
// rejection for the reauthenticate-all partial-failure scenario.
package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
	"github.com/pquerna/otp/totp"
)

// VRChatFixture describes one stub VRChat account's scripted behavior.
type VRChatFixture struct {
	Username        string
	Password        string
	AccountID       platform.AccountID
	RequiredFactors []auth.FactorKind
	// TOTPSecret, when set, makes VerifySecondFactor validate a FactorCode
	// submission against a real TOTP code via pquerna/otp rather than a
	// fixed string, so tests can generate a currently-valid code the same
	// way a real authenticator app would.
	TOTPSecret string
	// RejectLogin, when true, makes Login fail regardless of password. It
	// only affects the Initial-stage login: VRChat reauthenticate never
	// calls Login.
	RejectLogin bool
	// NetworkCalls counts every method invocation, so tests can assert on
	// the "exactly one network call" boundary behaviors.
	NetworkCalls int
	// FriendsResult is returned verbatim by Friends, letting a test script
	// what a refresh fetch observes (e.g. an updated display name).
	FriendsResult []platform.Friend
}

// VRChatFactory is a platformclient.VRChatClientFactory backed by scripted
// fixtures keyed by username (for New, at the credentials stage) and by
// token (for FromToken, at the reauthenticate stage).
type VRChatFactory struct {
	mu         sync.Mutex
	byUsername map[string]*VRChatFixture
	byToken    map[string]*VRChatFixture
}

// NewVRChatFactory builds a factory over the given fixtures, indexing each
// by both username and the token it will hand out on successful login.
func NewVRChatFactory(fixtures ...*VRChatFixture) *VRChatFactory {
	f := &VRChatFactory{
		byUsername: map[string]*VRChatFixture{},
		byToken:    map[string]*VRChatFixture{},
	}
	for _, fx := range fixtures {
		f.byUsername[fx.Username] = fx
		f.byToken[vrchatTokenFor(fx.AccountID)] = fx
	}
	return f
}

func vrchatTokenFor(aid platform.AccountID) string { return fmt.Sprintf("tok-%s", aid.ID) }

func (f *VRChatFactory) New(userAgent string) platformclient.VRChatClient {
	return &vrchatClient{factory: f, userAgent: userAgent}
}

func (f *VRChatFactory) FromToken(userAgent, token string) platformclient.VRChatClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	fx := f.byToken[token]
	return &vrchatClient{factory: f, userAgent: userAgent, fixture: fx, token: token}
}

type vrchatClient struct {
	factory   *VRChatFactory
	userAgent string
	fixture   *VRChatFixture
	token     string
}

func (c *vrchatClient) Login(ctx context.Context, username, password string) (platformclient.VRChatLoginResponse, error) {
	c.factory.mu.Lock()
	fx, ok := c.factory.byUsername[username]
	c.factory.mu.Unlock()
	if !ok {
		return platformclient.VRChatLoginResponse{}, fmt.Errorf("fake: unknown vrchat account %q", username)
	}
	if fx.Password != password || fx.RejectLogin {
		fx.NetworkCalls++
		return platformclient.VRChatLoginResponse{}, auth.ErrCredentialFieldNotApplicable
	}
	fx.NetworkCalls++
	c.fixture = fx
	token := vrchatTokenFor(fx.AccountID)
	c.factory.mu.Lock()
	c.factory.byToken[token] = fx
	c.factory.mu.Unlock()
	return platformclient.VRChatLoginResponse{Token: token, RequiredFactors: fx.RequiredFactors}, nil
}

func (c *vrchatClient) VerifySecondFactor(ctx context.Context, factor auth.FactorKind, code string) (platformclient.VRChatSecondFactorResponse, error) {
	if c.fixture == nil {
		return platformclient.VRChatSecondFactorResponse{}, fmt.Errorf("fake: no pending login")
	}
	c.fixture.NetworkCalls++
	verified := false
	switch factor {
	case auth.FactorCode:
		if c.fixture.TOTPSecret != "" {
			ok, _ := totp.ValidateCustom(code, c.fixture.TOTPSecret, time.Now(), totp.ValidateOpts{
				Period: 30, Skew: 1, Digits: 6, Algorithm: 0,
			})
			verified = ok
		} else {
			verified = code == "123456"
		}
	case auth.FactorEmail, auth.FactorRecovery:
		verified = code == "123456"
	}
	if !verified {
		return platformclient.VRChatSecondFactorResponse{Verified: false}, nil
	}
	return platformclient.VRChatSecondFactorResponse{Verified: true, Token: "sfx"}, nil
}

func (c *vrchatClient) GetCurrentUser(ctx context.Context) (platform.AccountID, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
		return c.fixture.AccountID, nil
	}
	return platform.AccountID{}, fmt.Errorf("fake: no fixture bound")
}

func (c *vrchatClient) Friends(ctx context.Context) ([]platform.Friend, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
		return c.fixture.FriendsResult, nil
	}
	return nil, nil
}

func (c *vrchatClient) Instance(ctx context.Context, id platform.InstanceID) (platform.Instance, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return platform.Instance{}, nil
}

func (c *vrchatClient) User(ctx context.Context, id platform.AccountID) (platform.Account, error) {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return platform.Account{ID: id}, nil
}

func (c *vrchatClient) Logout(ctx context.Context) error {
	if c.fixture != nil {
		c.fixture.NetworkCalls++
	}
	return nil
}
