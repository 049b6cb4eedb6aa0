// Package platformclient defines the per-platform external collaborator
// boundary: request building, JSON shapes, and cookies are out of scope
// (spec §1) — the session manager only consumes the login/query/
// upgrade/downgrade operations declared here. One interface per platform,
// since VRChat, ChilloutVR, and Resonite do not share a handshake shape;
// an exhaustive switch on platform.Tag picks the well-typed client rather
// than reaching for a common dynamic-dispatch interface, per spec §9's
// design note.
package platformclient

import (
	"context"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
)

// VRChatLoginResponse is returned by a VRChat login query. RequiredFactors
// is empty when no additional factor is demanded.
type VRChatLoginResponse struct {
	Token            string
	RequiredFactors  []auth.FactorKind
}

// VRChatSecondFactorResponse is returned by the second-factor verification
// query.
type VRChatSecondFactorResponse struct {
	Verified bool
	Token    string
}

// VRChatClient is the external collaborator for one VRChat account's
// handshake and authenticated queries.
type VRChatClient interface {
	// Login executes the Initial-stage login query.
	Login(ctx context.Context, username, password string) (VRChatLoginResponse, error)
	// VerifySecondFactor executes the SecondFactor-stage verification.
	VerifySecondFactor(ctx context.Context, factor auth.FactorKind, code string) (VRChatSecondFactorResponse, error)
	// GetCurrentUser is the mandatory follow-up query used to discover the
	// account id before the session manager decides which table row to
	// touch.
	GetCurrentUser(ctx context.Context) (platform.AccountID, error)
	// Friends, Instance and User are the typed operations dispatched once
	// authenticated.
	Friends(ctx context.Context) ([]platform.Friend, error)
	Instance(ctx context.Context, id platform.InstanceID) (platform.Instance, error)
	User(ctx context.Context, id platform.AccountID) (platform.Account, error)
	// Logout performs the best-effort platform logout query.
	Logout(ctx context.Context) error
}

// VRChatClientFactory mints VRChatClient handles: New for a fresh
// unauthenticated client ("downgrade" target), FromToken for one
// reconstructed from a stored Authentication token ("upgrade" source for
// reauthenticate).
type VRChatClientFactory interface {
	New(userAgent string) VRChatClient
	FromToken(userAgent, token string) VRChatClient
}

// ChilloutVRLoginResponse is returned by a CVR login query: an identifier
// plus the durable token derived from the session.
type ChilloutVRLoginResponse struct {
	UserID       string
	Identifier   string
	DurableToken string
}

// ChilloutVRClient is the external collaborator for one CVR account. CVR
// has no server logout endpoint (spec §4.3.3 / §9), so there is
// deliberately no Logout method here.
type ChilloutVRClient interface {
	Login(ctx context.Context, username, password string) (ChilloutVRLoginResponse, error)
	Friends(ctx context.Context) ([]platform.Friend, error)
	Instance(ctx context.Context, id platform.InstanceID) (platform.Instance, error)
	User(ctx context.Context, id platform.AccountID) (platform.Account, error)
}

// ChilloutVRClientFactory mints ChilloutVRClient handles.
type ChilloutVRClientFactory interface {
	New(userAgent string) ChilloutVRClient
	FromToken(userAgent, identifier, durableToken string) ChilloutVRClient
}

// ResoniteLoginResponse is returned by a Resonite login query.
type ResoniteLoginResponse struct {
	UserID       string
	SessionToken string
}

// ResoniteClient is the external collaborator for one Resonite account.
type ResoniteClient interface {
	Login(ctx context.Context, identifierKind auth.ResoniteIdentifierKind, identifier, password string) (ResoniteLoginResponse, error)
	// ExtendUserSession is the reauthentication probe for an already-
	// constructed client.
	ExtendUserSession(ctx context.Context) error
	Friends(ctx context.Context) ([]platform.Friend, error)
	Instance(ctx context.Context, id platform.InstanceID) (platform.Instance, error)
	User(ctx context.Context, id platform.AccountID) (platform.Account, error)
	Logout(ctx context.Context) error
}

// ResoniteClientFactory mints ResoniteClient handles.
type ResoniteClientFactory interface {
	New(userAgent string) ResoniteClient
	FromToken(userAgent, sessionToken, userID string) ResoniteClient
}

// Factories bundles the three per-platform factories the session manager
// is constructed with; applications supply their real HTTP-backed
// implementations, tests supply platformclient/fake.
type Factories struct {
	VRChat     VRChatClientFactory
	ChilloutVR ChilloutVRClientFactory
	Resonite   ResoniteClientFactory
}
