// Package auth holds the Authentication and LoginCredentials unions:
// the durable, persisted token on one side and the one-shot credential
// bundle consumed by login on the other.
//
// Purpose: Per-platform authentication state and login input.
// Domain: Identity
// Invariants: Authentication.Metadata.UpdatedBy.Platform == Authentication.Platform().
package auth

import (
	"errors"
	"fmt"

	"github.com/onlivfe/corevr/platform"
)

// ErrCredentialFieldNotApplicable is returned by a LoginCredentials
// getter/setter when the field does not exist at the credential's current
// stage (e.g. VRChat's Initial stage has no secondary secret).
var ErrCredentialFieldNotApplicable = errors.New("auth: field not applicable at this credential stage")

// Authentication is the durable, persisted per-platform session token. It
// is data-with-metadata: Metadata.UpdatedBy is the authenticated account
// id itself.
type Authentication struct {
	Platform platform.Tag
	Metadata platform.Metadata

	// Exactly one of the following is populated, selected by Platform.
	VRChat     *VRChatAuthentication
	ChilloutVR *ChilloutVRAuthentication
	Resonite   *ResoniteAuthentication
}

// AccountID returns the account this authentication belongs to, read off
// the metadata envelope per the data model (Authentication carries no
// separate id field — the authenticated account IS Metadata.UpdatedBy).
func (a Authentication) AccountID() platform.AccountID { return a.Metadata.UpdatedBy }

// TokenMaterial returns the one secret that authenticates a.Platform's
// client: VRChat's token, ChilloutVR's durable token, Resonite's session
// token. Callers use it only to derive a one-way fingerprint for log
// correlation (see crypto.TokenFingerprint), never to log or persist it
// raw.
func (a Authentication) TokenMaterial() string {
	switch a.Platform {
	case platform.VRChat:
		if a.VRChat == nil {
			return ""
		}
		return a.VRChat.Token
	case platform.ChilloutVR:
		if a.ChilloutVR == nil {
			return ""
		}
		return a.ChilloutVR.DurableToken
	case platform.Resonite:
		if a.Resonite == nil {
			return ""
		}
		return a.Resonite.SessionToken
	default:
		return ""
	}
}

// VRChatAuthentication carries VRChat's auth token plus an optional
// second-factor token obtained once the two-stage login completes.
type VRChatAuthentication struct {
	Token            string
	SecondFactorToken string
}

// ChilloutVRAuthentication carries CVR's saved-login-credentials identifier
// plus the durable token derived from a successful login.
type ChilloutVRAuthentication struct {
	Identifier   string
	DurableToken string
}

// ResoniteAuthentication carries Resonite's server-issued session token and
// user id.
type ResoniteAuthentication struct {
	SessionToken string
	UserID       string
}

// NewVRChat builds a VRChat Authentication, stamping metadata with now().
func NewVRChat(token, secondFactorToken string, as platform.AccountID) Authentication {
	return Authentication{
		Platform: platform.VRChat,
		Metadata: platform.NewNow(as),
		VRChat:   &VRChatAuthentication{Token: token, SecondFactorToken: secondFactorToken},
	}
}

// NewChilloutVRAuthentication builds a ChilloutVR Authentication.
func NewChilloutVRAuthentication(identifier, durableToken string, as platform.AccountID) Authentication {
	return Authentication{
		Platform:   platform.ChilloutVR,
		Metadata:   platform.NewNow(as),
		ChilloutVR: &ChilloutVRAuthentication{Identifier: identifier, DurableToken: durableToken},
	}
}

// NewResoniteAuthentication builds a Resonite Authentication.
func NewResoniteAuthentication(sessionToken, userID string, as platform.AccountID) Authentication {
	return Authentication{
		Platform: platform.Resonite,
		Metadata: platform.NewNow(as),
		Resonite: &ResoniteAuthentication{SessionToken: sessionToken, UserID: userID},
	}
}

// FactorKind enumerates the VRChat second-factor kinds a caller may supply
// in response to RequiresAdditionalFactor.
type FactorKind string

const (
	FactorEmail    FactorKind = "email"
	FactorCode     FactorKind = "code" // TOTP
	FactorRecovery FactorKind = "recovery"
)

// ResoniteIdentifierKind distinguishes which identifier kind a Resonite login
// credential carries; only OwnerID participates in the downgrade-existing-
// client lookup described in spec §4.3.1.
type ResoniteIdentifierKind string

const (
	ResoniteIdentifierOwnerID ResoniteIdentifierKind = "owner_id"
	ResoniteIdentifierEmail   ResoniteIdentifierKind = "email"
)

// LoginCredentials is the one-shot bundle consumed by login, discriminated
// on platform; the VRChat variant is itself a two-state sum (Initial vs.
// SecondFactor) per the two-stage handshake.
type LoginCredentials struct {
	Platform platform.Tag

	VRChatInitial      *VRChatInitialCredentials
	VRChatSecondFactor *VRChatSecondFactorCredentials
	ChilloutVR         *ChilloutVRCredentials
	Resonite           *ResoniteCredentials
}

type VRChatInitialCredentials struct {
	Username string
	Password string
}

type VRChatSecondFactorCredentials struct {
	Account platform.AccountID
	Factor  FactorKind
	Code    string
}

type ChilloutVRCredentials struct {
	// Account, if non-nil, names an existing client to downgrade and reuse
	// rather than opening a fresh connection.
	Account  *platform.AccountID
	Username string
	Password string
}

type ResoniteCredentials struct {
	IdentifierKind ResoniteIdentifierKind
	Identifier     string
	Password       string
}

// NewVRChatInitial builds the Initial-stage VRChat credential.
func NewVRChatInitial(username, password string) LoginCredentials {
	return LoginCredentials{
		Platform:      platform.VRChat,
		VRChatInitial: &VRChatInitialCredentials{Username: username, Password: password},
	}
}

// NewVRChatSecondFactor builds the SecondFactor-stage VRChat credential.
func NewVRChatSecondFactor(account platform.AccountID, factor FactorKind, code string) LoginCredentials {
	return LoginCredentials{
		Platform: platform.VRChat,
		VRChatSecondFactor: &VRChatSecondFactorCredentials{
			Account: account,
			Factor:  factor,
			Code:    code,
		},
	}
}

// NewChilloutVR builds a ChilloutVR credential, optionally naming an
// existing account to downgrade.
func NewChilloutVR(account *platform.AccountID, username, password string) LoginCredentials {
	return LoginCredentials{
		Platform:   platform.ChilloutVR,
		ChilloutVR: &ChilloutVRCredentials{Account: account, Username: username, Password: password},
	}
}

// NewResonite builds a Resonite credential.
func NewResonite(kind ResoniteIdentifierKind, identifier, password string) LoginCredentials {
	return LoginCredentials{
		Platform: platform.Resonite,
		Resonite: &ResoniteCredentials{IdentifierKind: kind, Identifier: identifier, Password: password},
	}
}

// Identifier returns the login-identifying string for this credential
// (username, email, or the VRChat second-factor's account id), per the
// upstream auth.rs accessor contract.
func (c LoginCredentials) Identifier() (string, error) {
	switch {
	case c.VRChatInitial != nil:
		return c.VRChatInitial.Username, nil
	case c.VRChatSecondFactor != nil:
		return c.VRChatSecondFactor.Account.String(), nil
	case c.ChilloutVR != nil:
		return c.ChilloutVR.Username, nil
	case c.Resonite != nil:
		return c.Resonite.Identifier, nil
	default:
		return "", fmt.Errorf("auth: empty login credentials")
	}
}

// PrimarySecret returns the password, which VRChat's SecondFactor stage
// does not carry (the password was already consumed at Initial).
func (c LoginCredentials) PrimarySecret() (string, error) {
	switch {
	case c.VRChatInitial != nil:
		return c.VRChatInitial.Password, nil
	case c.VRChatSecondFactor != nil:
		return "", ErrCredentialFieldNotApplicable
	case c.ChilloutVR != nil:
		return c.ChilloutVR.Password, nil
	case c.Resonite != nil:
		return c.Resonite.Password, nil
	default:
		return "", fmt.Errorf("auth: empty login credentials")
	}
}

// SecondarySecret returns the second-factor code, only applicable to
// VRChat's SecondFactor stage; ChilloutVR has no secondary secret at all.
func (c LoginCredentials) SecondarySecret() (string, error) {
	if c.VRChatSecondFactor != nil {
		return c.VRChatSecondFactor.Code, nil
	}
	return "", ErrCredentialFieldNotApplicable
}
