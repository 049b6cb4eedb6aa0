package auth

import (
	"errors"
	"testing"

	"github.com/onlivfe/corevr/platform"
)

func TestAuthenticationAccountIDReadsMetadata(t *testing.T) {
	aid := platform.AccountIDFromVRChat("u1")
	a := NewVRChat("tok", "", aid)
	if got := a.AccountID(); got != aid {
		t.Fatalf("AccountID() = %v, want %v", got, aid)
	}
}

func TestLoginCredentialsIdentifier(t *testing.T) {
	cases := []struct {
		name string
		c    LoginCredentials
		want string
	}{
		{"vrchat initial", NewVRChatInitial("alice", "hunter2"), "alice"},
		{"chilloutvr", NewChilloutVR(nil, "bob", "hunter2"), "bob"},
		{"resonite", NewResonite(ResoniteIdentifierEmail, "bob@example.com", "hunter2"), "bob@example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.c.Identifier()
			if err != nil {
				t.Fatalf("Identifier: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Identifier() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVRChatSecondFactorHasNoPrimarySecret(t *testing.T) {
	c := NewVRChatSecondFactor(platform.AccountIDFromVRChat("u1"), FactorCode, "123456")
	if _, err := c.PrimarySecret(); !errors.Is(err, ErrCredentialFieldNotApplicable) {
		t.Fatalf("PrimarySecret() error = %v, want ErrCredentialFieldNotApplicable", err)
	}
	secondary, err := c.SecondarySecret()
	if err != nil {
		t.Fatalf("SecondarySecret: %v", err)
	}
	if secondary != "123456" {
		t.Fatalf("SecondarySecret() = %q, want 123456", secondary)
	}
}

func TestChilloutVRHasNoSecondarySecret(t *testing.T) {
	c := NewChilloutVR(nil, "bob", "hunter2")
	if _, err := c.SecondarySecret(); !errors.Is(err, ErrCredentialFieldNotApplicable) {
		t.Fatalf("SecondarySecret() error = %v, want ErrCredentialFieldNotApplicable", err)
	}
}

func TestAuthenticationLogValueOmitsToken(t *testing.T) {
	a := NewVRChat("super-secret-token", "second-factor-token", platform.AccountIDFromVRChat("u1"))
	v := a.LogValue()
	for _, attr := range v.Group() {
		if attr.Value.String() == "super-secret-token" || attr.Value.String() == "second-factor-token" {
			t.Fatalf("LogValue() leaked a token via attribute %q", attr.Key)
		}
	}
}

func TestLoginCredentialsLogValueOmitsPassword(t *testing.T) {
	c := NewVRChatInitial("alice", "hunter2")
	v := c.LogValue()
	for _, attr := range v.Group() {
		if attr.Value.String() == "hunter2" {
			t.Fatalf("LogValue() leaked the password via attribute %q", attr.Key)
		}
	}
}
