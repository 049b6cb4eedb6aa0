package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/corerr"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/platformclient"
	"github.com/onlivfe/corevr/platformclient/fake"
	"github.com/pquerna/otp/totp"
)

func newTestManager(vrchat *fake.VRChatFactory, cvr *fake.ChilloutVRFactory, resonite *fake.ResoniteFactory) *Manager {
	return New("corevr-test/1.0", platformclient.Factories{VRChat: vrchat, ChilloutVR: cvr, Resonite: resonite})
}

func TestLoginVRChatNoSecondFactor(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	vrchat := fake.NewVRChatFactory(&fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid})
	m := newTestManager(vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	got, err := m.Login(ctx, auth.NewVRChatInitial("alice", "hunter2"))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.AccountID() != aid {
		t.Fatalf("AccountID() = %v, want %v", got.AccountID(), aid)
	}

	ids := m.AuthenticatedClients(platform.VRChat)
	if len(ids) != 1 || ids[0] != aid {
		t.Fatalf("AuthenticatedClients = %v, want [%v]", ids, aid)
	}
}

func TestLoginVRChatRequiresSecondFactorThenCompletes(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	vrchat := fake.NewVRChatFactory(&fake.VRChatFixture{
		Username: "alice", Password: "hunter2", AccountID: aid,
		RequiredFactors: []auth.FactorKind{auth.FactorCode},
	})
	m := newTestManager(vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	_, err := m.Login(ctx, auth.NewVRChatInitial("alice", "hunter2"))
	var need *corerr.RequiresSecondFactorError
	if !errors.As(err, &need) {
		t.Fatalf("Login error = %v, want *RequiresSecondFactorError", err)
	}
	if need.Account.(platform.AccountID) != aid {
		t.Fatalf("RequiresSecondFactorError.Account = %v, want %v", need.Account, aid)
	}

	// Not yet authenticated: the row exists but is still Authenticating.
	if ids := m.AuthenticatedClients(platform.VRChat); len(ids) != 0 {
		t.Fatalf("AuthenticatedClients before second factor = %v, want empty", ids)
	}

	got, err := m.Login(ctx, auth.NewVRChatSecondFactor(aid, auth.FactorCode, "123456"))
	if err != nil {
		t.Fatalf("Login (second factor): %v", err)
	}
	if got.VRChat.SecondFactorToken != "sfx" {
		t.Fatalf("SecondFactorToken = %q, want sfx", got.VRChat.SecondFactorToken)
	}

	if ids := m.AuthenticatedClients(platform.VRChat); len(ids) != 1 || ids[0] != aid {
		t.Fatalf("AuthenticatedClients after second factor = %v, want [%v]", ids, aid)
	}
}

func TestLoginVRChatSecondFactorWithRealTOTPCode(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	secret := "JBSWY3DPEHPK3PXP"
	vrchat := fake.NewVRChatFactory(&fake.VRChatFixture{
		Username: "alice", Password: "hunter2", AccountID: aid,
		RequiredFactors: []auth.FactorKind{auth.FactorCode},
		TOTPSecret:      secret,
	})
	m := newTestManager(vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	_, err := m.Login(ctx, auth.NewVRChatInitial("alice", "hunter2"))
	var need *corerr.RequiresSecondFactorError
	if !errors.As(err, &need) {
		t.Fatalf("Login error = %v, want *RequiresSecondFactorError", err)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	got, err := m.Login(ctx, auth.NewVRChatSecondFactor(aid, auth.FactorCode, code))
	if err != nil {
		t.Fatalf("Login (second factor, real TOTP code): %v", err)
	}
	if got.VRChat.SecondFactorToken != "sfx" {
		t.Fatalf("SecondFactorToken = %q, want sfx", got.VRChat.SecondFactorToken)
	}
}

func TestLoginVRChatSecondFactorWithoutPendingRowFails(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(fake.NewVRChatFactory(), fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	_, err := m.Login(ctx, auth.NewVRChatSecondFactor(platform.AccountIDFromVRChat("ghost"), auth.FactorCode, "123456"))
	if !errors.Is(err, corerr.ErrAuthenticationFailed) {
		t.Fatalf("error = %v, want ErrAuthenticationFailed", err)
	}
	if errors.Is(err, corerr.ErrNotAuthenticated) {
		t.Fatalf("error must not also satisfy ErrNotAuthenticated (rejection, not a missing session)")
	}
}

func TestLoginChilloutVRThenReauthenticate(t *testing.T) {
	ctx := context.Background()
	fx := &fake.ChilloutVRFixture{Username: "bob", Password: "hunter2", UserID: "u2", Identifier: "id-bob", DurableToken: "durable-bob"}
	cvr := fake.NewChilloutVRFactory(fx)
	m := newTestManager(fake.NewVRChatFactory(), cvr, fake.NewResoniteFactory())

	a, err := m.Login(ctx, auth.NewChilloutVR(nil, "bob", "hunter2"))
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := m.Reauthenticate(ctx, a)
	if err != nil {
		t.Fatalf("Reauthenticate: %v", err)
	}
	if refreshed.AccountID() != a.AccountID() {
		t.Fatalf("AccountID changed across reauthenticate: %v != %v", refreshed.AccountID(), a.AccountID())
	}
	if !refreshed.Metadata.UpdatedAt.After(a.Metadata.UpdatedAt) && refreshed.Metadata.UpdatedAt != a.Metadata.UpdatedAt {
		t.Fatalf("Metadata.UpdatedAt was not bumped")
	}
}

func TestReauthenticateChilloutVRFailureRemovesRow(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromChilloutVR("u2")
	m := newTestManager(fake.NewVRChatFactory(), fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	// No fixture ever registered for this durable token, so FromToken binds
	// no fixture and the User probe fails.
	stale := auth.NewChilloutVRAuthentication("id-ghost", "durable-ghost", aid)
	if _, err := m.Reauthenticate(ctx, stale); err == nil {
		t.Fatalf("expected Reauthenticate to fail for an unbound fixture")
	}
	if ids := m.AuthenticatedClients(platform.ChilloutVR); len(ids) != 0 {
		t.Fatalf("AuthenticatedClients after failed reauthenticate = %v, want empty", ids)
	}
}

func TestLogoutRemovesRow(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	vrchat := fake.NewVRChatFactory(&fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid})
	m := newTestManager(vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	if _, err := m.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := m.Logout(ctx, aid); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ids := m.AuthenticatedClients(platform.VRChat); len(ids) != 0 {
		t.Fatalf("AuthenticatedClients after logout = %v, want empty", ids)
	}
}

func TestInstancePlatformMismatchReturnsErrorWithoutNetworkCall(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	fx := &fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid}
	vrchat := fake.NewVRChatFactory(fx)
	m := newTestManager(vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	if _, err := m.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("Login: %v", err)
	}

	before := fx.NetworkCalls
	_, err := m.Instance(ctx, aid, platform.NewInstanceID(platform.ChilloutVR, "instance-1"))
	if !errors.Is(err, corerr.ErrPlatformMismatch) {
		t.Fatalf("error = %v, want ErrPlatformMismatch", err)
	}
	if fx.NetworkCalls != before {
		t.Fatalf("NetworkCalls changed on a platform mismatch: %d -> %d", before, fx.NetworkCalls)
	}
}

func TestConcurrentLoginsOnDifferentAccountsBothComplete(t *testing.T) {
	ctx := context.Background()
	aid1 := platform.AccountIDFromVRChat("u1")
	aid2 := platform.AccountIDFromVRChat("u2")
	vrchat := fake.NewVRChatFactory(
		&fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid1},
		&fake.VRChatFixture{Username: "bob", Password: "hunter2", AccountID: aid2},
	)
	m := newTestManager(vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	done := make(chan error, 2)
	go func() {
		_, err := m.Login(ctx, auth.NewVRChatInitial("alice", "hunter2"))
		done <- err
	}()
	go func() {
		_, err := m.Login(ctx, auth.NewVRChatInitial("bob", "hunter2"))
		done <- err
	}()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent Login: %v", err)
		}
	}

	ids := m.AuthenticatedClients(platform.VRChat)
	if len(ids) != 2 {
		t.Fatalf("AuthenticatedClients = %v, want both accounts", ids)
	}
}
