package onlivfe

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
	"github.com/onlivfe/corevr/session"
	"github.com/onlivfe/corevr/storage"
	"github.com/onlivfe/corevr/storage/file"
)

func newTestOnlivfe(t *testing.T, vrchat *fake.VRChatFactory, cvr *fake.ChilloutVRFactory, resonite *fake.ResoniteFactory, opts ...Option) (*Onlivfe, *file.Repository) {
	t.Helper()
	repo, err := file.New(t.TempDir())
	if err != nil {
		t.Fatalf("file.New: %v", err)
	}
	mgr := session.New("corevr-test/1.0", platformclient.Factories{VRChat: vrchat, ChilloutVR: cvr, Resonite: resonite})
	return New(repo, mgr, opts...), repo
}

func TestLoginPersistsAuthentication(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	vrchat := fake.NewVRChatFactory(&fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid})
	o, repo := newTestOnlivfe(t, vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	if _, err := o.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("Login: %v", err)
	}

	stored, err := repo.GetAuthentication(ctx, aid)
	if err != nil {
		t.Fatalf("GetAuthentication: %v", err)
	}
	if stored.AccountID() != aid {
		t.Fatalf("persisted AccountID = %v, want %v", stored.AccountID(), aid)
	}
}

func TestUserServesCacheWithinRefreshInterval(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	fx := &fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid}
	vrchat := fake.NewVRChatFactory(fx)
	o, repo := newTestOnlivfe(t, vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory(), WithRefreshInterval(time.Minute))

	if _, err := o.sessions.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("seed login: %v", err)
	}
	cached := platform.NewDataAndMetadataNow(platform.Account{ID: aid, Detail: platform.VRChatAccountDetail{DisplayName: "cached"}}, aid)
	if _, err := repo.UpsertAccount(ctx, cached); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}

	before := fx.NetworkCalls
	got, err := o.User(ctx, aid, aid)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if fx.NetworkCalls != before {
		t.Fatalf("User issued a network call for a fresh cache entry")
	}
	if got.Data.Detail.(platform.VRChatAccountDetail).DisplayName != "cached" {
		t.Fatalf("User returned %v, want the cached value", got.Data.Detail)
	}
}

func TestUserRefetchesWhenStale(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	fx := &fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid}
	vrchat := fake.NewVRChatFactory(fx)
	o, repo := newTestOnlivfe(t, vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory(), WithRefreshInterval(time.Minute))

	if _, err := o.sessions.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("seed login: %v", err)
	}
	stale := platform.DataAndMetadata[platform.Account]{
		Data:     platform.Account{ID: aid, Detail: platform.VRChatAccountDetail{DisplayName: "stale"}},
		Metadata: platform.Metadata{UpdatedAt: time.Now().Add(-5 * time.Minute), UpdatedBy: aid},
	}
	if _, err := repo.UpsertAccount(ctx, stale); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}

	before := fx.NetworkCalls
	got, err := o.User(ctx, aid, aid)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if fx.NetworkCalls != before+1 {
		t.Fatalf("User issued %d network calls, want exactly 1", fx.NetworkCalls-before)
	}
	if !got.Metadata.UpdatedAt.After(stale.Metadata.UpdatedAt) {
		t.Fatalf("UpdatedAt was not refreshed")
	}
	reloaded, err := repo.GetAccount(ctx, aid)
	if err != nil {
		t.Fatalf("GetAccount after refresh: %v", err)
	}
	if !reloaded.Metadata.UpdatedAt.After(stale.Metadata.UpdatedAt) {
		t.Fatalf("refreshed account was not persisted")
	}
}

func TestUserPlatformMismatchReturnsErrorWithoutNetworkCall(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	fx := &fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid}
	vrchat := fake.NewVRChatFactory(fx)
	o, _ := newTestOnlivfe(t, vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	if _, err := o.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("Login: %v", err)
	}

	before := fx.NetworkCalls
	_, err := o.User(ctx, aid, platform.AccountIDFromChilloutVR("x"))
	if !errors.Is(err, corerr.ErrPlatformMismatch) {
		t.Fatalf("error = %v, want ErrPlatformMismatch", err)
	}
	if errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error must not also satisfy storage.ErrNotFound (mismatch masked as a cache miss)")
	}
	if fx.NetworkCalls != before {
		t.Fatalf("NetworkCalls changed on a platform mismatch: %d -> %d", before, fx.NetworkCalls)
	}
}

func TestInstancePlatformMismatchReturnsErrorWithoutNetworkCall(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	fx := &fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid}
	vrchat := fake.NewVRChatFactory(fx)
	o, _ := newTestOnlivfe(t, vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory())

	if _, err := o.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("Login: %v", err)
	}

	before := fx.NetworkCalls
	_, err := o.Instance(ctx, aid, platform.NewInstanceID(platform.ChilloutVR, "instance-1"))
	if !errors.Is(err, corerr.ErrPlatformMismatch) {
		t.Fatalf("error = %v, want ErrPlatformMismatch", err)
	}
	if errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error must not also satisfy storage.ErrNotFound (mismatch masked as a cache miss)")
	}
	if fx.NetworkCalls != before {
		t.Fatalf("NetworkCalls changed on a platform mismatch: %d -> %d", before, fx.NetworkCalls)
	}
}

func TestUserNotFoundWithNoCacheAndNoSession(t *testing.T) {
	ctx := context.Background()
	o, _ := newTestOnlivfe(t, fake.NewVRChatFactory(), fake.NewChilloutVRFactory(), fake.NewResoniteFactory())
	aid := platform.AccountIDFromVRChat("ghost")

	_, err := o.User(ctx, aid, aid)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want storage.ErrNotFound", err)
	}
}

func TestFriendsIssuesExactlyOneNetworkCallWhenStale(t *testing.T) {
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	fx := &fake.VRChatFixture{
		Username: "alice", Password: "hunter2", AccountID: aid,
		FriendsResult: []platform.Friend{{ID: platform.AccountIDFromVRChat("f1"), Detail: platform.VRChatFriendDetail{DisplayName: "updated"}}},
	}
	vrchat := fake.NewVRChatFactory(fx)
	o, repo := newTestOnlivfe(t, vrchat, fake.NewChilloutVRFactory(), fake.NewResoniteFactory(), WithRefreshInterval(time.Minute))

	if _, err := o.sessions.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("seed login: %v", err)
	}
	stale := platform.DataAndMetadata[platform.Friend]{
		Data:     platform.Friend{ID: platform.AccountIDFromVRChat("f1"), Detail: platform.VRChatFriendDetail{DisplayName: "stale"}},
		Metadata: platform.Metadata{UpdatedAt: time.Now().Add(-5 * time.Minute), UpdatedBy: aid},
	}
	if _, err := repo.UpsertFriend(ctx, stale); err != nil {
		t.Fatalf("UpsertFriend: %v", err)
	}

	before := fx.NetworkCalls
	got, err := o.Friends(ctx, aid)
	if err != nil {
		t.Fatalf("Friends: %v", err)
	}
	if fx.NetworkCalls != before+1 {
		t.Fatalf("Friends issued %d network calls, want exactly 1", fx.NetworkCalls-before)
	}
	if len(got) != 1 || got[0].Data.Detail.(platform.VRChatFriendDetail).DisplayName != "updated" {
		t.Fatalf("Friends() = %+v, want the refreshed display name", got)
	}
}

func TestReauthenticateAllPartialFailure(t *testing.T) {
	ctx := context.Background()
	aid1 := platform.AccountIDFromVRChat("u1")
	aid2 := platform.AccountIDFromChilloutVR("u2")
	aid3 := platform.AccountIDFromResonite("u3")

	vrchat := fake.NewVRChatFactory(&fake.VRChatFixture{Username: "alice", Password: "hunter2", AccountID: aid1})
	cvr := fake.NewChilloutVRFactory(&fake.ChilloutVRFixture{Username: "bob", Password: "hunter2", UserID: "u2", Identifier: "id-bob", DurableToken: "durable-bob"})
	resonite := fake.NewResoniteFactory(&fake.ResoniteFixture{IdentifierKind: auth.ResoniteIdentifierOwnerID, Identifier: "owner-3", Password: "hunter2", UserID: "u3", SessionToken: "session-3"})

	o, repo := newTestOnlivfe(t, vrchat, cvr, resonite)

	if _, err := o.Login(ctx, auth.NewVRChatInitial("alice", "hunter2")); err != nil {
		t.Fatalf("login vrchat: %v", err)
	}
	if _, err := o.Login(ctx, auth.NewChilloutVR(nil, "bob", "hunter2")); err != nil {
		t.Fatalf("login chilloutvr: %v", err)
	}
	if _, err := o.Login(ctx, auth.NewResonite(auth.ResoniteIdentifierOwnerID, "owner-3", "hunter2")); err != nil {
		t.Fatalf("login resonite: %v", err)
	}

	// Corrupt the persisted ChilloutVR durable token so its reauthenticate
	// probe fails to match any fixture, without disturbing the other two.
	stored, err := repo.GetAuthentication(ctx, aid2)
	if err != nil {
		t.Fatalf("GetAuthentication: %v", err)
	}
	stored.ChilloutVR.DurableToken = "no-such-token"
	if _, err := repo.UpsertAuthentication(ctx, stored); err != nil {
		t.Fatalf("UpsertAuthentication (corrupt): %v", err)
	}

	// Force every account to be reauthenticated, not just the dropped one,
	// by tearing down every live session first.
	if err := o.sessions.Logout(ctx, aid1); err != nil {
		t.Fatalf("logout u1: %v", err)
	}
	if err := o.sessions.Logout(ctx, aid2); err != nil {
		t.Fatalf("logout u2: %v", err)
	}
	if err := o.sessions.Logout(ctx, aid3); err != nil {
		t.Fatalf("logout u3: %v", err)
	}

	succeeded, err := o.ReauthenticateAll(ctx, false)
	if err == nil {
		t.Fatalf("expected a partial-failure error")
	}
	var agg *corerr.AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("error = %v, want *corerr.AggregateError", err)
	}
	if _, failed := agg.Failures[aid2.String()]; !failed || len(agg.Failures) != 1 {
		t.Fatalf("Failures = %v, want exactly {%s: ...}", agg.Failures, aid2)
	}

	succeededSet := map[string]bool{}
	for _, id := range succeeded {
		succeededSet[id.String()] = true
	}
	if !succeededSet[aid1.String()] || !succeededSet[aid3.String()] {
		t.Fatalf("succeeded = %v, want both u1 and u3", succeeded)
	}
	if succeededSet[aid2.String()] {
		t.Fatalf("succeeded unexpectedly includes the corrupted account u2")
	}
}
