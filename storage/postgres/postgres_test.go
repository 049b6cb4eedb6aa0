package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/profile"
)

// setupTestRepository connects to a real Postgres instance and applies the
// schema migration, skipping the test entirely when no instance is
// reachable through the environment — this suite is never run as part of a
// normal build, only against a docker-compose test database.
func setupTestRepository(t *testing.T) *Repository {
	t.Helper()

	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres-backed tests")
	}
	port := os.Getenv("TEST_DB_PORT")
	if port == "" {
		port = "5432"
	}

	ctx := context.Background()
	db, err := New(ctx, Config{
		Host:         host,
		Port:         port,
		User:         envOr("TEST_DB_USER", "corevr"),
		Password:     envOr("TEST_DB_PASSWORD", "corevr_test"),
		Database:     envOr("TEST_DB_NAME", "corevr_test"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 5,
	})
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}

	for _, table := range []string{"profile_account_mappings", "profiles", "authentications"} {
		if _, err := db.pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	repo, err := NewRepository(ctx, db)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(db.Close)
	return repo
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestPostgresUpsertAuthenticationRoundTrip(t *testing.T) {
	r := setupTestRepository(t)
	ctx := context.Background()

	aid := platform.AccountIDFromVRChat("u1")
	a := auth.NewVRChat("tok-1", "", aid)

	replaced, err := r.UpsertAuthentication(ctx, a)
	if err != nil {
		t.Fatalf("UpsertAuthentication: %v", err)
	}
	if replaced {
		t.Fatalf("expected replaced=false on first insert")
	}

	got, err := r.GetAuthentication(ctx, aid)
	if err != nil {
		t.Fatalf("GetAuthentication: %v", err)
	}
	if got.VRChat.Token != "tok-1" {
		t.Fatalf("token = %q, want tok-1", got.VRChat.Token)
	}

	replaced, err = r.UpsertAuthentication(ctx, auth.NewVRChat("tok-2", "", aid))
	if err != nil {
		t.Fatalf("UpsertAuthentication (replace): %v", err)
	}
	if !replaced {
		t.Fatalf("expected replaced=true on second insert")
	}
}

func TestPostgresRemoveAuthentication(t *testing.T) {
	r := setupTestRepository(t)
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")

	if removed, err := r.RemoveAuthentication(ctx, aid); err != nil || removed {
		t.Fatalf("RemoveAuthentication on empty table = %v, %v", removed, err)
	}

	if _, err := r.UpsertAuthentication(ctx, auth.NewVRChat("tok-1", "", aid)); err != nil {
		t.Fatalf("UpsertAuthentication: %v", err)
	}
	removed, err := r.RemoveAuthentication(ctx, aid)
	if err != nil {
		t.Fatalf("RemoveAuthentication: %v", err)
	}
	if !removed {
		t.Fatalf("RemoveAuthentication reported false for an existing row")
	}
	if _, err := r.GetAuthentication(ctx, aid); err == nil {
		t.Fatalf("expected GetAuthentication to fail after removal")
	}
}

func TestPostgresProfileDeleteCascadesMappings(t *testing.T) {
	r := setupTestRepository(t)
	ctx := context.Background()

	p := profile.NewProfile("alice")
	if _, err := r.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	aid := platform.AccountIDFromVRChat("u1")
	if err := r.SetProfileAccounts(ctx, p.ID, []platform.AccountID{aid}); err != nil {
		t.Fatalf("SetProfileAccounts: %v", err)
	}

	ids, err := r.ListAccountsOf(ctx, p.ID)
	if err != nil || len(ids) != 1 {
		t.Fatalf("ListAccountsOf before delete = %v, %v", ids, err)
	}

	if err := r.DeleteProfile(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	ids, err = r.ListAccountsOf(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAccountsOf after delete: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ListAccountsOf after delete = %v, want empty (cascade)", ids)
	}
}

func TestPostgresSetProfileAccountsReplacesSet(t *testing.T) {
	r := setupTestRepository(t)
	ctx := context.Background()

	p := profile.NewProfile("bob")
	if _, err := r.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	first := platform.AccountIDFromVRChat("u1")
	second := platform.AccountIDFromChilloutVR("u2")

	if err := r.SetProfileAccounts(ctx, p.ID, []platform.AccountID{first}); err != nil {
		t.Fatalf("SetProfileAccounts (first): %v", err)
	}
	if err := r.SetProfileAccounts(ctx, p.ID, []platform.AccountID{second}); err != nil {
		t.Fatalf("SetProfileAccounts (replace): %v", err)
	}

	ids, err := r.ListAccountsOf(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListAccountsOf: %v", err)
	}
	if len(ids) != 1 || ids[0] != second {
		t.Fatalf("ListAccountsOf = %v, want only %v", ids, second)
	}
}

func TestPostgresListAuthenticationIDsZeroLimit(t *testing.T) {
	r := setupTestRepository(t)
	ctx := context.Background()
	aid := platform.AccountIDFromVRChat("u1")
	if _, err := r.UpsertAuthentication(ctx, auth.NewVRChat("tok-1", "", aid)); err != nil {
		t.Fatalf("UpsertAuthentication: %v", err)
	}
	ids, err := r.ListAuthenticationIDs(ctx, 0)
	if err != nil {
		t.Fatalf("ListAuthenticationIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ListAuthenticationIDs(limit=0) = %v, want empty", ids)
	}
}
