// Package storage defines the Repository contract: a uniform collection of
// entity kinds (accounts, friends, instances, worlds, avatars,
// authentications, profiles, profile<->account mappings), with a durable
// subset (authentications, profiles, mappings) that survives restarts.
// Both the file-backed implementation (storage/file) and the SQL-backed
// implementation (storage/postgres) satisfy this one interface.
//
// Purpose: Cache/storage coordinator contract shared by every backend.
// Domain: Storage
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/profile"
)

// Kind discriminates the storage.Error reasons a Repository operation can
// fail with.
type Kind int

const (
	KindNotFound Kind = iota
	KindIO
	KindSerialization
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindSerialization:
		return "serialization"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is the typed error every Repository operation fails with.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("storage: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// The four sentinels below let callers write errors.Is(err,
// storage.ErrNotFound) without reaching into the Error struct, matching
// Kind one-for-one.
var (
	ErrNotFound      = errors.New("storage: not found")
	ErrIO            = errors.New("storage: io failure")
	ErrSerialization = errors.New("storage: serialization failure")
	ErrConflict      = errors.New("storage: conflict")
)

func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindIO:
		return target == ErrIO
	case KindSerialization:
		return target == ErrSerialization
	case KindConflict:
		return target == ErrConflict
	default:
		return false
	}
}

func newError(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NotFound builds a KindNotFound error for op.
func NotFound(op string) *Error { return newError(op, KindNotFound, nil) }

// IOError wraps err as a KindIO error for op.
func IOError(op string, err error) *Error { return newError(op, KindIO, err) }

// SerializationError wraps err as a KindSerialization error for op.
func SerializationError(op string, err error) *Error { return newError(op, KindSerialization, err) }

// Repository is the storage contract every backend satisfies.
type Repository interface {
	// Accounts
	ListAccountIDs(ctx context.Context, limit int) ([]platform.AccountID, error)
	GetAccount(ctx context.Context, id platform.AccountID) (platform.DataAndMetadata[platform.Account], error)
	UpsertAccount(ctx context.Context, e platform.DataAndMetadata[platform.Account]) (bool, error)
	UpsertAccounts(ctx context.Context, es []platform.DataAndMetadata[platform.Account]) ([]platform.AccountID, error)

	// Friends
	ListFriendIDs(ctx context.Context, limit int) ([]platform.AccountID, error)
	GetFriend(ctx context.Context, id platform.AccountID) (platform.DataAndMetadata[platform.Friend], error)
	UpsertFriend(ctx context.Context, e platform.DataAndMetadata[platform.Friend]) (bool, error)
	UpsertFriends(ctx context.Context, es []platform.DataAndMetadata[platform.Friend]) ([]platform.AccountID, error)

	// Instances
	ListInstanceIDs(ctx context.Context, limit int) ([]platform.InstanceID, error)
	GetInstance(ctx context.Context, id platform.InstanceID) (platform.DataAndMetadata[platform.Instance], error)
	UpsertInstance(ctx context.Context, e platform.DataAndMetadata[platform.Instance]) (bool, error)

	// Worlds
	ListWorldIDs(ctx context.Context, limit int) ([]platform.WorldID, error)
	GetWorld(ctx context.Context, id platform.WorldID) (platform.DataAndMetadata[platform.World], error)
	UpsertWorld(ctx context.Context, e platform.DataAndMetadata[platform.World]) (bool, error)

	// Avatars
	ListAvatarIDs(ctx context.Context, limit int) ([]platform.AvatarID, error)
	GetAvatar(ctx context.Context, id platform.AvatarID) (platform.DataAndMetadata[platform.Avatar], error)
	UpsertAvatar(ctx context.Context, e platform.DataAndMetadata[platform.Avatar]) (bool, error)

	// Authentications (durable)
	ListAuthenticationIDs(ctx context.Context, limit int) ([]platform.AccountID, error)
	GetAuthentication(ctx context.Context, id platform.AccountID) (auth.Authentication, error)
	UpsertAuthentication(ctx context.Context, a auth.Authentication) (bool, error)
	RemoveAuthentication(ctx context.Context, id platform.AccountID) (bool, error)

	// Profiles (durable)
	ListProfileIDs(ctx context.Context, limit int) ([]profile.ID, error)
	GetProfile(ctx context.Context, id profile.ID) (profile.Profile, error)
	UpsertProfile(ctx context.Context, p profile.Profile) (bool, error)
	DeleteProfile(ctx context.Context, id profile.ID) error

	// Profile<->account mappings (durable)
	SetProfileAccounts(ctx context.Context, pid profile.ID, ids []platform.AccountID) error
	SetAccountProfiles(ctx context.Context, aid platform.AccountID, ids []profile.ID) error
	ListProfilesOf(ctx context.Context, aid platform.AccountID) ([]profile.ID, error)
	ListAccountsOf(ctx context.Context, pid profile.ID) ([]platform.AccountID, error)
}

// AccountsForProfile is a derived read: the default composition of
// ListAccountsOf + GetAccount, provided once for every backend on top of
// the primitives, matching the source trait's default-implemented
// composite methods.
func AccountsForProfile(ctx context.Context, r Repository, pid profile.ID) ([]platform.DataAndMetadata[platform.Account], error) {
	ids, err := r.ListAccountsOf(ctx, pid)
	if err != nil {
		return nil, err
	}
	out := make([]platform.DataAndMetadata[platform.Account], 0, len(ids))
	for _, id := range ids {
		a, err := r.GetAccount(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ProfilesForAccount is the symmetric derived read.
func ProfilesForAccount(ctx context.Context, r Repository, aid platform.AccountID) ([]profile.Profile, error) {
	ids, err := r.ListProfilesOf(ctx, aid)
	if err != nil {
		return nil, err
	}
	out := make([]profile.Profile, 0, len(ids))
	for _, id := range ids {
		p, err := r.GetProfile(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
