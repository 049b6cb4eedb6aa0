package postgres

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

// Repository is the SQL-backed storage.Repository implementation.
// Authentications, profiles and the profile<->account mappings live in
// PostgreSQL; the remaining (non-durable) kinds are cached in an
// in-process map exactly like storage/file, since nothing in the
// Repository contract requires them to outlive the process.
type Repository struct {
	db *DB

	accountsMu sync.RWMutex
	accounts   map[string]platform.DataAndMetadata[platform.Account]

	friendsMu sync.RWMutex
	friends   map[string]platform.DataAndMetadata[platform.Friend]

	instancesMu sync.RWMutex
	instances   map[string]platform.DataAndMetadata[platform.Instance]

	worldsMu sync.RWMutex
	worlds   map[string]platform.DataAndMetadata[platform.World]

	avatarsMu sync.RWMutex
	avatars   map[string]platform.DataAndMetadata[platform.Avatar]
}

// NewRepository constructs a Repository over an already-connected DB,
// applying the embedded schema migration before returning.
func NewRepository(ctx context.Context, db *DB) (*Repository, error) {
	if err := db.Migrate(ctx, InitialSchema); err != nil {
		return nil, storage.IOError("migrate", err)
	}
	return &Repository{
		db:        db,
		accounts:  map[string]platform.DataAndMetadata[platform.Account]{},
		friends:   map[string]platform.DataAndMetadata[platform.Friend]{},
		instances: map[string]platform.DataAndMetadata[platform.Instance]{},
		worlds:    map[string]platform.DataAndMetadata[platform.World]{},
		avatars:   map[string]platform.DataAndMetadata[platform.Avatar]{},
	}, nil
}

func (r *Repository) pool() *pgxpool.Pool { return r.db.Pool() }

func truncateAccountIDs(ids []platform.AccountID, limit int) []platform.AccountID {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

func (r *Repository) ListAccountIDs(ctx context.Context, limit int) ([]platform.AccountID, error) {
	r.accountsMu.RLock()
	defer r.accountsMu.RUnlock()
	ids := make([]platform.AccountID, 0, len(r.accounts))
	if limit == 0 {
		return ids, nil
	}
	for _, e := range r.accounts {
		ids = append(ids, e.Data.ID)
	}
	return truncateAccountIDs(ids, limit), nil
}

func (r *Repository) GetAccount(ctx context.Context, id platform.AccountID) (platform.DataAndMetadata[platform.Account], error) {
	r.accountsMu.RLock()
	defer r.accountsMu.RUnlock()
	e, ok := r.accounts[id.String()]
	if !ok {
		return platform.DataAndMetadata[platform.Account]{}, storage.NotFound("get_account")
	}
	return e, nil
}

func (r *Repository) UpsertAccount(ctx context.Context, e platform.DataAndMetadata[platform.Account]) (bool, error) {
	r.accountsMu.Lock()
	defer r.accountsMu.Unlock()
	_, replaced := r.accounts[e.Data.ID.String()]
	r.accounts[e.Data.ID.String()] = e
	return replaced, nil
}

func (r *Repository) UpsertAccounts(ctx context.Context, es []platform.DataAndMetadata[platform.Account]) ([]platform.AccountID, error) {
	r.accountsMu.Lock()
	defer r.accountsMu.Unlock()
	var replaced []platform.AccountID
	for _, e := range es {
		key := e.Data.ID.String()
		if _, ok := r.accounts[key]; ok {
			replaced = append(replaced, e.Data.ID)
		}
		r.accounts[key] = e
	}
	return replaced, nil
}

func (r *Repository) ListFriendIDs(ctx context.Context, limit int) ([]platform.AccountID, error) {
	r.friendsMu.RLock()
	defer r.friendsMu.RUnlock()
	ids := make([]platform.AccountID, 0, len(r.friends))
	if limit == 0 {
		return ids, nil
	}
	for _, e := range r.friends {
		ids = append(ids, e.Data.ID)
	}
	return truncateAccountIDs(ids, limit), nil
}

func (r *Repository) GetFriend(ctx context.Context, id platform.AccountID) (platform.DataAndMetadata[platform.Friend], error) {
	r.friendsMu.RLock()
	defer r.friendsMu.RUnlock()
	e, ok := r.friends[id.String()]
	if !ok {
		return platform.DataAndMetadata[platform.Friend]{}, storage.NotFound("get_friend")
	}
	return e, nil
}

func (r *Repository) UpsertFriend(ctx context.Context, e platform.DataAndMetadata[platform.Friend]) (bool, error) {
	r.friendsMu.Lock()
	defer r.friendsMu.Unlock()
	_, replaced := r.friends[e.Data.ID.String()]
	r.friends[e.Data.ID.String()] = e
	return replaced, nil
}

func (r *Repository) UpsertFriends(ctx context.Context, es []platform.DataAndMetadata[platform.Friend]) ([]platform.AccountID, error) {
	r.friendsMu.Lock()
	defer r.friendsMu.Unlock()
	var replaced []platform.AccountID
	for _, e := range es {
		key := e.Data.ID.String()
		if _, ok := r.friends[key]; ok {
			replaced = append(replaced, e.Data.ID)
		}
		r.friends[key] = e
	}
	return replaced, nil
}

func (r *Repository) ListInstanceIDs(ctx context.Context, limit int) ([]platform.InstanceID, error) {
	r.instancesMu.RLock()
	defer r.instancesMu.RUnlock()
	ids := make([]platform.InstanceID, 0, len(r.instances))
	if limit == 0 {
		return ids, nil
	}
	for _, e := range r.instances {
		ids = append(ids, e.Data.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *Repository) GetInstance(ctx context.Context, id platform.InstanceID) (platform.DataAndMetadata[platform.Instance], error) {
	r.instancesMu.RLock()
	defer r.instancesMu.RUnlock()
	e, ok := r.instances[id.String()]
	if !ok {
		return platform.DataAndMetadata[platform.Instance]{}, storage.NotFound("get_instance")
	}
	return e, nil
}

func (r *Repository) UpsertInstance(ctx context.Context, e platform.DataAndMetadata[platform.Instance]) (bool, error) {
	r.instancesMu.Lock()
	defer r.instancesMu.Unlock()
	_, replaced := r.instances[e.Data.ID.String()]
	r.instances[e.Data.ID.String()] = e
	return replaced, nil
}

func (r *Repository) ListWorldIDs(ctx context.Context, limit int) ([]platform.WorldID, error) {
	r.worldsMu.RLock()
	defer r.worldsMu.RUnlock()
	ids := make([]platform.WorldID, 0, len(r.worlds))
	if limit == 0 {
		return ids, nil
	}
	for _, e := range r.worlds {
		ids = append(ids, e.Data.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *Repository) GetWorld(ctx context.Context, id platform.WorldID) (platform.DataAndMetadata[platform.World], error) {
	r.worldsMu.RLock()
	defer r.worldsMu.RUnlock()
	e, ok := r.worlds[id.String()]
	if !ok {
		return platform.DataAndMetadata[platform.World]{}, storage.NotFound("get_world")
	}
	return e, nil
}

func (r *Repository) UpsertWorld(ctx context.Context, e platform.DataAndMetadata[platform.World]) (bool, error) {
	r.worldsMu.Lock()
	defer r.worldsMu.Unlock()
	_, replaced := r.worlds[e.Data.ID.String()]
	r.worlds[e.Data.ID.String()] = e
	return replaced, nil
}

func (r *Repository) ListAvatarIDs(ctx context.Context, limit int) ([]platform.AvatarID, error) {
	r.avatarsMu.RLock()
	defer r.avatarsMu.RUnlock()
	ids := make([]platform.AvatarID, 0, len(r.avatars))
	if limit == 0 {
		return ids, nil
	}
	for _, e := range r.avatars {
		ids = append(ids, e.Data.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *Repository) GetAvatar(ctx context.Context, id platform.AvatarID) (platform.DataAndMetadata[platform.Avatar], error) {
	r.avatarsMu.RLock()
	defer r.avatarsMu.RUnlock()
	e, ok := r.avatars[id.String()]
	if !ok {
		return platform.DataAndMetadata[platform.Avatar]{}, storage.NotFound("get_avatar")
	}
	return e, nil
}

func (r *Repository) UpsertAvatar(ctx context.Context, e platform.DataAndMetadata[platform.Avatar]) (bool, error) {
	r.avatarsMu.Lock()
	defer r.avatarsMu.Unlock()
	_, replaced := r.avatars[e.Data.ID.String()]
	r.avatars[e.Data.ID.String()] = e
	return replaced, nil
}

var _ storage.Repository = (*Repository)(nil)
