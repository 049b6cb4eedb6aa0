package file

import (
	"context"

	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

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
