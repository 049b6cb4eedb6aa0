package file

import (
	"context"
	"sort"

	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

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
