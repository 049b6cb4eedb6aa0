package file

import (
	"context"
	"sort"

	"github.com/onlivfe/corevr/profile"
	"github.com/onlivfe/corevr/storage"
)

func (r *Repository) ListProfileIDs(ctx context.Context, limit int) ([]profile.ID, error) {
	r.profilesMu.RLock()
	defer r.profilesMu.RUnlock()
	ids := make([]profile.ID, 0, len(r.profiles))
	if limit == 0 {
		return ids, nil
	}
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *Repository) GetProfile(ctx context.Context, id profile.ID) (profile.Profile, error) {
	r.profilesMu.RLock()
	defer r.profilesMu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, storage.NotFound("get_profile")
	}
	return p, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p profile.Profile) (bool, error) {
	r.profilesMu.Lock()
	defer r.profilesMu.Unlock()

	previous, existed := r.profiles[p.ID]
	r.profiles[p.ID] = p

	if err := r.persistProfiles(); err != nil {
		if existed {
			r.profiles[p.ID] = previous
		} else {
			delete(r.profiles, p.ID)
		}
		return false, err
	}
	return existed, nil
}

// DeleteProfile removes the profile and, per the acquisition order
// authentications < profiles < mappings < other, also drains every
// mapping row referencing it while still holding the profiles lock's
// logical position ahead of the mappings lock.
func (r *Repository) DeleteProfile(ctx context.Context, id profile.ID) error {
	r.profilesMu.Lock()
	defer r.profilesMu.Unlock()

	previous, existed := r.profiles[id]
	if !existed {
		return storage.NotFound("delete_profile")
	}
	delete(r.profiles, id)

	if err := r.persistProfiles(); err != nil {
		r.profiles[id] = previous
		return err
	}

	if err := r.dropMappingsForProfile(id); err != nil {
		// The profile itself is already gone and persisted; the mapping
		// rows are left referencing a deleted profile, in memory and on
		// disk, until a later SetProfileAccounts for this profile id or
		// SetAccountProfiles for their accounts replaces them. Surface the
		// error so the caller knows persistence of the cascade did not
		// fully land.
		return err
	}
	return nil
}

func (r *Repository) dropMappingsForProfile(pid profile.ID) error {
	r.mappingsMu.Lock()
	defer r.mappingsMu.Unlock()

	var drained []mappingPair
	for m := range r.mappings {
		if m.Profile == pid {
			drained = append(drained, m)
			delete(r.mappings, m)
		}
	}
	if len(drained) == 0 {
		return nil
	}
	if err := r.persistMappings(); err != nil {
		for _, m := range drained {
			r.mappings[m] = struct{}{}
		}
		return err
	}
	return nil
}
