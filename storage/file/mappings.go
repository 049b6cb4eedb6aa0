package file

import (
	"context"
	"sort"

	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/profile"
)

// SetProfileAccounts replaces the entire row-set for profile pid with ids,
// under the mappings lock (the third tier in the fixed acquisition order).
func (r *Repository) SetProfileAccounts(ctx context.Context, pid profile.ID, ids []platform.AccountID) error {
	r.mappingsMu.Lock()
	defer r.mappingsMu.Unlock()

	var drained []mappingPair
	for m := range r.mappings {
		if m.Profile == pid {
			drained = append(drained, m)
			delete(r.mappings, m)
		}
	}
	var inserted []mappingPair
	for _, aid := range ids {
		m := mappingPair{Account: aid, Profile: pid}
		if _, ok := r.mappings[m]; !ok {
			r.mappings[m] = struct{}{}
			inserted = append(inserted, m)
		}
	}

	if err := r.persistMappings(); err != nil {
		for _, m := range inserted {
			delete(r.mappings, m)
		}
		for _, m := range drained {
			r.mappings[m] = struct{}{}
		}
		return err
	}
	return nil
}

// SetAccountProfiles is the symmetric replacement keyed by account.
func (r *Repository) SetAccountProfiles(ctx context.Context, aid platform.AccountID, ids []profile.ID) error {
	r.mappingsMu.Lock()
	defer r.mappingsMu.Unlock()

	var drained []mappingPair
	for m := range r.mappings {
		if m.Account == aid {
			drained = append(drained, m)
			delete(r.mappings, m)
		}
	}
	var inserted []mappingPair
	for _, pid := range ids {
		m := mappingPair{Account: aid, Profile: pid}
		if _, ok := r.mappings[m]; !ok {
			r.mappings[m] = struct{}{}
			inserted = append(inserted, m)
		}
	}

	if err := r.persistMappings(); err != nil {
		for _, m := range inserted {
			delete(r.mappings, m)
		}
		for _, m := range drained {
			r.mappings[m] = struct{}{}
		}
		return err
	}
	return nil
}

func (r *Repository) ListProfilesOf(ctx context.Context, aid platform.AccountID) ([]profile.ID, error) {
	r.mappingsMu.RLock()
	defer r.mappingsMu.RUnlock()
	var ids []profile.ID
	for m := range r.mappings {
		if m.Account == aid {
			ids = append(ids, m.Profile)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r *Repository) ListAccountsOf(ctx context.Context, pid profile.ID) ([]platform.AccountID, error) {
	r.mappingsMu.RLock()
	defer r.mappingsMu.RUnlock()
	var ids []platform.AccountID
	for m := range r.mappings {
		if m.Profile == pid {
			ids = append(ids, m.Account)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}
