package file

import (
	"context"
	"sort"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

func (r *Repository) ListAuthenticationIDs(ctx context.Context, limit int) ([]platform.AccountID, error) {
	r.authMu.RLock()
	defer r.authMu.RUnlock()
	ids := make([]platform.AccountID, 0, len(r.authByID))
	if limit == 0 {
		return ids, nil
	}
	for _, a := range r.authByID {
		ids = append(ids, a.AccountID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func (r *Repository) GetAuthentication(ctx context.Context, id platform.AccountID) (auth.Authentication, error) {
	r.authMu.RLock()
	defer r.authMu.RUnlock()
	a, ok := r.authByID[id.String()]
	if !ok {
		return auth.Authentication{}, storage.NotFound("get_authentication")
	}
	return a, nil
}

// UpsertAuthentication applies the atomic-swap rule: the in-memory change
// happens first, then the whole collection is serialized and written; a
// failure at either step undoes the in-memory change before the lock is
// released.
func (r *Repository) UpsertAuthentication(ctx context.Context, a auth.Authentication) (bool, error) {
	r.authMu.Lock()
	defer r.authMu.Unlock()

	key := a.AccountID().String()
	previous, existed := r.authByID[key]
	r.authByID[key] = a

	if err := r.persistAuth(); err != nil {
		if existed {
			r.authByID[key] = previous
		} else {
			delete(r.authByID, key)
		}
		return false, err
	}
	return existed, nil
}

// RemoveAuthentication removes the row for id, applying the same
// atomic-swap rule (the undo for a remove is to reinsert the removed
// value).
func (r *Repository) RemoveAuthentication(ctx context.Context, id platform.AccountID) (bool, error) {
	r.authMu.Lock()
	defer r.authMu.Unlock()

	key := id.String()
	previous, existed := r.authByID[key]
	if !existed {
		return false, nil
	}
	delete(r.authByID, key)

	if err := r.persistAuth(); err != nil {
		r.authByID[key] = previous
		return false, err
	}
	return true, nil
}
