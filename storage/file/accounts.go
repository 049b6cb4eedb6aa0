package file

import (
	"context"
	"sort"

	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

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
