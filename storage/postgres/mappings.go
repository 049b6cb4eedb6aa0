package postgres

import (
	"context"

	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/profile"
	"github.com/onlivfe/corevr/storage"
)

// SetProfileAccounts replaces the row-set for pid inside one transaction,
// the SQL equivalent of the file backend's drain-then-reinsert-on-failure
// atomic swap (a failed transaction simply never commits).
func (r *Repository) SetProfileAccounts(ctx context.Context, pid profile.ID, ids []platform.AccountID) error {
	tx, err := r.pool().Begin(ctx)
	if err != nil {
		return storage.IOError("set_profile_accounts", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM profile_account_mappings WHERE profile_id = $1`, pid[:]); err != nil {
		return storage.IOError("set_profile_accounts", err)
	}
	for _, aid := range ids {
		if _, err := tx.Exec(ctx, `
			INSERT INTO profile_account_mappings (profile_id, account_platform, account_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			pid[:], string(aid.Platform), aid.ID,
		); err != nil {
			return storage.IOError("set_profile_accounts", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storage.IOError("set_profile_accounts", err)
	}
	return nil
}

func (r *Repository) SetAccountProfiles(ctx context.Context, aid platform.AccountID, ids []profile.ID) error {
	tx, err := r.pool().Begin(ctx)
	if err != nil {
		return storage.IOError("set_account_profiles", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM profile_account_mappings WHERE account_platform = $1 AND account_id = $2`,
		string(aid.Platform), aid.ID,
	); err != nil {
		return storage.IOError("set_account_profiles", err)
	}
	for _, pid := range ids {
		if _, err := tx.Exec(ctx, `
			INSERT INTO profile_account_mappings (profile_id, account_platform, account_id)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			pid[:], string(aid.Platform), aid.ID,
		); err != nil {
			return storage.IOError("set_account_profiles", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return storage.IOError("set_account_profiles", err)
	}
	return nil
}

func (r *Repository) ListProfilesOf(ctx context.Context, aid platform.AccountID) ([]profile.ID, error) {
	rows, err := r.pool().Query(ctx,
		`SELECT profile_id FROM profile_account_mappings WHERE account_platform = $1 AND account_id = $2 ORDER BY profile_id`,
		string(aid.Platform), aid.ID,
	)
	if err != nil {
		return nil, storage.IOError("list_profiles_of", err)
	}
	defer rows.Close()

	ids := []profile.ID{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storage.IOError("list_profiles_of", err)
		}
		var id profile.ID
		copy(id[:], raw)
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) ListAccountsOf(ctx context.Context, pid profile.ID) ([]platform.AccountID, error) {
	rows, err := r.pool().Query(ctx,
		`SELECT account_platform, account_id FROM profile_account_mappings WHERE profile_id = $1 ORDER BY account_platform, account_id`,
		pid[:],
	)
	if err != nil {
		return nil, storage.IOError("list_accounts_of", err)
	}
	defer rows.Close()

	ids := []platform.AccountID{}
	for rows.Next() {
		var p, aid string
		if err := rows.Scan(&p, &aid); err != nil {
			return nil, storage.IOError("list_accounts_of", err)
		}
		ids = append(ids, platform.NewAccountID(platform.Tag(p), aid))
	}
	return ids, rows.Err()
}
