package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/onlivfe/corevr/auth"
	"github.com/onlivfe/corevr/platform"
	"github.com/onlivfe/corevr/storage"
)

func (r *Repository) ListAuthenticationIDs(ctx context.Context, limit int) ([]platform.AccountID, error) {
	if limit == 0 {
		return []platform.AccountID{}, nil
	}
	rows, err := r.pool().Query(ctx,
		`SELECT platform, account_id FROM authentications ORDER BY platform, account_id LIMIT $1`, limit)
	if err != nil {
		return nil, storage.IOError("list_authentication_ids", err)
	}
	defer rows.Close()

	ids := []platform.AccountID{}
	for rows.Next() {
		var p, aid string
		if err := rows.Scan(&p, &aid); err != nil {
			return nil, storage.IOError("list_authentication_ids", err)
		}
		ids = append(ids, platform.NewAccountID(platform.Tag(p), aid))
	}
	return ids, rows.Err()
}

func (r *Repository) GetAuthentication(ctx context.Context, id platform.AccountID) (auth.Authentication, error) {
	var data []byte
	err := r.pool().QueryRow(ctx,
		`SELECT data FROM authentications WHERE platform = $1 AND account_id = $2`,
		string(id.Platform), id.ID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Authentication{}, storage.NotFound("get_authentication")
	}
	if err != nil {
		return auth.Authentication{}, storage.IOError("get_authentication", err)
	}
	var a auth.Authentication
	if err := json.Unmarshal(data, &a); err != nil {
		return auth.Authentication{}, storage.SerializationError("get_authentication", err)
	}
	return a, nil
}

// UpsertAuthentication relies on Postgres' own transaction isolation for
// atomicity rather than the file backend's manual in-memory-then-disk
// rollback; the `xmax = 0` trick reports whether the row was freshly
// inserted or replaced an existing one, same as INSERT ... ON CONFLICT.
func (r *Repository) UpsertAuthentication(ctx context.Context, a auth.Authentication) (bool, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return false, storage.SerializationError("upsert_authentication", err)
	}
	aid := a.AccountID()

	var inserted bool
	err = r.pool().QueryRow(ctx, `
		INSERT INTO authentications (platform, account_id, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (platform, account_id) DO UPDATE
			SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)`,
		string(aid.Platform), aid.ID, data, a.Metadata.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, storage.IOError("upsert_authentication", err)
	}
	return !inserted, nil
}

func (r *Repository) RemoveAuthentication(ctx context.Context, id platform.AccountID) (bool, error) {
	tag, err := r.pool().Exec(ctx,
		`DELETE FROM authentications WHERE platform = $1 AND account_id = $2`,
		string(id.Platform), id.ID,
	)
	if err != nil {
		return false, storage.IOError("remove_authentication", err)
	}
	return tag.RowsAffected() > 0, nil
}
