package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/onlivfe/corevr/profile"
	"github.com/onlivfe/corevr/storage"
)

func (r *Repository) ListProfileIDs(ctx context.Context, limit int) ([]profile.ID, error) {
	if limit == 0 {
		return []profile.ID{}, nil
	}
	rows, err := r.pool().Query(ctx, `SELECT id FROM profiles ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, storage.IOError("list_profile_ids", err)
	}
	defer rows.Close()

	ids := []profile.ID{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storage.IOError("list_profile_ids", err)
		}
		var id profile.ID
		copy(id[:], raw)
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) GetProfile(ctx context.Context, id profile.ID) (profile.Profile, error) {
	var p profile.Profile
	p.ID = id
	err := r.pool().QueryRow(ctx,
		`SELECT nickname, notes, picture_url FROM profiles WHERE id = $1`, id[:],
	).Scan(&p.Nickname, &p.Notes, &p.PictureURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return profile.Profile{}, storage.NotFound("get_profile")
	}
	if err != nil {
		return profile.Profile{}, storage.IOError("get_profile", err)
	}
	return p, nil
}

func (r *Repository) UpsertProfile(ctx context.Context, p profile.Profile) (bool, error) {
	var inserted bool
	err := r.pool().QueryRow(ctx, `
		INSERT INTO profiles (id, nickname, notes, picture_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
			SET nickname = EXCLUDED.nickname, notes = EXCLUDED.notes, picture_url = EXCLUDED.picture_url
		RETURNING (xmax = 0)`,
		p.ID[:], p.Nickname, p.Notes, p.PictureURL,
	).Scan(&inserted)
	if err != nil {
		return false, storage.IOError("upsert_profile", err)
	}
	return !inserted, nil
}

// DeleteProfile relies on the profile_account_mappings foreign key's ON
// DELETE CASCADE to drop every mapping row referencing the profile, rather
// than the file backend's explicit dropMappingsForProfile step.
func (r *Repository) DeleteProfile(ctx context.Context, id profile.ID) error {
	tag, err := r.pool().Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id[:])
	if err != nil {
		return storage.IOError("delete_profile", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.NotFound("delete_profile")
	}
	return nil
}
