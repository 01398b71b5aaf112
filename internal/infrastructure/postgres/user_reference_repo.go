package postgres

import (
	"context"
	"fmt"

	"pulse/internal/domain/user"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserReferenceRepository struct {
	pool *pgxpool.Pool
}

func NewUserReferenceRepository(pool *pgxpool.Pool) *UserReferenceRepository {
	return &UserReferenceRepository{pool: pool}
}

// CreateIfAbsent returns true if the record was inserted, false if a record
// for the same user id already existed.
func (r *UserReferenceRepository) CreateIfAbsent(ctx context.Context, ref *user.Reference) (bool, error) {
	const sql = `
		INSERT INTO user_references (user_id, username, slug, email, is_active, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, sql,
		ref.UserID, ref.Username, ref.Slug, ref.Email, ref.IsActive, ref.SyncedAt)
	if err != nil {
		return false, fmt.Errorf("insert user reference: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Upsert overwrites the mutable fields and refreshes the sync timestamp.
// A missing record is created, which covers update events arriving before
// their create.
func (r *UserReferenceRepository) Upsert(ctx context.Context, ref *user.Reference) error {
	const sql = `
		INSERT INTO user_references (user_id, username, slug, email, is_active, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    slug = EXCLUDED.slug,
		    email = EXCLUDED.email,
		    synced_at = EXCLUDED.synced_at
	`

	_, err := r.pool.Exec(ctx, sql,
		ref.UserID, ref.Username, ref.Slug, ref.Email, ref.IsActive, ref.SyncedAt)
	if err != nil {
		return fmt.Errorf("upsert user reference: %w", err)
	}

	return nil
}

// Delete returns true if a record was removed, false if none existed.
func (r *UserReferenceRepository) Delete(ctx context.Context, userID string) (bool, error) {
	const sql = `
		DELETE FROM user_references
		WHERE user_id = $1
	`

	tag, err := r.pool.Exec(ctx, sql, userID)
	if err != nil {
		return false, fmt.Errorf("delete user reference: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *UserReferenceRepository) GetByID(ctx context.Context, userID string) (*user.Reference, error) {
	const sql = `
		SELECT user_id, username, slug, email, is_active, synced_at
		FROM user_references
		WHERE user_id = $1
	`

	var ref user.Reference
	err := r.pool.QueryRow(ctx, sql, userID).Scan(
		&ref.UserID, &ref.Username, &ref.Slug, &ref.Email, &ref.IsActive, &ref.SyncedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get user reference by id: %w", err)
	}

	return &ref, nil
}
