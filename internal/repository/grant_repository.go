package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/securemath/securemath-api/internal/models"
)

// GrantRepository handles persistence of playback access grants.
type GrantRepository struct {
	db *sqlx.DB
}

// NewGrantRepository constructs the repository.
func NewGrantRepository(db *sqlx.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

// Create persists a new grant row. Grants accumulate; there is no dedup.
func (r *GrantRepository) Create(ctx context.Context, grant *models.PlaybackAccessGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	if grant.IssuedAt.IsZero() {
		grant.IssuedAt = time.Now().UTC()
	}
	const query = `INSERT INTO playback_access_grants (id, student_id, lesson_id, device_id, signed_url_hash, issued_at, expires_at)
        VALUES (:id, :student_id, :lesson_id, :device_id, :signed_url_hash, :issued_at, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grant); err != nil {
		return fmt.Errorf("create playback grant: %w", err)
	}
	return nil
}

// ListByStudentAndLesson returns the audit trail of grants, newest first.
func (r *GrantRepository) ListByStudentAndLesson(ctx context.Context, studentID, lessonID string) ([]models.PlaybackAccessGrant, error) {
	const query = `SELECT id, student_id, lesson_id, device_id, signed_url_hash, issued_at, expires_at
        FROM playback_access_grants WHERE student_id = $1 AND lesson_id = $2 ORDER BY issued_at DESC`
	var grants []models.PlaybackAccessGrant
	if err := r.db.SelectContext(ctx, &grants, query, studentID, lessonID); err != nil {
		return nil, fmt.Errorf("list playback grants: %w", err)
	}
	return grants, nil
}

// DeleteExpiredBefore purges grant rows that expired before the cutoff.
func (r *GrantRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM playback_access_grants WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge expired grants: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
