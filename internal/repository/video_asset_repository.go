package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/securemath/securemath-api/internal/models"
)

// VideoAssetRepository handles persistence of video assets.
type VideoAssetRepository struct {
	db *sqlx.DB
}

// NewVideoAssetRepository constructs the repository.
func NewVideoAssetRepository(db *sqlx.DB) *VideoAssetRepository {
	return &VideoAssetRepository{db: db}
}

// FindByID returns an asset by its ID.
func (r *VideoAssetRepository) FindByID(ctx context.Context, id string) (*models.VideoAsset, error) {
	const query = `SELECT id, raw_object_key, hls_manifest_key, encryption_key_ref, transcode_status, created_at, updated_at
        FROM video_assets WHERE id = $1`
	var asset models.VideoAsset
	if err := r.db.GetContext(ctx, &asset, query, id); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Create persists a new asset record.
func (r *VideoAssetRepository) Create(ctx context.Context, asset *models.VideoAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now
	if asset.TranscodeStatus == "" {
		asset.TranscodeStatus = models.TranscodePending
	}
	const query = `INSERT INTO video_assets (id, raw_object_key, hls_manifest_key, encryption_key_ref, transcode_status, created_at, updated_at)
        VALUES (:id, :raw_object_key, :hls_manifest_key, :encryption_key_ref, :transcode_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, asset); err != nil {
		return fmt.Errorf("create video asset: %w", err)
	}
	return nil
}

// UpdateStatus advances the transcode state machine, optionally recording the
// produced manifest key.
func (r *VideoAssetRepository) UpdateStatus(ctx context.Context, id string, status models.TranscodeStatus, manifestKey *string) error {
	const query = `UPDATE video_assets SET transcode_status = $2, hls_manifest_key = COALESCE($3, hls_manifest_key), updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, manifestKey, time.Now().UTC()); err != nil {
		return fmt.Errorf("update video asset status: %w", err)
	}
	return nil
}
