package service

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
	"github.com/securemath/securemath-api/pkg/jobs"
	"github.com/securemath/securemath-api/pkg/storage"
	"github.com/securemath/securemath-api/pkg/video"
)

type videoAssetRepository interface {
	FindByID(ctx context.Context, id string) (*models.VideoAsset, error)
	Create(ctx context.Context, asset *models.VideoAsset) error
	UpdateStatus(ctx context.Context, id string, status models.TranscodeStatus, manifestKey *string) error
}

const jobTypeTranscode = "video.transcode"

// VideoService handles asset intake and drives the transcode pipeline.
// Uploads land as PENDING, a background worker moves them through
// PROCESSING to READY or FAILED. Only READY assets are playable.
type VideoService struct {
	repo       videoAssetRepository
	store      *storage.LocalStorage
	transcoder video.Transcoder
	queue      *jobs.Queue
	logger     *zap.Logger
}

// NewVideoService constructs VideoService and its transcode queue. Call
// Start before accepting uploads and Stop on shutdown.
func NewVideoService(repo videoAssetRepository, store *storage.LocalStorage, transcoder video.Transcoder, queueCfg jobs.QueueConfig, logger *zap.Logger) *VideoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &VideoService{
		repo:       repo,
		store:      store,
		transcoder: transcoder,
		logger:     logger,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("transcode", s.handleTranscodeJob, queueCfg)
	return s
}

// Start launches the transcode workers.
func (s *VideoService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the transcode workers.
func (s *VideoService) Stop() {
	s.queue.Stop()
}

// Upload stores the raw source, registers the asset as PENDING and queues
// it for transcoding.
func (s *VideoService) Upload(ctx context.Context, source io.Reader) (*models.VideoAsset, error) {
	asset := &models.VideoAsset{
		ID:              uuid.NewString(),
		TranscodeStatus: models.TranscodePending,
	}
	asset.RawObjectKey = storage.RawObjectKey(asset.ID)

	if _, err := s.store.SaveStream(asset.RawObjectKey, source); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store video source")
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register video asset")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: asset.ID, Type: jobTypeTranscode, Payload: asset.ID}); err != nil {
		s.logger.Error("failed to queue transcode job", zap.String("asset_id", asset.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue transcode")
	}
	s.logger.Info("video asset accepted", zap.String("asset_id", asset.ID))
	return asset, nil
}

// Status returns the current pipeline state of an asset.
func (s *VideoService) Status(ctx context.Context, assetID string) (*models.VideoAsset, error) {
	asset, err := s.repo.FindByID(ctx, assetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video asset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video asset")
	}
	return asset, nil
}

// Requeue pushes a FAILED asset back through the pipeline.
func (s *VideoService) Requeue(ctx context.Context, assetID string) (*models.VideoAsset, error) {
	asset, err := s.Status(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.TranscodeStatus != models.TranscodeFailed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "asset is not in a failed state")
	}
	if err := s.repo.UpdateStatus(ctx, assetID, models.TranscodePending, nil); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset asset status")
	}
	asset.TranscodeStatus = models.TranscodePending
	if err := s.queue.Enqueue(jobs.Job{ID: assetID, Type: jobTypeTranscode, Payload: assetID}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue transcode")
	}
	return asset, nil
}

func (s *VideoService) handleTranscodeJob(ctx context.Context, job jobs.Job) error {
	assetID, ok := job.Payload.(string)
	if !ok || assetID == "" {
		s.logger.Error("transcode job carries no asset id", zap.String("job_id", job.ID))
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, assetID, models.TranscodeProcessing, nil); err != nil {
		return err
	}

	sourcePath := s.store.Path(storage.RawObjectKey(assetID))
	outputDir := filepath.Dir(s.store.Path(storage.HLSManifestKey(assetID)))

	if _, err := s.transcoder.Transcode(ctx, sourcePath, outputDir); err != nil {
		s.logger.Error("transcode failed", zap.String("asset_id", assetID), zap.Error(err))
		if updateErr := s.repo.UpdateStatus(ctx, assetID, models.TranscodeFailed, nil); updateErr != nil {
			s.logger.Error("failed to mark asset failed", zap.String("asset_id", assetID), zap.Error(updateErr))
		}
		return err
	}

	manifestKey := storage.HLSManifestKey(assetID)
	if err := s.repo.UpdateStatus(ctx, assetID, models.TranscodeReady, &manifestKey); err != nil {
		return err
	}
	s.logger.Info("video asset ready", zap.String("asset_id", assetID), zap.String("manifest", manifestKey))
	return nil
}
