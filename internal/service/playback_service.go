package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

type lessonReader interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
}

type chapterReader interface {
	FindChapterByID(ctx context.Context, id string) (*models.Chapter, error)
}

type enrollmentChecker interface {
	ExistsActive(ctx context.Context, studentID, courseID string) (bool, error)
}

type videoAssetReader interface {
	FindByID(ctx context.Context, id string) (*models.VideoAsset, error)
}

type grantStore interface {
	Create(ctx context.Context, grant *models.PlaybackAccessGrant) error
	ListByStudentAndLesson(ctx context.Context, studentID, lessonID string) ([]models.PlaybackAccessGrant, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PlaybackService orchestrates playback grant issuance: lesson resolution,
// enrollment gating, asset readiness, grant persistence and credential
// composition. Every successful call produces a fresh grant row; credential
// and watermark freshness is a security property, not an optimization target.
type PlaybackService struct {
	lessons     lessonReader
	chapters    chapterReader
	enrollments enrollmentChecker
	assets      videoAssetReader
	grants      grantStore
	signedURLs  *SignedURLService
	watermarks  *WatermarkService
	metrics     *MetricsService
	expiry      time.Duration
	logger      *zap.Logger
}

// NewPlaybackService constructs PlaybackService.
func NewPlaybackService(
	lessons lessonReader,
	chapters chapterReader,
	enrollments enrollmentChecker,
	assets videoAssetReader,
	grants grantStore,
	signedURLs *SignedURLService,
	watermarks *WatermarkService,
	metrics *MetricsService,
	expiry time.Duration,
	logger *zap.Logger,
) *PlaybackService {
	if expiry <= 0 {
		expiry = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaybackService{
		lessons:     lessons,
		chapters:    chapters,
		enrollments: enrollments,
		assets:      assets,
		grants:      grants,
		signedURLs:  signedURLs,
		watermarks:  watermarks,
		metrics:     metrics,
		expiry:      expiry,
		logger:      logger,
	}
}

// RequestGrant issues a playback grant for the student and lesson. The
// device hash admitted by the gate is recorded on the grant so the audit
// trail ties each credential to the device that obtained it.
func (s *PlaybackService) RequestGrant(ctx context.Context, studentID, lessonID, deviceHash string) (*models.PlaybackGrant, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}

	courseID, err := s.courseIDForLesson(ctx, lesson)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.ExistsActive(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.ErrEnrollmentRequired
	}

	if lesson.VideoAssetID == nil {
		return nil, appErrors.Clone(appErrors.ErrIllegalState, "lesson has no video content")
	}

	asset, err := s.assets.FindByID(ctx, *lesson.VideoAssetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video asset not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video asset")
	}
	if asset.TranscodeStatus != models.TranscodeReady {
		return nil, appErrors.Clone(appErrors.ErrIllegalState, "video is not ready for playback yet")
	}

	now := time.Now().UTC()
	grant := &models.PlaybackAccessGrant{
		StudentID:     studentID,
		LessonID:      lessonID,
		SignedURLHash: uuid.NewString(),
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.expiry),
	}
	if deviceHash != "" {
		grant.DeviceID = &deviceHash
	}
	if err := s.grants.Create(ctx, grant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist grant")
	}

	manifestURL, err := s.signedURLs.GenerateSignedURL(asset.ID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign manifest url")
	}

	s.metrics.RecordGrantIssued()

	return &models.PlaybackGrant{
		ManifestURL:   manifestURL,
		ExpiresAt:     grant.ExpiresAt,
		WatermarkSeed: s.watermarks.GenerateSeed(studentID, lessonID),
		CourseID:      courseID,
	}, nil
}

// courseIDForLesson walks lesson → chapter → course. A lesson without a
// chapter association, or one pointing at a missing chapter, is upstream data
// corruption rather than a user error and is logged accordingly.
func (s *PlaybackService) courseIDForLesson(ctx context.Context, lesson *models.Lesson) (string, error) {
	if lesson.ChapterID == nil {
		s.logger.Error("lesson missing chapter association", zap.String("lesson_id", lesson.ID))
		return "", appErrors.Clone(appErrors.ErrIllegalState, "lesson is missing chapter association")
	}
	chapter, err := s.chapters.FindChapterByID(ctx, *lesson.ChapterID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Error("lesson references missing chapter",
				zap.String("lesson_id", lesson.ID),
				zap.String("chapter_id", *lesson.ChapterID))
			return "", appErrors.Clone(appErrors.ErrIllegalState, "lesson references missing chapter")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chapter")
	}
	return chapter.CourseID, nil
}

// GrantHistory lists the grant audit trail for a student and lesson.
func (s *PlaybackService) GrantHistory(ctx context.Context, studentID, lessonID string) ([]models.PlaybackAccessGrant, error) {
	grants, err := s.grants.ListByStudentAndLesson(ctx, studentID, lessonID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grants")
	}
	return grants, nil
}

// SweepExpiredGrants deletes grant rows whose expiry lies behind the retention
// window. Grants are append-only audit records, so retention is the only
// mutation they ever see.
func (s *PlaybackService) SweepExpiredGrants(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	removed, err := s.grants.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sweep grants")
	}
	if removed > 0 {
		s.logger.Info("expired grants swept", zap.Int64("removed", removed))
	}
	return removed, nil
}
