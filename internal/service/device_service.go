package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/securemath/securemath-api/internal/models"
	appErrors "github.com/securemath/securemath-api/pkg/errors"
)

type deviceRepository interface {
	Exists(ctx context.Context, studentID, fingerprintHash string) (bool, error)
	Touch(ctx context.Context, studentID, fingerprintHash string, seenAt time.Time) error
	RegisterIfUnderLimit(ctx context.Context, device *models.RegisteredDevice, limit int) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.RegisteredDevice, error)
	Delete(ctx context.Context, id string) error
}

// DeviceService enforces the per-student device cap for content routes.
type DeviceService struct {
	repo    deviceRepository
	metrics *MetricsService
	limit   int
	logger  *zap.Logger
}

// NewDeviceService constructs DeviceService.
func NewDeviceService(repo deviceRepository, metrics *MetricsService, limit int, logger *zap.Logger) *DeviceService {
	if limit <= 0 {
		limit = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{repo: repo, metrics: metrics, limit: limit, logger: logger}
}

// HashFingerprint derives the stable one-way hash stored for a raw
// client fingerprint.
func HashFingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:32]
}

// Admit decides whether the device may proceed. Known fingerprints are always
// admitted and have last_seen_at refreshed; a new fingerprint is admitted only
// while the student holds fewer than the configured limit.
func (s *DeviceService) Admit(ctx context.Context, studentID, rawFingerprint string) error {
	if rawFingerprint == "" {
		return appErrors.Clone(appErrors.ErrForbidden, "access denied")
	}
	hash := HashFingerprint(rawFingerprint)

	known, err := s.repo.Exists(ctx, studentID, hash)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check device")
	}
	if known {
		if err := s.repo.Touch(ctx, studentID, hash, time.Now().UTC()); err != nil {
			s.logger.Warn("failed to refresh device last_seen_at", zap.String("student_id", studentID), zap.Error(err))
		}
		s.metrics.RecordDeviceAdmission(true)
		return nil
	}

	admitted, err := s.repo.RegisterIfUnderLimit(ctx, &models.RegisteredDevice{
		StudentID:       studentID,
		FingerprintHash: hash,
	}, s.limit)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register device")
	}
	if !admitted {
		s.metrics.RecordDeviceAdmission(false)
		s.logger.Info("device limit reached",
			zap.String("student_id", studentID),
			zap.Int("limit", s.limit))
		return appErrors.ErrDeviceLimitExceeded
	}

	s.metrics.RecordDeviceAdmission(true)
	return nil
}

// ListForStudent returns the student's registered devices.
func (s *DeviceService) ListForStudent(ctx context.Context, studentID string) ([]models.RegisteredDevice, error) {
	devices, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list devices")
	}
	return devices, nil
}

// Revoke removes a registered device, freeing one slot for the student.
func (s *DeviceService) Revoke(ctx context.Context, deviceID string) error {
	if err := s.repo.Delete(ctx, deviceID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke device")
	}
	s.logger.Info("device revoked", zap.String("device_id", deviceID))
	return nil
}

// Limit exposes the configured cap.
func (s *DeviceService) Limit() int {
	return s.limit
}
